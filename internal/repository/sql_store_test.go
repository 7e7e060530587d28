package repository

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Counts taken after a row lock must see rows committed while waiting for
// it, which REPEATABLE READ snapshots would hide.
func TestTxIsolation(t *testing.T) {
	assert.Equal(t, sql.LevelReadCommitted, txOptions.Isolation)
	assert.False(t, txOptions.ReadOnly)
}
