package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		number uint16
		want   error
	}{
		{1062, ErrDuplicate},
		{1451, ErrConflict},
		{1217, ErrConflict},
		{1452, ErrNotFound},
		{1216, ErrNotFound},
	}
	for _, tc := range cases {
		err := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: tc.number, Message: "x"})
		assert.ErrorIs(t, translate(err), tc.want, "mysql error %d", tc.number)
	}

	other := &mysql.MySQLError{Number: 1213, Message: "deadlock"}
	assert.Same(t, other, translate(other))
	assert.Equal(t, sql.ErrConnDone, translate(sql.ErrConnDone))
	assert.NoError(t, translate(nil))
	assert.False(t, errors.Is(translate(errors.New("boom")), ErrNotFound))
}
