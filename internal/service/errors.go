package service

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a service failure.  Handlers map kinds onto HTTP status
// codes: Validation 400, NotFound 404, Conflict 409, Internal 500.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is returned by every Service operation.  Message is safe to show to
// end users; Err holds the cause and is never rendered.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Conflict causes, usable with errors.Is.
var (
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInUse            = errors.New("instrument in use")
	ErrDuplicate        = errors.New("duplicate")
)

// User-facing messages.
const (
	msgInternal            = "Erro interno do servidor"
	msgInstrumentRequired  = "Nome e quantidade são obrigatórios"
	msgInstrumentDuplicate = "Já existe um instrumento com este nome"
	msgInstrumentNotFound  = "Instrumento não encontrado"
	msgInstrumentFull      = "Este instrumento não está mais disponível"
	msgStudentRequired     = "Nome, idade e instrumento são obrigatórios"
	msgStudentNotFound     = "Aluno não encontrado"
	msgPaymentRequired     = "Aluno, valor e mês são obrigatórios"
	msgPaymentMonth        = "Mês deve estar no formato AAAA-MM"
	msgPaymentDuplicate    = "Já existe um pagamento para este aluno neste mês"
	msgPaymentNotFound     = "Pagamento não encontrado"
	msgPaymentStatus       = "Status de pagamento é obrigatório"
	msgAttendanceRequired  = "Aluno e presença são obrigatórios"
	msgAttendanceDate      = "Data deve estar no formato AAAA-MM-DD"
	msgAttendanceMonth     = msgPaymentMonth
)

func validationError(msg string) error { return &Error{Kind: KindValidation, Message: msg} }

func notFoundError(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }

func conflictError(cause error, msg string) error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func conflictf(cause error, format string, args ...any) error {
	return conflictError(cause, fmt.Sprintf(format, args...))
}

// internalError wraps an unexpected failure with the name of the operation
// so the log line says where it happened.
func internalError(op string, err error) error {
	return &Error{Kind: KindInternal, Message: msgInternal, Err: errors.Wrap(err, op)}
}

// KindOf returns the kind of err.  Errors not produced by this package are
// Internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message of err.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message
	}
	return msgInternal
}

// passThrough returns err unchanged when it already is a *Error and wraps
// it as Internal otherwise.  Used on errors escaping InTx callbacks.
func passThrough(op string, err error) error {
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return internalError(op, err)
}
