package qb

import (
	"errors"
	"fmt"
)

// Error kinds reported by the builder. Match them with errors.Is.
var (
	ErrConnectionUnavailable = errors.New("[builder] no connection available")
	ErrPreparationFailed     = errors.New("[builder] statement preparation failed")
	ErrExecutionFailed       = errors.New("[builder] statement execution failed")
	ErrInvalidStatementState = errors.New("[builder] invalid statement state")
)

// Causes of ErrInvalidStatementState.
var (
	ErrUnsupportedOperator   = errors.New("[builder] unsupported operator")
	ErrOperatorValueMismatch = errors.New("[builder] operator does not accept this kind of value")
	ErrEmptyList             = errors.New("[builder] list value must contain at least one element")
	ErrInvalidIdentifier     = errors.New("[builder] invalid identifier")
	ErrInvalidDirection      = errors.New("[builder] order direction must be ASC or DESC")

	errWhereArgs       = errors.New("[builder] where expects a value, or an operator and a value")
	errOperatorType    = errors.New("[builder] operator must be a string")
	errNoAction        = errors.New("[builder] no action set")
	errNoTable         = errors.New("[builder] no table set")
	errEmptyPayload    = errors.New("[builder] payload cannot be empty")
	errInsertClauses   = errors.New("[builder] insert takes neither where nor order by clauses")
	errOrderedWrite    = errors.New("[builder] dialect does not support order by on update or delete")
	errRunIntoAction   = errors.New("[builder] RunInto supports select and count only")
	errDestNotPointer  = errors.New("[builder] destination is not a non-nil pointer")
	errUnsupportedDest = errors.New("[builder] unsupported destination type")
	errPayloadType     = errors.New("[builder] payload source must be a struct or a pointer to one")
)

// stateError ties a specific cause to ErrInvalidStatementState.
type stateError struct {
	cause  error
	detail string
}

func invalidState(cause error, format string, args ...any) error {
	return &stateError{cause: cause, detail: fmt.Sprintf(format, args...)}
}

func (e *stateError) Error() string {
	if e.detail == "" {
		return e.cause.Error()
	}

	return e.cause.Error() + ": " + e.detail
}

func (e *stateError) Unwrap() []error {
	return []error{ErrInvalidStatementState, e.cause}
}

// StatementError reports a statement the backend could not prepare or execute, or that
// had no connection to run on.
type StatementError struct {
	Kind   error
	Action Action
	Query  string
	Err    error
}

func (e *StatementError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%v (%s)", e.Kind, e.Action)
	case e.Query == "":
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Action, e.Err)
	default:
		return fmt.Sprintf("%v (%s %q): %v", e.Kind, e.Action, e.Query, e.Err)
	}
}

func (e *StatementError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}
