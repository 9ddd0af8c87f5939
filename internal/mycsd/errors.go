package mycsd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Kind uint8

const (
	KindUnknown Kind = iota
	NotFound
	Forbidden
	Validation
	InvalidState
	DependencyFailure
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	case Validation:
		return "validation"
	case InvalidState:
		return "invalid_state"
	case DependencyFailure:
		return "dependency_failure"
	default:
		return "unknown"
	}
}

// FieldError describes a problem with a single input field.
type FieldError struct {
	Field string
	Error string
}

type Error struct {
	Kind   Kind
	Op     string
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches bare sentinels by kind, so errors.Is(err, ErrNotFound) works for any op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: NotFound}
	ErrForbidden         = &Error{Kind: Forbidden}
	ErrValidation        = &Error{Kind: Validation}
	ErrInvalidState      = &Error{Kind: InvalidState}
	ErrDependencyFailure = &Error{Kind: DependencyFailure}
)

// ErrDuplicate is returned by stores when a unique constraint rejects a write.
var ErrDuplicate = errors.New("duplicate key")

func E(kind Kind, op, msg string) error {
	return &Error{Kind: kind, Op: op, Msg: msg}
}

// KindOf returns the kind of the first *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// dependency wraps a store error; errors that already carry a kind pass through.
func dependency(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: DependencyFailure, Op: op, Err: err}
}

func validationError(op string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Kind: Validation, Op: op, Err: err}
	}
	fields := make([]FieldError, 0, len(verrs))
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Error: fe.Tag()})
		names = append(names, fe.Field())
	}
	return &Error{
		Kind:   Validation,
		Op:     op,
		Msg:    fmt.Sprintf("missing or invalid: %s", strings.Join(names, ", ")),
		Fields: fields,
	}
}

// UserMessage is an actionable text for organizers and admins.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Unexpected error, please try again."
	}
	switch e.Kind {
	case NotFound:
		return "Not found: " + e.Msg
	case Forbidden:
		return "You are not allowed to do this."
	case Validation:
		return "Please check your input: " + e.Msg
	case InvalidState:
		return "Not possible in the current state: " + e.Msg
	case DependencyFailure:
		if e.Op == opApprove || e.Op == opReject {
			return "Storage error. The claim is still pending, please retry."
		}
		return "Storage error, please retry."
	}
	return "Unexpected error, please try again."
}
