package program

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes failures raised while capturing program history.
type ErrorCode string

const (
	// ErrCodeNotFound indicates the program is absent from the source.
	// Not fatal on its own: the caller classifies the program from the archive.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeUnexpectedClassification indicates an archive transaction code
	// outside the known set.
	ErrCodeUnexpectedClassification ErrorCode = "UNEXPECTED_CLASSIFICATION_CODE"

	// ErrCodeMalformedData indicates an unparseable field from the source.
	ErrCodeMalformedData ErrorCode = "MALFORMED_DATA"

	// ErrCodePrecondition indicates a change log not seeded by Posted.
	ErrCodePrecondition ErrorCode = "PRECONDITION_VIOLATION"
)

// Error is a classified failure with enough context to diagnose it.
type Error struct {
	Code      ErrorCode
	Message   string
	ProgramID ProgramID // zero when unknown
	Raw       string    // offending raw value, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Raw != "" {
		msg += fmt.Sprintf(" (raw=%q)", e.Raw)
	}
	if e.ProgramID != 0 {
		msg += fmt.Sprintf(" (program=%d)", e.ProgramID)
	}
	return msg
}

// NewNotFoundError reports a program missing from the source.
func NewNotFoundError(id ProgramID, what string) *Error {
	return &Error{
		Code:      ErrCodeNotFound,
		Message:   what + " not found",
		ProgramID: id,
	}
}

// NewClassificationError reports an archive code outside the known set.
func NewClassificationError(id ProgramID, code string) *Error {
	return &Error{
		Code:      ErrCodeUnexpectedClassification,
		Message:   "unexpected archive transaction code",
		ProgramID: id,
		Raw:       code,
	}
}

// NewMalformedError reports a source value that could not be parsed.
func NewMalformedError(id ProgramID, field, raw string) *Error {
	return &Error{
		Code:      ErrCodeMalformedData,
		Message:   "cannot parse " + field,
		ProgramID: id,
		Raw:       raw,
	}
}

// NewPreconditionError reports a corrupt change log.
func NewPreconditionError(id ProgramID, msg string) *Error {
	return &Error{
		Code:      ErrCodePrecondition,
		Message:   msg,
		ProgramID: id,
	}
}

func hasCode(err error, code ErrorCode) bool {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return hasCode(err, ErrCodeNotFound) }

// IsUnexpectedClassification reports whether err carries an unknown archive code.
func IsUnexpectedClassification(err error) bool {
	return hasCode(err, ErrCodeUnexpectedClassification)
}

// IsMalformed reports whether err is a MalformedData error.
func IsMalformed(err error) bool { return hasCode(err, ErrCodeMalformedData) }

// IsPrecondition reports whether err is a PreconditionViolation.
func IsPrecondition(err error) bool { return hasCode(err, ErrCodePrecondition) }
