package core

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput = errors.New("input is empty")
	ErrMissingID  = errors.New("transaction has no id")
)

// ParseError reports a problem with a whole input file. It aborts the
// import; the message is meant to be shown to the user as-is.
type ParseError struct {
	Format string // "csv" or "json"
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Format, e.Msg)
}

// FormatError reports a single bad field value. Callers swallow it per
// row with a safe default so one malformed row never aborts an import.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}
