package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownDialect means the first page matched none of the account markers.
	ErrUnknownDialect = errors.New("unknown statement dialect")
	// ErrUnparsableStatement means the dialect was recognised but no transaction
	// line could be read.
	ErrUnparsableStatement = errors.New("no transactions recognised in statement")
)

// ParseError ties a file-level parse failure to its source document.
type ParseError struct {
	Source  string
	Dialect Dialect
	Err     error
}

func (e *ParseError) Error() string {
	if e.Dialect != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Source, e.Dialect, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
