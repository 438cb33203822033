/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package trf

import (
	"errors"
	"fmt"
)

var (
	ErrMalformed = errors.New("malformed record")
	// ErrUnpairedOpponent is reported when two player records disagree
	// about a game between them.
	ErrUnpairedOpponent = errors.New("opponent record does not match")
)

// FormatError describes why a report could not be parsed. Line is 1-based;
// it is 0 for problems that only show once the whole report is read.
type FormatError struct {
	Line  int
	Field string
	Err   error
}

func (e *FormatError) Error() string {
	switch {
	case e.Line > 0 && e.Field != "":
		return fmt.Sprintf("trf: line %d: %s: %v", e.Line, e.Field, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("trf: line %d: %v", e.Line, e.Err)
	case e.Field != "":
		return fmt.Sprintf("trf: %s: %v", e.Field, e.Err)
	default:
		return fmt.Sprintf("trf: %v", e.Err)
	}
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func formatErrorf(line int, field string, format string,
	args ...any) *FormatError {

	return &FormatError{Line: line, Field: field, Err: fmt.Errorf(format, args...)}
}
