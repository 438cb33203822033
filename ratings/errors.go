/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package ratings

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyList   = errors.New("rating list is empty")
	ErrUnsupported = errors.New("unsupported rating list format")
)

// FetchError reports a failure to download a rating list. The catalog in
// use is never replaced when a fetch fails.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ParseError reports a rating list that could not be decoded. Line is
// 1-based, or 0 when the problem is not tied to one line.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("rating list line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("rating list: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
