/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tournament

import "errors"

var (
	// ErrInvalidState is returned when an operation is attempted outside
	// its legal point in the tournament's life cycle.
	ErrInvalidState  = errors.New("invalid tournament state")
	ErrNoSuchPairing = errors.New("no such pairing")
	ErrNoSuchPlayer  = errors.New("no such player")
	ErrNoSuchRound   = errors.New("no such round")
	ErrDuplicateRank = errors.New("duplicate starting rank")
	ErrInvalidRound  = errors.New("invalid round")
	ErrInvalidResult = errors.New("invalid result")
)
