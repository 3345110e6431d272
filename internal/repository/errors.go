// Package repository implements MySQL persistence for the marketplace core.
// This file defines error values shared across the repositories. Sentinel
// values let the service and handler layers distinguish failure scenarios
// with errors.Is/As instead of string matching: for example ErrForbidden
// becomes an HTTP 403 while ErrDuplicateCode becomes an HTTP 409.
package repository

import (
	"errors"
	"fmt"
)

// ErrEventNotFound is returned when the referenced event does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrUnitsAssigned is returned when a withdrawal-style mass update finds
// units of the event already assigned to buyers. The check runs inside
// the update transaction, so a settlement committing concurrently cannot
// slip sold units past it.
var ErrUnitsAssigned = errors.New("event has units already assigned to buyers")

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by a company they are not associated with. Handlers
// should translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicateCode is returned when provisioning a wristband whose base
// code is already in use within the company. Handlers should translate
// this into an HTTP 409 response.
var ErrDuplicateCode = errors.New("wristband code already in use")

// ErrAlreadyFinalized is returned when finalizing a receivable that has
// already reached a terminal status. Finalization is guarded by a
// conditional update, so a second attempt never double-applies unit
// side effects.
var ErrAlreadyFinalized = errors.New("receivable already finalized")

// InsufficientInventoryError reports that an allocation could not claim
// the requested quantity for one ticket type. The whole allocation is
// rolled back when this is returned; no partial claim survives.
type InsufficientInventoryError struct {
	WristbandID string
	Requested   int
	Available   int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("not enough tickets available for type %s: requested %d, available %d",
		e.WristbandID, e.Requested, e.Available)
}
