package service

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when a request fails field validation
// before any write. Handlers translate it into HTTP 400.
var ErrInvalidRequest = errors.New("missing or invalid request fields")

// ErrInvalidStatus is returned when a mass update names an unknown target
// status.
var ErrInvalidStatus = errors.New("invalid wristband status")

// ErrPaymentNotConfigured is returned when the event's company has no
// gateway credentials; the purchase is rejected before any claim.
var ErrPaymentNotConfigured = errors.New("payment gateway keys are not configured by the manager")

// ErrPaymentDeclined is returned when the gateway definitively declines a
// charge. The ledger is finalized failed; claimed units stay reserved for
// the expiry sweep. Handlers translate it into HTTP 402.
var ErrPaymentDeclined = errors.New("payment declined by gateway")

// ErrSoldUnitsPresent blocks a mass withdrawal while any unit of the event
// is already assigned to a buyer. The operation is refused entirely;
// partial updates that skip sold units are not a supported policy.
var ErrSoldUnitsPresent = errors.New("at least one wristband of this event has already been sold")

// SettlementFailedError reports the fatal case: the gateway captured the
// funds but the paid settlement could not be written. Inventory no longer
// reflects the payment and an operator must reconcile manually; callers
// must surface this distinctly and never swallow it.
type SettlementFailedError struct {
	ReceivableID string
	GatewayRef   string
	Err          error
}

func (e *SettlementFailedError) Error() string {
	return fmt.Sprintf("payment captured (ref %s) but ticket assignment failed for transaction %s, manual reconciliation required: %v",
		e.GatewayRef, e.ReceivableID, e.Err)
}

func (e *SettlementFailedError) Unwrap() error { return e.Err }

// PendingOutcomeError reports that the gateway call ended without a
// definitive outcome (transport failure, timeout, cancellation). The
// receivable stays pending; the claim sweep resolves it later. The hot
// path never guesses a terminal status here.
type PendingOutcomeError struct {
	ReceivableID string
	Err          error
}

func (e *PendingOutcomeError) Error() string {
	return fmt.Sprintf("payment outcome unknown for transaction %s, left pending for reconciliation: %v",
		e.ReceivableID, e.Err)
}

func (e *PendingOutcomeError) Unwrap() error { return e.Err }
