// Package service orchestrates the marketplace core: checkout (claim,
// ledger, payment settlement), batch provisioning, mass status updates and
// the claim expiry sweep. Services hold no state of their own; every
// coordination point lives behind a store interface backed by the durable
// database, so concurrent requests only ever synchronize through it.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/queue"
	"github.com/festpass/ticketing/internal/repository"
)

// CatalogStore is the read side the flows consult before writing:
// event lookup, company gateway credentials, user/company associations.
type CatalogStore interface {
	GetEvent(ctx context.Context, eventID string) (model.Event, error)
	GetPaymentSettings(ctx context.Context, companyID string) (model.PaymentSettings, error)
	UserHasCompanyRole(ctx context.Context, userID, companyID string) (bool, error)
}

// LedgerStore owns receivables and the claim state of inventory units.
// ClaimAndRecord is the atomic claim-if-available primitive; both settle
// calls finalize a pending receivable exactly once.
type LedgerStore interface {
	ClaimAndRecord(ctx context.Context, rec model.Receivable, items []repository.ClaimItem) (repository.Claim, error)
	SettlePaid(ctx context.Context, claim repository.Claim, buyerID, gatewayRef string, totalPaid decimal.Decimal, at time.Time) error
	SettleFailed(ctx context.Context, receivableID string) error
	ReleaseExpiredClaims(ctx context.Context, olderThan time.Time) (units int, receivables int, err error)
	ClaimTTL() time.Duration
}

// WristbandStore persists ticket types and their units for the
// provisioning and mass-update flows.
type WristbandStore interface {
	Create(ctx context.Context, w model.Wristband) error
	CreateUnits(ctx context.Context, units []model.WristbandUnit) error
	Delete(ctx context.Context, wristbandID string) error
	UpdateStatusByEvent(ctx context.Context, eventID, companyID, status string, refuseAssigned bool) (int, error)
}

// Publisher emits domain events to the broker. Publishing is
// fire-and-forget from the flows' perspective; a broker failure is logged
// by the publisher and never fails the request.
type Publisher interface {
	PublishPurchaseSettled(ctx context.Context, event queue.PurchaseSettledEvent) error
	PublishWristbandsProvisioned(ctx context.Context, event queue.WristbandsProvisionedEvent) error
	PublishStatusUpdated(ctx context.Context, event queue.WristbandStatusUpdatedEvent) error
}
