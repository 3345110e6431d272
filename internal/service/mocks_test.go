package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/payment"
	"github.com/festpass/ticketing/internal/queue"
	"github.com/festpass/ticketing/internal/repository"
)

func testTime(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

// fakeCatalog implements CatalogStore from in-memory maps.
type fakeCatalog struct {
	events   map[string]model.Event
	settings map[string]model.PaymentSettings
	roles    map[string]bool // userID + "/" + companyID
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		events:   map[string]model.Event{},
		settings: map[string]model.PaymentSettings{},
		roles:    map[string]bool{},
	}
}

func (f *fakeCatalog) GetEvent(_ context.Context, eventID string) (model.Event, error) {
	ev, ok := f.events[eventID]
	if !ok {
		return model.Event{}, repository.ErrEventNotFound
	}
	return ev, nil
}

func (f *fakeCatalog) GetPaymentSettings(_ context.Context, companyID string) (model.PaymentSettings, error) {
	return f.settings[companyID], nil
}

func (f *fakeCatalog) UserHasCompanyRole(_ context.Context, userID, companyID string) (bool, error) {
	return f.roles[userID+"/"+companyID], nil
}

// fakeLedger implements LedgerStore over an in-memory inventory. All state
// transitions run under one mutex, mirroring the atomicity the database
// transaction provides in production.
type fakeLedger struct {
	mu        sync.Mutex
	available map[string]int    // wristbandID -> claimable units
	status    map[string]string // receivableID -> receivable status
	claims    map[string]repository.Claim
	ttl       time.Duration

	claimErr      error
	settlePaidErr error
	releasedUnits int
	releasedRecs  int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		available: map[string]int{},
		status:    map[string]string{},
		claims:    map[string]repository.Claim{},
		ttl:       15 * time.Minute,
	}
}

func (f *fakeLedger) ClaimAndRecord(_ context.Context, rec model.Receivable, items []repository.ClaimItem) (repository.Claim, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return repository.Claim{}, f.claimErr
	}
	for _, it := range items {
		if f.available[it.WristbandID] < it.Quantity {
			return repository.Claim{}, &repository.InsufficientInventoryError{
				WristbandID: it.WristbandID,
				Requested:   it.Quantity,
				Available:   f.available[it.WristbandID],
			}
		}
	}
	claim := repository.Claim{ReceivableID: rec.ID}
	for _, it := range items {
		f.available[it.WristbandID] -= it.Quantity
		for i := 0; i < it.Quantity; i++ {
			claim.Units = append(claim.Units, repository.ClaimedUnit{
				UnitID:      uuid.NewString(),
				WristbandID: it.WristbandID,
				UnitPrice:   it.UnitPrice,
			})
		}
	}
	f.status[rec.ID] = model.ReceivableStatusPending
	f.claims[rec.ID] = claim
	return claim, nil
}

func (f *fakeLedger) SettlePaid(_ context.Context, claim repository.Claim, _, _ string, _ decimal.Decimal, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settlePaidErr != nil {
		return f.settlePaidErr
	}
	if f.status[claim.ReceivableID] != model.ReceivableStatusPending {
		return repository.ErrAlreadyFinalized
	}
	f.status[claim.ReceivableID] = model.ReceivableStatusPaid
	return nil
}

func (f *fakeLedger) SettleFailed(_ context.Context, receivableID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[receivableID] != model.ReceivableStatusPending {
		return repository.ErrAlreadyFinalized
	}
	f.status[receivableID] = model.ReceivableStatusFailed
	return nil
}

func (f *fakeLedger) ReleaseExpiredClaims(_ context.Context, _ time.Time) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.releasedUnits, f.releasedRecs, nil
}

func (f *fakeLedger) ClaimTTL() time.Duration { return f.ttl }

func (f *fakeLedger) claimable(wristbandID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available[wristbandID]
}

func (f *fakeLedger) receivableStatus(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[id]
}

// fakeWristbands implements WristbandStore and can be told to fail the
// Nth CreateUnits call.
type fakeWristbands struct {
	mu           sync.Mutex
	created      []model.Wristband
	units        []model.WristbandUnit
	deleted      []string
	assigned     int
	updated      int
	createErr    error
	unitsErrOn   int // 1-based call number that fails; 0 never fails
	unitsCalls   int
	deleteErr    error
	updateErr    error
	unitsCallErr error
}

func (f *fakeWristbands) Create(_ context.Context, w model.Wristband) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, w)
	return nil
}

func (f *fakeWristbands) CreateUnits(_ context.Context, units []model.WristbandUnit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unitsCalls++
	if f.unitsErrOn > 0 && f.unitsCalls == f.unitsErrOn {
		return f.unitsCallErr
	}
	f.units = append(f.units, units...)
	return nil
}

func (f *fakeWristbands) Delete(_ context.Context, wristbandID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, wristbandID)
	kept := f.units[:0]
	for _, u := range f.units {
		if u.WristbandID != wristbandID {
			kept = append(kept, u)
		}
	}
	f.units = kept
	return nil
}

func (f *fakeWristbands) UpdateStatusByEvent(_ context.Context, _, _, _ string, refuseAssigned bool) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	if refuseAssigned && f.assigned > 0 {
		return 0, repository.ErrUnitsAssigned
	}
	return f.updated, nil
}

// fakePublisher records every event it is handed.
type fakePublisher struct {
	mu          sync.Mutex
	settled     []queue.PurchaseSettledEvent
	provisioned []queue.WristbandsProvisionedEvent
	updated     []queue.WristbandStatusUpdatedEvent
}

func (f *fakePublisher) PublishPurchaseSettled(_ context.Context, ev queue.PurchaseSettledEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settled = append(f.settled, ev)
	return nil
}

func (f *fakePublisher) PublishWristbandsProvisioned(_ context.Context, ev queue.WristbandsProvisionedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.provisioned = append(f.provisioned, ev)
	return nil
}

func (f *fakePublisher) PublishStatusUpdated(_ context.Context, ev queue.WristbandStatusUpdatedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, ev)
	return nil
}

// stubGateway returns a canned outcome or transport error and records the
// charge requests it received.
type stubGateway struct {
	mu       sync.Mutex
	outcome  payment.Outcome
	err      error
	requests []payment.ChargeRequest
}

func (g *stubGateway) Charge(_ context.Context, req payment.ChargeRequest) (payment.Outcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return payment.Outcome{}, g.err
	}
	return g.outcome, nil
}
