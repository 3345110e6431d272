package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/monitoring"
	"github.com/festpass/ticketing/internal/queue"
	"github.com/festpass/ticketing/internal/repository"
)

// DefaultProvisionBatchSize bounds how many units are inserted per round
// trip when provisioning. Batching is an efficiency concern only; the
// rollback rule keeps correctness independent of the batch size.
const DefaultProvisionBatchSize = 100

// ProvisionInput describes one batch provisioning request: a new ticket
// type plus Quantity inventory units for it.
type ProvisionInput struct {
	EventID    string
	CompanyID  string
	BaseCode   string
	AccessType string
	Price      decimal.Decimal
	Quantity   int
}

// ProvisionResult reports the created ticket type and unit count.
type ProvisionResult struct {
	WristbandID  string
	Code         string
	UnitsCreated int
}

// Provisioner is the capability the provisioning handler consumes.
type Provisioner interface {
	Provision(ctx context.Context, managerID string, in ProvisionInput) (ProvisionResult, error)
}

// ProvisionService creates a wristband type and its units as one logical
// operation, deleting the type again if unit creation fails part-way.
type ProvisionService struct {
	catalog    CatalogStore
	wristbands WristbandStore
	publisher  Publisher
	batchSize  int
	now        func() time.Time
}

// NewProvisionService wires a ProvisionService. batchSize <= 0 selects
// DefaultProvisionBatchSize; publisher may be nil.
func NewProvisionService(catalog CatalogStore, wristbands WristbandStore, publisher Publisher, batchSize int) *ProvisionService {
	if catalog == nil || wristbands == nil {
		panic("nil dependency passed to NewProvisionService")
	}
	if batchSize <= 0 {
		batchSize = DefaultProvisionBatchSize
	}
	return &ProvisionService{
		catalog:    catalog,
		wristbands: wristbands,
		publisher:  publisher,
		batchSize:  batchSize,
		now:        time.Now,
	}
}

// Provision runs the two-step provisioning protocol. Step 1 inserts the
// wristband row; a duplicate base code fails terminally with
// repository.ErrDuplicateCode before any unit exists. Step 2 inserts
// units in batches with sequential numbers starting at 1; if any batch
// fails, the wristband (and every unit already inserted, via the cascade
// in the store) is deleted before the error is returned, so provisioning
// is all-or-nothing from the caller's view.
func (s *ProvisionService) Provision(ctx context.Context, managerID string, in ProvisionInput) (ProvisionResult, error) {
	if managerID == "" || in.EventID == "" || in.CompanyID == "" || in.BaseCode == "" ||
		in.AccessType == "" || in.Quantity < 1 || in.Price.IsNegative() {
		return ProvisionResult{}, ErrInvalidRequest
	}

	ev, err := s.catalog.GetEvent(ctx, in.EventID)
	if err != nil {
		return ProvisionResult{}, err
	}
	if ev.CompanyID != in.CompanyID {
		return ProvisionResult{}, repository.ErrForbidden
	}
	ok, err := s.catalog.UserHasCompanyRole(ctx, managerID, in.CompanyID)
	if err != nil {
		return ProvisionResult{}, err
	}
	if !ok {
		return ProvisionResult{}, repository.ErrForbidden
	}

	w := model.Wristband{
		ID:            uuid.NewString(),
		EventID:       in.EventID,
		CompanyID:     in.CompanyID,
		ManagerUserID: managerID,
		Code:          in.BaseCode,
		AccessType:    in.AccessType,
		Status:        model.WristbandStatusActive,
		Price:         in.Price,
	}
	if err := s.wristbands.Create(ctx, w); err != nil {
		return ProvisionResult{}, err
	}

	created := 0
	for start := 1; start <= in.Quantity; start += s.batchSize {
		end := start + s.batchSize - 1
		if end > in.Quantity {
			end = in.Quantity
		}
		batch := make([]model.WristbandUnit, 0, end-start+1)
		for seq := start; seq <= end; seq++ {
			batch = append(batch, model.WristbandUnit{
				ID:               uuid.NewString(),
				WristbandID:      w.ID,
				Status:           model.UnitStatusActive,
				SequentialNumber: seq,
				EventType:        model.UnitEventCreation,
				EventData:        model.CreationEventData(w, seq),
			})
		}
		if err := s.wristbands.CreateUnits(ctx, batch); err != nil {
			if delErr := s.wristbands.Delete(ctx, w.ID); delErr != nil {
				log.Printf("provision: rollback of wristband %s failed: %v", w.ID, delErr)
			}
			return ProvisionResult{}, fmt.Errorf("creating units for wristband %q (rolled back): %w", w.Code, err)
		}
		created += len(batch)
	}
	monitoring.UnitsProvisionedTotal.Add(float64(created))

	if s.publisher != nil {
		_ = s.publisher.PublishWristbandsProvisioned(ctx, queue.WristbandsProvisionedEvent{
			WristbandID:  w.ID,
			EventID:      w.EventID,
			CompanyID:    w.CompanyID,
			Code:         w.Code,
			UnitsCreated: created,
			CreatedAt:    s.now().UTC().Format(time.RFC3339),
		})
	}

	return ProvisionResult{WristbandID: w.ID, Code: w.Code, UnitsCreated: created}, nil
}
