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
	"github.com/festpass/ticketing/internal/payment"
	"github.com/festpass/ticketing/internal/queue"
	"github.com/festpass/ticketing/internal/repository"
)

// PurchaseItem is one requested line of a checkout: quantity units of a
// ticket type at the quoted price.
type PurchaseItem struct {
	WristbandID string
	Quantity    int
	Price       decimal.Decimal
}

// PurchaseRequest is a buyer's checkout request for one event.
type PurchaseRequest struct {
	EventID string
	Items   []PurchaseItem
}

// PurchaseResult reports a successfully settled purchase.
type PurchaseResult struct {
	TransactionID string
	Status        string
	UnitsAssigned int
	TotalValue    decimal.Decimal
}

// Checkout is the capability the purchase handler consumes.
type Checkout interface {
	Purchase(ctx context.Context, buyerID string, req PurchaseRequest) (PurchaseResult, error)
}

// CheckoutService implements the reservation and settlement flow: claim
// units, record the pending receivable, charge the gateway, reconcile the
// outcome back into ledger and inventory.
type CheckoutService struct {
	catalog   CatalogStore
	ledger    LedgerStore
	gateway   payment.Gateway
	publisher Publisher
	now       func() time.Time
}

// NewCheckoutService wires a CheckoutService. publisher may be nil when no
// broker is configured.
func NewCheckoutService(catalog CatalogStore, ledger LedgerStore, gateway payment.Gateway, publisher Publisher) *CheckoutService {
	if catalog == nil || ledger == nil || gateway == nil {
		panic("nil dependency passed to NewCheckoutService")
	}
	return &CheckoutService{
		catalog:   catalog,
		ledger:    ledger,
		gateway:   gateway,
		publisher: publisher,
		now:       time.Now,
	}
}

// Purchase executes one checkout attempt end to end.
//
// The claim and the pending ledger row are written in one atomic store
// call before the gateway is invoked, so the claimed unit set is durable
// whatever happens to the payment. Outcomes map to errors as follows:
// unknown event -> repository.ErrEventNotFound; missing gateway keys ->
// ErrPaymentNotConfigured; shortage -> repository.InsufficientInventoryError
// (nothing claimed); definitive decline -> ErrPaymentDeclined (ledger
// failed, units reserved until swept); unknown gateway outcome ->
// PendingOutcomeError (ledger stays pending); paid settlement write
// failure -> SettlementFailedError (fatal, manual reconciliation).
func (s *CheckoutService) Purchase(ctx context.Context, buyerID string, req PurchaseRequest) (PurchaseResult, error) {
	if buyerID == "" || req.EventID == "" || len(req.Items) == 0 {
		return PurchaseResult{}, ErrInvalidRequest
	}
	for _, it := range req.Items {
		if it.WristbandID == "" || it.Quantity <= 0 || it.Price.IsNegative() {
			return PurchaseResult{}, ErrInvalidRequest
		}
	}

	ev, err := s.catalog.GetEvent(ctx, req.EventID)
	if err != nil {
		return PurchaseResult{}, err
	}
	settings, err := s.catalog.GetPaymentSettings(ctx, ev.CompanyID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !settings.Configured() {
		return PurchaseResult{}, ErrPaymentNotConfigured
	}

	total := decimal.Zero
	claimItems := make([]repository.ClaimItem, 0, len(req.Items))
	for _, it := range req.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		claimItems = append(claimItems, repository.ClaimItem{
			WristbandID: it.WristbandID,
			Quantity:    it.Quantity,
			UnitPrice:   it.Price,
		})
	}

	rec := model.Receivable{
		ID:            uuid.NewString(),
		BuyerUserID:   buyerID,
		ManagerUserID: ev.ManagerUserID,
		EventID:       ev.ID,
		CompanyID:     ev.CompanyID,
		TotalValue:    total,
		Status:        model.ReceivableStatusPending,
	}
	claim, err := s.ledger.ClaimAndRecord(ctx, rec, claimItems)
	if err != nil {
		monitoring.PurchasesTotal.WithLabelValues("conflict").Inc()
		return PurchaseResult{}, err
	}

	outcome, err := s.gateway.Charge(ctx, payment.ChargeRequest{
		Amount:      total,
		Currency:    "BRL",
		Reference:   rec.ID,
		BuyerUserID: buyerID,
		APIKey:      settings.APIKey,
		APIToken:    settings.APIToken,
		Description: fmt.Sprintf("Tickets for %s", ev.Name),
	})
	if err != nil {
		// No definitive outcome: the receivable stays pending and the
		// sweep resolves it. Marking it failed here could contradict a
		// charge that actually went through.
		monitoring.PurchasesTotal.WithLabelValues("pending").Inc()
		return PurchaseResult{}, &PendingOutcomeError{ReceivableID: rec.ID, Err: err}
	}

	if !outcome.Approved {
		if ferr := s.ledger.SettleFailed(ctx, rec.ID); ferr != nil {
			log.Printf("checkout: finalize failed receivable %s: %v", rec.ID, ferr)
		}
		monitoring.PurchasesTotal.WithLabelValues("declined").Inc()
		return PurchaseResult{}, ErrPaymentDeclined
	}

	settledAt := s.now().UTC()
	if err := s.ledger.SettlePaid(ctx, claim, buyerID, outcome.GatewayRef, total, settledAt); err != nil {
		monitoring.PurchasesTotal.WithLabelValues("assignment_failed").Inc()
		return PurchaseResult{}, &SettlementFailedError{
			ReceivableID: rec.ID,
			GatewayRef:   outcome.GatewayRef,
			Err:          err,
		}
	}

	if s.publisher != nil {
		_ = s.publisher.PublishPurchaseSettled(ctx, queue.PurchaseSettledEvent{
			TransactionID: rec.ID,
			BuyerUserID:   buyerID,
			EventID:       ev.ID,
			CompanyID:     ev.CompanyID,
			TotalValue:    total.String(),
			UnitsAssigned: len(claim.Units),
			GatewayRef:    outcome.GatewayRef,
			SettledAt:     settledAt.Format(time.RFC3339),
		})
	}
	monitoring.PurchasesTotal.WithLabelValues("paid").Inc()

	return PurchaseResult{
		TransactionID: rec.ID,
		Status:        model.ReceivableStatusPaid,
		UnitsAssigned: len(claim.Units),
		TotalValue:    total,
	}, nil
}
