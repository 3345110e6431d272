package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/payment"
	"github.com/festpass/ticketing/internal/repository"
)

const (
	testEventID   = "ev-1"
	testCompanyID = "co-1"
	testManagerID = "mgr-1"
	testBandID    = "wb-1"
)

func checkoutFixture() (*fakeCatalog, *fakeLedger, *stubGateway, *fakePublisher, *CheckoutService) {
	catalog := newFakeCatalog()
	catalog.events[testEventID] = model.Event{
		ID:            testEventID,
		CompanyID:     testCompanyID,
		ManagerUserID: testManagerID,
		Name:          "Summer Fest",
	}
	catalog.settings[testCompanyID] = model.PaymentSettings{
		CompanyID: testCompanyID,
		APIKey:    "key",
		APIToken:  "token",
	}
	ledger := newFakeLedger()
	ledger.available[testBandID] = 10
	gateway := &stubGateway{outcome: payment.Outcome{Approved: true, GatewayRef: "MP-1"}}
	pub := &fakePublisher{}
	svc := NewCheckoutService(catalog, ledger, gateway, pub)
	return catalog, ledger, gateway, pub, svc
}

func purchaseReq(qty int) PurchaseRequest {
	return PurchaseRequest{
		EventID: testEventID,
		Items: []PurchaseItem{
			{WristbandID: testBandID, Quantity: qty, Price: decimal.NewFromInt(50)},
		},
	}
}

func TestPurchase_Paid(t *testing.T) {
	_, ledger, gateway, pub, svc := checkoutFixture()

	res, err := svc.Purchase(context.Background(), "buyer-1", purchaseReq(2))

	require.NoError(t, err)
	assert.Equal(t, model.ReceivableStatusPaid, res.Status)
	assert.Equal(t, 2, res.UnitsAssigned)
	assert.True(t, decimal.NewFromInt(100).Equal(res.TotalValue))
	assert.Equal(t, model.ReceivableStatusPaid, ledger.receivableStatus(res.TransactionID))
	assert.Equal(t, 8, ledger.claimable(testBandID))

	require.Len(t, gateway.requests, 1)
	assert.Equal(t, res.TransactionID, gateway.requests[0].Reference)
	assert.Equal(t, "key", gateway.requests[0].APIKey)

	require.Len(t, pub.settled, 1)
	assert.Equal(t, res.TransactionID, pub.settled[0].TransactionID)
}

func TestPurchase_InvalidRequest(t *testing.T) {
	_, _, _, _, svc := checkoutFixture()

	cases := []PurchaseRequest{
		{},
		{EventID: testEventID},
		{EventID: testEventID, Items: []PurchaseItem{{WristbandID: testBandID, Quantity: 0}}},
		{EventID: testEventID, Items: []PurchaseItem{{WristbandID: "", Quantity: 1}}},
	}
	for _, req := range cases {
		_, err := svc.Purchase(context.Background(), "buyer-1", req)
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}

	_, err := svc.Purchase(context.Background(), "", purchaseReq(1))
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestPurchase_UnknownEvent(t *testing.T) {
	_, _, _, _, svc := checkoutFixture()

	req := purchaseReq(1)
	req.EventID = "missing"
	_, err := svc.Purchase(context.Background(), "buyer-1", req)
	assert.ErrorIs(t, err, repository.ErrEventNotFound)
}

func TestPurchase_PaymentNotConfigured(t *testing.T) {
	catalog, ledger, _, _, svc := checkoutFixture()
	catalog.settings[testCompanyID] = model.PaymentSettings{CompanyID: testCompanyID, APIKey: "key"}

	_, err := svc.Purchase(context.Background(), "buyer-1", purchaseReq(1))

	assert.ErrorIs(t, err, ErrPaymentNotConfigured)
	// Rejected before any claim was attempted.
	assert.Equal(t, 10, ledger.claimable(testBandID))
}

func TestPurchase_InsufficientInventory(t *testing.T) {
	_, ledger, gateway, _, svc := checkoutFixture()
	ledger.available[testBandID] = 1

	_, err := svc.Purchase(context.Background(), "buyer-1", purchaseReq(3))

	var shortage *repository.InsufficientInventoryError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, testBandID, shortage.WristbandID)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 1, shortage.Available)

	// All-or-nothing: the single available unit was not claimed and the
	// gateway never charged.
	assert.Equal(t, 1, ledger.claimable(testBandID))
	assert.Empty(t, gateway.requests)
}

// A shortage on any ticket type in the order leaves the well-stocked
// types untouched too. No partial claims across the order.
func TestPurchase_ShortageRollsBackWholeOrder(t *testing.T) {
	_, ledger, gateway, _, svc := checkoutFixture()
	const scarceBandID = "wb-2"
	ledger.available[scarceBandID] = 1

	req := PurchaseRequest{
		EventID: testEventID,
		Items: []PurchaseItem{
			{WristbandID: testBandID, Quantity: 2, Price: decimal.NewFromInt(50)},
			{WristbandID: scarceBandID, Quantity: 3, Price: decimal.NewFromInt(80)},
		},
	}
	_, err := svc.Purchase(context.Background(), "buyer-1", req)

	var shortage *repository.InsufficientInventoryError
	require.ErrorAs(t, err, &shortage)
	assert.Equal(t, scarceBandID, shortage.WristbandID)
	assert.Equal(t, 3, shortage.Requested)
	assert.Equal(t, 1, shortage.Available)

	assert.Equal(t, 10, ledger.claimable(testBandID))
	assert.Equal(t, 1, ledger.claimable(scarceBandID))
	assert.Empty(t, gateway.requests)
}

func TestPurchase_Declined(t *testing.T) {
	_, ledger, gateway, pub, svc := checkoutFixture()
	gateway.outcome = payment.Outcome{Approved: false, Reason: "charge declined by issuer"}

	_, err := svc.Purchase(context.Background(), "buyer-1", purchaseReq(2))

	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Empty(t, pub.settled)

	// The receivable reached its terminal failed state exactly once.
	require.Len(t, ledger.claims, 1)
	for id := range ledger.claims {
		assert.Equal(t, model.ReceivableStatusFailed, ledger.receivableStatus(id))
	}
}

func TestPurchase_GatewayUnreachable(t *testing.T) {
	_, ledger, gateway, _, svc := checkoutFixture()
	gateway.err = errors.New("dial tcp: connection refused")

	_, err := svc.Purchase(context.Background(), "buyer-1", purchaseReq(1))

	var pending *PendingOutcomeError
	require.ErrorAs(t, err, &pending)
	// Without a definitive outcome the receivable must stay pending for
	// the sweeper, never failed.
	assert.Equal(t, model.ReceivableStatusPending, ledger.receivableStatus(pending.ReceivableID))
}

func TestPurchase_AssignmentFailure(t *testing.T) {
	_, ledger, _, pub, svc := checkoutFixture()
	ledger.settlePaidErr = errors.New("connection reset during update")

	_, err := svc.Purchase(context.Background(), "buyer-1", purchaseReq(1))

	var fatal *SettlementFailedError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, "MP-1", fatal.GatewayRef)
	assert.Contains(t, fatal.Error(), "manual reconciliation")
	assert.Empty(t, pub.settled)
}

func TestPurchase_DoubleFinalizeRejected(t *testing.T) {
	ledger := newFakeLedger()
	ledger.available[testBandID] = 5

	claim, err := ledger.ClaimAndRecord(context.Background(), model.Receivable{ID: "rcv-1"}, []repository.ClaimItem{
		{WristbandID: testBandID, Quantity: 1, UnitPrice: decimal.NewFromInt(50)},
	})
	require.NoError(t, err)

	require.NoError(t, ledger.SettlePaid(context.Background(), claim, "buyer-1", "MP-1", decimal.NewFromInt(50), testTime(t)))
	assert.ErrorIs(t, ledger.SettlePaid(context.Background(), claim, "buyer-1", "MP-2", decimal.NewFromInt(50), testTime(t)), repository.ErrAlreadyFinalized)
	assert.ErrorIs(t, ledger.SettleFailed(context.Background(), "rcv-1"), repository.ErrAlreadyFinalized)
}

// TestPurchase_NoDoubleSell hammers one scarce ticket type from many
// goroutines and checks that exactly the available number of units is
// ever sold.
func TestPurchase_NoDoubleSell(t *testing.T) {
	_, ledger, _, _, svc := checkoutFixture()
	ledger.available[testBandID] = 7

	const buyers = 30
	var wg sync.WaitGroup
	paid := make(chan int, buyers)
	conflicts := make(chan struct{}, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			res, err := svc.Purchase(context.Background(), "buyer", purchaseReq(1))
			if err == nil {
				paid <- res.UnitsAssigned
				return
			}
			var shortage *repository.InsufficientInventoryError
			if errors.As(err, &shortage) {
				conflicts <- struct{}{}
			}
		}(i)
	}
	wg.Wait()
	close(paid)
	close(conflicts)

	sold := 0
	for n := range paid {
		sold += n
	}
	assert.Equal(t, 7, sold)
	assert.Equal(t, buyers-7, len(conflicts))
	assert.Equal(t, 0, ledger.claimable(testBandID))
}
