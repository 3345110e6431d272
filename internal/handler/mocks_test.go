package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/service"
)

// newTestContext builds an echo context carrying an authenticated user,
// the way the auth middleware would.
func newTestContext(t *testing.T, body, userID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("user_id", userID)
	}
	return c, rec
}

type stubCheckout struct {
	res      service.PurchaseResult
	err      error
	gotBuyer string
	gotReq   service.PurchaseRequest
}

func (s *stubCheckout) Purchase(_ context.Context, buyerID string, req service.PurchaseRequest) (service.PurchaseResult, error) {
	s.gotBuyer = buyerID
	s.gotReq = req
	return s.res, s.err
}

type stubProvisioner struct {
	res    service.ProvisionResult
	err    error
	gotIn  service.ProvisionInput
	gotMgr string
}

func (s *stubProvisioner) Provision(_ context.Context, managerID string, in service.ProvisionInput) (service.ProvisionResult, error) {
	s.gotMgr = managerID
	s.gotIn = in
	return s.res, s.err
}

type stubUpdater struct {
	count     int
	err       error
	gotEvent  string
	gotStatus string
}

func (s *stubUpdater) UpdateEventStatus(_ context.Context, _, eventID, newStatus string) (int, error) {
	s.gotEvent = eventID
	s.gotStatus = newStatus
	return s.count, s.err
}

type stubBrowser struct {
	events       []model.Event
	event        model.Event
	eventErr     error
	availability []model.WristbandAvailability
	listErr      error
	availErr     error
}

func (s *stubBrowser) ListEvents(_ context.Context) ([]model.Event, error) {
	return s.events, s.listErr
}

func (s *stubBrowser) GetEvent(_ context.Context, _ string) (model.Event, error) {
	return s.event, s.eventErr
}

func (s *stubBrowser) Availability(_ context.Context, _ string) ([]model.WristbandAvailability, error) {
	return s.availability, s.availErr
}
