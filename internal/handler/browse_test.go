package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/repository"
)

func newGetContext(t *testing.T, path, paramID string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	return c, rec
}

func TestBrowseHandler_ListEvents(t *testing.T) {
	h := NewBrowseHandler(&stubBrowser{events: []model.Event{
		{ID: "ev-1", Name: "Summer Fest", Venue: "Riverside", StartsAt: time.Date(2025, 7, 1, 20, 0, 0, 0, time.UTC)},
		{ID: "ev-2", Name: "Winter Fest"},
	}})

	c, rec := newGetContext(t, "/v1/events", "")
	require.NoError(t, h.ListEvents(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Events []map[string]any `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Events, 2)
	assert.Equal(t, "Summer Fest", body.Events[0]["name"])
	assert.Equal(t, "2025-07-01T20:00:00Z", body.Events[0]["starts_at"])
}

func TestBrowseHandler_GetEventNotFound(t *testing.T) {
	h := NewBrowseHandler(&stubBrowser{eventErr: repository.ErrEventNotFound})

	c, rec := newGetContext(t, "/v1/events/missing", "missing")
	require.NoError(t, h.GetEvent(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBrowseHandler_Availability(t *testing.T) {
	h := NewBrowseHandler(&stubBrowser{
		event: model.Event{ID: "ev-1"},
		availability: []model.WristbandAvailability{
			{WristbandID: "wb-1", Code: "VIP", AccessType: "backstage", Price: decimal.NewFromInt(250), Total: 100, Available: 37},
		},
	})

	c, rec := newGetContext(t, "/v1/events/ev-1/availability", "ev-1")
	require.NoError(t, h.Availability(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		EventID    string           `json:"event_id"`
		Wristbands []map[string]any `json:"wristbands"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ev-1", body.EventID)
	require.Len(t, body.Wristbands, 1)
	assert.Equal(t, float64(37), body.Wristbands[0]["available"])
}

func TestBrowseHandler_AvailabilityUnknownEvent(t *testing.T) {
	h := NewBrowseHandler(&stubBrowser{eventErr: repository.ErrEventNotFound})

	c, rec := newGetContext(t, "/v1/events/missing/availability", "missing")
	require.NoError(t, h.Availability(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
