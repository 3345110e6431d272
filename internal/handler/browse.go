package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/festpass/ticketing/internal/model"
	"github.com/festpass/ticketing/internal/repository"
)

// CatalogBrowser is the read-only slice of the catalog the public
// endpoints need.
type CatalogBrowser interface {
	ListEvents(ctx context.Context) ([]model.Event, error)
	GetEvent(ctx context.Context, id string) (model.Event, error)
	Availability(ctx context.Context, eventID string) ([]model.WristbandAvailability, error)
}

// BrowseHandler serves the unauthenticated catalog endpoints.
type BrowseHandler struct {
	Catalog CatalogBrowser
}

// NewBrowseHandler wires the handler to the catalog repository.
func NewBrowseHandler(catalog CatalogBrowser) *BrowseHandler {
	return &BrowseHandler{Catalog: catalog}
}

type eventResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	StartsAt    string `json:"starts_at"`
	Status      string `json:"status"`
}

func toEventResponse(ev model.Event) eventResponse {
	return eventResponse{
		ID:          ev.ID,
		Name:        ev.Name,
		Description: ev.Description,
		Venue:       ev.Venue,
		StartsAt:    ev.StartsAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		Status:      ev.Status,
	}
}

// ListEvents handles GET /v1/events.
func (h *BrowseHandler) ListEvents(c echo.Context) error {
	events, err := h.Catalog.ListEvents(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	out := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, toEventResponse(ev))
	}
	return c.JSON(http.StatusOK, echo.Map{"events": out})
}

// GetEvent handles GET /v1/events/:id.
func (h *BrowseHandler) GetEvent(c echo.Context) error {
	ev, err := h.Catalog.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, toEventResponse(ev))
}

// Availability handles GET /v1/events/:id/availability. It reports, per
// ticket type, how many units are still claimable.
func (h *BrowseHandler) Availability(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.Catalog.GetEvent(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	rows, err := h.Catalog.Availability(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"event_id": id, "wristbands": rows})
}
