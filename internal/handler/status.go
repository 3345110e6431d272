package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/festpass/ticketing/internal/repository"
	"github.com/festpass/ticketing/internal/service"
)

// StatusHandler exposes the mass wristband status update over HTTP.
type StatusHandler struct {
	Updater service.StatusUpdater
}

// NewStatusHandler wires the handler to the status service.
func NewStatusHandler(u service.StatusUpdater) *StatusHandler {
	return &StatusHandler{Updater: u}
}

type statusRequest struct {
	EventID   string `json:"event_id"`
	NewStatus string `json:"new_status"`
}

// MassUpdate handles POST /v1/wristbands/status. It moves every wristband
// of an event, and their units, to the requested status in one sweep.
func (h *StatusHandler) MassUpdate(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or invalid token"})
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID == "" || req.NewStatus == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and new_status are required"})
	}

	count, err := h.Updater.UpdateEventStatus(c.Request().Context(), userID, req.EventID, req.NewStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid target status"})
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id and new_status are required"})
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "user is not associated with this company"})
		case errors.Is(err, service.ErrSoldUnitsPresent):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "cannot withdraw: at least one wristband of this event has already been sold or assigned to a client"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	if count == 0 {
		return c.JSON(http.StatusOK, echo.Map{
			"message": "no wristbands found for this event to update",
			"count":   0,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("successfully updated %d wristbands and their units", count),
		"count":   count,
	})
}
