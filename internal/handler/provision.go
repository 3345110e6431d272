package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/festpass/ticketing/internal/repository"
	"github.com/festpass/ticketing/internal/service"
)

// ProvisionHandler exposes batch wristband creation over HTTP.
type ProvisionHandler struct {
	Provisioner service.Provisioner
}

// NewProvisionHandler wires the handler to the provisioning service.
func NewProvisionHandler(p service.Provisioner) *ProvisionHandler {
	return &ProvisionHandler{Provisioner: p}
}

type provisionRequest struct {
	EventID    string          `json:"event_id"`
	CompanyID  string          `json:"company_id"`
	BaseCode   string          `json:"base_code"`
	AccessType string          `json:"access_type"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// BatchProvision handles POST /v1/wristbands/batch. It creates one
// wristband type and the requested number of sellable units in a single
// all-or-nothing operation.
func (h *ProvisionHandler) BatchProvision(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or invalid token"})
	}

	var req provisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID == "" || req.CompanyID == "" || req.BaseCode == "" || req.Quantity <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id, company_id, base_code and a positive quantity are required"})
	}

	res, err := h.Provisioner.Provision(c.Request().Context(), userID, service.ProvisionInput{
		EventID:    req.EventID,
		CompanyID:  req.CompanyID,
		BaseCode:   req.BaseCode,
		AccessType: req.AccessType,
		Price:      req.Price,
		Quantity:   req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id, company_id, base_code and a positive quantity are required"})
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "user is not associated with this company"})
		case errors.Is(err, repository.ErrDuplicateCode):
			return c.JSON(http.StatusConflict, echo.Map{"error": "the base code is already in use, try a different code"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("successfully created wristband %q and %d units", res.Code, res.UnitsCreated),
		"count":   res.UnitsCreated,
	})
}
