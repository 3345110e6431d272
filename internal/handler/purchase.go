package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/festpass/ticketing/internal/repository"
	"github.com/festpass/ticketing/internal/service"
)

// PurchaseHandler exposes the checkout flow over HTTP.
type PurchaseHandler struct {
	Checkout service.Checkout
}

// NewPurchaseHandler wires the handler to the checkout service.
func NewPurchaseHandler(checkout service.Checkout) *PurchaseHandler {
	return &PurchaseHandler{Checkout: checkout}
}

type purchaseItemRequest struct {
	TicketTypeID string          `json:"ticketTypeId"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
}

type purchaseRequest struct {
	EventID       string                `json:"eventId"`
	PurchaseItems []purchaseItemRequest `json:"purchaseItems"`
}

// Purchase handles POST /v1/purchases. The buyer comes from the bearer
// token; the body names the event and the ticket types with quantities.
func (h *PurchaseHandler) Purchase(c echo.Context) error {
	buyerID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or invalid token"})
	}

	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.EventID == "" || len(req.PurchaseItems) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing event details or purchase items"})
	}

	svcReq := service.PurchaseRequest{EventID: req.EventID}
	for _, it := range req.PurchaseItems {
		if it.TicketTypeID == "" || it.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each purchase item needs a ticket type and a positive quantity"})
		}
		svcReq.Items = append(svcReq.Items, service.PurchaseItem{
			WristbandID: it.TicketTypeID,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	res, err := h.Checkout.Purchase(c.Request().Context(), buyerID, svcReq)
	if err != nil {
		var shortage *repository.InsufficientInventoryError
		var pending *service.PendingOutcomeError
		var settlement *service.SettlementFailedError
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing event details or purchase items"})
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found or manager data missing"})
		case errors.Is(err, service.ErrPaymentNotConfigured):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "this organizer has no payment credentials configured"})
		case errors.As(err, &shortage):
			return c.JSON(http.StatusConflict, echo.Map{"error": shortage.Error()})
		case errors.Is(err, service.ErrPaymentDeclined):
			return c.JSON(http.StatusPaymentRequired, echo.Map{
				"error":  "payment transaction failed",
				"status": "failed",
			})
		case errors.As(err, &pending):
			return c.JSON(http.StatusBadGateway, echo.Map{
				"error":         "payment gateway unreachable, transaction left pending",
				"transactionId": pending.ReceivableID,
				"status":        "pending",
			})
		case errors.As(err, &settlement):
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error":         "payment successful, but failed to assign tickets, contact support",
				"transactionId": settlement.ReceivableID,
			})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "purchase completed successfully",
		"transactionId":   res.TransactionID,
		"status":          res.Status,
		"ticketsAssigned": res.UnitsAssigned,
	})
}
