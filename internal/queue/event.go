// Package queue defines message payloads exchanged over the message broker
// and the background consumer for the sales feed.
package queue

// PurchaseSettledEvent is published after a purchase settles as paid. It
// carries enough for downstream consumers (notifications, sales feed,
// analytics) without querying the primary database.
type PurchaseSettledEvent struct {
	TransactionID string `json:"transaction_id"`
	BuyerUserID   string `json:"buyer_user_id"`
	EventID       string `json:"event_id"`
	CompanyID     string `json:"company_id"`
	TotalValue    string `json:"total_value"`
	UnitsAssigned int    `json:"units_assigned"`
	GatewayRef    string `json:"gateway_ref"`
	SettledAt     string `json:"settled_at"`
}

// WristbandsProvisionedEvent is published when a batch provisioning run
// completes.
type WristbandsProvisionedEvent struct {
	WristbandID  string `json:"wristband_id"`
	EventID      string `json:"event_id"`
	CompanyID    string `json:"company_id"`
	Code         string `json:"code"`
	UnitsCreated int    `json:"units_created"`
	CreatedAt    string `json:"created_at"`
}

// WristbandStatusUpdatedEvent is published after a mass status update.
type WristbandStatusUpdatedEvent struct {
	EventID    string `json:"event_id"`
	CompanyID  string `json:"company_id"`
	NewStatus  string `json:"new_status"`
	Wristbands int    `json:"wristbands"`
	UpdatedAt  string `json:"updated_at"`
}

// Queue names, also used as routing keys on the default exchange.
const (
	PurchaseSettledQueue       = "purchase.settled"
	WristbandsProvisionedQueue = "wristbands.provisioned"
	StatusUpdatedQueue         = "wristbands.status_updated"
)
