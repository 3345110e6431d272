package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receivable statuses.  A receivable is created "pending" together with its
// unit claim and becomes terminal exactly once; "paid" and "failed" are
// both terminal.
const (
	ReceivableStatusPending = "pending"
	ReceivableStatusPaid    = "paid"
	ReceivableStatusFailed  = "failed"
)

// Receivable records one checkout attempt in the transaction ledger
// (`receivables` table).  The units claimed for the attempt are linked via
// `receivable_units`, so the claim set is durable before any payment call.
//
// Fields:
//
//	ID                – primary key identifier (UUID).
//	BuyerUserID       – authenticated buyer.
//	ManagerUserID     – manager receiving the revenue.
//	EventID           – event the tickets belong to.
//	CompanyID         – company owning the event.
//	TotalValue        – total monetary value of the attempt.
//	Status            – pending, paid or failed.
//	PaymentGatewayRef – external gateway reference, set only on paid.
//	CreatedAt         – creation timestamp.
//	UpdatedAt         – last update timestamp.
type Receivable struct {
	ID                string          // receivables.id
	BuyerUserID       string          // receivables.buyer_user_id
	ManagerUserID     string          // receivables.manager_user_id
	EventID           string          // receivables.event_id
	CompanyID         string          // receivables.company_id
	TotalValue        decimal.Decimal // receivables.total_value
	Status            string          // receivables.status
	PaymentGatewayRef *string         // receivables.payment_gateway_ref (nullable)
	CreatedAt         time.Time       // receivables.created_at
	UpdatedAt         time.Time       // receivables.updated_at
}

// ReceivableUnit links a receivable to one claimed unit and remembers the
// per-unit price from the original purchase request.
type ReceivableUnit struct {
	ReceivableID string          // receivable_units.receivable_id
	UnitID       string          // receivable_units.unit_id
	UnitPrice    decimal.Decimal // receivable_units.unit_price
}

// Terminal reports whether the receivable has reached a final status.
func (r Receivable) Terminal() bool {
	return r.Status == ReceivableStatusPaid || r.Status == ReceivableStatusFailed
}
