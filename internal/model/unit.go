package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit lifecycle statuses.  A unit is sellable only while "active".  The
// allocator moves claimed units to "reserved"; a paid settlement moves them
// to "used" exactly once.  Reserved units of a transaction that never
// settles are returned to "active" by the claim sweeper.
const (
	UnitStatusActive    = "active"
	UnitStatusReserved  = "reserved"
	UnitStatusUsed      = "used"
	UnitStatusLost      = "lost"
	UnitStatusCancelled = "cancelled"
)

// Unit event_data variants, tagged by event type.
const (
	UnitEventCreation = "creation"
	UnitEventPurchase = "purchase"
)

// WristbandUnit represents exactly one sellable wristband instance, as
// stored in `wristband_units`.  Invariant: BuyerUserID is nil until the
// unit is sold; status "used" and a non-nil buyer are set together during
// a successful settlement and never unset.
//
// Fields:
//
//	ID               – primary key identifier (UUID).
//	WristbandID      – owning ticket type.
//	Status           – unit lifecycle status.
//	BuyerUserID      – assigned buyer, nil while unsold.
//	SequentialNumber – 1-based provisioning order within the type.
//	EventType        – tag of the EventData variant stored with the unit.
//	EventData        – structured metadata for the last lifecycle event.
//	CreatedAt        – timestamp of creation.
//	UpdatedAt        – timestamp of last update.
type WristbandUnit struct {
	ID               string        // wristband_units.id
	WristbandID      string        // wristband_units.wristband_id
	Status           string        // wristband_units.status
	BuyerUserID      *string       // wristband_units.buyer_user_id (nullable)
	SequentialNumber int           // wristband_units.sequential_number
	EventType        string        // wristband_units.event_type
	EventData        UnitEventData // wristband_units.event_data (JSON column)
	CreatedAt        time.Time     // wristband_units.created_at
	UpdatedAt        time.Time     // wristband_units.updated_at
}

// UnitEventData is the structured payload stored in the event_data JSON
// column.  It is a fixed variant record tagged by EventType rather than an
// open map: creation rows carry the provisioning snapshot, purchase rows
// carry the purchase outcome.  Fields belonging to the other variant stay
// zero and are omitted from the encoded JSON.  Money fields are pointers
// because omitempty never elides a struct-typed zero decimal.
type UnitEventData struct {
	EventType string `json:"event_type"`

	// creation variant
	Code            string           `json:"code,omitempty"`
	AccessType      string           `json:"access_type,omitempty"`
	Price           *decimal.Decimal `json:"price,omitempty"`
	ManagerID       string           `json:"manager_id,omitempty"`
	EventID         string           `json:"event_id,omitempty"`
	CompanyID       string           `json:"company_id,omitempty"`
	InitialStatus   string           `json:"initial_status,omitempty"`
	SequentialEntry int              `json:"sequential_entry,omitempty"`

	// purchase variant
	PurchaseDate  string           `json:"purchase_date,omitempty"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPaid     *decimal.Decimal `json:"total_paid,omitempty"`
	BuyerID       string           `json:"client_id,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
}

// CreationEventData builds the event_data payload written on every unit by
// the batch provisioner.
func CreationEventData(w Wristband, sequential int) UnitEventData {
	price := w.Price
	return UnitEventData{
		EventType:       UnitEventCreation,
		Code:            w.Code,
		AccessType:      w.AccessType,
		Price:           &price,
		ManagerID:       w.ManagerUserID,
		EventID:         w.EventID,
		CompanyID:       w.CompanyID,
		InitialStatus:   UnitStatusActive,
		SequentialEntry: sequential,
	}
}

// PurchaseEventData builds the event_data payload attached to a unit when
// a settlement completes as paid.
func PurchaseEventData(buyerID, transactionID string, unitPrice, totalPaid decimal.Decimal, at time.Time) UnitEventData {
	return UnitEventData{
		EventType:     UnitEventPurchase,
		PurchaseDate:  at.UTC().Format(time.RFC3339),
		UnitPrice:     &unitPrice,
		TotalPaid:     &totalPaid,
		BuyerID:       buyerID,
		TransactionID: transactionID,
	}
}
