package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wristband lifecycle statuses.  "lost" and "cancelled" are withdrawal
// states: a mass update into either is refused while any unit of the event
// is already assigned to a buyer.
const (
	WristbandStatusActive    = "active"
	WristbandStatusLost      = "lost"
	WristbandStatusCancelled = "cancelled"
)

// WithdrawalStatus reports whether a target status takes wristbands out of
// circulation, which triggers the sold-unit safety gate on mass updates.
func WithdrawalStatus(status string) bool {
	return status == WristbandStatusLost || status == WristbandStatusCancelled
}

// ValidWristbandStatus reports whether s is an accepted wristband lifecycle
// status value.
func ValidWristbandStatus(s string) bool {
	switch s {
	case WristbandStatusActive, WristbandStatusLost, WristbandStatusCancelled:
		return true
	}
	return false
}

// Wristband represents one purchasable ticket type for an event (e.g.
// "VIP"), as stored in the `wristbands` table.  Individual sellable
// instances live in `wristband_units`.  The code is unique per company.
//
// Fields:
//
//	ID            – primary key identifier (UUID).
//	EventID       – owning event.
//	CompanyID     – owning company.
//	ManagerUserID – back-office user who provisioned the type.
//	Code          – human-readable base code (unique within the company).
//	AccessType    – access label printed on the wristband (e.g. "vip").
//	Status        – lifecycle status (active, lost, cancelled).
//	Price         – unit price.
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type Wristband struct {
	ID            string          // wristbands.id
	EventID       string          // wristbands.event_id
	CompanyID     string          // wristbands.company_id
	ManagerUserID string          // wristbands.manager_user_id
	Code          string          // wristbands.code
	AccessType    string          // wristbands.access_type
	Status        string          // wristbands.status
	Price         decimal.Decimal // wristbands.price
	CreatedAt     time.Time       // wristbands.created_at
	UpdatedAt     time.Time       // wristbands.updated_at
}

// WristbandAvailability is a read model for the public availability
// endpoint: per ticket type, how many units exist and how many are still
// purchasable.
type WristbandAvailability struct {
	WristbandID string          `json:"wristband_id"`
	Code        string          `json:"code"`
	AccessType  string          `json:"access_type"`
	Price       decimal.Decimal `json:"price"`
	Total       int             `json:"total"`
	Available   int             `json:"available"`
}
