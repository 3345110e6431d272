package model

import "time"

// Event represents a public event listed on the marketplace as stored in
// the `events` table.  The manager user is the account that created the
// event in the back office; the company owns it.
//
// Fields:
//
//	ID            – primary key identifier (UUID).
//	CompanyID     – owning company.
//	ManagerUserID – user who manages the event and receives its revenue.
//	Name          – public title.
//	Description   – free-form description shown on the event page.
//	Venue         – venue / address line.
//	StartsAt      – scheduled start, UTC.
//	Status        – lifecycle status ("active", "cancelled", ...).
//	CreatedAt     – timestamp of creation.
//	UpdatedAt     – timestamp of last update.
type Event struct {
	ID            string    // events.id
	CompanyID     string    // events.company_id
	ManagerUserID string    // events.manager_user_id
	Name          string    // events.name
	Description   string    // events.description
	Venue         string    // events.venue
	StartsAt      time.Time // events.starts_at
	Status        string    // events.status
	CreatedAt     time.Time // events.created_at
	UpdatedAt     time.Time // events.updated_at
}
