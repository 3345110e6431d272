package model

import "time"

// Company represents an organizer account ("PRO" back office tenant) as
// stored in the `companies` table.  Events, wristbands and receivables are
// all scoped to a company.
//
// Fields:
//
//	ID        – primary key identifier (UUID).
//	Name      – display name of the company.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type Company struct {
	ID        string    // companies.id
	Name      string    // companies.name
	CreatedAt time.Time // companies.created_at
	UpdatedAt time.Time // companies.updated_at
}

// PaymentSettings holds the payment-gateway credentials configured by a
// company in the back office.  A purchase against an event whose company
// has no settings row (or empty keys) is rejected before any claim is made.
//
// Fields:
//
//	CompanyID – owning company (UUID).
//	APIKey    – public gateway key.
//	APIToken  – secret gateway token.
type PaymentSettings struct {
	CompanyID string // payment_settings.company_id
	APIKey    string // payment_settings.api_key
	APIToken  string // payment_settings.api_token
}

// Configured reports whether both gateway credentials are present.
func (p PaymentSettings) Configured() bool {
	return p.APIKey != "" && p.APIToken != ""
}

// UserCompany is a row in the `user_companies` association table.  A user
// holding any role for a company may administer that company's events.
//
// Fields:
//
//	UserID    – associated user (UUID, issued by the external auth provider).
//	CompanyID – associated company (UUID).
//	Role      – role label within the company (e.g. "owner", "manager").
type UserCompany struct {
	UserID    string // user_companies.user_id
	CompanyID string // user_companies.company_id
	Role      string // user_companies.role
}
