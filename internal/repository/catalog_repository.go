package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/festpass/ticketing/internal/model"
)

// CatalogRepo provides read access to the catalog side of the store:
// events, company payment settings, user/company associations and public
// availability. The purchase and administration flows consult it before
// touching inventory; it never writes.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo returns a new CatalogRepo bound to the given database.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// GetEvent loads a single event by ID. It returns ErrEventNotFound when no
// row exists.
func (r *CatalogRepo) GetEvent(ctx context.Context, eventID string) (model.Event, error) {
	const q = `SELECT id, company_id, manager_user_id, name, description, venue, starts_at, status, created_at, updated_at
	           FROM events WHERE id = ?`
	var ev model.Event
	err := r.db.QueryRowContext(ctx, q, eventID).Scan(
		&ev.ID, &ev.CompanyID, &ev.ManagerUserID, &ev.Name, &ev.Description,
		&ev.Venue, &ev.StartsAt, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, ErrEventNotFound
	}
	if err != nil {
		return model.Event{}, err
	}
	return ev, nil
}

// GetPaymentSettings loads the gateway credentials configured for a
// company. A company without a settings row yields a zero value whose
// Configured() method reports false; that is not an error here, the
// purchase flow decides how to respond.
func (r *CatalogRepo) GetPaymentSettings(ctx context.Context, companyID string) (model.PaymentSettings, error) {
	const q = `SELECT company_id, api_key, api_token FROM payment_settings WHERE company_id = ?`
	var ps model.PaymentSettings
	err := r.db.QueryRowContext(ctx, q, companyID).Scan(&ps.CompanyID, &ps.APIKey, &ps.APIToken)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PaymentSettings{}, nil
	}
	if err != nil {
		return model.PaymentSettings{}, err
	}
	return ps, nil
}

// UserHasCompanyRole reports whether the user holds any role association
// with the company. The role label itself does not matter for the current
// authorization rules; association is enough.
func (r *CatalogRepo) UserHasCompanyRole(ctx context.Context, userID, companyID string) (bool, error) {
	const q = `SELECT role FROM user_companies WHERE user_id = ? AND company_id = ? LIMIT 1`
	var role string
	err := r.db.QueryRowContext(ctx, q, userID, companyID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListEvents returns all active events ordered by start time. Used by the
// public browse endpoint; withdrawn events are not listed.
func (r *CatalogRepo) ListEvents(ctx context.Context) ([]model.Event, error) {
	const q = `SELECT id, company_id, manager_user_id, name, description, venue, starts_at, status, created_at, updated_at
	           FROM events WHERE status = 'active' ORDER BY starts_at`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		var ev model.Event
		if err := rows.Scan(
			&ev.ID, &ev.CompanyID, &ev.ManagerUserID, &ev.Name, &ev.Description,
			&ev.Venue, &ev.StartsAt, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Availability returns, per ticket type of the event, the total number of
// units and the number still purchasable (status active, no buyer). A unit
// claimed by a pending transaction is already "reserved" and therefore not
// counted as available.
func (r *CatalogRepo) Availability(ctx context.Context, eventID string) ([]model.WristbandAvailability, error) {
	const q = `SELECT w.id, w.code, w.access_type, w.price,
	                  COUNT(u.id),
	                  COALESCE(SUM(u.status = 'active' AND u.buyer_user_id IS NULL), 0)
	           FROM wristbands w
	           LEFT JOIN wristband_units u ON u.wristband_id = w.id
	           WHERE w.event_id = ? AND w.status = 'active'
	           GROUP BY w.id, w.code, w.access_type, w.price
	           ORDER BY w.code`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.WristbandAvailability, 0)
	for rows.Next() {
		var a model.WristbandAvailability
		if err := rows.Scan(&a.WristbandID, &a.Code, &a.AccessType, &a.Price, &a.Total, &a.Available); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
