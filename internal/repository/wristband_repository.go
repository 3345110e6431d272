package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/festpass/ticketing/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number raised on a unique
// constraint violation.
const mysqlDuplicateEntry = 1062

// WristbandRepo persists ticket types and their inventory units. It backs
// the batch provisioner and the mass status updater; the purchase-side
// claim logic lives in ReceivableRepo.
type WristbandRepo struct {
	db *sql.DB
}

// NewWristbandRepo returns a new WristbandRepo bound to the given database.
func NewWristbandRepo(db *sql.DB) *WristbandRepo { return &WristbandRepo{db: db} }

// Create inserts one wristband row. The (company_id, code) pair is covered
// by a unique index; a violation is reported as ErrDuplicateCode so the
// provisioner can fail terminally without creating any units.
func (r *WristbandRepo) Create(ctx context.Context, w model.Wristband) error {
	const q = `INSERT INTO wristbands (id, event_id, company_id, manager_user_id, code, access_type, status, price)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		w.ID, w.EventID, w.CompanyID, w.ManagerUserID, w.Code, w.AccessType, w.Status, w.Price)
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrDuplicateCode
	}
	return err
}

// CreateUnits inserts a batch of wristband_units in a single statement.
// The caller controls batch sizing; passing an empty slice is a no-op.
// Event data is stored as JSON.
func (r *WristbandRepo) CreateUnits(ctx context.Context, units []model.WristbandUnit) error {
	if len(units) == 0 {
		return nil
	}
	query := `INSERT INTO wristband_units (id, wristband_id, status, buyer_user_id, sequential_number, event_type, event_data) VALUES `
	args := make([]interface{}, 0, len(units)*7)
	for i, u := range units {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		data, err := json.Marshal(u.EventData)
		if err != nil {
			return err
		}
		args = append(args, u.ID, u.WristbandID, u.Status, u.BuyerUserID, u.SequentialNumber, u.EventType, data)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes a wristband and every unit referencing it. It is the
// rollback path of the batch provisioner: units inserted before a failing
// batch must never remain queryable as available inventory, so units are
// deleted explicitly before the type row inside one transaction.
func (r *WristbandRepo) Delete(ctx context.Context, wristbandID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM wristband_units WHERE wristband_id = ?`, wristbandID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM wristbands WHERE id = ?`, wristbandID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// UpdateStatusByEvent transitions every wristband of the event, and every
// unit under those wristbands, to the new status. The scope is narrowed to
// the owning company. With refuseAssigned set, the update is rejected with
// ErrUnitsAssigned while any unit of the event belongs to a buyer; the
// count runs inside the same transaction, against the rows locked by the
// FOR UPDATE select, so a concurrently committing settlement cannot have
// its sold units overwritten. The number of affected wristbands is
// returned.
func (r *WristbandRepo) UpdateStatusByEvent(ctx context.Context, eventID, companyID, status string, refuseAssigned bool) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM wristbands WHERE event_id = ? AND company_id = ? FOR UPDATE`,
		eventID, companyID,
	)
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return 0, scanErr
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		committed = true
		return 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	if refuseAssigned {
		idArgs := make([]interface{}, 0, len(ids))
		for _, id := range ids {
			idArgs = append(idArgs, id)
		}
		var assigned int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM wristband_units
			 WHERE buyer_user_id IS NOT NULL AND wristband_id IN (`+placeholders+`)`, idArgs...).Scan(&assigned); err != nil {
			return 0, err
		}
		if assigned > 0 {
			return 0, ErrUnitsAssigned
		}
	}

	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, status)
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE wristbands SET status = ? WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE wristband_units SET status = ? WHERE wristband_id IN (`+placeholders+`)`, args...); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return len(ids), nil
}
