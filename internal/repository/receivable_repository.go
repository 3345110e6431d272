package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/festpass/ticketing/internal/model"
)

// ClaimItem is one line of an allocation request: claim Quantity units of
// the given ticket type at the quoted unit price.
type ClaimItem struct {
	WristbandID string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// ClaimedUnit identifies one unit reserved for a receivable, together with
// the unit price it was claimed at.
type ClaimedUnit struct {
	UnitID      string
	WristbandID string
	UnitPrice   decimal.Decimal
}

// Claim is the durable result of an allocation: the receivable recording
// the attempt and the exact units it reserved.
type Claim struct {
	ReceivableID string
	Units        []ClaimedUnit
}

// ReceivableRepo owns the transaction ledger and the claim state of
// inventory units. Claiming, settling and releasing are the only paths
// that move a unit between active, reserved and used, and each runs inside
// a single database transaction.
//
// The claim step is the correctness-critical section of the whole system:
// eligible units are selected with FOR UPDATE and then transitioned with a
// conditional UPDATE that re-checks status and buyer, so two concurrent
// buyers can never reserve the same unit. A plain read-then-write here
// would double-sell under load.
type ReceivableRepo struct {
	db       *sql.DB
	claimTTL time.Duration
}

// NewReceivableRepo returns a ReceivableRepo. claimTTL bounds how long a
// pending receivable may keep units reserved before the sweep releases
// them.
func NewReceivableRepo(db *sql.DB, claimTTL time.Duration) *ReceivableRepo {
	return &ReceivableRepo{db: db, claimTTL: claimTTL}
}

// ClaimAndRecord atomically claims the requested quantity of units for
// every item and records the pending receivable referencing them. Either
// every item is fully satisfied and the receivable is durably written, or
// nothing is: any shortage rolls the whole transaction back and returns an
// InsufficientInventoryError naming the short ticket type.
//
// Expired claims of earlier pending receivables are released inside the
// same transaction before eligibility is evaluated, so stale reservations
// cannot starve the inventory.
func (r *ReceivableRepo) ClaimAndRecord(ctx context.Context, rec model.Receivable, items []ClaimItem) (Claim, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return Claim{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, _, err := r.releaseExpiredTx(ctx, tx, time.Now().UTC().Add(-r.claimTTL)); err != nil {
		return Claim{}, err
	}

	claim := Claim{ReceivableID: rec.ID}
	for _, item := range items {
		ids, err := selectEligibleUnitsTx(ctx, tx, item.WristbandID, item.Quantity)
		if err != nil {
			return Claim{}, err
		}
		if len(ids) < item.Quantity {
			return Claim{}, &InsufficientInventoryError{
				WristbandID: item.WristbandID,
				Requested:   item.Quantity,
				Available:   len(ids),
			}
		}
		if err := reserveUnitsTx(ctx, tx, ids); err != nil {
			return Claim{}, err
		}
		for _, id := range ids {
			claim.Units = append(claim.Units, ClaimedUnit{
				UnitID:      id,
				WristbandID: item.WristbandID,
				UnitPrice:   item.UnitPrice,
			})
		}
	}

	const insRec = `INSERT INTO receivables (id, buyer_user_id, manager_user_id, event_id, company_id, total_value, status)
	                VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insRec,
		rec.ID, rec.BuyerUserID, rec.ManagerUserID, rec.EventID, rec.CompanyID,
		rec.TotalValue, model.ReceivableStatusPending); err != nil {
		return Claim{}, err
	}

	insUnits := `INSERT INTO receivable_units (receivable_id, unit_id, unit_price) VALUES `
	args := make([]interface{}, 0, len(claim.Units)*3)
	for i, u := range claim.Units {
		if i > 0 {
			insUnits += ","
		}
		insUnits += "(?, ?, ?)"
		args = append(args, rec.ID, u.UnitID, u.UnitPrice)
	}
	if _, err := tx.ExecContext(ctx, insUnits, args...); err != nil {
		return Claim{}, err
	}

	if err := tx.Commit(); err != nil {
		return Claim{}, err
	}
	committed = true
	return claim, nil
}

// selectEligibleUnitsTx picks up to limit unsold units of a ticket type,
// locking the rows for the remainder of the transaction. Competing claims
// block here and re-evaluate against the committed state, so they pick
// different rows.
func selectEligibleUnitsTx(ctx context.Context, tx *sql.Tx, wristbandID string, limit int) ([]string, error) {
	const q = `SELECT id FROM wristband_units
	           WHERE wristband_id = ? AND status = ? AND buyer_user_id IS NULL
	           LIMIT ? FOR UPDATE`
	rows, err := tx.QueryContext(ctx, q, wristbandID, model.UnitStatusActive, limit)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	return ids, nil
}

// reserveUnitsTx flips the selected units to reserved with a conditional
// update. The affected-row count must equal the request; anything less
// means another writer got there despite the row locks, and the claim is
// aborted rather than partially applied.
func reserveUnitsTx(ctx context.Context, tx *sql.Tx, ids []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, model.UnitStatusReserved, model.UnitStatusActive)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE wristband_units SET status = ?
		 WHERE status = ? AND buyer_user_id IS NULL AND id IN (`+placeholders+`)`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(n) != len(ids) {
		return fmt.Errorf("claim lost race: reserved %d of %d units", n, len(ids))
	}
	return nil
}

// SettlePaid finalizes the receivable as paid and assigns every claimed
// unit to the buyer: status used, buyer set, purchase event_data attached.
// The finalize is a conditional update on the pending status; a receivable
// that is already terminal yields ErrAlreadyFinalized and no unit is
// touched. All writes share one transaction, so a failure anywhere leaves
// the claim exactly as it was.
func (r *ReceivableRepo) SettlePaid(ctx context.Context, claim Claim, buyerID, gatewayRef string, totalPaid decimal.Decimal, at time.Time) error {
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

	res, err := tx.ExecContext(ctx,
		`UPDATE receivables SET status = ?, payment_gateway_ref = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = ?`,
		model.ReceivableStatusPaid, gatewayRef, claim.ReceivableID, model.ReceivableStatusPending)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrAlreadyFinalized
	}

	for _, u := range claim.Units {
		data, err := json.Marshal(model.PurchaseEventData(buyerID, claim.ReceivableID, u.UnitPrice, totalPaid, at))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE wristband_units
			 SET status = ?, buyer_user_id = ?, event_type = ?, event_data = ?, updated_at = UTC_TIMESTAMP()
			 WHERE id = ? AND status = ?`,
			model.UnitStatusUsed, buyerID, model.UnitEventPurchase, data, u.UnitID, model.UnitStatusReserved)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("unit %s is no longer reserved for receivable %s", u.UnitID, claim.ReceivableID)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// SettleFailed finalizes the receivable as failed after a definitive
// gateway decline. Claimed units are deliberately left reserved; the
// expiry sweep returns them to the pool.
func (r *ReceivableRepo) SettleFailed(ctx context.Context, receivableID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receivables SET status = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id = ? AND status = ?`,
		model.ReceivableStatusFailed, receivableID, model.ReceivableStatusPending)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyFinalized
	}
	return nil
}

// ReleaseExpiredClaims returns to the pool every unit still reserved by a
// receivable that has been pending since before the cutoff, and finalizes
// those receivables as failed. It reports how many units were released and
// how many receivables were expired.
func (r *ReceivableRepo) ReleaseExpiredClaims(ctx context.Context, olderThan time.Time) (int, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	units, recs, err := r.releaseExpiredTx(ctx, tx, olderThan)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, err
	}
	committed = true
	return units, recs, nil
}

// ClaimTTL exposes the configured claim lifetime, used by the sweeper to
// compute its cutoff.
func (r *ReceivableRepo) ClaimTTL() time.Duration { return r.claimTTL }

func (r *ReceivableRepo) releaseExpiredTx(ctx context.Context, tx *sql.Tx, olderThan time.Time) (int, int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM receivables WHERE status = ? AND created_at <= ? FOR UPDATE`,
		model.ReceivableStatusPending, olderThan.UTC())
	if err != nil {
		return 0, 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return 0, 0, scanErr
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return 0, 0, err
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]interface{}, 0, len(ids)+2)
	args = append(args, model.UnitStatusActive, model.UnitStatusReserved)
	for _, id := range ids {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE wristband_units u
		 JOIN receivable_units ru ON ru.unit_id = u.id
		 SET u.status = ?, u.updated_at = UTC_TIMESTAMP()
		 WHERE u.status = ? AND ru.receivable_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, 0, err
	}
	released, err := res.RowsAffected()
	if err != nil {
		return 0, 0, err
	}

	args = args[:0]
	args = append(args, model.ReceivableStatusFailed)
	for _, id := range ids {
		args = append(args, id)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE receivables SET status = ?, updated_at = UTC_TIMESTAMP()
		 WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return 0, 0, err
	}
	return int(released), len(ids), nil
}
