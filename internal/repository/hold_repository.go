package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arinvel/slot-reservation/internal/model"
)

// HoldRepo provides data access to the holds table.  Holds expire lazily:
// every query that feeds a capacity computation filters on
// expires_at > now, so an abandoned hold stops counting the moment it
// expires with no cleanup job involved.  DeleteExpiredTx exists purely as
// housekeeping to keep the table small.
type HoldRepo struct {
	db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

// GetByIDTx returns a hold by primary key regardless of expiry, or nil
// when it does not exist.  Consumption decides between "gone" and
// "expired" from the returned record.
func (r *HoldRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, holdID uint64) (*model.Hold, error) {
	const q = `SELECT id, slot_id, session_id, quantity, hold_token, expires_at, created_at
               FROM holds WHERE id = ?`
	var h model.Hold
	err := tx.QueryRowContext(ctx, q, holdID).Scan(
		&h.ID, &h.SlotID, &h.SessionID, &h.Quantity, &h.HoldToken, &h.ExpiresAt, &h.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translateErr(err)
	}
	return &h, nil
}

// ActiveQuantityTx sums the quantities of unexpired holds on a slot.
// When excludeSession is non-empty, that session's holds are left out;
// the own-hold exclusion used during transfers.  The comparison instant
// is passed in by the engine so all capacity math within one transaction
// shares a single notion of now.
func (r *HoldRepo) ActiveQuantityTx(ctx context.Context, tx *sql.Tx, slotID uint64, now time.Time, excludeSession string) (uint32, error) {
	q := `SELECT COALESCE(SUM(quantity), 0) FROM holds WHERE slot_id = ? AND expires_at > ?`
	args := []interface{}{slotID, now.UTC().Format("2006-01-02 15:04:05")}
	if excludeSession != "" {
		q += ` AND session_id <> ?`
		args = append(args, excludeSession)
	}
	var sum uint64
	if err := tx.QueryRowContext(ctx, q, args...).Scan(&sum); err != nil {
		return 0, translateErr(err)
	}
	return uint32(sum), nil
}

// CreateTx inserts a new hold within the provided transaction and
// populates the generated ID on the record.
func (r *HoldRepo) CreateTx(ctx context.Context, tx *sql.Tx, h *model.Hold) error {
	const q = `INSERT INTO holds (slot_id, session_id, quantity, hold_token, expires_at)
               VALUES (?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		h.SlotID, h.SessionID, h.Quantity, h.HoldToken,
		h.ExpiresAt.UTC().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return translateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)
	return nil
}

// DeleteTx removes a hold by ID.  Removing an absent hold is a no-op;
// holds disappear when consumed, replaced or expired.
func (r *HoldRepo) DeleteTx(ctx context.Context, tx *sql.Tx, holdID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM holds WHERE id = ?`, holdID)
	return translateErr(err)
}

// DeleteBySessionTx removes every hold a session has on a slot and
// returns the number removed.  Used both to release holds explicitly and
// to replace a session's prior hold when it re-holds the same slot.
func (r *HoldRepo) DeleteBySessionTx(ctx context.Context, tx *sql.Tx, sessionID string, slotID uint64) (int, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM holds WHERE session_id = ? AND slot_id = ?`, sessionID, slotID)
	if err != nil {
		return 0, translateErr(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeleteExpiredTx prunes holds that expired before the given instant.
// Correctness never depends on this; it only keeps the table from
// accumulating dead rows.
func (r *HoldRepo) DeleteExpiredTx(ctx context.Context, tx *sql.Tx, now time.Time) (int64, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM holds WHERE expires_at <= ?`, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return 0, translateErr(err)
	}
	return result.RowsAffected()
}
