package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

// ServiceRepo provides read access to the services table.  The engine
// consults services for tenant checks and base pricing; service
// administration is out of scope.
type ServiceRepo struct {
	db *sql.DB
}

// NewServiceRepo returns a new ServiceRepo bound to the given database.
func NewServiceRepo(db *sql.DB) *ServiceRepo { return &ServiceRepo{db: db} }

const serviceColumns = `id, tenant_id, name, base_price_cents, is_active, created_at`

// GetByIDTx returns a service row within a transaction.  Returns
// engine.ErrSlotNotFound when the service does not exist, matching the
// engine's contract for dangling references.
func (r *ServiceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	var s model.Service
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.BasePriceCents, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrSlotNotFound
		}
		return nil, translateErr(err)
	}
	return &s, nil
}

// GetByID is the non-transactional variant used by browse handlers.
func (r *ServiceRepo) GetByID(ctx context.Context, id uint64) (*model.Service, error) {
	const q = `SELECT ` + serviceColumns + ` FROM services WHERE id = ?`
	var s model.Service
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.TenantID, &s.Name, &s.BasePriceCents, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrSlotNotFound
		}
		return nil, translateErr(err)
	}
	return &s, nil
}
