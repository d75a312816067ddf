package repository

import (
	"context"
	"database/sql"

	"github.com/arinvel/slot-reservation/internal/model"
	"github.com/arinvel/slot-reservation/internal/utils"
)

// UserRepo provides the minimal user access the engine's calling layer
// needs: looking up actors at login and scan time.  Account
// administration lives outside this service.
type UserRepo struct {
	db *sql.DB
}

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

const userColumns = `id, tenant_id, email, password_hash, role, is_active, created_at, updated_at`

// GetByEmail returns a user by email address.  Returns sql.ErrNoRows when
// no such user exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

// GetByID returns a user by primary key.  Returns sql.ErrNoRows when no
// such user exists.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	var u model.User
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.TenantID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, translateErr(err)
	}
	return &u, nil
}

// Create inserts a user with a bcrypt-hashed password and returns the new
// ID.  Returns ErrEmailExists on a duplicate email.  Used by seed tooling
// and tests; the platform's account service owns users in production.
func (r *UserRepo) Create(ctx context.Context, tenantID uint64, email, password, role string, bcryptCost int) (uint64, error) {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO users (tenant_id, email, password_hash, role, is_active) VALUES (?, ?, ?, ?, 1)`
	result, err := r.db.ExecContext(ctx, q, tenantID, email, hash, role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrEmailExists
		}
		return 0, translateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
