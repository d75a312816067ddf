package model

import "time"

// User represents an application user record as stored in the `users`
// table.  The engine consumes users only as actors: the customer who owns
// a booking, or the staff member who scans a ticket at the gate.  Tenant
// and user administration is handled outside this service.
//
// Fields:
//  ID           – primary key identifier of the user.
//  TenantID     – tenant the user belongs to (0 for platform customers).
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – role name (CUSTOMER or STAFF).
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	TenantID     uint64    // users.tenant_id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

const (
	// RoleCustomer places holds and owns bookings.
	RoleCustomer = "CUSTOMER"
	// RoleStaff scans tickets at the gate and may edit bookings on a
	// customer's behalf.
	RoleStaff = "STAFF"
)
