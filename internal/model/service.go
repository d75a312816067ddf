package model

import "time"

// Service is a bookable resource owned by a tenant, for example a tour,
// a venue area or a class.  Slots are generated under a service and every
// booking references the service it was made for; transfers between slots
// of different services are rejected.
//
// Fields:
//  ID             – primary key identifier.
//  TenantID       – owning tenant.
//  Name           – display name.
//  BasePriceCents – per-unit base price used by the default pricer.
//  IsActive       – inactive services refuse new bookings.
//  CreatedAt      – creation timestamp.
type Service struct {
	ID             uint64    // services.id
	TenantID       uint64    // services.tenant_id
	Name           string    // services.name
	BasePriceCents uint32    // services.base_price_cents
	IsActive       bool      // services.is_active
	CreatedAt      time.Time // services.created_at
}

// Shift is the named daily time window slots are generated from.  Slot
// generation itself is out of scope for the engine; shifts exist so slots
// can reference the template they came from.
type Shift struct {
	ID          uint64 // shifts.id
	ServiceID   uint64 // shifts.service_id
	Name        string // shifts.name
	StartMinute uint16 // shifts.start_minute
	EndMinute   uint16 // shifts.end_minute
}
