package engine_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

// memStore implements engine.Store over in-process maps.  One mutex
// serializes whole transactions, which is the same observable behavior
// the MySQL store's row locks give the engine for conflicting writes.  A
// snapshot taken at transaction start is restored when fn fails, so
// rollback semantics hold too.
type memStore struct {
	mu       sync.Mutex
	slots    map[uint64]*model.Slot
	holds    map[uint64]*model.Hold
	bookings map[uint64]*model.Booking
	services map[uint64]*model.Service
	audits   []model.AuditEntry
	nextID   uint64
}

func newMemStore() *memStore {
	return &memStore{
		slots:    map[uint64]*model.Slot{},
		holds:    map[uint64]*model.Hold{},
		bookings: map[uint64]*model.Booking{},
		services: map[uint64]*model.Service{},
		nextID:   1000,
	}
}

func (s *memStore) addService(svc model.Service) *model.Service {
	cp := svc
	s.services[cp.ID] = &cp
	return &cp
}

func (s *memStore) addSlot(slot model.Slot) *model.Slot {
	cp := slot
	s.slots[cp.ID] = &cp
	return &cp
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	snap.nextID = s.nextID
	for id, v := range s.slots {
		cp := *v
		snap.slots[id] = &cp
	}
	for id, v := range s.holds {
		cp := *v
		snap.holds[id] = &cp
	}
	for id, v := range s.bookings {
		cp := *v
		snap.bookings[id] = &cp
	}
	for id, v := range s.services {
		cp := *v
		snap.services[id] = &cp
	}
	snap.audits = append([]model.AuditEntry(nil), s.audits...)
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.slots = snap.slots
	s.holds = snap.holds
	s.bookings = snap.bookings
	s.services = snap.services
	s.audits = snap.audits
	s.nextID = snap.nextID
}

func (s *memStore) WithTx(_ context.Context, fn func(tx engine.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) SlotForUpdate(_ context.Context, slotID uint64) (*model.Slot, error) {
	slot, ok := t.s.slots[slotID]
	if !ok {
		return nil, engine.ErrSlotNotFound
	}
	cp := *slot
	return &cp, nil
}

func (t *memTx) UpdateSlotCounts(_ context.Context, slotID uint64, bookedCount uint32, overbooked bool) error {
	slot, ok := t.s.slots[slotID]
	if !ok {
		return engine.ErrSlotNotFound
	}
	slot.BookedCount = bookedCount
	slot.IsOverbooked = overbooked
	return nil
}

func (t *memTx) HoldByID(_ context.Context, holdID uint64) (*model.Hold, error) {
	h, ok := t.s.holds[holdID]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (t *memTx) ActiveHoldQuantity(_ context.Context, slotID uint64, now time.Time, excludeSession string) (uint32, error) {
	var sum uint32
	for _, h := range t.s.holds {
		if h.SlotID != slotID || !h.Active(now) {
			continue
		}
		if excludeSession != "" && h.SessionID == excludeSession {
			continue
		}
		sum += h.Quantity
	}
	return sum, nil
}

func (t *memTx) InsertHold(_ context.Context, h *model.Hold) error {
	t.s.nextID++
	h.ID = t.s.nextID
	cp := *h
	t.s.holds[cp.ID] = &cp
	return nil
}

func (t *memTx) DeleteHold(_ context.Context, holdID uint64) error {
	delete(t.s.holds, holdID)
	return nil
}

func (t *memTx) DeleteHoldsBySession(_ context.Context, sessionID string, slotID uint64) (int, error) {
	n := 0
	for id, h := range t.s.holds {
		if h.SessionID == sessionID && h.SlotID == slotID {
			delete(t.s.holds, id)
			n++
		}
	}
	return n, nil
}

func (t *memTx) BookingForUpdate(_ context.Context, bookingID uint64) (*model.Booking, error) {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return nil, engine.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (t *memTx) BookingByTokenForUpdate(_ context.Context, token string) (*model.Booking, error) {
	if strings.TrimSpace(token) == "" {
		return nil, engine.ErrTicketNotFound
	}
	for _, b := range t.s.bookings {
		if b.Ticket.Token != nil && *b.Ticket.Token == token {
			cp := *b
			return &cp, nil
		}
	}
	return nil, engine.ErrTicketNotFound
}

func (t *memTx) InsertBooking(_ context.Context, b *model.Booking) error {
	t.s.nextID++
	b.ID = t.s.nextID
	cp := *b
	t.s.bookings[cp.ID] = &cp
	return nil
}

func (t *memTx) UpdateBookingSlot(_ context.Context, bookingID, slotID uint64, priceCents uint32) error {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return engine.ErrBookingNotFound
	}
	b.SlotID = slotID
	if slot, ok := t.s.slots[slotID]; ok {
		b.ServiceID = slot.ServiceID
	}
	b.PriceCents = priceCents
	return nil
}

func (t *memTx) UpdateBookingStatus(_ context.Context, bookingID uint64, status model.BookingStatus) error {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return engine.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

func (t *memTx) UpdateTicket(_ context.Context, bookingID uint64, ticket model.Ticket) error {
	b, ok := t.s.bookings[bookingID]
	if !ok {
		return engine.ErrBookingNotFound
	}
	b.Ticket = ticket
	return nil
}

func (t *memTx) ServiceByID(_ context.Context, serviceID uint64) (*model.Service, error) {
	svc, ok := t.s.services[serviceID]
	if !ok {
		return nil, engine.ErrSlotNotFound
	}
	cp := *svc
	return &cp, nil
}

func (t *memTx) AppendAudit(_ context.Context, e *model.AuditEntry) error {
	t.s.audits = append(t.s.audits, *e)
	return nil
}

// slotState reads a slot outside any transaction for assertions.
func (s *memStore) slotState(slotID uint64) model.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.slots[slotID]
}

// bookingState reads a booking outside any transaction for assertions.
func (s *memStore) bookingState(bookingID uint64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.bookings[bookingID]
}

// auditKinds lists the kinds recorded for a booking, in append order.
func (s *memStore) auditKinds(bookingID uint64) []model.AuditKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kinds []model.AuditKind
	for _, e := range s.audits {
		if e.BookingID == bookingID {
			kinds = append(kinds, e.Kind)
		}
	}
	return kinds
}

// holdCount counts live hold rows regardless of expiry.
func (s *memStore) holdCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}
