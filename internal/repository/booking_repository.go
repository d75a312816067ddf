package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/arinvel/slot-reservation/internal/engine"
	"github.com/arinvel/slot-reservation/internal/model"
)

// BookingRepo provides data access to the bookings table, including the
// ticket columns that live on the booking row.  Mutations run through *Tx
// methods under the booking row lock taken by GetForUpdateTx; list and
// detail queries for display read without locks.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `id, slot_id, service_id, user_id, adults, children, price_cents, status,
               ticket_token, ticket_state, ticket_scanned_at, ticket_scanned_by,
               created_at, updated_at`

// scanBooking reads one booking row, converting the nullable ticket
// columns into the model's pointer fields.
func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var (
		b         model.Booking
		token     sql.NullString
		state     string
		scannedAt sql.NullTime
		scannedBy sql.NullInt64
	)
	err := row.Scan(
		&b.ID, &b.SlotID, &b.ServiceID, &b.UserID, &b.Adults, &b.Children, &b.PriceCents, &b.Status,
		&token, &state, &scannedAt, &scannedBy,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Ticket.State = model.TicketState(state)
	if token.Valid {
		t := token.String
		b.Ticket.Token = &t
	}
	if scannedAt.Valid {
		at := scannedAt.Time
		b.Ticket.ScannedAt = &at
	}
	if scannedBy.Valid {
		by := uint64(scannedBy.Int64)
		b.Ticket.ScannedBy = &by
	}
	return &b, nil
}

// GetForUpdateTx locks a booking row exclusively and returns it.  The
// lock serializes concurrent edits and cancels of the same booking.
// Returns engine.ErrBookingNotFound when it does not exist.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, bookingID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrBookingNotFound
		}
		return nil, translateErr(err)
	}
	return b, nil
}

// GetByTokenForUpdateTx locks and returns the booking carrying the given
// live ticket token.  Returns engine.ErrTicketNotFound when no booking
// carries the token; revoked and redeemed tokens do not match because
// revocation and redemption both clear the column.
func (r *BookingRepo) GetByTokenForUpdateTx(ctx context.Context, tx *sql.Tx, token string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE ticket_token = ? FOR UPDATE`
	b, err := scanBooking(tx.QueryRowContext(ctx, q, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrTicketNotFound
		}
		return nil, translateErr(err)
	}
	return b, nil
}

// CreateTx inserts a new booking within the provided transaction and
// populates the generated ID on the record.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings
               (slot_id, service_id, user_id, adults, children, price_cents, status, ticket_state)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q,
		b.SlotID, b.ServiceID, b.UserID, b.Adults, b.Children, b.PriceCents,
		string(b.Status), string(b.Ticket.State),
	)
	if err != nil {
		return translateErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// UpdateSlotTx rewrites a booking's slot reference and price in one
// statement.  The booking row must already be locked.
func (r *BookingRepo) UpdateSlotTx(ctx context.Context, tx *sql.Tx, bookingID, slotID uint64, priceCents uint32) error {
	const q = `UPDATE bookings b
               JOIN slots s ON s.id = ?
               SET b.slot_id = s.id, b.service_id = s.service_id, b.price_cents = ?,
                   b.updated_at = UTC_TIMESTAMP()
               WHERE b.id = ?`
	_, err := tx.ExecContext(ctx, q, slotID, priceCents, bookingID)
	return translateErr(err)
}

// UpdateStatusTx rewrites a booking's lifecycle status.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, bookingID uint64, status model.BookingStatus) error {
	const q = `UPDATE bookings SET status = ?, updated_at = UTC_TIMESTAMP() WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, string(status), bookingID)
	return translateErr(err)
}

// UpdateTicketTx rewrites the ticket columns of a booking.
func (r *BookingRepo) UpdateTicketTx(ctx context.Context, tx *sql.Tx, bookingID uint64, t model.Ticket) error {
	const q = `UPDATE bookings
               SET ticket_token = ?, ticket_state = ?, ticket_scanned_at = ?, ticket_scanned_by = ?,
                   updated_at = UTC_TIMESTAMP()
               WHERE id = ?`
	var (
		token     sql.NullString
		scannedAt sql.NullString
		scannedBy sql.NullInt64
	)
	if t.Token != nil {
		token = sql.NullString{String: *t.Token, Valid: true}
	}
	if t.ScannedAt != nil {
		scannedAt = sql.NullString{String: t.ScannedAt.UTC().Format("2006-01-02 15:04:05"), Valid: true}
	}
	if t.ScannedBy != nil {
		scannedBy = sql.NullInt64{Int64: int64(*t.ScannedBy), Valid: true}
	}
	_, err := tx.ExecContext(ctx, q, token, string(t.State), scannedAt, scannedBy, bookingID)
	return translateErr(err)
}

// BookingDetail is the read model returned to customers.  It joins the
// booking with its slot and service so clients need a single call to
// render a reservation.
type BookingDetail struct {
	ID          uint64  `json:"id"`
	SlotID      uint64  `json:"slot_id"`
	ServiceID   uint64  `json:"service_id"`
	ServiceName string  `json:"service_name"`
	Date        string  `json:"date"`
	StartMinute uint16  `json:"start_minute"`
	EndMinute   uint16  `json:"end_minute"`
	Adults      uint32  `json:"adults"`
	Children    uint32  `json:"children"`
	PriceCents  uint32  `json:"price_cents"`
	Status      string  `json:"status"`
	TicketState string  `json:"ticket_state"`
	TicketToken *string `json:"ticket_token,omitempty"`
	CreatedAt   string  `json:"created_at"`
}

const bookingDetailQuery = `SELECT b.id, b.slot_id, b.service_id, sv.name,
                      sl.slot_date, sl.start_minute, sl.end_minute,
                      b.adults, b.children, b.price_cents, b.status,
                      b.ticket_state, b.ticket_token, b.created_at
               FROM bookings b
               JOIN slots sl ON sl.id = b.slot_id
               JOIN services sv ON sv.id = b.service_id`

// scanBookingDetail reads one joined detail row.
func scanBookingDetail(row interface{ Scan(...interface{}) error }) (*BookingDetail, error) {
	var (
		d         BookingDetail
		slotDate  time.Time
		token     sql.NullString
		createdAt time.Time
	)
	err := row.Scan(
		&d.ID, &d.SlotID, &d.ServiceID, &d.ServiceName,
		&slotDate, &d.StartMinute, &d.EndMinute,
		&d.Adults, &d.Children, &d.PriceCents, &d.Status,
		&d.TicketState, &token, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	d.Date = slotDate.UTC().Format("2006-01-02")
	if token.Valid {
		t := token.String
		d.TicketToken = &t
	}
	d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return &d, nil
}

// GetDetailForUser returns one booking with slot and service context,
// restricted to the owning user.  Returns engine.ErrBookingNotFound when
// the booking does not exist or belongs to someone else; not found and
// not yours are deliberately indistinguishable to the caller.
func (r *BookingRepo) GetDetailForUser(ctx context.Context, bookingID, userID uint64) (*BookingDetail, error) {
	q := bookingDetailQuery + ` WHERE b.id = ? AND b.user_id = ?`
	d, err := scanBookingDetail(r.db.QueryRowContext(ctx, q, bookingID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, engine.ErrBookingNotFound
		}
		return nil, translateErr(err)
	}
	return d, nil
}

// ListByUser returns all of a user's bookings, newest first.  Returns an
// empty slice when the user has none.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	q := bookingDetailQuery + ` WHERE b.user_id = ? ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, translateErr(err)
	}
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
