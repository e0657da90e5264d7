package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Naim3097/BOOX/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// ApplyPayment overwrites the payment facts and moves the status, except
	// that a settled booking never returns to pending and a completed one
	// never moves. The stored row is returned.
	ApplyPayment(ctx context.Context, id string, status domain.BookingStatus, facts domain.PaymentFacts) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id::text, name, email, phone, address, vehicle_brand, vehicle_model, vehicle_year,
	transmission_type, issues, inspection_date, time_slot, status,
	payment_status, payment_invoice_no, payment_amount::float8, payment_provider, payment_method,
	payment_transaction_id, payment_updated_at, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	b.Status = domain.BookingStatusPendingPayment
	b.Payment.Status = "pending"
	err := r.db.QueryRow(ctx, `INSERT INTO bookings (id, name, email, phone, address, vehicle_brand, vehicle_model,
		vehicle_year, transmission_type, issues, inspection_date, time_slot, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING created_at, updated_at`,
		b.ID, b.Name, b.Email, b.Phone, b.Address, b.VehicleBrand, b.VehicleModel,
		b.VehicleYear, b.TransmissionType, b.Issues, b.Date, b.TimeSlot, b.Status, b.Payment.Status).
		Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		return nil, notFound(err, id)
	}
	return b, nil
}

func (r *PGBookingRepository) ApplyPayment(ctx context.Context, id string, status domain.BookingStatus, f domain.PaymentFacts) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET
		status = CASE
			WHEN status = 'completed' THEN status
			WHEN $2::text = 'pending' AND status IN ('confirmed', 'cancelled') THEN status
			ELSE $2::text
		END,
		payment_status = $3,
		payment_invoice_no = $4,
		payment_amount = $5,
		payment_provider = $6,
		payment_method = $7,
		payment_transaction_id = $8,
		payment_updated_at = $9,
		updated_at = now()
		WHERE id=$1
		RETURNING `+bookingColumns,
		id, string(status), f.Status, f.InvoiceNo, f.Amount, f.Provider, f.Method, f.TransactionID, f.UpdatedAt)
	b, err := scanBooking(row)
	if err != nil {
		return nil, notFound(err, id)
	}
	return b, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.Name, &b.Email, &b.Phone, &b.Address, &b.VehicleBrand, &b.VehicleModel, &b.VehicleYear,
		&b.TransmissionType, &b.Issues, &b.Date, &b.TimeSlot, &b.Status,
		&b.Payment.Status, &b.Payment.InvoiceNo, &b.Payment.Amount, &b.Payment.Provider, &b.Payment.Method,
		&b.Payment.TransactionID, &b.Payment.UpdatedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func notFound(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return &domain.NotFoundError{Resource: "booking", ID: id}
	}
	return fmt.Errorf("booking %s: %w", id, err)
}

var _ BookingRepository = (*PGBookingRepository)(nil)
