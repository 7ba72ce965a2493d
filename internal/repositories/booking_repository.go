package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boatbooking/internal/db"
	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// ErrDuplicateBookingID signals a primary key collision on booking_id.
var ErrDuplicateBookingID = errors.New("booking id already exists")

const bookingsDDL = `
CREATE TABLE IF NOT EXISTS bookings (
	booking_id VARCHAR(16) NOT NULL PRIMARY KEY,
	trip_date VARCHAR(32) NOT NULL,
	trip_time VARCHAR(32) NOT NULL,
	route VARCHAR(255) NOT NULL,
	persons INT NOT NULL,
	children_under3 INT NOT NULL DEFAULT 0,
	name VARCHAR(255) NOT NULL,
	phone VARCHAR(64) NOT NULL,
	email VARCHAR(255) NOT NULL,
	address TEXT NOT NULL,
	id_type VARCHAR(64) NOT NULL,
	id_ref VARCHAR(512) NOT NULL,
	amount BIGINT NOT NULL,
	order_id VARCHAR(64) NOT NULL,
	test_mode TINYINT(1) NOT NULL DEFAULT 0,
	payment_id VARCHAR(64) NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	KEY idx_bookings_created (created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

type BookingRepository struct {
	DB *sql.DB
}

// EnsureSchema creates the bookings table when missing and adds the
// test_mode column to tables created before it existed.
func (r BookingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, bookingsDDL); err != nil {
		return fmt.Errorf("create bookings table: %w", err)
	}
	ok, err := db.HasColumn(ctx, r.DB, "bookings", "test_mode")
	if err != nil {
		return fmt.Errorf("inspect bookings table: %w", err)
	}
	if !ok {
		if _, err := r.DB.ExecContext(ctx, `ALTER TABLE bookings ADD COLUMN test_mode TINYINT(1) NOT NULL DEFAULT 0 AFTER order_id`); err != nil {
			return fmt.Errorf("add test_mode column: %w", err)
		}
	}
	return nil
}

// Insert commits one booking. It returns only after MySQL acknowledged the
// autocommit, and never overwrites an existing booking_id.
func (r BookingRepository) Insert(ctx context.Context, b models.Booking) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO bookings (
			booking_id, trip_date, trip_time, route, persons, children_under3,
			name, phone, email, address, id_type, id_ref,
			amount, order_id, test_mode, payment_id, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		b.BookingID, b.Date, b.Time, b.Route, b.Persons, b.ChildrenUnder3,
		b.Contact.Name, b.Contact.Phone, b.Contact.Email, b.Contact.Address, b.IDType, b.IDDocumentRef,
		b.Amount, b.OrderID, b.TestMode, b.PaymentID, b.CreatedAt,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return fmt.Errorf("insert booking %s: %w", b.BookingID, ErrDuplicateBookingID)
		}
		return fmt.Errorf("insert booking %s: %w", b.BookingID, err)
	}
	return nil
}

// GetByBookingID returns domain.NotFoundError when the id is unknown.
func (r BookingRepository) GetByBookingID(ctx context.Context, bookingID string) (models.Booking, error) {
	var b models.Booking
	err := r.DB.QueryRowContext(ctx, `
		SELECT booking_id, trip_date, trip_time, route, persons, children_under3,
		       name, phone, email, address, id_type, id_ref,
		       amount, order_id, test_mode, payment_id, created_at
		FROM bookings
		WHERE booking_id=? LIMIT 1`, bookingID).Scan(
		&b.BookingID,
		&b.Date,
		&b.Time,
		&b.Route,
		&b.Persons,
		&b.ChildrenUnder3,
		&b.Contact.Name,
		&b.Contact.Phone,
		&b.Contact.Email,
		&b.Contact.Address,
		&b.IDType,
		&b.IDDocumentRef,
		&b.Amount,
		&b.OrderID,
		&b.TestMode,
		&b.PaymentID,
		&b.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("get booking %s: %w", bookingID, err)
	}
	return b, nil
}

// ListAllOrderedByCreatedDesc feeds the admin listing, newest first.
func (r BookingRepository) ListAllOrderedByCreatedDesc(ctx context.Context) ([]models.BookingSummary, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT booking_id, name, trip_date, trip_time, route, persons, amount, created_at
		FROM bookings
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []models.BookingSummary{}
	for rows.Next() {
		var s models.BookingSummary
		if err := rows.Scan(&s.BookingID, &s.Name, &s.Date, &s.Time, &s.Route, &s.Persons, &s.Amount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan booking summary: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return out, nil
}
