package models

import "time"

// Contact holds the customer details collected at checkout.
type Contact struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// BookingDraft is a pending, unpaid reservation keyed by a one-time token.
type BookingDraft struct {
	Token          string    `json:"token"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Route          string    `json:"route"`
	Persons        int       `json:"persons"`
	ChildrenUnder3 int       `json:"children_under3"`
	Contact        Contact   `json:"contact"`
	IDType         string    `json:"id_type"`
	IDDocumentRef  string    `json:"id_document_ref"`
	Amount         int64     `json:"amount"`
	OrderID        string    `json:"order_id"`
	TestMode       bool      `json:"test_mode"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Expired reports whether the draft is past its time-to-live at now.
// A zero ExpiresAt never expires.
func (d BookingDraft) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && !now.Before(d.ExpiresAt)
}

// Booking is a durable, paid reservation. It is never updated after insert.
type Booking struct {
	BookingID      string    `json:"booking_id"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	Route          string    `json:"route"`
	Persons        int       `json:"persons"`
	ChildrenUnder3 int       `json:"children_under3"`
	Contact        Contact   `json:"contact"`
	IDType         string    `json:"id_type"`
	IDDocumentRef  string    `json:"id_document_ref"`
	Amount         int64     `json:"amount"`
	OrderID        string    `json:"order_id"`
	TestMode       bool      `json:"test_mode"`
	PaymentID      string    `json:"payment_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// BookingFromDraft copies every draft field into a new booking.
func BookingFromDraft(d BookingDraft, bookingID, paymentID string, now time.Time) Booking {
	return Booking{
		BookingID:      bookingID,
		Date:           d.Date,
		Time:           d.Time,
		Route:          d.Route,
		Persons:        d.Persons,
		ChildrenUnder3: d.ChildrenUnder3,
		Contact:        d.Contact,
		IDType:         d.IDType,
		IDDocumentRef:  d.IDDocumentRef,
		Amount:         d.Amount,
		OrderID:        d.OrderID,
		TestMode:       d.TestMode,
		PaymentID:      paymentID,
		CreatedAt:      now,
	}
}

// BookingSummary is the row shape of the admin listing.
type BookingSummary struct {
	BookingID string    `json:"booking_id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Route     string    `json:"route"`
	Persons   int       `json:"persons"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
