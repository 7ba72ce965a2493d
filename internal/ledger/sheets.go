// Package ledger appends committed bookings to a Google spreadsheet.
package ledger

import (
	"context"
	"fmt"
	"strings"

	"boatbooking/internal/domain/models"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

type Sheets struct {
	SpreadsheetID string
	Range         string
	svc           *sheets.Service
}

// NewSheets builds a client from a service account key file. Extra options
// are appended after the credentials so callers can override the endpoint.
func NewSheets(ctx context.Context, credentialsFile, spreadsheetID, rng string, extra ...option.ClientOption) (*Sheets, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if strings.TrimSpace(rng) == "" {
		rng = "Bookings!A1"
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	opts = append(opts, extra...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Sheets{SpreadsheetID: spreadsheetID, Range: rng, svc: svc}, nil
}

// Append writes one row per booking at the end of the configured range.
func (s *Sheets) Append(ctx context.Context, b models.Booking) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{Row(b)}}
	_, err := s.svc.Spreadsheets.Values.Append(s.SpreadsheetID, s.Range, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append booking %s: %w", b.BookingID, err)
	}
	return nil
}

// Row is the ledger column order; amount is in major units.
func Row(b models.Booking) []interface{} {
	return []interface{}{
		b.BookingID,
		b.Contact.Name,
		b.Contact.Phone,
		b.Contact.Email,
		b.Contact.Address,
		b.IDType,
		b.Date,
		b.Time,
		b.Route,
		b.Persons,
		b.ChildrenUnder3,
		float64(b.Amount) / 100,
		b.PaymentID,
	}
}
