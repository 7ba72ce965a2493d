// Package tickets renders booking tickets as PDF and keeps them addressable by booking id.
package tickets

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"boatbooking/internal/domain/models"
	"boatbooking/internal/utils"

	"github.com/phpdave11/gofpdf"
	"github.com/yeqown/go-qrcode"
)

type Renderer struct {
	Store FileStore
}

// Render builds the ticket for b and stores it; the handle is the file path.
func (r Renderer) Render(ctx context.Context, b models.Booking) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	pdf, err := BuildPDF(b)
	if err != nil {
		return "", err
	}
	return r.Store.Save(b.BookingID, pdf)
}

// Path returns where the ticket for bookingID lives, if it was rendered.
func (r Renderer) Path(bookingID string) (string, bool) {
	if !r.Store.Exists(bookingID) {
		return "", false
	}
	return r.Store.Path(bookingID), true
}

// BuildPDF lays out a single-page A4 ticket with a QR code of the booking id.
func BuildPDF(b models.Booking) ([]byte, error) {
	qrPath, cleanup, err := writeQRCode(b.BookingID)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Boat Ticket "+b.BookingID, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOAT TICKET")
	pdf.Ln(12)

	pdf.ImageOptions(qrPath, 150, 12, 40, 40, false, gofpdf.ImageOptions{ImageType: "JPG"}, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID     : %s", b.BookingID),
		fmt.Sprintf("Name           : %s", safe(b.Contact.Name, "-")),
		fmt.Sprintf("Phone          : %s", safe(b.Contact.Phone, "-")),
		fmt.Sprintf("Email          : %s", safe(b.Contact.Email, "-")),
		fmt.Sprintf("Date / Time    : %s %s", safe(b.Date, "-"), safe(b.Time, "-")),
		fmt.Sprintf("Route          : %s", safe(b.Route, "-")),
		fmt.Sprintf("Persons        : %d", b.Persons),
		fmt.Sprintf("Children (<3)  : %d", b.ChildrenUnder3),
		fmt.Sprintf("Amount paid    : %s", utils.FormatRupee(b.Amount)),
		fmt.Sprintf("Payment ID     : %s", safe(b.PaymentID, "-")),
		fmt.Sprintf("Booked at      : %s", utils.FormatDateTime(b.CreatedAt)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	note := "Please show this ticket and the identity document used at booking when boarding. Children under 3 travel free."
	if b.TestMode {
		note = "TEST MODE - this ticket was issued without a real payment. " + note
	}
	pdf.MultiCell(0, 6, note, "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// writeQRCode saves a JPEG QR image in a private temp dir; cleanup removes the dir.
func writeQRCode(content string) (string, func(), error) {
	qrc, err := qrcode.New(content)
	if err != nil {
		return "", nil, fmt.Errorf("qrcode: %w", err)
	}
	dir, err := os.MkdirTemp("", "ticket-qr-")
	if err != nil {
		return "", nil, fmt.Errorf("qrcode temp dir: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, utils.SafeFilenamePart(content)+".jpeg")
	if err := qrc.Save(path); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("qrcode save: %w", err)
	}
	return path, cleanup, nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}
