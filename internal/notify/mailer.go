// Package notify delivers booking tickets by email over SMTP.
package notify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"boatbooking/internal/domain/models"
	"boatbooking/internal/utils"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	UseTLS   bool
	Username string
	Password string
	From     string
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type Mailer struct {
	From   string
	client sender
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.NoTLS))
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	from := strings.TrimSpace(cfg.From)
	if from == "" {
		from = cfg.Username
	}
	return &Mailer{From: from, client: c}, nil
}

// SendTicket mails the booking confirmation. ticketPath is attached when it
// points at an existing file; otherwise the mail goes out without it.
func (m *Mailer) SendTicket(ctx context.Context, b models.Booking, ticketPath string) error {
	if strings.TrimSpace(b.Contact.Email) == "" {
		return fmt.Errorf("booking %s has no email address", b.BookingID)
	}

	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(b.Contact.Email); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject("Boat Ticket " + b.BookingID)
	msg.SetBodyString(mail.TypeTextPlain, TicketBody(b))

	if ticketPath != "" {
		if _, err := os.Stat(ticketPath); err == nil {
			msg.AttachFile(ticketPath, mail.WithFileName(b.BookingID+".pdf"))
		} else {
			utils.Logger("", "notify", "send_ticket").
				WithField("booking_id", b.BookingID).
				Warn("ticket file missing, sending without attachment")
		}
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send ticket mail: %w", err)
	}
	return nil
}

func TicketBody(b models.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", b.Contact.Name)
	sb.WriteString("Attached is your boat ticket.\n")
	fmt.Fprintf(&sb, "Booking ID: %s\n", b.BookingID)
	fmt.Fprintf(&sb, "Date/Time: %s %s\n", b.Date, b.Time)
	fmt.Fprintf(&sb, "Route: %s\n", b.Route)
	fmt.Fprintf(&sb, "Amount: %s\n\n", utils.FormatRupee(b.Amount))
	sb.WriteString("Thank you!")
	return sb.String()
}
