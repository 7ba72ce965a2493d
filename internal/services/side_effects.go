package services

import (
	"context"
	"fmt"
	"time"

	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"
	"boatbooking/internal/utils"
)

// Pipeline step names, in execution order.
const (
	StepTicket = "ticket"
	StepEmail  = "email"
	StepLedger = "ledger"
)

type TicketRenderer interface {
	Render(ctx context.Context, b models.Booking) (string, error)
	Path(bookingID string) (string, bool)
}

type Notifier interface {
	SendTicket(ctx context.Context, b models.Booking, ticketPath string) error
}

type Ledger interface {
	Append(ctx context.Context, b models.Booking) error
}

type StepResult struct {
	Step   string        `json:"step"`
	Status domain.Status `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// Report records the outcome of every pipeline step for one booking.
type Report struct {
	BookingID string       `json:"booking_id"`
	Steps     []StepResult `json:"steps"`
}

// Status returns the outcome of step, or "" if the step never ran.
func (r Report) Status(step string) domain.Status {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Status
		}
	}
	return ""
}

// Default pipeline limits. The whole run must finish well inside the HTTP
// write timeout, since the verify response waits for it.
const (
	DefaultSideEffectBudget = 20 * time.Second
	DefaultStepTimeout      = 10 * time.Second
)

// SideEffects runs the post-commit actions for a booking. A nil Mailer or
// Ledger marks that step as skipped.
type SideEffects struct {
	Tickets     TicketRenderer
	Mailer      Notifier
	Ledger      Ledger
	StepTimeout time.Duration
	// Budget bounds the whole run; steps left when it ends fail fast.
	Budget time.Duration
}

// Run executes ticket, email and ledger in order. A failing, panicking or
// hung step is recorded and never stops the next one.
func (p SideEffects) Run(ctx context.Context, b models.Booking) Report {
	report := Report{BookingID: b.BookingID}

	budget := p.Budget
	if budget <= 0 {
		budget = DefaultSideEffectBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	rendered := make(chan string, 1)
	p.step(ctx, &report, b, StepTicket, "", func(ctx context.Context) error {
		if p.Tickets == nil {
			return fmt.Errorf("ticket renderer not configured")
		}
		path, err := p.Tickets.Render(ctx, b)
		if err != nil {
			return err
		}
		rendered <- path
		return nil
	})
	ticketPath := ""
	select {
	case ticketPath = <-rendered:
	default:
		if p.Tickets != nil {
			if path, ok := p.Tickets.Path(b.BookingID); ok {
				ticketPath = path
			}
		}
	}

	p.step(ctx, &report, b, StepEmail, p.skipReason(b, p.Mailer == nil, "mail"), func(ctx context.Context) error {
		return p.Mailer.SendTicket(ctx, b, ticketPath)
	})

	p.step(ctx, &report, b, StepLedger, p.skipReason(b, p.Ledger == nil, "ledger"), func(ctx context.Context) error {
		return p.Ledger.Append(ctx, b)
	})

	return report
}

func (p SideEffects) skipReason(b models.Booking, missing bool, what string) string {
	switch {
	case b.TestMode:
		return "test mode"
	case missing:
		return what + " not configured"
	default:
		return ""
	}
}

// step runs fn on its own goroutine so a collaborator that ignores its
// context is abandoned once the step deadline passes.
func (p SideEffects) step(ctx context.Context, report *Report, b models.Booking, name, skip string, fn func(context.Context) error) {
	log := utils.Logger(utils.RequestIDFromContext(ctx), "side_effects", name).WithField("booking_id", b.BookingID)
	if skip != "" {
		report.Steps = append(report.Steps, StepResult{Step: name, Status: domain.StatusSkipped, Reason: skip})
		log.WithField("reason", skip).Info("step skipped")
		return
	}

	timeout := p.StepTimeout
	if timeout <= 0 {
		timeout = DefaultStepTimeout
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- fn(stepCtx)
	}()

	var err error
	select {
	case err = <-done:
	case <-stepCtx.Done():
		err = fmt.Errorf("step abandoned: %w", stepCtx.Err())
	}

	if err != nil {
		report.Steps = append(report.Steps, StepResult{Step: name, Status: domain.StatusFailed, Reason: err.Error()})
		log.WithError(err).Warn("step failed")
		return
	}
	report.Steps = append(report.Steps, StepResult{Step: name, Status: domain.StatusOK})
	log.Info("step done")
}
