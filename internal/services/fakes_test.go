package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"
)

type fakeUploads struct {
	err   error
	calls atomic.Int32
}

func (f *fakeUploads) Store(_ context.Context, doc models.IDDocument) (string, error) {
	f.calls.Add(1)
	if f.err != nil {
		return "", f.err
	}
	return "uploads/id_proofs/" + doc.Filename, nil
}

type fakeGateway struct {
	mu          sync.Mutex
	testMode    bool
	createErr   error
	verifyErr   error
	verifyCalls atomic.Int32
	seq         int
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency string) (models.PaymentOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return models.PaymentOrder{}, g.createErr
	}
	g.seq++
	prefix := "order_live_"
	if g.testMode {
		prefix = "order_test_"
	}
	return models.PaymentOrder{
		ID:       prefix + string(rune('a'+g.seq)),
		Amount:   amount,
		Currency: currency,
		TestMode: g.testMode,
	}, nil
}

func (g *fakeGateway) VerifySignature(context.Context, string, string, string) error {
	g.verifyCalls.Add(1)
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.verifyErr
}

func (g *fakeGateway) setVerifyErr(err error) {
	g.mu.Lock()
	g.verifyErr = err
	g.mu.Unlock()
}

func (g *fakeGateway) KeyID() string { return "rzp_live_key" }

type memRepo struct {
	mu        sync.Mutex
	rows      map[string]models.Booking
	order     []string
	insertErr error
	// stall makes Insert wait for ctx like a hung database.
	stall bool
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]models.Booking{}}
}

func (r *memRepo) Insert(ctx context.Context, b models.Booking) error {
	r.mu.Lock()
	stall := r.stall
	r.mu.Unlock()
	if stall {
		<-ctx.Done()
		return ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, dup := r.rows[b.BookingID]; dup {
		return errors.New("duplicate booking id")
	}
	r.rows[b.BookingID] = b
	r.order = append(r.order, b.BookingID)
	return nil
}

func (r *memRepo) GetByBookingID(_ context.Context, id string) (models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.rows[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return b, nil
}

func (r *memRepo) ListAllOrderedByCreatedDesc(context.Context) ([]models.BookingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.BookingSummary, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		b := r.rows[r.order[i]]
		out = append(out, models.BookingSummary{BookingID: b.BookingID, Name: b.Contact.Name, Amount: b.Amount})
	}
	return out, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

func (r *memRepo) setInsertErr(err error) {
	r.mu.Lock()
	r.insertErr = err
	r.mu.Unlock()
}

type recordingPipeline struct {
	mu   sync.Mutex
	runs []models.Booking
}

func (p *recordingPipeline) Run(_ context.Context, b models.Booking) Report {
	p.mu.Lock()
	p.runs = append(p.runs, b)
	p.mu.Unlock()
	return Report{BookingID: b.BookingID}
}

func (p *recordingPipeline) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.runs)
}

type fakeTickets struct {
	mu        sync.Mutex
	stored    map[string]string
	renderErr error
	panicMsg  string
	renders   int
}

func newFakeTickets() *fakeTickets {
	return &fakeTickets{stored: map[string]string{}}
}

func (f *fakeTickets) Render(_ context.Context, b models.Booking) (string, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.renders++
	if f.renderErr != nil {
		return "", f.renderErr
	}
	path := "tickets/" + b.BookingID + ".pdf"
	f.stored[b.BookingID] = path
	return path, nil
}

func (f *fakeTickets) Path(id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.stored[id]
	return p, ok
}

type fakeMailer struct {
	mu       sync.Mutex
	paths    []string
	err      error
	panicMsg string
}

func (m *fakeMailer) SendTicket(_ context.Context, _ models.Booking, ticketPath string) error {
	if m.panicMsg != "" {
		panic(m.panicMsg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.paths = append(m.paths, ticketPath)
	return nil
}

type fakeLedger struct {
	mu   sync.Mutex
	rows []string
	err  error
}

func (l *fakeLedger) Append(_ context.Context, b models.Booking) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.rows = append(l.rows, b.BookingID)
	return nil
}
