package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"
	"boatbooking/internal/drafts"
	"boatbooking/internal/payments"
	"boatbooking/internal/uploads"
	"boatbooking/internal/utils"
)

type UploadStore interface {
	Store(ctx context.Context, doc models.IDDocument) (string, error)
}

type BookingRepo interface {
	Insert(ctx context.Context, b models.Booking) error
	GetByBookingID(ctx context.Context, bookingID string) (models.Booking, error)
	ListAllOrderedByCreatedDesc(ctx context.Context) ([]models.BookingSummary, error)
}

type PipelineRunner interface {
	Run(ctx context.Context, b models.Booking) Report
}

// BookingService owns the draft -> booking state machine.
type BookingService struct {
	Uploads     UploadStore
	Gateway     payments.Gateway
	Drafts      drafts.Store
	Bookings    BookingRepo
	SideEffects PipelineRunner
	Tickets     TicketRenderer

	PricePerPerson int64 // major units
	Currency       string
	DraftTTL       time.Duration
	MaxUploadBytes int64
	// CommitTimeout bounds the locked section of Verify. It must stay below
	// the draft lock lease so the lock cannot lapse mid-commit.
	CommitTimeout time.Duration

	Now          func() time.Time
	NewToken     func() (string, error)
	NewBookingID func() (string, error)
}

type InitiateInput struct {
	Date           string `json:"date" validate:"required"`
	Time           string `json:"time" validate:"required"`
	Route          string `json:"route" validate:"required"`
	Persons        int    `json:"persons" validate:"min=1,max=50"`
	ChildrenUnder3 int    `json:"children_under3" validate:"min=0,max=50"`
	Name           string `json:"name" validate:"required"`
	Phone          string `json:"phone" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"required"`
	IDType         string `json:"id_type" validate:"required"`

	IDDocument models.IDDocument `json:"-" validate:"-"`
}

type InitiateResult struct {
	Token    string `json:"token"`
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"`
	TestMode bool   `json:"test_mode"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Persons  int    `json:"persons"`
}

type VerifyInput struct {
	Token     string
	OrderID   string
	PaymentID string
	Signature string
}

type VerifyResult struct {
	BookingID string `json:"booking_id"`
	TestMode  bool   `json:"test_mode"`
	Report    Report `json:"side_effects"`
}

// Amount is the charge in minor units. Children under 3 ride free.
// Negative inputs and products that do not fit in an int64 are rejected.
func Amount(persons int, pricePerPerson int64) (int64, error) {
	if persons < 0 || pricePerPerson < 0 {
		return 0, domain.ValidationError{Field: "persons", Msg: "amount inputs must not be negative"}
	}
	if pricePerPerson > math.MaxInt64/100 {
		return 0, domain.ValidationError{Field: "persons", Msg: "price per person is too large"}
	}
	unit := utils.MinorUnits(pricePerPerson)
	if unit != 0 && int64(persons) > math.MaxInt64/unit {
		return 0, domain.ValidationError{Field: "persons", Msg: "amount overflows"}
	}
	return int64(persons) * unit, nil
}

// Initiate stores the ID document, opens a gateway order and parks a draft
// under a fresh token. Nothing is written to the booking table.
func (s BookingService) Initiate(ctx context.Context, in InitiateInput) (InitiateResult, error) {
	reqID := utils.RequestIDFromContext(ctx)
	in = normalizeInitiate(in)
	if err := validateStruct(in); err != nil {
		return InitiateResult{}, err
	}
	if len(in.IDDocument.Data) == 0 {
		return InitiateResult{}, domain.ValidationError{Field: "id_file", Msg: "identity document is required"}
	}
	if _, _, err := uploads.CheckDocument(in.IDDocument, s.MaxUploadBytes); err != nil {
		return InitiateResult{}, domain.ValidationError{Field: "id_file", Msg: err.Error(), Err: err}
	}

	amount, err := Amount(in.Persons, s.pricePerPerson())
	if err != nil {
		return InitiateResult{}, err
	}

	ref, err := s.Uploads.Store(ctx, in.IDDocument)
	if err != nil {
		utils.LogEvent(reqID, "booking", "initiate", "upload failed: "+err.Error())
		return InitiateResult{}, domain.UploadError{Err: err}
	}

	currency := s.currency()
	order, err := s.Gateway.CreateOrder(ctx, amount, currency)
	if err != nil {
		utils.LogEvent(reqID, "booking", "initiate", "create order failed: "+err.Error())
		return InitiateResult{}, domain.GatewayOrderError{Err: err}
	}

	token, err := s.newToken()
	if err != nil {
		return InitiateResult{}, domain.InternalError{Msg: "could not issue booking token", Err: err}
	}

	now := s.now()
	draft := models.BookingDraft{
		Token:          token,
		Date:           in.Date,
		Time:           in.Time,
		Route:          in.Route,
		Persons:        in.Persons,
		ChildrenUnder3: in.ChildrenUnder3,
		Contact: models.Contact{
			Name:    in.Name,
			Phone:   in.Phone,
			Email:   in.Email,
			Address: in.Address,
		},
		IDType:        in.IDType,
		IDDocumentRef: ref,
		Amount:        amount,
		OrderID:       order.ID,
		TestMode:      order.TestMode,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.draftTTL()),
	}
	if err := s.Drafts.Put(ctx, draft); err != nil {
		return InitiateResult{}, domain.InternalError{Msg: "could not save booking draft", Err: err}
	}

	utils.Logger(reqID, "booking", "initiate").WithFields(map[string]interface{}{
		"order_id":  order.ID,
		"amount":    amount,
		"test_mode": order.TestMode,
	}).Info("draft created")

	keyID := ""
	if !order.TestMode {
		keyID = s.Gateway.KeyID()
	}
	return InitiateResult{
		Token:    token,
		OrderID:  order.ID,
		Amount:   amount,
		Currency: currency,
		KeyID:    keyID,
		TestMode: order.TestMode,
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Persons:  in.Persons,
	}, nil
}

// Verify turns a paid draft into a booking exactly once. All checks and the
// insert run under the token lock, so a concurrent second submit finds no
// draft and gets ErrInvalidToken.
func (s BookingService) Verify(ctx context.Context, in VerifyInput) (VerifyResult, error) {
	reqID := utils.RequestIDFromContext(ctx)
	token := strings.TrimSpace(in.Token)
	if token == "" {
		return VerifyResult{}, domain.ErrInvalidToken
	}

	unlock, err := s.Drafts.Lock(ctx, token)
	if err != nil {
		if errors.Is(err, drafts.ErrLockTimeout) {
			return VerifyResult{}, domain.ConflictError{Resource: "booking token", Msg: "verification already in progress", Err: err}
		}
		return VerifyResult{}, domain.InternalError{Msg: "could not lock booking draft", Err: err}
	}
	commitCtx, cancel := context.WithTimeout(ctx, s.commitTimeout())
	booking, err := s.commit(commitCtx, token, in)
	cancel()
	unlock()
	if err != nil {
		utils.LogEvent(reqID, "booking", "verify", "rejected: "+err.Error())
		return VerifyResult{}, err
	}

	utils.Logger(reqID, "booking", "verify").WithFields(map[string]interface{}{
		"booking_id": booking.BookingID,
		"test_mode":  booking.TestMode,
	}).Info("booking committed")

	res := VerifyResult{BookingID: booking.BookingID, TestMode: booking.TestMode}
	if s.SideEffects != nil {
		res.Report = s.SideEffects.Run(context.WithoutCancel(ctx), booking)
	}
	return res, nil
}

// commit must be called with the token lock held.
func (s BookingService) commit(ctx context.Context, token string, in VerifyInput) (models.Booking, error) {
	draft, ok, err := s.Drafts.Get(ctx, token)
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "could not load booking draft", Err: err}
	}
	if !ok {
		return models.Booking{}, domain.ErrInvalidToken
	}
	if strings.TrimSpace(in.OrderID) != draft.OrderID {
		return models.Booking{}, domain.ErrOrderMismatch
	}
	if !draft.TestMode {
		if err := s.Gateway.VerifySignature(ctx, draft.OrderID, in.PaymentID, in.Signature); err != nil {
			if !errors.Is(err, domain.ErrSignatureInvalid) {
				err = fmt.Errorf("%w: %v", domain.ErrSignatureInvalid, err)
			}
			return models.Booking{}, err
		}
	}

	bookingID, err := s.newBookingID()
	if err != nil {
		return models.Booking{}, domain.InternalError{Msg: "could not issue booking id", Err: err}
	}
	booking := models.BookingFromDraft(draft, bookingID, strings.TrimSpace(in.PaymentID), s.now())
	if err := s.Bookings.Insert(ctx, booking); err != nil {
		return models.Booking{}, domain.PersistenceError{Err: err}
	}

	// the booking exists now; the delete must not inherit an expiring deadline
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.Drafts.Delete(delCtx, token); err != nil {
		utils.Logger(utils.RequestIDFromContext(ctx), "booking", "verify").
			WithError(err).WithField("booking_id", bookingID).
			Warn("draft delete failed after commit")
	}
	return booking, nil
}

func (s BookingService) GetBooking(ctx context.Context, bookingID string) (models.Booking, error) {
	bookingID = strings.TrimSpace(bookingID)
	if bookingID == "" {
		return models.Booking{}, domain.ValidationError{Field: "booking_id", Msg: "booking id is required"}
	}
	return s.Bookings.GetByBookingID(ctx, bookingID)
}

func (s BookingService) ListBookings(ctx context.Context) ([]models.BookingSummary, error) {
	return s.Bookings.ListAllOrderedByCreatedDesc(ctx)
}

// TicketPath returns the stored ticket, rendering it again when the file is gone.
func (s BookingService) TicketPath(ctx context.Context, bookingID string) (string, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return "", err
	}
	if s.Tickets == nil {
		return "", domain.InternalError{Msg: "tickets not configured"}
	}
	if path, ok := s.Tickets.Path(b.BookingID); ok {
		return path, nil
	}
	utils.LogEvent(utils.RequestIDFromContext(ctx), "booking", "ticket", "regenerating ticket booking_id="+b.BookingID)
	path, err := s.Tickets.Render(ctx, b)
	if err != nil {
		return "", domain.InternalError{Msg: "could not render ticket", Err: err}
	}
	return path, nil
}

// RerunSideEffects repeats the post-commit pipeline for a stored booking.
func (s BookingService) RerunSideEffects(ctx context.Context, bookingID string) (Report, error) {
	b, err := s.GetBooking(ctx, bookingID)
	if err != nil {
		return Report{}, err
	}
	if s.SideEffects == nil {
		return Report{BookingID: b.BookingID}, nil
	}
	return s.SideEffects.Run(ctx, b), nil
}

func (s BookingService) pricePerPerson() int64 {
	if s.PricePerPerson > 0 {
		return s.PricePerPerson
	}
	return 500
}

func (s BookingService) currency() string {
	if s.Currency != "" {
		return s.Currency
	}
	return "INR"
}

func (s BookingService) draftTTL() time.Duration {
	if s.DraftTTL > 0 {
		return s.DraftTTL
	}
	return 30 * time.Minute
}

func (s BookingService) commitTimeout() time.Duration {
	if s.CommitTimeout > 0 {
		return s.CommitTimeout
	}
	return drafts.DefaultLockLease / 3
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s BookingService) newToken() (string, error) {
	if s.NewToken != nil {
		return s.NewToken()
	}
	return NewToken()
}

func (s BookingService) newBookingID() (string, error) {
	if s.NewBookingID != nil {
		return s.NewBookingID()
	}
	return NewBookingID()
}

// NewToken returns 16 random bytes, base64url encoded without padding.
func NewToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewBookingID returns "B" followed by 10 uppercase hex characters.
func NewBookingID() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "B" + strings.ToUpper(hex.EncodeToString(b)), nil
}

func normalizeInitiate(in InitiateInput) InitiateInput {
	in.Date = utils.TrimOrEmpty(in.Date)
	in.Time = utils.TrimOrEmpty(in.Time)
	in.Route = utils.NormalizeSpace(in.Route)
	in.Name = utils.NormalizeSpace(in.Name)
	in.Phone = utils.TrimOrEmpty(in.Phone)
	in.Email = utils.TrimOrEmpty(in.Email)
	in.Address = utils.NormalizeSpace(in.Address)
	in.IDType = utils.TrimOrEmpty(in.IDType)
	return in
}
