// Package handlers holds the gin handlers of the booking API.
package handlers

import (
	"context"

	"boatbooking/internal/domain/models"
	"boatbooking/internal/http/middleware"
	"boatbooking/internal/services"
)

type BookingFlow interface {
	Initiate(ctx context.Context, in services.InitiateInput) (services.InitiateResult, error)
	Verify(ctx context.Context, in services.VerifyInput) (services.VerifyResult, error)
	GetBooking(ctx context.Context, bookingID string) (models.Booking, error)
	ListBookings(ctx context.Context) ([]models.BookingSummary, error)
	TicketPath(ctx context.Context, bookingID string) (string, error)
	RerunSideEffects(ctx context.Context, bookingID string) (services.Report, error)
}

type SlotSource interface {
	ForDate(date string) ([]string, error)
	All() (map[string][]string, error)
	Replace(date string, times []string) ([]string, error)
}

type Handler struct {
	Bookings       BookingFlow
	Slots          SlotSource
	Admin          middleware.AdminCredentials
	MaxUploadBytes int64
	// Ping checks the database; nil reports the database as not configured.
	Ping func(ctx context.Context) error
}
