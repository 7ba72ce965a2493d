// Package drafts holds pending, unpaid reservations between payment
// initiation and verification.
//
// Every implementation guarantees per-token atomicity: Put, Get and Delete on
// the same token never interleave, and Lock gives callers a critical section
// spanning several calls on one token.
package drafts

import (
	"context"
	"errors"

	"boatbooking/internal/domain/models"
)

// ErrLockTimeout is returned when a token stays locked past the wait budget.
var ErrLockTimeout = errors.New("draft lock wait timed out")

type Store interface {
	Put(ctx context.Context, draft models.BookingDraft) error
	// Get reports false for unknown and expired tokens.
	Get(ctx context.Context, token string) (models.BookingDraft, bool, error)
	Delete(ctx context.Context, token string) error
	// Lock blocks until the caller owns token. unlock must be called exactly once.
	Lock(ctx context.Context, token string) (unlock func(), err error)
	// Sweep removes drafts that expired before now and returns how many were removed.
	Sweep(ctx context.Context) (int, error)
}
