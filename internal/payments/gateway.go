// Package payments adapts the payment provider behind a small strategy
// interface. The live strategy talks to Razorpay; the simulated one mints
// test-mode orders locally so the booking flow runs without credentials.
package payments

import (
	"context"

	"boatbooking/internal/domain/models"
)

type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string) (models.PaymentOrder, error)
	VerifySignature(ctx context.Context, orderID, paymentID, signature string) error
	// KeyID is the public key handed to the client-side checkout. Empty in test mode.
	KeyID() string
}
