package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"boatbooking/internal/domain/models"
)

// TestOrderPrefix keeps synthetic order ids recognisable in logs and dashboards.
// Behaviour never depends on it: the TestMode flag travels with the draft.
const TestOrderPrefix = "order_test_"

// Simulated mints local test-mode orders. There is nothing to verify.
type Simulated struct{}

func (Simulated) CreateOrder(_ context.Context, amount int64, currency string) (models.PaymentOrder, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return models.PaymentOrder{}, fmt.Errorf("simulated order id: %w", err)
	}
	return models.PaymentOrder{
		ID:       TestOrderPrefix + hex.EncodeToString(b),
		Amount:   amount,
		Currency: currency,
		TestMode: true,
	}, nil
}

func (Simulated) VerifySignature(context.Context, string, string, string) error {
	return nil
}

func (Simulated) KeyID() string { return "" }
