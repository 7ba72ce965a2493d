package payments

import (
	"context"

	"boatbooking/internal/domain/models"

	"github.com/sirupsen/logrus"
)

// Fallback tries the primary gateway and, when it fails, mints a test-mode
// order from Secondary. Orders coming from Secondary are tagged TestMode, so
// their verification is skipped explicitly rather than inferred.
type Fallback struct {
	Primary   Gateway
	Secondary Gateway
}

func (f Fallback) CreateOrder(ctx context.Context, amount int64, currency string) (models.PaymentOrder, error) {
	order, err := f.Primary.CreateOrder(ctx, amount, currency)
	if err == nil {
		return order, nil
	}
	logrus.WithError(err).WithField("amount", amount).Warn("payment gateway unavailable, falling back to test-mode order")
	order, ferr := f.Secondary.CreateOrder(ctx, amount, currency)
	if ferr != nil {
		return models.PaymentOrder{}, ferr
	}
	order.TestMode = true
	return order, nil
}

func (f Fallback) VerifySignature(ctx context.Context, orderID, paymentID, signature string) error {
	return f.Primary.VerifySignature(ctx, orderID, paymentID, signature)
}

func (f Fallback) KeyID() string { return f.Primary.KeyID() }
