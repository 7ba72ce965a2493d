package payments

import (
	"context"
	"errors"
	"fmt"

	"boatbooking/internal/domain"
	"boatbooking/internal/domain/models"

	razorpay "github.com/razorpay/razorpay-go"
	rzputils "github.com/razorpay/razorpay-go/utils"
)

// orderCreator is the slice of the Razorpay SDK we call; *resources.Order satisfies it.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Razorpay is the live gateway strategy.
type Razorpay struct {
	keyID  string
	secret string
	orders orderCreator
}

func NewRazorpay(keyID, secret string) *Razorpay {
	client := razorpay.NewClient(keyID, secret)
	return &Razorpay{keyID: keyID, secret: secret, orders: client.Order}
}

func (r *Razorpay) KeyID() string { return r.keyID }

// CreateOrder registers an auto-captured order. The SDK has no context
// support, so ctx is only checked before the call.
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency string) (models.PaymentOrder, error) {
	if err := ctx.Err(); err != nil {
		return models.PaymentOrder{}, err
	}
	body, err := r.orders.Create(map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return models.PaymentOrder{}, fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return models.PaymentOrder{}, errors.New("razorpay create order: response has no id")
	}
	return models.PaymentOrder{ID: id, Amount: amount, Currency: currency}, nil
}

// VerifySignature checks the checkout HMAC over "order_id|payment_id".
func (r *Razorpay) VerifySignature(_ context.Context, orderID, paymentID, signature string) error {
	if orderID == "" || paymentID == "" || signature == "" {
		return domain.ErrSignatureInvalid
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	if !rzputils.VerifyPaymentSignature(params, signature, r.secret) {
		return domain.ErrSignatureInvalid
	}
	return nil
}
