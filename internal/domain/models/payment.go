package models

// PaymentOrder is the gateway's view of an amount to collect.
// TestMode marks orders synthesized locally that carry no real payment.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	TestMode bool   `json:"test_mode"`
}

// IDDocument is the uploaded identity proof as received from the client.
type IDDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}
