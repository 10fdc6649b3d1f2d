package provider

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrGatewayUnavailable covers transport failures and non-2xx
	// responses from the gateway.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrGatewayRejected means the gateway answered 200 but flagged the
	// transaction as failed in its own envelope.
	ErrGatewayRejected = errors.New("payment gateway rejected transaction")
)

type InitializeInput struct {
	TxRef       string
	Amount      decimal.Decimal
	Currency    string
	Email       string
	FirstName   string
	LastName    string
	PhoneNumber string

	Title       string
	Description string
}

type InitializeOutput struct {
	CheckoutURL string
}

type VerifyOutput struct {
	// Status is the gateway's reported transaction status string,
	// e.g. "success", "failed", "cancelled".
	Status string

	GatewayTransactionID *string

	// Raw is the gateway's verify response payload, returned to callers
	// verbatim.
	Raw json.RawMessage
}

type Gateway interface {
	InitializeTransaction(ctx context.Context, input *InitializeInput) (*InitializeOutput, error)
	VerifyTransaction(ctx context.Context, txRef string) (*VerifyOutput, error)
}
