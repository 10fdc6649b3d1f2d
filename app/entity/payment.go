package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusPending   int32 = 1
	StatusCompleted int32 = 10
	StatusFailed    int32 = 20
)

// StatusName maps a stored status code to its API representation.
func StatusName(status int32) string {
	switch status {
	case StatusPending:
		return "PENDING"
	case StatusCompleted:
		return "COMPLETED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// TerminalStatus reports whether a payment can no longer transition.
func TerminalStatus(status int32) bool {
	return status == StatusCompleted || status == StatusFailed
}

type Payment struct {
	ID uint64

	TxRef string

	Amount   decimal.Decimal
	Currency string

	Email       string
	FullName    string
	PhoneNumber string

	Status int32

	CheckoutURL          *string
	GatewayTransactionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
