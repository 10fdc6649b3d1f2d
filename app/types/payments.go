package types

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type InitiatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Email       string          `json:"email"`
	FullName    string          `json:"full_name"`
	PhoneNumber string          `json:"phone_number"`
}

func NewInitiatePaymentRequestFromContext(ctx echo.Context) (*InitiatePaymentRequest, error) {
	var body InitiatePaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Currency = strings.ToUpper(strings.TrimSpace(body.Currency))
	body.Email = strings.TrimSpace(body.Email)
	body.FullName = strings.TrimSpace(body.FullName)
	body.PhoneNumber = strings.TrimSpace(body.PhoneNumber)

	return &body, nil
}

func (r *InitiatePaymentRequest) Validate() error {
	if r.Amount.Sign() <= 0 {
		return errors.New("amount must be > 0")
	}
	if r.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(r.Email, "@") {
		return errors.New("email is invalid")
	}
	if r.FullName == "" {
		return errors.New("full_name is required")
	}
	if r.Currency != "" && len(r.Currency) != 3 {
		return errors.New("currency must be 3 letters")
	}
	return nil
}

type VerifyPaymentRequest struct {
	TxRef string
}

func NewVerifyPaymentRequestFromContext(ctx echo.Context) *VerifyPaymentRequest {
	return &VerifyPaymentRequest{
		TxRef: strings.TrimSpace(ctx.QueryParam("tx_ref")),
	}
}

func (r *VerifyPaymentRequest) Validate() error {
	if r.TxRef == "" {
		return errors.New("tx_ref is required")
	}
	return nil
}

type ListPaymentsRequest struct {
	Email     string
	HasStatus bool
	Status    string
	Limit     int32
	Offset    int32
}

func NewListPaymentsRequestFromContext(ctx echo.Context) (*ListPaymentsRequest, error) {
	req := &ListPaymentsRequest{
		Email:  strings.TrimSpace(ctx.QueryParam("email")),
		Limit:  100,
		Offset: 0,
	}

	statusRaw := strings.ToUpper(strings.TrimSpace(ctx.QueryParam("status")))
	if statusRaw != "" {
		req.HasStatus = true
		req.Status = statusRaw
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListPaymentsRequest) Validate() error {
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	if r.HasStatus {
		switch r.Status {
		case "PENDING", "COMPLETED", "FAILED":
		default:
			return errors.New("invalid status")
		}
	}
	return nil
}

type Payment struct {
	TxRef                string `json:"tx_ref"`
	Amount               string `json:"amount"`
	Currency             string `json:"currency"`
	Email                string `json:"email"`
	FullName             string `json:"full_name"`
	PhoneNumber          string `json:"phone_number"`
	Status               string `json:"status"`
	CheckoutURL          string `json:"checkout_url,omitempty"`
	GatewayTransactionID string `json:"gateway_transaction_id,omitempty"`
	CreatedAt            string `json:"created_at"`
	UpdatedAt            string `json:"updated_at"`
}

type InitiatePaymentResponse struct {
	TxRef       string   `json:"tx_ref"`
	CheckoutURL string   `json:"checkout_url"`
	Payment     *Payment `json:"payment"`
}

type VerifyPaymentResponse struct {
	Payment *Payment        `json:"payment"`
	Chapa   json.RawMessage `json:"chapa"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
