package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type ChapaConfig struct {
	SecretKey   string
	BaseURL     string
	CallbackURL string
	ReturnURL   string
	HTTPTimeout time.Duration
}

type ChapaProvider struct {
	cfg    ChapaConfig
	client *http.Client
}

func NewChapaProvider(cfg ChapaConfig) *ChapaProvider {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.chapa.co/v1"
	}

	return &ChapaProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type chapaInitializeRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	TxRef       string `json:"tx_ref"`
	CallbackURL string `json:"callback_url"`
	ReturnURL   string `json:"return_url"`
	Title       string `json:"customization[title]"`
	Description string `json:"customization[description]"`
}

func (p *ChapaProvider) InitializeTransaction(ctx context.Context, input *InitializeInput) (*InitializeOutput, error) {
	payload := &chapaInitializeRequest{
		Amount:      input.Amount.String(),
		Currency:    input.Currency,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		TxRef:       input.TxRef,
		CallbackURL: p.cfg.CallbackURL,
		ReturnURL:   p.cfg.ReturnURL,
		Title:       input.Title,
		Description: input.Description,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: initialize returned status=%d body=%s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Status  json.RawMessage `json:"status"`
		Message string          `json:"message"`
		Data    struct {
			CheckoutURL string `json:"checkout_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: initialize decode: %v", ErrGatewayUnavailable, err)
	}
	if !statusFlagOK(envelope.Status) {
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, strings.TrimSpace(envelope.Message))
	}

	return &InitializeOutput{CheckoutURL: strings.TrimSpace(envelope.Data.CheckoutURL)}, nil
}

func (p *ChapaProvider) VerifyTransaction(ctx context.Context, txRef string) (*VerifyOutput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/transaction/verify/"+url.PathEscape(txRef), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.SecretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: verify returned status=%d body=%s", ErrGatewayUnavailable, resp.StatusCode, string(respBody))
	}

	var envelope struct {
		Data struct {
			Status string `json:"status"`
			TxRef  string `json:"tx_ref"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: verify decode: %v", ErrGatewayUnavailable, err)
	}

	output := &VerifyOutput{
		Status: strings.ToLower(strings.TrimSpace(envelope.Data.Status)),
		Raw:    json.RawMessage(respBody),
	}
	if s := strings.TrimSpace(envelope.Data.TxRef); s != "" {
		output.GatewayTransactionID = &s
	}

	return output, nil
}

// statusFlagOK accepts the two shapes Chapa uses for its envelope
// status: the bool true and the string "success".
func statusFlagOK(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return false
	}
	if trimmed == "true" {
		return true
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return strings.EqualFold(strings.TrimSpace(s), "success")
	}
	return false
}
