package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *ChapaProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewChapaProvider(ChapaConfig{
		SecretKey:   "CHASECK_TEST-secret",
		BaseURL:     server.URL,
		CallbackURL: "https://travel.example/payments/callback",
		ReturnURL:   "https://travel.example/bookings",
	})
}

func TestInitializeTransactionSendsExpectedRequest(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	var gotBody map[string]string

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Hosted Link","data":{"checkout_url":"https://checkout.chapa.co/checkout/payment/abc123"}}`))
	})

	output, err := p.InitializeTransaction(context.Background(), &InitializeInput{
		TxRef:       "TRX_0123456789abcdef01234567",
		Amount:      decimal.RequireFromString("1500.50"),
		Currency:    "ETB",
		Email:       "guest@example.com",
		FirstName:   "Abebe Bekele",
		PhoneNumber: "0911000000",
		Title:       "Zemen Travel Booking",
		Description: "Payment for travel booking",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotMethod != http.MethodPost || gotPath != "/transaction/initialize" {
		t.Fatalf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer CHASECK_TEST-secret" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotBody["amount"] != "1500.50" {
		t.Fatalf("unexpected amount: %q", gotBody["amount"])
	}
	if gotBody["currency"] != "ETB" || gotBody["email"] != "guest@example.com" {
		t.Fatalf("unexpected payload: %+v", gotBody)
	}
	if gotBody["tx_ref"] != "TRX_0123456789abcdef01234567" {
		t.Fatalf("unexpected tx_ref: %q", gotBody["tx_ref"])
	}
	if gotBody["callback_url"] != "https://travel.example/payments/callback" {
		t.Fatalf("unexpected callback_url: %q", gotBody["callback_url"])
	}
	if gotBody["return_url"] != "https://travel.example/bookings" {
		t.Fatalf("unexpected return_url: %q", gotBody["return_url"])
	}
	if gotBody["customization[title]"] != "Zemen Travel Booking" {
		t.Fatalf("unexpected customization title: %q", gotBody["customization[title]"])
	}

	if output.CheckoutURL != "https://checkout.chapa.co/checkout/payment/abc123" {
		t.Fatalf("unexpected checkout url: %q", output.CheckoutURL)
	}
}

func TestInitializeTransactionAcceptsStringStatusFlag(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","data":{"checkout_url":"https://checkout.chapa.co/x"}}`))
	})

	output, err := p.InitializeTransaction(context.Background(), &InitializeInput{
		TxRef:  "TRX_abc",
		Amount: decimal.NewFromInt(10),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if output.CheckoutURL != "https://checkout.chapa.co/x" {
		t.Fatalf("unexpected checkout url: %q", output.CheckoutURL)
	}
}

func TestInitializeTransactionNon200IsUnavailable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	})

	_, err := p.InitializeTransaction(context.Background(), &InitializeInput{TxRef: "TRX_abc", Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestInitializeTransactionFalsyStatusIsRejected(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid currency"}`))
	})

	_, err := p.InitializeTransaction(context.Background(), &InitializeInput{TxRef: "TRX_abc", Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrGatewayRejected) {
		t.Fatalf("expected ErrGatewayRejected, got %v", err)
	}
}

func TestInitializeTransactionConnectionErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	p := NewChapaProvider(ChapaConfig{SecretKey: "x", BaseURL: server.URL})
	_, err := p.InitializeTransaction(context.Background(), &InitializeInput{TxRef: "TRX_abc", Amount: decimal.NewFromInt(10)})
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestVerifyTransactionParsesStatusAndRaw(t *testing.T) {
	var gotPath, gotAuth string
	body := `{"status":"success","message":"Payment details","data":{"status":"Success","tx_ref":"TRX_abc","amount":100,"currency":"ETB"}}`

	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(body))
	})

	output, err := p.VerifyTransaction(context.Background(), "TRX_abc")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if gotPath != "/transaction/verify/TRX_abc" {
		t.Fatalf("unexpected verify path: %q", gotPath)
	}
	if gotAuth != "Bearer CHASECK_TEST-secret" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if output.Status != "success" {
		t.Fatalf("expected lower-cased status, got %q", output.Status)
	}
	if output.GatewayTransactionID == nil || *output.GatewayTransactionID != "TRX_abc" {
		t.Fatalf("unexpected gateway transaction id: %v", output.GatewayTransactionID)
	}
	if string(output.Raw) != body {
		t.Fatalf("expected raw body to be preserved, got %s", output.Raw)
	}
}

func TestVerifyTransactionNon200IsUnavailable(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"transaction not found"}`))
	})

	_, err := p.VerifyTransaction(context.Background(), "TRX_missing")
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
}

func TestStatusFlagOK(t *testing.T) {
	cases := []struct {
		raw  string
		want bool
	}{
		{`true`, true},
		{`"success"`, true},
		{`"Success"`, true},
		{`false`, false},
		{`"failed"`, false},
		{`null`, false},
		{``, false},
		{`1`, false},
	}
	for _, tc := range cases {
		if got := statusFlagOK(json.RawMessage(tc.raw)); got != tc.want {
			t.Errorf("statusFlagOK(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
