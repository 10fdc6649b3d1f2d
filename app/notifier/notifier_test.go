package notifier

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Confirmation
	errs int
}

func (m *recordingMailer) SendConfirmation(c Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.errs > 0 {
		m.errs--
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, c)
	return nil
}

func (m *recordingMailer) delivered() []Confirmation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Confirmation(nil), m.sent...)
}

func TestDispatcherDeliversConfirmation(t *testing.T) {
	mailer := &recordingMailer{}
	d := NewDispatcher(mailer, 4)
	d.Start()

	d.EnqueueConfirmation(Confirmation{
		Email:    "guest@example.com",
		TxRef:    "TRX_abc",
		Amount:   decimal.NewFromInt(2500),
		Currency: "ETB",
	})
	d.Stop()

	sent := mailer.delivered()
	if len(sent) != 1 {
		t.Fatalf("expected one delivery, got %d", len(sent))
	}
	if sent[0].Email != "guest@example.com" || sent[0].TxRef != "TRX_abc" {
		t.Fatalf("unexpected confirmation: %+v", sent[0])
	}
}

func TestDispatcherSurvivesMailerFailure(t *testing.T) {
	mailer := &recordingMailer{errs: 1}
	d := NewDispatcher(mailer, 4)
	d.Start()

	d.EnqueueConfirmation(Confirmation{Email: "a@example.com", TxRef: "TRX_1"})
	d.EnqueueConfirmation(Confirmation{Email: "b@example.com", TxRef: "TRX_2"})
	d.Stop()

	sent := mailer.delivered()
	if len(sent) != 1 || sent[0].TxRef != "TRX_2" {
		t.Fatalf("expected delivery to continue after a failure, got %+v", sent)
	}
}

func TestEnqueueDoesNotBlockOnFullQueue(t *testing.T) {
	// Worker never started, so the queue cannot drain.
	d := NewDispatcher(&recordingMailer{}, 1)

	done := make(chan struct{})
	go func() {
		d.EnqueueConfirmation(Confirmation{TxRef: "TRX_1"})
		d.EnqueueConfirmation(Confirmation{TxRef: "TRX_2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue blocked on a full queue")
	}
}
