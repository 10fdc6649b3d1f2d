// Package notifier delivers payment confirmation emails out-of-band.
// Enqueueing never blocks the request path; delivery is best-effort.
package notifier

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/zemen-travel/ms-go-payments/app/factory"
)

type Confirmation struct {
	Email    string
	TxRef    string
	Amount   decimal.Decimal
	Currency string
}

type Mailer interface {
	SendConfirmation(c Confirmation) error
}

type Dispatcher struct {
	mailer Mailer
	queue  chan Confirmation
	logger logrus.FieldLogger

	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewDispatcher(mailer Mailer, queueSize int) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		mailer: mailer,
		queue:  make(chan Confirmation, queueSize),
		logger: factory.NewModuleLogger("payments-notifier"),
	}
}

// Start launches the delivery worker. Safe to call once.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.wg.Add(1)
		go d.run()
	})
}

// Stop drains the queue and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}

// EnqueueConfirmation hands a confirmation to the worker. A full queue
// drops the message; the verify flow must never wait on email.
func (d *Dispatcher) EnqueueConfirmation(c Confirmation) {
	select {
	case d.queue <- c:
	default:
		d.logger.WithFields(logrus.Fields{
			"tx_ref": c.TxRef,
			"email":  c.Email,
		}).Warn("Notification queue full, confirmation dropped")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for c := range d.queue {
		if err := d.mailer.SendConfirmation(c); err != nil {
			d.logger.WithError(err).WithFields(logrus.Fields{
				"tx_ref": c.TxRef,
				"email":  c.Email,
			}).Error("Confirmation email failed")
			continue
		}
		d.logger.WithFields(logrus.Fields{
			"tx_ref": c.TxRef,
			"email":  c.Email,
		}).Info("Confirmation email sent")
	}
}
