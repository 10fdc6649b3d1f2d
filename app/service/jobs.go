package service

import (
	"context"
	"time"
)

// RunReconcileBatch re-verifies payments that have sat in PENDING past
// the configured staleness window. Transitions follow the same rules as
// the verify endpoint, including the confirmation enqueue.
func (s *PaymentService) RunReconcileBatch(ctx context.Context) error {
	now := time.Now().UTC()
	before := now.Add(-s.paymentsCfg.ReconcileStaleAfter)
	items, err := s.paymentRepo.ListStalePending(ctx, before, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil {
			continue
		}

		output, err := s.gateway.VerifyTransaction(ctx, payment.TxRef)
		if err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		if _, err := s.applyGatewayStatus(ctx, payment, output, true); err != nil {
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	return firstErr
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
