// Package payment provides the processors the booking service charges
// guests through.  None of them moves real money: Simulator approves
// locally and Gateway talks to an external payment endpoint.
package payment

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Simulator approves every charge, optionally declining amounts above a
// configured ceiling.  It is the default processor.
type Simulator struct {
	// DeclineAboveCents declines charges strictly greater than this amount.
	// Zero disables the ceiling.
	DeclineAboveCents int64
	Log               logrus.FieldLogger
}

// ProcessPayment implements service.PaymentProcessor.
func (s Simulator) ProcessPayment(ctx context.Context, amountCents int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	approved := amountCents >= 0 && (s.DeclineAboveCents <= 0 || amountCents <= s.DeclineAboveCents)
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"amount_cents": amountCents,
			"approved":     approved,
		}).Info("simulated payment processed")
	}
	return approved, nil
}
