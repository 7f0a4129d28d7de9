package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// Processor is the contract shared by every payment implementation.
type Processor interface {
	ProcessPayment(ctx context.Context, amountCents int64) (bool, error)
}

// Breaker stops calling a failing processor for a while.  While open it
// fails fast with gobreaker.ErrOpenState, which the booking service treats
// like any other payment failure.
type Breaker struct {
	next Processor
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next.  Three consecutive failures open the circuit for
// openFor; a single trial request is then allowed through.
func NewBreaker(name string, next Processor, openFor time.Duration, log logrus.FieldLogger) *Breaker {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if openFor <= 0 {
		openFor = 10 * time.Second
	}
	return &Breaker{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     openFor,
			Interval:    0,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 2
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				log.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("circuit breaker state changed")
			},
			IsSuccessful: func(err error) bool {
				if err == nil {
					return true
				}
				// 4xx answers are the caller's fault, not the gateway's.
				var se StatusError
				return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
			},
		}),
	}
}

// State reports the current breaker state.
func (b *Breaker) State() gobreaker.State { return b.cb.State() }

// ProcessPayment implements service.PaymentProcessor.
func (b *Breaker) ProcessPayment(ctx context.Context, amountCents int64) (bool, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.ProcessPayment(ctx, amountCents)
	})
	if err != nil {
		return false, err
	}
	approved, _ := out.(bool)
	return approved, nil
}
