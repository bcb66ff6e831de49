package llm

import (
	"context"
	"log/slog"

	"github.com/sony/gobreaker"
)

// Breaker stops calling the wrapped completer after repeated failures
// and fails fast with gobreaker.ErrOpenState until the cooldown passes.
type Breaker struct {
	next Completer
	cb   *gobreaker.CircuitBreaker
}

// NewBreaker wraps next. Zero settings fall back to 5 failures and a 30s
// cooldown.
func NewBreaker(next Completer, s BreakerSettings, log *slog.Logger) *Breaker {
	failures := s.ConsecutiveFailures
	if failures == 0 {
		failures = 5
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.Cooldown, // gobreaker applies 60s when zero
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				slog.String("name", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		text, err := b.next.Complete(ctx, system, prompt, maxTokens)
		return text, err
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

// State reports the breaker state, for logs and tests.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
