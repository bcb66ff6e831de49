// Package llm provides the completion services behind /ask-llm: a Gemini
// client, a circuit breaker around it, and a stand-in for when no API key
// is configured.
package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aanand-mishra/students-records/internal/config"
)

// DefaultModel is used when the config leaves the model empty.
const DefaultModel = "gemini-2.0-flash"

// ErrDisabled is returned by Disabled for every call.
var ErrDisabled = errors.New("llm: completion service not configured")

// Completer matches insight.Completer.
type Completer interface {
	Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error)
}

// Disabled is the completer used without an API key.
type Disabled struct{}

func (Disabled) Complete(context.Context, string, string, int) (string, error) {
	return "", ErrDisabled
}

// New picks the completer for cfg. Without an API key it returns
// Disabled, so unmatched questions get the fallback answer. Otherwise it
// returns a Gemini client wrapped in a circuit breaker.
func New(ctx context.Context, cfg config.LLM, log *slog.Logger) (Completer, error) {
	if cfg.APIKey == "" {
		log.Warn("no LLM API key configured; free-form questions will get the fallback answer")
		return Disabled{}, nil
	}

	client, err := NewGenAI(ctx, cfg.APIKey, cfg.Model)
	if err != nil {
		return nil, err
	}

	log.Info("LLM completer ready", slog.String("engine", client.Name()))
	return NewBreaker(client, BreakerSettings{
		Name:                "llm",
		ConsecutiveFailures: cfg.BreakerFailures,
		Cooldown:            cfg.BreakerCooldown,
	}, log), nil
}

// BreakerSettings tunes NewBreaker.
type BreakerSettings struct {
	Name                string
	ConsecutiveFailures uint32
	Cooldown            time.Duration
}
