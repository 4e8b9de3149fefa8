package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aryasetiadi/cv-evaluator/internal/config"
	"github.com/aryasetiadi/cv-evaluator/internal/logger"
	"go.uber.org/zap"
)

// ErrMalformedResponse signals that the model answered but the answer could
// not be decoded into the requested shape. Callers substitute a neutral
// default instead of failing the whole pipeline; the network call is never
// repeated for this class of error.
var ErrMalformedResponse = errors.New("malformed model response")

// Gateway wraps a Generator with the resilience policy: transient failures
// are retried with exponential backoff, unparseable content degrades
// gracefully via ErrMalformedResponse.
type Gateway struct {
	gen            Generator
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	requestTimeout time.Duration
	log            *zap.Logger
}

func NewGateway(gen Generator, cfg *config.PipelineConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		gen:            gen,
		maxAttempts:    cfg.MaxAttempts,
		baseDelay:      cfg.BaseDelay,
		maxDelay:       cfg.MaxDelay,
		requestTimeout: cfg.RequestTimeout,
		log:            log,
	}
}

// Complete sends the prompt to the backend, retrying transient failures up
// to the attempt budget. The final error is propagated once the budget is
// exhausted.
func (g *Gateway) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, g.requestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if attempt > 1 {
			delay := g.backoff(attempt)
			g.log.Warn("retrying generation",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", g.maxAttempts),
				zap.Duration("delay", delay))

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return "", fmt.Errorf("context done during retry: %w", timeoutCtx.Err())
			}
		}

		out, err := g.gen.Generate(timeoutCtx, prompt, temperature)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if errors.Is(err, ErrPermanent) {
			return "", err
		}
		if timeoutCtx.Err() != nil {
			return "", lastErr
		}
		g.log.Warn("generation attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", g.maxAttempts, lastErr)
}

// backoff doubles the base delay per retry, capped at maxDelay.
func (g *Gateway) backoff(attempt int) time.Duration {
	delay := g.baseDelay << (attempt - 2)
	if delay > g.maxDelay || delay <= 0 {
		delay = g.maxDelay
	}
	return delay
}

// CompleteJSON runs Complete and decodes the response into out, tolerating
// the ```json fences models like to wrap their output in. A response that
// does not decode yields ErrMalformedResponse without another network call.
func (g *Gateway) CompleteJSON(ctx context.Context, prompt string, temperature float64, out any) error {
	raw, err := g.Complete(ctx, prompt, temperature)
	if err != nil {
		return err
	}

	cleaned := StripCodeFences(raw)
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		g.log.Warn("model returned unparseable JSON",
			zap.String("response", logger.Truncate(raw, 200)),
			zap.Error(err))
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// StripCodeFences removes a surrounding ```json ... ``` or ``` ... ```
// block, returning the inner content. Unfenced input passes through
// unchanged.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	// Drop the opening fence line (``` or ```json).
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}

	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
