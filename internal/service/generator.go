package service

import (
	"context"
	"errors"
)

// ErrPermanent marks generation failures that will not succeed on retry
// (bad request, auth, quota configuration). The gateway gives up on these
// immediately instead of burning its attempt budget.
var ErrPermanent = errors.New("permanent generation error")

// Generator is the single contract a generation backend must satisfy.
// Implementations wrap one provider call; retries live in the Gateway.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}
