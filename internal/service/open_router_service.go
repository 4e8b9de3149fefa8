package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aryasetiadi/cv-evaluator/internal/config"
	"github.com/aryasetiadi/cv-evaluator/internal/logger"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// OpenRouterService implements Generator against the OpenRouter chat
// completions API. Used as an alternate backend when AI_PROVIDER=openrouter.
type OpenRouterService struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewOpenRouterService() *OpenRouterService {
	cfg := config.LoadOpenRouterConfig()
	return &OpenRouterService{
		client: resty.New(),
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
}

func (s *OpenRouterService) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+s.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model":       s.model,
			"temperature": temperature,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post(openRouterURL)
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}

	if resp.IsError() {
		err := fmt.Errorf("openrouter: status %d: %s", resp.StatusCode(), logger.Truncate(resp.String(), 200))
		if code := resp.StatusCode(); code >= 400 && code < 500 && code != 429 {
			return "", errors.Join(ErrPermanent, err)
		}
		return "", err
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("openrouter: empty completion")
	}
	return text, nil
}
