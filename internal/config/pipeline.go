package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// PipelineConfig carries the tuning knobs for the evaluation pipeline:
// the retry budget for model calls and the optional fault injection used
// to exercise failure paths in non-production environments.
type PipelineConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	RequestTimeout time.Duration

	ChaosEnabled     bool
	ChaosFailureRate float64
}

var (
	pipelineConfig *PipelineConfig
	pipelineOnce   sync.Once
)

func LoadPipelineConfig() *PipelineConfig {
	pipelineOnce.Do(func() {
		pipelineConfig = &PipelineConfig{
			MaxAttempts:      envInt("PIPELINE_MAX_ATTEMPTS", 3),
			BaseDelay:        envDuration("PIPELINE_BASE_DELAY", 4*time.Second),
			MaxDelay:         envDuration("PIPELINE_MAX_DELAY", 10*time.Second),
			RequestTimeout:   envDuration("PIPELINE_REQUEST_TIMEOUT", 90*time.Second),
			ChaosEnabled:     os.Getenv("PIPELINE_CHAOS_ENABLED") == "true",
			ChaosFailureRate: envFloat("PIPELINE_CHAOS_FAILURE_RATE", 0.05),
		}
	})
	return pipelineConfig
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && v >= 0 {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}
