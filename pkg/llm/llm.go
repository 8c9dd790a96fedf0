// Package llm wraps the chat-completion providers used to draft learning plans.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/iep-planner-api/pkg/config"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 60 * time.Second

// CompletionRequest carries one prompt pair and its sampling parameters. Zero values take
// the configured defaults, except Temperature, which is only defaulted when nil so that 0 can be requested.
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Completer returns the completion text for a request. Implementations make exactly one
// upstream attempt and report failures as ErrUpstream or ErrTimeout.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	Provider() string
}

// New selects the provider named in cfg.
func New(cfg config.LLMConfig, logger *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(context.Background(), cfg, logger)
	case config.ProviderGroq, "":
		return NewOpenAIClient(cfg, nil, logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
}

func withDefaults(req CompletionRequest, cfg config.LLMConfig) CompletionRequest {
	if req.Model == "" {
		req.Model = cfg.Model
	}
	if req.Temperature == nil {
		t := cfg.Temperature
		req.Temperature = &t
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = cfg.MaxTokens
	}
	return req
}

func notConfigured(provider string) error {
	return appErrors.Clone(appErrors.ErrUpstream, provider+" completion is not configured")
}

func rateLimited(provider string) error {
	return appErrors.Clone(appErrors.ErrUpstream, provider+" request budget exhausted")
}

// classify maps transport failures onto the upstream error taxonomy.
func classify(err error, provider string) error {
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, provider+" completion timed out")
	}
	return appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, provider+" completion failed")
}
