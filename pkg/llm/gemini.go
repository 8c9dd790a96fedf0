package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/noah-isme/iep-planner-api/pkg/config"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

const defaultGeminiModel = "gemini-2.0-flash"

// GeminiClient completes prompts through the Gemini API.
type GeminiClient struct {
	cfg     config.LLMConfig
	client  *genai.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewGeminiClient creates the SDK client. The Groq default model is swapped for a Gemini one.
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Model == "" || cfg.Model == "llama3-8b-8192" {
		cfg.Model = defaultGeminiModel
	}
	c := &GeminiClient{cfg: cfg, limiter: newLimiter(cfg.RequestsPerMinute), logger: logger}
	if cfg.APIKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Provider names the backend.
func (c *GeminiClient) Provider() string { return config.ProviderGemini }

// Complete performs one GenerateContent call.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.client == nil {
		return "", notConfigured(c.Provider())
	}
	if !c.limiter.Allow() {
		return "", rateLimited(c.Provider())
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req = withDefaults(req, c.cfg)
	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(*req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), genCfg)
	if err != nil {
		c.logger.Warn("gemini completion failed", zap.String("model", req.Model), zap.Error(err))
		return "", classify(err, c.Provider())
	}
	text := resp.Text()
	if text == "" {
		return "", appErrors.Clone(appErrors.ErrUpstream, "gemini returned no text")
	}
	return text, nil
}
