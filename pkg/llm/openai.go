package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/noah-isme/iep-planner-api/pkg/config"
	appErrors "github.com/noah-isme/iep-planner-api/pkg/errors"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// OpenAIClient talks to any OpenAI-compatible chat completions endpoint such as Groq.
type OpenAIClient struct {
	cfg     config.LLMConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewOpenAIClient builds a client. A nil httpClient gets one bounded by cfg.Timeout.
func NewOpenAIClient(cfg config.LLMConfig, httpClient *http.Client, logger *zap.Logger) *OpenAIClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &OpenAIClient{cfg: cfg, http: httpClient, limiter: newLimiter(cfg.RequestsPerMinute), logger: logger}
}

// Provider names the backend for logs and health output.
func (c *OpenAIClient) Provider() string {
	if c.cfg.Provider == "" {
		return config.ProviderGroq
	}
	return c.cfg.Provider
}

// Complete performs one chat completion call.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.cfg.APIKey == "" {
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
	payload, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", classify(err, c.Provider())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", classify(err, c.Provider())
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("completion request rejected",
			zap.String("provider", c.Provider()),
			zap.Int("status", resp.StatusCode),
			zap.String("body", truncate(string(body), 300)))
		return "", appErrors.Wrap(fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 300)),
			appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, c.Provider()+" completion failed")
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", classify(fmt.Errorf("decode completion: %w", err), c.Provider())
	}
	if decoded.Error != nil {
		return "", classify(fmt.Errorf("api error: %s", decoded.Error.Message), c.Provider())
	}
	if len(decoded.Choices) == 0 {
		return "", appErrors.Clone(appErrors.ErrUpstream, c.Provider()+" returned no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

// truncate caps s at n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
