// Package narrative produces free-text trading commentary from a hosted
// language model, with a rule-based fallback when none is configured.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderGoogle    = "google"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNone      = "none"
)

const (
	DefaultModel         = "gemini-2.0-flash"
	DefaultTimeout       = 60 * time.Second
	DefaultFallbackDelay = 500 * time.Millisecond

	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultOpenAIModel    = "gpt-4o"
	completionTokens      = 2000
	geminiOutputTokens    = 8192
	geminiTemperature     = 0.8
	anthropicVersion      = "2023-06-01"
	openAISystemPrompt    = "You are an expert weather-commodities trading analyst. Provide specific, actionable trading insights based on weather patterns. Use appropriate regional market instruments."
)

var defaultBaseURLs = map[string]string{
	ProviderGemini:    "https://generativelanguage.googleapis.com/v1beta",
	ProviderAnthropic: "https://api.anthropic.com",
	ProviderOpenAI:    "https://api.openai.com",
}

var geminiFallbackModels = []string{
	"gemini-2.0-flash",
	"gemini-2.5-flash",
	"gemini-2.0-flash-lite",
	"gemini-flash-latest",
	"gemini-pro-latest",
}

var (
	ErrNotConfigured   = errors.New("narrative: generator not configured")
	ErrUnknownProvider = errors.New("narrative: unknown provider")
	ErrEmptyResponse   = errors.New("narrative: empty response")
)

// Config selects and authenticates the upstream model.
type Config struct {
	Provider      string
	APIKey        string
	Model         string
	Timeout       time.Duration
	FallbackDelay time.Duration
	// BaseURLs overrides the API root per provider name.
	BaseURLs map[string]string
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// APIError is a non-2xx reply from a model provider.
type APIError struct {
	Provider string
	Model    string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
}

// Result is a generated analysis.
type Result struct {
	Text     string
	Provider string
	Model    string
}

// Option configures a Generator.
type Option func(*Generator)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) { g.client = client }
}

// WithSleeper replaces the wait between Gemini fallback attempts.
func WithSleeper(s Sleeper) Option {
	return func(g *Generator) { g.sleep = s }
}

// Generator calls the configured model provider.
type Generator struct {
	cfg    Config
	client *http.Client
	sleep  Sleeper
	log    logrus.FieldLogger
}

func NewGenerator(cfg Config, log logrus.FieldLogger, opts ...Option) *Generator {
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.FallbackDelay < 0 {
		cfg.FallbackDelay = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	g := &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		sleep:  sleepContext,
		log:    log.WithField("component", "narrative"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Available reports whether a provider and key are configured.
func (g *Generator) Available() bool {
	return g.cfg.APIKey != "" && g.cfg.Provider != ProviderNone
}

// Provider returns the configured provider name.
func (g *Generator) Provider() string {
	return g.cfg.Provider
}

// Generate sends prompt to the configured provider and returns its text.
func (g *Generator) Generate(ctx context.Context, prompt string) (Result, error) {
	if !g.Available() {
		return Result{}, ErrNotConfigured
	}

	switch g.cfg.Provider {
	case ProviderGemini, ProviderGoogle:
		return g.generateGemini(ctx, prompt)
	case ProviderAnthropic:
		return g.generateAnthropic(ctx, prompt)
	case ProviderOpenAI:
		return g.generateOpenAI(ctx, prompt)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownProvider, g.cfg.Provider)
	}
}

// GeminiModels returns the ordered, de-duplicated model chain tried for Gemini.
func (g *Generator) GeminiModels() []string {
	seen := make(map[string]bool, len(geminiFallbackModels)+1)
	models := make([]string, 0, len(geminiFallbackModels)+1)
	for _, m := range append([]string{g.cfg.Model}, geminiFallbackModels...) {
		if seen[m] {
			continue
		}
		seen[m] = true
		models = append(models, m)
	}
	return models
}

func (g *Generator) generateGemini(ctx context.Context, prompt string) (Result, error) {
	models := g.GeminiModels()

	for i, model := range models {
		text, err := g.callGemini(ctx, model, prompt)
		if err == nil {
			return Result{Text: text, Provider: g.cfg.Provider, Model: model}, nil
		}

		var apiErr *APIError
		retryable := errors.As(err, &apiErr) &&
			(apiErr.Status == http.StatusTooManyRequests || apiErr.Status == http.StatusNotFound)
		if !retryable || i == len(models)-1 {
			return Result{}, err
		}

		g.log.WithFields(logrus.Fields{
			"model":  model,
			"status": apiErr.Status,
			"next":   models[i+1],
		}).Warn("gemini model unavailable, falling back")

		if err := g.sleep(ctx, g.cfg.FallbackDelay); err != nil {
			return Result{}, err
		}
	}
	return Result{}, ErrEmptyResponse
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
	SafetySettings   []geminiSafetySetting  `json:"safetySettings"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiSafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (g *Generator) callGemini(ctx context.Context, model, prompt string) (string, error) {
	categories := []string{
		"HARM_CATEGORY_HARASSMENT",
		"HARM_CATEGORY_HATE_SPEECH",
		"HARM_CATEGORY_SEXUALLY_EXPLICIT",
		"HARM_CATEGORY_DANGEROUS_CONTENT",
	}
	safety := make([]geminiSafetySetting, 0, len(categories))
	for _, c := range categories {
		safety = append(safety, geminiSafetySetting{Category: c, Threshold: "BLOCK_ONLY_HIGH"})
	}

	body := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     geminiTemperature,
			MaxOutputTokens: geminiOutputTokens,
		},
		SafetySettings: safety,
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL(ProviderGemini), model, g.cfg.APIKey)

	var resp geminiResponse
	if err := g.postJSON(ctx, ProviderGemini, model, url, nil, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == "" {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

func (g *Generator) generateAnthropic(ctx context.Context, prompt string) (Result, error) {
	model := g.cfg.Model
	if !strings.Contains(model, "claude") {
		model = defaultAnthropicModel
	}

	body := completionRequest{
		Model:     model,
		MaxTokens: completionTokens,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
	}
	headers := map[string]string{
		"x-api-key":         g.cfg.APIKey,
		"anthropic-version": anthropicVersion,
	}

	var resp struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	url := g.baseURL(ProviderAnthropic) + "/v1/messages"
	if err := g.postJSON(ctx, ProviderAnthropic, model, url, headers, body, &resp); err != nil {
		return Result{}, err
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == "" {
		return Result{}, fmt.Errorf("anthropic: %w", ErrEmptyResponse)
	}
	return Result{Text: resp.Content[0].Text, Provider: ProviderAnthropic, Model: model}, nil
}

func (g *Generator) generateOpenAI(ctx context.Context, prompt string) (Result, error) {
	model := g.cfg.Model
	if !strings.Contains(model, "gpt") {
		model = defaultOpenAIModel
	}

	body := completionRequest{
		Model:     model,
		MaxTokens: completionTokens,
		Messages: []chatMessage{
			{Role: "system", Content: openAISystemPrompt},
			{Role: "user", Content: prompt},
		},
	}
	headers := map[string]string{"Authorization": "Bearer " + g.cfg.APIKey}

	var resp struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	url := g.baseURL(ProviderOpenAI) + "/v1/chat/completions"
	if err := g.postJSON(ctx, ProviderOpenAI, model, url, headers, body, &resp); err != nil {
		return Result{}, err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Result{}, fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return Result{Text: resp.Choices[0].Message.Content, Provider: ProviderOpenAI, Model: model}, nil
}

func (g *Generator) baseURL(provider string) string {
	if u, ok := g.cfg.BaseURLs[provider]; ok && u != "" {
		return strings.TrimRight(u, "/")
	}
	return defaultBaseURLs[provider]
}

func (g *Generator) postJSON(ctx context.Context, provider, model, url string, headers map[string]string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", provider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			Provider: provider,
			Model:    model,
			Status:   resp.StatusCode,
			Message:  upstreamMessage(raw),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", provider, err)
	}
	return nil
}

// upstreamMessage extracts error.message or message from a provider error body.
func upstreamMessage(raw []byte) string {
	var payload struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if payload.Error != nil && payload.Error.Message != "" {
		return payload.Error.Message
	}
	return payload.Message
}

// Classify maps a generation error to a user-facing message and detail.
func Classify(err error) (message, details string) {
	message = "Failed to generate AI analysis"
	if err == nil {
		return message, ""
	}
	details = err.Error()

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return message, details
	}

	switch apiErr.Status {
	case http.StatusTooManyRequests:
		return "Rate limit exceeded", "The AI service is temporarily unavailable due to rate limiting. Please wait a moment and try again."
	case http.StatusUnauthorized, http.StatusForbidden:
		return "API authentication failed", "Please check that your LLM_API_KEY is valid and has the necessary permissions."
	case http.StatusBadRequest:
		if apiErr.Message != "" {
			return "Invalid request", apiErr.Message
		}
		return "Invalid request", "The request to the AI service was invalid."
	default:
		if apiErr.Message != "" {
			return message, apiErr.Message
		}
		return message, details
	}
}
