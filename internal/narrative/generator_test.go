package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type recordedSleeps struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordedSleeps) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func modelFromPath(path string) string {
	name := strings.TrimPrefix(path, "/models/")
	return strings.TrimSuffix(name, ":generateContent")
}

func TestGeminiFallsBackOnRateLimit(t *testing.T) {
	var (
		mu    sync.Mutex
		tried []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		model := modelFromPath(r.URL.Path)
		mu.Lock()
		tried = append(tried, model)
		mu.Unlock()

		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		if model == "gemini-2.0-flash" {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
			return
		}

		var body geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 8192, body.GenerationConfig.MaxOutputTokens)
		assert.Len(t, body.SafetySettings, 4)

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"buy umbrellas"}]}}]}`))
	}))
	defer srv.Close()

	sleeps := &recordedSleeps{}
	gen := NewGenerator(Config{
		Provider:      ProviderGemini,
		APIKey:        "secret",
		FallbackDelay: 250 * time.Millisecond,
		BaseURLs:      map[string]string{ProviderGemini: srv.URL},
	}, quietLogger(), WithSleeper(sleeps.sleep))

	res, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "buy umbrellas", res.Text)
	assert.Equal(t, "gemini-2.5-flash", res.Model)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"gemini-2.0-flash", "gemini-2.5-flash"}, tried)
	assert.Equal(t, []time.Duration{250 * time.Millisecond}, sleeps.delays)
}

func TestGeminiStopsAfterLastModel(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sleeps := &recordedSleeps{}
	gen := NewGenerator(Config{
		APIKey:   "k",
		Model:    "gemini-2.5-flash",
		BaseURLs: map[string]string{ProviderGemini: srv.URL},
	}, quietLogger(), WithSleeper(sleeps.sleep))

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, len(gen.GeminiModels()), int(calls.Load()))
	assert.Len(t, sleeps.delays, int(calls.Load())-1)
}

func TestGeminiDoesNotRetryAuthFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	gen := NewGenerator(Config{APIKey: "k", BaseURLs: map[string]string{ProviderGemini: srv.URL}}, quietLogger(),
		WithSleeper((&recordedSleeps{}).sleep))

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	msg, details := Classify(err)
	assert.Equal(t, "API authentication failed", msg)
	assert.Contains(t, details, "LLM_API_KEY")
}

func TestGeminiModelsAreDeduplicated(t *testing.T) {
	gen := NewGenerator(Config{APIKey: "k", Model: "gemini-2.0-flash-lite"}, quietLogger())
	assert.Equal(t, []string{
		"gemini-2.0-flash-lite",
		"gemini-2.0-flash",
		"gemini-2.5-flash",
		"gemini-flash-latest",
		"gemini-pro-latest",
	}, gen.GeminiModels())

	gen = NewGenerator(Config{APIKey: "k"}, quietLogger())
	assert.Len(t, gen.GeminiModels(), 5)
	assert.Equal(t, DefaultModel, gen.GeminiModels()[0])
}

func TestAnthropicRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "k", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body completionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, defaultAnthropicModel, body.Model)
		assert.Equal(t, 2000, body.MaxTokens)

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hedge gas"}]}`))
	}))
	defer srv.Close()

	gen := NewGenerator(Config{
		Provider: "Anthropic",
		APIKey:   "k",
		Model:    "gemini-2.0-flash",
		BaseURLs: map[string]string{ProviderAnthropic: srv.URL},
	}, quietLogger())

	res, err := gen.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hedge gas", res.Text)
	assert.Equal(t, ProviderAnthropic, res.Provider)
}

func TestOpenAIRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))

		var body completionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		if assert.Len(t, body.Messages, 2) {
			assert.Equal(t, "system", body.Messages[0].Role)
		}

		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"prompt too long"}}`))
	}))
	defer srv.Close()

	gen := NewGenerator(Config{
		Provider: ProviderOpenAI,
		APIKey:   "k",
		Model:    "gpt-4o-mini",
		BaseURLs: map[string]string{ProviderOpenAI: srv.URL},
	}, quietLogger())

	_, err := gen.Generate(context.Background(), "prompt")
	require.Error(t, err)

	msg, details := Classify(err)
	assert.Equal(t, "Invalid request", msg)
	assert.Equal(t, "prompt too long", details)
}

func TestGenerateRequiresConfiguration(t *testing.T) {
	gen := NewGenerator(Config{}, quietLogger())
	assert.False(t, gen.Available())
	_, err := gen.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)

	gen = NewGenerator(Config{Provider: ProviderNone, APIKey: "k"}, quietLogger())
	assert.False(t, gen.Available())

	gen = NewGenerator(Config{Provider: "mistral", APIKey: "k"}, quietLogger())
	assert.True(t, gen.Available())
	_, err = gen.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestClassify(t *testing.T) {
	msg, _ := Classify(&APIError{Status: http.StatusTooManyRequests})
	assert.Equal(t, "Rate limit exceeded", msg)

	msg, _ = Classify(&APIError{Status: http.StatusUnauthorized})
	assert.Equal(t, "API authentication failed", msg)

	msg, details := Classify(&APIError{Status: http.StatusBadRequest})
	assert.Equal(t, "Invalid request", msg)
	assert.Equal(t, "The request to the AI service was invalid.", details)

	msg, details = Classify(&APIError{Status: http.StatusBadGateway, Message: "upstream down"})
	assert.Equal(t, "Failed to generate AI analysis", msg)
	assert.Equal(t, "upstream down", details)

	msg, details = Classify(errors.New("dial tcp: refused"))
	assert.Equal(t, "Failed to generate AI analysis", msg)
	assert.Equal(t, "dial tcp: refused", details)
}
