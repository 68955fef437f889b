package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"regexp"
	"time"

	"calc-agent/api/internal/ratelimit"
	"calc-agent/api/internal/types"
	"calc-agent/api/internal/util"
)

// FallbackConfidence is attached to replies that could not be parsed as JSON.
const FallbackConfidence = 0.95

const noReplyText = "the model finished without returning a reply"

var reJSONObject = regexp.MustCompile(`(?s)\{.*\}`)

// Acquirer paces outbound calls; *ratelimit.Limiter satisfies it.
type Acquirer interface {
	Acquire(ctx context.Context) error
}

// Params are the fixed generation parameters taken from configuration.
type Params struct {
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

// RetryPolicy bounds the attempts of one GenerateWithRetry call.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// ExponentialBackoff waits 2^attempt seconds after the zero-based attempt.
func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func DefaultRetryPolicy(maxAttempts int) RetryPolicy {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return RetryPolicy{
		MaxAttempts: maxAttempts,
		Backoff:     ExponentialBackoff,
		Sleep:       ratelimit.SleepContext,
	}
}

// Client owns every outbound call to the generative model.
type Client struct {
	backend Backend
	limiter Acquirer
	params  Params
	retry   RetryPolicy
	debug   bool
}

func New(backend Backend, limiter Acquirer, params Params, retry RetryPolicy) *Client {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 3
	}
	if retry.Backoff == nil {
		retry.Backoff = ExponentialBackoff
	}
	if retry.Sleep == nil {
		retry.Sleep = ratelimit.SleepContext
	}
	return &Client{backend: backend, limiter: limiter, params: params, retry: retry}
}

// SetDebug turns on prompt/reply logging.
func (c *Client) SetDebug(on bool) { c.debug = on }

// GenerateWithRetry returns the first non-blank reply text. The limiter is
// consulted once per call; failed attempts are retried after 2^attempt
// seconds. maxRetries <= 0 selects the configured default.
func (c *Client) GenerateWithRetry(ctx context.Context, prompt string, maxRetries int) (string, error) {
	if maxRetries <= 0 {
		maxRetries = c.retry.MaxAttempts
	}
	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return "", &types.RemoteServiceError{Msg: "rate limiter", Err: err}
		}
	}

	req := GenerationRequest{
		Prompt:          prompt,
		Temperature:     c.params.Temperature,
		TopP:            c.params.TopP,
		MaxOutputTokens: c.params.MaxOutputTokens,
	}
	if c.debug {
		log.Printf("gemini: prompt: %s", util.Truncate(prompt, 400))
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		text, err := c.attempt(ctx, req)
		if err == nil {
			if c.debug {
				log.Printf("gemini: reply: %s", util.Truncate(text, 400))
			}
			return text, nil
		}

		log.Printf("gemini: attempt %d/%d failed: %v", attempt+1, maxRetries, err)
		if attempt == maxRetries-1 {
			return "", &types.RemoteServiceError{Msg: "api error", Err: err}
		}
		if err := c.retry.Sleep(ctx, c.retry.Backoff(attempt)); err != nil {
			return "", &types.RemoteServiceError{Msg: "retry aborted", Err: err}
		}
	}
	return "", &types.RemoteServiceError{Msg: "no attempts made"}
}

func (c *Client) attempt(ctx context.Context, req GenerationRequest) (string, error) {
	resp, err := c.backend.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := extractText(resp)
	if text == "" {
		return "", &types.RemoteServiceError{Msg: "empty response", FinishReason: firstFinishReason(resp)}
	}
	return text, nil
}

// GenerateJSON asks for a reply and interprets its first {...} span as the
// structured exchange format. Replies that carry no parseable object are
// wrapped into a fallback result so callers always get a well-shaped value.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, maxRetries int) (types.StructuredResult, error) {
	text, err := c.GenerateWithRetry(ctx, prompt, maxRetries)
	if err != nil {
		return types.StructuredResult{}, err
	}
	return ParseStructured(text), nil
}

// ParseStructured extracts and decodes the reply, or builds the fallback.
func ParseStructured(text string) types.StructuredResult {
	cleaned := util.StripCodeFences(text)
	if span := reJSONObject.FindString(cleaned); span != "" {
		m, err := decodeObject(span)
		if err == nil {
			return types.StructuredFromMap(coerceResult(m))
		}
		log.Printf("gemini: reply is not valid JSON, using raw text: %v", err)
	}
	return Fallback(text)
}

// Fallback wraps free text as a result.
func Fallback(text string) types.StructuredResult {
	if text == "" {
		text = noReplyText
	}
	return types.StructuredFromMap(map[string]any{
		"result":           text,
		"steps":            []any{text},
		"confidence_score": FallbackConfidence,
	})
}

func decodeObject(s string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	// the span must hold exactly one object
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON object at offset %d", dec.InputOffset())
	}
	return m, nil
}

// coerceResult turns a plain numeric result into float64; everything else in
// the mapping is left as decoded.
func coerceResult(m map[string]any) map[string]any {
	if n, ok := m["result"].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			m["result"] = f
		}
	}
	return m
}
