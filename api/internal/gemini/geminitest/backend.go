// Package geminitest provides scripted backends for tests that exercise the
// model client without reaching the network.
package geminitest

import (
	"context"
	"errors"
	"sync"
	"time"

	"calc-agent/api/internal/gemini"
)

// Step is one scripted outcome: a reply or an error.
type Step struct {
	Resp *gemini.Response
	Err  error
}

// Backend replays Steps in order and repeats the last one once exhausted.
type Backend struct {
	mu      sync.Mutex
	steps   []Step
	Prompts []string
}

func New(steps ...Step) *Backend { return &Backend{steps: steps} }

// Reply is a step whose reply carries text in its first candidate.
func Reply(text string) Step {
	return Step{Resp: &gemini.Response{Candidates: []gemini.Candidate{
		{FinishReason: gemini.FinishStop, Parts: []string{text}},
	}}}
}

func Fail(msg string) Step { return Step{Err: errors.New(msg)} }

func (b *Backend) Generate(_ context.Context, req gemini.GenerationRequest) (*gemini.Response, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Prompts = append(b.Prompts, req.Prompt)
	if len(b.steps) == 0 {
		return nil, errors.New("geminitest: no scripted reply")
	}
	i := len(b.Prompts) - 1
	if i >= len(b.steps) {
		i = len(b.steps) - 1
	}
	return b.steps[i].Resp, b.steps[i].Err
}

func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Prompts)
}

// NewClient returns a client over b with no pacing and instant backoff.
func NewClient(b gemini.Backend) *gemini.Client {
	return gemini.New(b, nil, gemini.Params{Temperature: 0.1, TopP: 0.95, MaxOutputTokens: 2048},
		gemini.RetryPolicy{MaxAttempts: 3, Sleep: noSleep})
}

func noSleep(context.Context, time.Duration) error { return nil }
