package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GenAIBackend talks to Gemini through the official SDK.
type GenAIBackend struct {
	client *genai.Client
	model  string
}

func NewGenAIBackend(ctx context.Context, apiKey, model string) (*GenAIBackend, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return &GenAIBackend{client: cl, model: strings.TrimSpace(model)}, nil
}

func (b *GenAIBackend) Model() string { return b.model }

func (b *GenAIBackend) Close() error { return b.client.Close() }

// Generate builds a fresh model handle per call, so concurrent requests never
// share mutable generation settings.
func (b *GenAIBackend) Generate(ctx context.Context, req GenerationRequest) (*Response, error) {
	m := b.client.GenerativeModel(b.model)
	if m == nil {
		return nil, fmt.Errorf("gemini: model is nil")
	}
	m.SafetySettings = permissiveSafety()
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:     ptrFloat32(req.Temperature),
		TopP:            ptrFloat32(req.TopP),
		MaxOutputTokens: ptrInt32(req.MaxOutputTokens),
	}

	resp, err := m.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return nil, err
	}
	return fromGenAI(resp), nil
}

func permissiveSafety() []*genai.SafetySetting {
	cats := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}
	out := make([]*genai.SafetySetting, 0, len(cats))
	for _, c := range cats {
		out = append(out, &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockNone})
	}
	return out
}

func fromGenAI(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}
	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		cand := Candidate{FinishReason: finishReason(c.FinishReason)}
		if c.Content != nil {
			for _, p := range c.Content.Parts {
				if t, ok := p.(genai.Text); ok {
					cand.Parts = append(cand.Parts, string(t))
				}
			}
		}
		out.Candidates = append(out.Candidates, cand)
	}
	return out
}

func finishReason(fr genai.FinishReason) FinishReason {
	switch fr {
	case genai.FinishReasonStop:
		return FinishStop
	case genai.FinishReasonMaxTokens:
		return FinishMaxTokens
	case genai.FinishReasonSafety:
		return FinishSafety
	case genai.FinishReasonRecitation:
		return FinishRecitation
	case genai.FinishReasonUnspecified:
		return FinishUnspecified
	default:
		return FinishOther
	}
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
