package gemini

import "context"

// GenerationRequest is one outbound call: prompt plus sampling parameters.
type GenerationRequest struct {
	Prompt          string
	Temperature     float32
	TopP            float32
	MaxOutputTokens int32
}

type FinishReason int

const (
	FinishUnspecified FinishReason = iota
	FinishStop
	FinishMaxTokens
	FinishSafety
	FinishRecitation
	FinishOther
)

func (f FinishReason) String() string {
	switch f {
	case FinishStop:
		return "STOP"
	case FinishMaxTokens:
		return "MAX_TOKENS"
	case FinishSafety:
		return "SAFETY"
	case FinishRecitation:
		return "RECITATION"
	case FinishOther:
		return "OTHER"
	default:
		return "UNSPECIFIED"
	}
}

// Candidate is one completion: why it finished and its text parts.
type Candidate struct {
	FinishReason FinishReason
	Parts        []string
}

// Response is the raw reply. Backends fill whichever fields they have: a
// flat text field, an output-text field, candidates, or any mix.
type Response struct {
	Text       string
	OutputText string
	Candidates []Candidate
}

// Backend performs a single generation call against the remote service.
type Backend interface {
	Generate(ctx context.Context, req GenerationRequest) (*Response, error)
}
