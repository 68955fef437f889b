package types

import (
	"fmt"
	"strconv"
)

// DefaultConfidence is assumed when the model omits confidence_score.
const DefaultConfidence = 1.0

// StructuredResult is the model reply interpreted as the exchange format:
// recognized keys are lifted into typed fields, the full mapping is kept in
// Fields.
type StructuredResult struct {
	Result              Value
	HasResult           bool
	Steps               []string
	ConfidenceScore     float64
	Domain              string
	VisualizationNeeded bool
	VisualData          map[string]any
	Metadata            map[string]any
	Currency            string

	Fields map[string]any
}

// StructuredFromMap lifts the recognized keys of a decoded reply.
func StructuredFromMap(m map[string]any) StructuredResult {
	sr := StructuredResult{
		ConfidenceScore: DefaultConfidence,
		Steps:           []string{},
		Fields:          m,
	}
	if m == nil {
		return sr
	}
	if raw, ok := m["result"]; ok {
		sr.Result = FromAny(raw)
		sr.HasResult = true
	}
	if raw, ok := m["steps"]; ok {
		sr.Steps = toStrings(raw)
	}
	if f, ok := toFloat(m["confidence_score"]); ok {
		sr.ConfidenceScore = f
	}
	if s, ok := m["domain"].(string); ok {
		sr.Domain = s
	}
	if b, ok := m["visualization_needed"].(bool); ok {
		sr.VisualizationNeeded = b
	}
	if vd, ok := m["visual_data"].(map[string]any); ok {
		sr.VisualData = vd
	}
	if md, ok := m["metadata"].(map[string]any); ok {
		sr.Metadata = md
	}
	if c, ok := m["currency"].(string); ok {
		sr.Currency = c
	}
	return sr
}

func toStrings(raw any) []string {
	switch t := raw.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
				continue
			}
			out = append(out, FromAny(el).String())
		}
		return out
	case []string:
		return append([]string(nil), t...)
	case string:
		if t == "" {
			return []string{}
		}
		return []string{t}
	}
	return []string{}
}

func toFloat(raw any) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	case fmt.Stringer:
		// json.Number
		f, err := strconv.ParseFloat(t.String(), 64)
		return f, err == nil
	}
	return 0, false
}

// CalculationResult is what a domain module hands back to the orchestrator.
// A non-empty Error short-circuits formatting.
type CalculationResult struct {
	Result              Value          `json:"result"`
	Steps               []string       `json:"steps"`
	ConfidenceScore     float64        `json:"confidence_score"`
	Domain              Domain         `json:"domain"`
	VisualizationNeeded bool           `json:"visualization_needed,omitempty"`
	VisualData          map[string]any `json:"visual_data,omitempty"`
	Metadata            map[string]any `json:"metadata,omitempty"`
	Currency            string         `json:"currency,omitempty"`
	Error               string         `json:"error,omitempty"`
}

// PlotPath returns visual_data.plot_paths.png when present.
func (r CalculationResult) PlotPath() string {
	if r.VisualData == nil {
		return ""
	}
	switch paths := r.VisualData["plot_paths"].(type) {
	case map[string]any:
		s, _ := paths["png"].(string)
		return s
	case map[string]string:
		return paths["png"]
	}
	return ""
}
