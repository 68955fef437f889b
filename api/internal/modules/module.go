// Package modules holds one calculator per domain. Each module owns its
// prompt template and maps the model's structured reply into a
// types.CalculationResult.
package modules

import (
	"context"
	"log"

	"calc-agent/api/internal/types"
	"calc-agent/api/internal/validator"
)

// Options carries per-request settings. Zero values mean "use the module
// default".
type Options struct {
	Currency string
}

type Module interface {
	Domain() types.Domain
	Calculate(ctx context.Context, expr string, opts Options) (*types.CalculationResult, error)
}

// JSONGenerator is the model client as seen by the modules;
// *gemini.Client satisfies it.
type JSONGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, maxRetries int) (types.StructuredResult, error)
}

// base carries what every model-backed module shares.
type base struct {
	domain     types.Domain
	gen        JSONGenerator
	prompts    *Prompts
	maxRetries int
	maxLength  int
}

func (b *base) Domain() types.Domain { return b.domain }

// check sanitizes and length-checks expr.
func (b *base) check(expr string) (string, error) {
	clean, err := validator.Sanitize(expr)
	if err != nil {
		return "", err
	}
	if err := validator.ValidateLength(clean, b.maxLength); err != nil {
		return "", err
	}
	return clean, nil
}

func (b *base) ask(ctx context.Context, expr string, vars map[string]string) (types.StructuredResult, error) {
	prompt, err := b.prompts.Render(b.domain, expr, vars)
	if err != nil {
		return types.StructuredResult{}, err
	}
	sr, err := b.gen.GenerateJSON(ctx, prompt, b.maxRetries)
	if err != nil {
		log.Printf("%s: model call failed: %v", b.domain, err)
		return types.StructuredResult{}, err
	}
	return sr, nil
}

// newResult copies the recognized fields of sr. The domain is always the
// module's own, whatever the model claimed. An "error" key in the reply
// becomes the result's Error.
func newResult(sr types.StructuredResult, d types.Domain) *types.CalculationResult {
	res := &types.CalculationResult{
		Result:              sr.Result,
		Steps:               sr.Steps,
		ConfidenceScore:     sr.ConfidenceScore,
		Domain:              d,
		VisualizationNeeded: sr.VisualizationNeeded,
		VisualData:          sr.VisualData,
		Metadata:            sr.Metadata,
		Currency:            sr.Currency,
	}
	if res.Steps == nil {
		res.Steps = []string{}
	}
	if msg, ok := sr.Fields["error"].(string); ok && msg != "" {
		res.Error = msg
	}
	return res
}

// errorResult is a local rejection that never reached the model.
func errorResult(d types.Domain, msg string) *types.CalculationResult {
	return &types.CalculationResult{
		Result:          types.String(""),
		Steps:           []string{},
		ConfidenceScore: types.DefaultConfidence,
		Domain:          d,
		Error:           msg,
	}
}
