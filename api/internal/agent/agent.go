// Package agent is the orchestrator: it validates a raw command, routes it
// to a domain module and formats the outcome for display.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"calc-agent/api/internal/modules"
	"calc-agent/api/internal/parser"
	"calc-agent/api/internal/types"
	"calc-agent/api/internal/validator"
)

const MsgEmptyCommand = "Empty command."

// ResultCache short-circuits repeated commands. Implementations must be safe
// for concurrent use.
type ResultCache interface {
	Get(ctx context.Context, d types.Domain, expr string) (*types.CalculationResult, bool)
	Set(ctx context.Context, d types.Domain, expr string, res *types.CalculationResult)
}

// HistoryRecorder persists completed runs; failures are logged and ignored.
type HistoryRecorder interface {
	Record(ctx context.Context, o Outcome) error
}

// Outcome is one processed command.
type Outcome struct {
	ID         string                   `json:"id"`
	Input      string                   `json:"input"`
	Message    string                   `json:"message"`
	Domain     types.Domain             `json:"domain,omitempty"`
	Expression string                   `json:"expression,omitempty"`
	Result     *types.CalculationResult `json:"result,omitempty"`
	PlotPath   string                   `json:"plot_path,omitempty"`
	Failed     bool                     `json:"failed"`
	Cached     bool                     `json:"cached,omitempty"`
}

type Agent struct {
	modules   map[types.Domain]modules.Module
	cache     ResultCache
	history   HistoryRecorder
	maxLength int
}

type Option func(*Agent)

func WithCache(c ResultCache) Option { return func(a *Agent) { a.cache = c } }

func WithHistory(h HistoryRecorder) Option { return func(a *Agent) { a.history = h } }

// WithMaxLength bounds expressions answered from the cache, which never
// reach a module's own length check.
func WithMaxLength(n int) Option { return func(a *Agent) { a.maxLength = n } }

func New(mods map[types.Domain]modules.Module, opts ...Option) *Agent {
	a := &Agent{modules: mods}
	for _, o := range opts {
		o(a)
	}
	return a
}

// ProcessCommand runs input and returns the user-visible message.
func (a *Agent) ProcessCommand(ctx context.Context, input string) string {
	return a.Run(ctx, input, modules.Options{}).Message
}

// Run never returns an error: every failure, including a panic inside a
// module, is folded into the outcome message.
func (a *Agent) Run(ctx context.Context, input string, opts modules.Options) (out Outcome) {
	out = Outcome{ID: uuid.NewString(), Input: input}
	if strings.TrimSpace(input) == "" {
		out.Message = MsgEmptyCommand
		return out
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("agent[%s]: panic: %v", short(out.ID), r)
			out.Result = nil
			out.Failed = true
			out.Message = "❌ Unexpected error: " + fmt.Sprint(r)
		}
		a.record(ctx, out)
	}()

	clean, err := validator.Sanitize(input)
	if err != nil {
		return fail(out, err)
	}
	cmd := parser.Parse(clean)
	out.Domain, out.Expression = cmd.Domain, cmd.Expression
	log.Printf("agent[%s]: %s <- %q", short(out.ID), cmd.Domain, cmd.Expression)

	mod, ok := a.modules[cmd.Domain]
	if !ok {
		return fail(out, &types.ModuleNotFoundError{Domain: cmd.Domain})
	}

	cacheable := a.cache != nil && cmd.Domain != types.DomainGraphPlotter && opts.Currency == ""
	if cacheable {
		if err := validator.ValidateLength(cmd.Expression, a.maxLength); err != nil {
			return fail(out, err)
		}
		if res, hit := a.cache.Get(ctx, cmd.Domain, cmd.Expression); hit {
			out.Cached = true
			return finish(out, res)
		}
	}

	res, err := mod.Calculate(ctx, cmd.Expression, opts)
	if err != nil {
		return fail(out, err)
	}
	if res == nil {
		return fail(out, errors.New("module returned no result"))
	}
	if cacheable && res.Error == "" {
		a.cache.Set(ctx, cmd.Domain, cmd.Expression, res)
	}
	return finish(out, res)
}

func (a *Agent) record(ctx context.Context, out Outcome) {
	if a.history == nil {
		return
	}
	if err := a.history.Record(ctx, out); err != nil {
		log.Printf("agent[%s]: history not recorded: %v", short(out.ID), err)
	}
}

func finish(out Outcome, res *types.CalculationResult) Outcome {
	out.Result = res
	out.PlotPath = res.PlotPath()
	out.Failed = res.Error != ""
	out.Message = Format(res)
	return out
}

func fail(out Outcome, err error) Outcome {
	out.Failed = true
	out.Message = ErrorMessage(err)
	log.Printf("agent[%s]: %v", short(out.ID), err)
	return out
}

// ErrorMessage maps an error to its one-line user-facing form.
func ErrorMessage(err error) string {
	var (
		sve *types.SecurityViolationError
		iie *types.InvalidInputError
		mnf *types.ModuleNotFoundError
		ce  *types.CalculationError
		rse *types.RemoteServiceError
	)
	switch {
	case errors.As(err, &sve):
		return "❌ Security error: " + err.Error()
	case errors.As(err, &iie):
		return "❌ Invalid input: " + err.Error()
	case errors.As(err, &mnf):
		return "❌ Module not found: " + err.Error()
	case errors.As(err, &ce), errors.As(err, &rse):
		return "❌ Calculation error: " + err.Error()
	default:
		return "❌ Unexpected error: " + err.Error()
	}
}

// Format renders a result. A module-reported error is returned verbatim.
func Format(res *types.CalculationResult) string {
	if res.Error != "" {
		return res.Error
	}
	var b strings.Builder
	b.WriteString("✅ Result: ")
	b.WriteString(res.Result.String())
	if res.Currency != "" {
		b.WriteString(" " + res.Currency)
	}
	if len(res.Steps) > 0 {
		b.WriteString("\n\n📝 Steps:")
		for i, s := range res.Steps {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, s)
		}
	}
	if res.ConfidenceScore < 1.0 {
		fmt.Fprintf(&b, "\n\n⚠️  Confidence: %.2f", res.ConfidenceScore)
	}
	if p := res.PlotPath(); p != "" {
		b.WriteString("\n\n📊 Plot: " + p)
	}
	return b.String()
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
