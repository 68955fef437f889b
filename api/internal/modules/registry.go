package modules

import (
	"calc-agent/api/internal/types"
)

// Deps is what the modules need from the rest of the program.
type Deps struct {
	Gen             JSONGenerator
	Prompts         *Prompts
	MaxRetries      int
	MaxLength       int
	DefaultCurrency string
	PlotDir         string
	Renderer        Renderer
}

func (d Deps) base(domain types.Domain) base {
	p := d.Prompts
	if p == nil {
		p = &Prompts{}
	}
	return base{
		domain:     domain,
		gen:        d.Gen,
		prompts:    p,
		maxRetries: d.MaxRetries,
		maxLength:  d.MaxLength,
	}
}

// NewRegistry builds one module per domain.
func NewRegistry(d Deps) map[types.Domain]Module {
	mods := []Module{
		NewBasicMath(d),
		NewCalculus(d),
		NewLinearAlgebra(d),
		NewEquationSolver(d),
		NewGraphPlotter(d),
		NewFinancial(d),
		NewStatistics(d),
	}
	out := make(map[types.Domain]Module, len(mods))
	for _, m := range mods {
		out[m.Domain()] = m
	}
	return out
}
