package modules

import (
	"context"

	"calc-agent/api/internal/types"
)

// symbolic is shared by the domains that forward their input, symbols or
// plain words, to the model unchanged and pass the reply through.
type symbolic struct {
	base
}

func (m *symbolic) Calculate(ctx context.Context, expr string, _ Options) (*types.CalculationResult, error) {
	clean, err := m.check(expr)
	if err != nil {
		return nil, err
	}
	sr, err := m.ask(ctx, clean, nil)
	if err != nil {
		return nil, err
	}
	return newResult(sr, m.domain), nil
}

// Calculus covers derivatives, integrals, limits and series.
type Calculus struct{ symbolic }

func NewCalculus(d Deps) *Calculus {
	return &Calculus{symbolic{d.base(types.DomainCalculus)}}
}

// LinearAlgebra covers matrices and vectors; results are usually nested lists.
type LinearAlgebra struct{ symbolic }

func NewLinearAlgebra(d Deps) *LinearAlgebra {
	return &LinearAlgebra{symbolic{d.base(types.DomainLinearAlgebra)}}
}

// EquationSolver returns roots as a list or a mapping.
type EquationSolver struct{ symbolic }

func NewEquationSolver(d Deps) *EquationSolver {
	return &EquationSolver{symbolic{d.base(types.DomainEquationSolver)}}
}
