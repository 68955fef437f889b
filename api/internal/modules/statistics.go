package modules

import (
	"context"
	"log"

	"calc-agent/api/internal/types"
)

// Statistics reports descriptive statistics. The model's metadata block
// (statistic_type, sample_size, data_points) is kept on the result.
type Statistics struct {
	base
}

func NewStatistics(d Deps) *Statistics {
	return &Statistics{base: d.base(types.DomainStatistics)}
}

func (m *Statistics) Calculate(ctx context.Context, expr string, _ Options) (*types.CalculationResult, error) {
	clean, err := m.check(expr)
	if err != nil {
		return nil, err
	}
	sr, err := m.ask(ctx, clean, nil)
	if err != nil {
		return nil, err
	}
	res := newResult(sr, m.domain)
	if st, ok := res.Metadata["statistic_type"]; ok {
		log.Printf("statistics: %v of %q", st, clean)
	}
	return res, nil
}
