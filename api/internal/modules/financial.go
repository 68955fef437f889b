package modules

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"calc-agent/api/internal/types"
	"calc-agent/api/internal/validator"
)

const fallbackCurrency = "TRY"

// Financial asks for high-precision answers and returns numeric results as
// exact decimals tagged with a currency.
type Financial struct {
	base
	defaultCurrency string
}

func NewFinancial(d Deps) *Financial {
	cur := strings.ToUpper(strings.TrimSpace(d.DefaultCurrency))
	if cur == "" {
		cur = fallbackCurrency
	}
	return &Financial{base: d.base(types.DomainFinancial), defaultCurrency: cur}
}

func (m *Financial) Calculate(ctx context.Context, expr string, opts Options) (*types.CalculationResult, error) {
	clean, err := m.check(expr)
	if err != nil {
		return nil, err
	}
	currency := m.defaultCurrency
	if strings.TrimSpace(opts.Currency) != "" {
		if currency, err = validator.Currency(opts.Currency); err != nil {
			return nil, err
		}
	}

	sr, err := m.ask(ctx, clean, map[string]string{"currency": currency})
	if err != nil {
		return nil, err
	}
	res := newResult(sr, m.domain)
	res.Result = toDecimal(sr)
	if res.Currency == "" {
		res.Currency = currency
	}
	return res, nil
}

// toDecimal converts a numeric result to decimal.Decimal. A missing result
// is zero; anything else is returned as is.
func toDecimal(sr types.StructuredResult) types.Value {
	if !sr.HasResult || sr.Result.IsNull() {
		return types.Decimal(decimal.Zero)
	}
	if sr.Result.Kind == types.KindNumber {
		return types.Decimal(decimal.NewFromFloat(sr.Result.Number))
	}
	return sr.Result
}
