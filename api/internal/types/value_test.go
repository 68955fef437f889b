package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueString(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{"integral", Number(42), "42"},
		{"fraction", Number(42.5), "42.5"},
		{"negative", Number(-0.25), "-0.25"},
		{"text", String("x = 2"), "x = 2"},
		{"null", Value{}, ""},
		{"list", List(Number(1), Number(2), Number(3)), "[1, 2, 3]"},
		{"nested", List(List(Number(1), Number(0)), List(Number(0), Number(1))), "[[1, 0], [0, 1]]"},
		{"mixed list", List(String("a"), Number(1)), `["a", 1]`},
		{"map", Map(map[string]Value{"y": Number(2), "x": Number(1)}), `{"x": 1, "y": 2}`},
		{"decimal", Decimal(decimal.RequireFromString("1050.5")), "1050.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.v.String())
		})
	}
}

func TestFromAny(t *testing.T) {
	assert.Equal(t, Number(7), FromAny(json.Number("7")))
	assert.Equal(t, Number(3), FromAny(3))
	assert.Equal(t, String("true"), FromAny(true))
	assert.True(t, FromAny(nil).IsNull())

	v := FromAny(map[string]any{"roots": []any{1.0, -1.0}})
	require.Equal(t, KindMap, v.Kind)
	assert.Equal(t, "[1, -1]", v.Map["roots"].String())
	assert.Equal(t, map[string]any{"roots": []any{1.0, -1.0}}, v.Interface())
}

func TestValueFloat(t *testing.T) {
	f, ok := Number(2.5).Float()
	assert.True(t, ok)
	assert.Equal(t, 2.5, f)

	f, ok = Decimal(decimal.RequireFromString("10.25")).Float()
	assert.True(t, ok)
	assert.Equal(t, 10.25, f)

	_, ok = String("2").Float()
	assert.False(t, ok)
}

func TestValueJSON(t *testing.T) {
	v := Map(map[string]Value{
		"b": Value{},
		"a": List(Number(1), String("x")),
		"c": Decimal(decimal.RequireFromString("0.1")),
	})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":[1,"x"],"b":null,"c":0.1}`, string(b))

	var back Value
	require.NoError(t, json.Unmarshal([]byte(`[1, "two", {"k": 2.5}]`), &back))
	assert.Equal(t, List(Number(1), String("two"), Map(map[string]Value{"k": Number(2.5)})), back)
}

func TestStructuredFromMap(t *testing.T) {
	sr := StructuredFromMap(nil)
	assert.False(t, sr.HasResult)
	assert.Equal(t, DefaultConfidence, sr.ConfidenceScore)
	assert.Equal(t, []string{}, sr.Steps)

	sr = StructuredFromMap(map[string]any{
		"result":               4.0,
		"steps":                []any{"add", 2.0},
		"confidence_score":     json.Number("0.8"),
		"domain":               "basic_math",
		"visualization_needed": true,
		"metadata":             map[string]any{"statistic_type": "mean"},
		"currency":             "USD",
	})
	assert.True(t, sr.HasResult)
	assert.Equal(t, Number(4), sr.Result)
	assert.Equal(t, []string{"add", "2"}, sr.Steps)
	assert.Equal(t, 0.8, sr.ConfidenceScore)
	assert.Equal(t, "basic_math", sr.Domain)
	assert.True(t, sr.VisualizationNeeded)
	assert.Equal(t, "mean", sr.Metadata["statistic_type"])
	assert.Equal(t, "USD", sr.Currency)

	sr = StructuredFromMap(map[string]any{"steps": "single step", "confidence_score": "0.7"})
	assert.Equal(t, []string{"single step"}, sr.Steps)
	assert.Equal(t, 0.7, sr.ConfidenceScore)
}

func TestPlotPath(t *testing.T) {
	assert.Equal(t, "", CalculationResult{}.PlotPath())
	r := CalculationResult{VisualData: map[string]any{"plot_paths": map[string]any{"png": "plots/a.png"}}}
	assert.Equal(t, "plots/a.png", r.PlotPath())
	r = CalculationResult{VisualData: map[string]any{"plot_paths": map[string]string{"png": "plots/b.png"}}}
	assert.Equal(t, "plots/b.png", r.PlotPath())
}

func TestErrors(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := error(&RemoteServiceError{Msg: "api error", FinishReason: "SAFETY", Err: cause})
	assert.Equal(t, "api error (finish_reason=SAFETY): deadline exceeded", err.Error())
	assert.ErrorIs(t, err, cause)

	var rse *RemoteServiceError
	assert.True(t, errors.As(err, &rse))

	assert.Equal(t, "forbidden pattern detected: eval", (&SecurityViolationError{Pattern: "eval"}).Error())
	assert.Equal(t, "plot could not be created: disk full",
		(&CalculationError{Msg: "plot could not be created", Err: errors.New("disk full")}).Error())
	assert.Equal(t, `no module registered for domain "nope"`, (&ModuleNotFoundError{Domain: "nope"}).Error())
	assert.Equal(t, "expression too long: 5", NewInvalidInput("expression too long: %d", 5).Error())
}

func TestParseDomain(t *testing.T) {
	d, err := ParseDomain("graph_plotter")
	require.NoError(t, err)
	assert.Equal(t, DomainGraphPlotter, d)

	_, err = ParseDomain("astrology")
	assert.Error(t, err)
	assert.Len(t, AllDomains, 7)
	assert.Equal(t, DomainBasicMath, AllDomains[len(AllDomains)-1])
}
