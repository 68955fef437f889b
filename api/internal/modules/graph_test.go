package modules

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calc-agent/api/internal/types"
)

type fakeRenderer struct {
	specs []PlotSpec
	err   error
}

func (r *fakeRenderer) Render(spec PlotSpec, path string) error {
	r.specs = append(r.specs, spec)
	if r.err != nil {
		return r.err
	}
	return os.WriteFile(path, []byte("png"), 0o644)
}

const plotReply = `{
  "result": "Plot created",
  "steps": ["Plot created"],
  "visualization_needed": true,
  "confidence_score": 1.0,
  "visual_data": {
    "function": "x^2",
    "plot_type": "2d",
    "x_range": [-2, 2],
    "points": [[-2, 4], [-1, 1], [0, 0], [1, 1], [2, 4]]
  }
}`

func newPlotter(t *testing.T, gen *fakeGen, r Renderer) *GraphPlotter {
	d := deps(gen)
	d.PlotDir = t.TempDir()
	d.Renderer = r
	return NewGraphPlotter(d)
}

func TestGraphPlotter_CacheMissRendersAndRemembers(t *testing.T) {
	gen := &fakeGen{reply: plotReply}
	r := &fakeRenderer{}
	m := newPlotter(t, gen, r)

	res, err := m.Calculate(context.Background(), "x^2", Options{})
	require.NoError(t, err)
	assert.Equal(t, types.DomainGraphPlotter, res.Domain)
	require.Len(t, r.specs, 1)
	assert.Len(t, r.specs[0].Points, 5)
	assert.Equal(t, [2]float64{-2, 2}, r.specs[0].XRange)

	path := res.PlotPath()
	require.NotEmpty(t, path)
	assert.Equal(t, ".png", filepath.Ext(path))
	assert.FileExists(t, path)
	assert.Equal(t, "x^2", res.VisualData["function"])

	cached, ok := m.Cached("x^2")
	require.True(t, ok)
	assert.Equal(t, path, cached)

	again, err := m.Calculate(context.Background(), "  x^2 ", Options{})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(again.Result.String()), "cache")
	assert.Equal(t, path, again.PlotPath())
	assert.Len(t, gen.prompts, 1, "cache hit does not call the model")
	assert.Len(t, r.specs, 1)
}

func TestGraphPlotter_SeededCache(t *testing.T) {
	gen := &fakeGen{}
	m := newPlotter(t, gen, &fakeRenderer{})
	m.Remember("sin(x)", "/path/to/cached.png")

	res, err := m.Calculate(context.Background(), "sin(x)", Options{})
	require.NoError(t, err)
	assert.Equal(t, MsgPlotFromCache, res.Result.String())
	assert.Equal(t, "/path/to/cached.png", res.PlotPath())
	assert.Empty(t, gen.prompts)
}

func TestGraphPlotter_MissingVisualDataUsesDefaults(t *testing.T) {
	r := &fakeRenderer{}
	m := newPlotter(t, &fakeGen{reply: `{"result": "Plot created", "steps": []}`}, r)
	_, err := m.Calculate(context.Background(), "x", Options{})
	require.NoError(t, err)
	require.Len(t, r.specs, 1)
	assert.Equal(t, defaultXRange, r.specs[0].XRange)
	assert.Equal(t, "2d", r.specs[0].PlotType)
}

func TestGraphPlotter_Failures(t *testing.T) {
	cases := map[string]struct {
		reply string
		rErr  error
	}{
		"schema":       {reply: `{"result": "ok", "visual_data": {"x_range": "wide"}}`},
		"bad range":    {reply: `{"result": "ok", "visual_data": {"x_range": [5, -5]}}`},
		"render error": {reply: plotReply, rErr: errors.New("disk full")},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			m := newPlotter(t, &fakeGen{reply: tc.reply}, &fakeRenderer{err: tc.rErr})
			_, err := m.Calculate(context.Background(), "x^2", Options{})
			var ce *types.CalculationError
			require.True(t, errors.As(err, &ce), "%v", err)
			_, cached := m.Cached("x^2")
			assert.False(t, cached)
		})
	}
}

func TestGraphPlotter_ModelErrorPropagates(t *testing.T) {
	m := newPlotter(t, &fakeGen{err: errors.New("API Error")}, &fakeRenderer{})
	_, err := m.Calculate(context.Background(), "x^2", Options{})
	assert.EqualError(t, err, "API Error")
}

func TestPlotSpecDropsNonNumericPoints(t *testing.T) {
	spec, err := plotSpec(map[string]any{
		"plot_type": "Polar",
		"points":    []any{[]any{1.0, 2.0}, []any{3, 4}},
	}, "r = 1")
	require.NoError(t, err)
	assert.Equal(t, "polar", spec.PlotType)
	assert.Equal(t, [][2]float64{{1, 2}, {3, 4}}, spec.Points)
}

func TestGonumRendererWritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	err := GonumRenderer{}.Render(PlotSpec{
		Title:    "x^2",
		Function: "x^2",
		PlotType: "2d",
		XRange:   [2]float64{-2, 2},
		Points:   [][2]float64{{-2, 4}, {-1, 1}, {0, 0}, {1, 1}, {2, 4}},
	}, path)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(b), 8)
	assert.Equal(t, "\x89PNG", string(b[:4]))
}

func TestGraphPlotter_NaturalLanguageFileNameIsGenerated(t *testing.T) {
	gen := &fakeGen{reply: plotReply}
	m := newPlotter(t, gen, &fakeRenderer{})

	res, err := m.Calculate(context.Background(), "plot y = x² for x in [-2, 2]?", Options{})
	require.NoError(t, err)
	assert.Len(t, gen.prompts, 1)
	assert.NotContains(t, filepath.Base(res.PlotPath()), "x²")
	assert.Equal(t, m.dir, filepath.Dir(res.PlotPath()))
}
