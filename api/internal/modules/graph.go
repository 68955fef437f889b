package modules

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"calc-agent/api/internal/types"
)

const (
	MsgPlotFromCache = "Plot loaded from cache"
	defaultPlotDir   = "plots"
)

var defaultXRange = [2]float64{-10, 10}

const visualDataSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "function":  {"type": "string"},
    "plot_type": {"type": "string"},
    "x_range":   {"$ref": "#/definitions/pair"},
    "y_range":   {"$ref": "#/definitions/pair"},
    "points":    {"type": "array", "items": {"$ref": "#/definitions/pair"}}
  },
  "definitions": {
    "pair": {"type": "array", "items": {"type": "number"}, "minItems": 2, "maxItems": 2}
  }
}`

var visualData = jsonschema.MustCompileString("visual_data.json", visualDataSchema)

// GraphPlotter turns a function into a PNG. The model supplies sampled points
// in visual_data; rendering happens locally. Rendered paths are cached per
// expression for the life of the process.
type GraphPlotter struct {
	base
	dir      string
	renderer Renderer
	cache    sync.Map // expression -> png path
}

func NewGraphPlotter(d Deps) *GraphPlotter {
	dir := d.PlotDir
	if dir == "" {
		dir = defaultPlotDir
	}
	r := d.Renderer
	if r == nil {
		r = GonumRenderer{}
	}
	return &GraphPlotter{base: d.base(types.DomainGraphPlotter), dir: dir, renderer: r}
}

// Cached returns the png path remembered for expr.
func (m *GraphPlotter) Cached(expr string) (string, bool) {
	v, ok := m.cache.Load(strings.TrimSpace(expr))
	if !ok {
		return "", false
	}
	return v.(string), true
}

// Remember seeds the cache, e.g. from a previous run's history.
func (m *GraphPlotter) Remember(expr, path string) {
	m.cache.Store(strings.TrimSpace(expr), path)
}

func (m *GraphPlotter) Calculate(ctx context.Context, expr string, _ Options) (*types.CalculationResult, error) {
	clean, err := m.check(expr)
	if err != nil {
		return nil, err
	}
	if path, ok := m.Cached(clean); ok {
		log.Printf("graph_plotter: cache hit for %q", clean)
		return cachedPlot(path), nil
	}

	sr, err := m.ask(ctx, clean, nil)
	if err != nil {
		return nil, err
	}
	res := newResult(sr, m.domain)

	spec, err := plotSpec(sr.VisualData, clean)
	if err != nil {
		return nil, err
	}
	path, err := m.createPlot(spec)
	if err != nil {
		return nil, err
	}

	vd := make(map[string]any, len(sr.VisualData)+1)
	for k, v := range sr.VisualData {
		vd[k] = v
	}
	vd["plot_paths"] = map[string]any{"png": path}
	res.VisualData = vd
	res.VisualizationNeeded = true

	m.Remember(clean, path)
	return res, nil
}

func (m *GraphPlotter) createPlot(spec PlotSpec) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", &types.CalculationError{Msg: "plot could not be created", Err: err}
	}
	path := filepath.Join(m.dir, uuid.NewString()+".png")
	if err := m.renderer.Render(spec, path); err != nil {
		return "", &types.CalculationError{Msg: "plot could not be created", Err: err}
	}
	log.Printf("graph_plotter: %s plot of %q written to %s", spec.PlotType, spec.Title, path)
	return path, nil
}

func cachedPlot(path string) *types.CalculationResult {
	return &types.CalculationResult{
		Result:              types.String(MsgPlotFromCache),
		Steps:               []string{MsgPlotFromCache},
		ConfidenceScore:     types.DefaultConfidence,
		Domain:              types.DomainGraphPlotter,
		VisualizationNeeded: true,
		VisualData:          map[string]any{"plot_paths": map[string]any{"png": path}},
	}
}

// plotSpec validates visual_data against the schema and lifts it into a
// PlotSpec. Missing visual_data plots an empty default range.
func plotSpec(vd map[string]any, expr string) (PlotSpec, error) {
	spec := PlotSpec{Title: expr, Function: expr, PlotType: "2d", XRange: defaultXRange}
	if vd == nil {
		return spec, nil
	}
	if err := visualData.Validate(vd); err != nil {
		return spec, &types.CalculationError{Msg: "model returned malformed visual_data", Err: err}
	}

	if s, ok := vd["function"].(string); ok && s != "" {
		spec.Function = s
	}
	if s, ok := vd["plot_type"].(string); ok && s != "" {
		spec.PlotType = strings.ToLower(s)
	}
	if r, ok := pair(vd["x_range"]); ok {
		spec.XRange = r
	}
	if r, ok := pair(vd["y_range"]); ok {
		spec.YRange, spec.HasYRange = r, true
	}
	if raw, ok := vd["points"].([]any); ok {
		for _, el := range raw {
			if p, ok := pair(el); ok && finite(p[0]) && finite(p[1]) {
				spec.Points = append(spec.Points, p)
			}
		}
	}
	if spec.XRange[0] >= spec.XRange[1] {
		return spec, &types.CalculationError{Msg: fmt.Sprintf("invalid x_range [%v, %v]", spec.XRange[0], spec.XRange[1])}
	}
	return spec, nil
}

func pair(x any) ([2]float64, bool) {
	arr, ok := x.([]any)
	if !ok || len(arr) != 2 {
		return [2]float64{}, false
	}
	a, ok1 := number(arr[0])
	b, ok2 := number(arr[1])
	return [2]float64{a, b}, ok1 && ok2
}

func number(x any) (float64, bool) {
	switch t := x.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	}
	return 0, false
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
