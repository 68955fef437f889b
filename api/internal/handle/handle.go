package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"calc-agent/api/internal/agent"
	"calc-agent/api/internal/modules"
	"calc-agent/api/internal/store"
)

// Runner is the orchestrator as seen by the HTTP layer.
type Runner interface {
	Run(ctx context.Context, input string, opts modules.Options) agent.Outcome
}

type HistoryLister interface {
	Recent(ctx context.Context, limit int) ([]store.Entry, error)
}

type Handle struct {
	agent   Runner
	history HistoryLister
	limiter *rate.Limiter
	timeout time.Duration
	plotDir string
}

type Option func(*Handle)

// WithHistory enables GET /v1/history.
func WithHistory(h HistoryLister) Option { return func(d *Handle) { d.history = h } }

// WithRateLimit caps inbound calculations; perSecond <= 0 disables the cap.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(d *Handle) {
		if perSecond <= 0 {
			d.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		d.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

func WithTimeout(t time.Duration) Option { return func(d *Handle) { d.timeout = t } }

// WithPlotDir serves rendered plots under /v1/plots/.
func WithPlotDir(dir string) Option { return func(d *Handle) { d.plotDir = dir } }

func New(r Runner, opts ...Option) *Handle {
	h := &Handle{agent: r, timeout: 70 * time.Second}
	for _, o := range opts {
		o(h)
	}
	return h
}

func (d *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", d.Healthz)
	mux.HandleFunc("/v1/calc", d.Calc)
	mux.HandleFunc("/v1/parse", d.Parse)
	mux.HandleFunc("/v1/history", d.History)
	mux.HandleFunc("GET /v1/plots/{name}", d.Plot)
}

func (d *Handle) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
