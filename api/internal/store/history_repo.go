package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"calc-agent/api/internal/agent"
)

type HistoryRepo struct{ DB *sql.DB }

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{DB: db} }

// Entry is one stored run.
type Entry struct {
	ID         string          `json:"id"`
	Input      string          `json:"input"`
	Domain     string          `json:"domain"`
	Expression string          `json:"expression"`
	Message    string          `json:"message"`
	Result     json.RawMessage `json:"result,omitempty"`
	Confidence *float64        `json:"confidence,omitempty"`
	PlotPath   string          `json:"plot_path,omitempty"`
	Failed     bool            `json:"failed"`
	Cached     bool            `json:"cached"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Record stores a finished run. The id comes from the outcome, so a retried
// insert is a no-op.
func (r *HistoryRepo) Record(ctx context.Context, o agent.Outcome) error {
	var (
		js   []byte
		conf *float64
	)
	if o.Result != nil {
		b, err := json.Marshal(o.Result)
		if err != nil {
			return err
		}
		js = b
		c := o.Result.ConfidenceScore
		conf = &c
	}
	const q = `
insert into calc_history(id, input, domain, expression, message, result_json, confidence, plot_path, failed, cached)
values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
on conflict (id) do nothing`
	_, err := r.DB.ExecContext(ctx, q, o.ID, o.Input, string(o.Domain), o.Expression, o.Message,
		nullJSON(js), conf, o.PlotPath, o.Failed, o.Cached)
	return err
}

// Recent returns up to limit runs, newest first.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	const q = `select id, input, domain, expression, message, result_json, confidence, plot_path, failed, cached, created_at
	           from calc_history
	           order by created_at desc
	           limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e  Entry
			js []byte
			c  sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Input, &e.Domain, &e.Expression, &e.Message, &js, &c,
			&e.PlotPath, &e.Failed, &e.Cached, &e.CreatedAt); err != nil {
			return nil, err
		}
		if len(js) > 0 {
			e.Result = json.RawMessage(js)
		}
		if c.Valid {
			v := c.Float64
			e.Confidence = &v
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// PlotPaths returns the most recent png path per plotted expression.
func (r *HistoryRepo) PlotPaths(ctx context.Context, limit int) (map[string]string, error) {
	const q = `select distinct on (expression) expression, plot_path
	           from calc_history
	           where domain = 'graph_plotter' and plot_path <> '' and not failed
	           order by expression, created_at desc
	           limit $1`
	rows, err := r.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var expr, path string
		if err := rows.Scan(&expr, &path); err != nil {
			return nil, err
		}
		out[expr] = path
	}
	return out, rows.Err()
}

func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
