package handle

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"calc-agent/api/internal/modules"
	"calc-agent/api/internal/parser"
	"calc-agent/api/internal/util"
	"calc-agent/api/internal/validator"
)

type CalcRequest struct {
	Command  string `json:"command"`
	Currency string `json:"currency,omitempty"`
}

// Calc runs one command. Failed calculations are still 200; the outcome
// carries "failed": true and the user-facing message.
func (d *Handle) Calc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	if d.limiter != nil && !d.limiter.Allow() {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}
	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := modules.Options{}
	if strings.TrimSpace(req.Currency) != "" {
		code, err := validator.Currency(req.Currency)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		opts.Currency = code
	}

	ctx, cancel := context.WithTimeout(r.Context(), d.timeout)
	defer cancel()

	out := d.agent.Run(ctx, req.Command, opts)
	if out.PlotPath != "" && d.plotDir != "" {
		w.Header().Set("X-Plot-URL", "/v1/plots/"+filepath.Base(out.PlotPath))
	}
	writeJSON(w, http.StatusOK, out)
}

// Parse reports how a command would be routed without running it.
func (d *Handle) Parse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req CalcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return
	}
	clean, err := validator.Sanitize(req.Command)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, parser.Parse(clean))
}

func (d *Handle) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET only", http.StatusMethodNotAllowed)
		return
	}
	if d.history == nil {
		http.Error(w, "history is not configured", http.StatusNotFound)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := d.history.Recent(r.Context(), limit)
	if err != nil {
		log.Printf("history: %v", err)
		http.Error(w, "history error: "+err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (d *Handle) Plot(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if d.plotDir == "" || name == "" || name != filepath.Base(name) || !strings.HasSuffix(name, ".png") {
		http.NotFound(w, r)
		return
	}
	f, err := os.Open(filepath.Join(d.plotDir, name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil || st.IsDir() {
		http.NotFound(w, r)
		return
	}

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	mime := util.SniffImageMIME(head[:n])
	if mime != "image/png" {
		log.Printf("plots: %s is not a png (%s)", name, mime)
		http.NotFound(w, r)
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", mime)
	http.ServeContent(w, r, name, st.ModTime(), f)
}
