package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"calc-agent/api/internal/app"
	"calc-agent/api/internal/config"
	"calc-agent/api/internal/handle"
	"calc-agent/api/internal/httpserver"
)

func main() {
	cfg, err := config.Load(os.Getenv("CALC_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	defer a.Close()

	opts := []handle.Option{
		handle.WithRateLimit(cfg.HTTPRatePerSecond, cfg.HTTPBurst),
		handle.WithTimeout(cfg.RequestTimeout),
		handle.WithPlotDir(cfg.PlotDir),
	}
	if a.History != nil {
		opts = append(opts, handle.WithHistory(a.History))
	}
	h := handle.New(a.Agent, opts...)

	mux := http.NewServeMux()
	h.Register(mux)

	addr := ":" + cfg.Port
	log.Printf("calc-proxy listening on %s", addr)
	if err := httpserver.Run(ctx, addr, mux); err != nil {
		log.Fatal(err)
	}
}
