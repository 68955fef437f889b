package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calc-agent/api/internal/app"
	"calc-agent/api/internal/config"
	"calc-agent/api/internal/httpserver"
	"calc-agent/api/internal/telegram"
	"calc-agent/api/internal/util"
)

func main() {
	cfg, err := config.Load(os.Getenv("CALC_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if strings.TrimSpace(cfg.TelegramBotToken) == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("app: %v", err)
	}
	defer a.Close()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal(err)
	}
	bot.Debug = cfg.Debug()

	r := &telegram.Router{Bot: bot, Agent: a.Agent, Timeout: cfg.RequestTimeout}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if a.DB != nil {
			if err := a.DB.PingContext(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db: not ok\n" + err.Error()))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := "0.0.0.0:" + cfg.Port
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(ctx, addr, mux, bot, r, webhookURL)
	} else {
		startPollingMode(ctx, addr, mux, bot, r)
	}
}

func startWebhookMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string) {
	path := "/webhook/" + util.ShortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		log.Fatal(err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		log.Fatal(err)
	}

	mux.HandleFunc("POST "+path, func(w http.ResponseWriter, req *http.Request) {
		upd, err := bot.HandleUpdate(req)
		if err != nil {
			log.Printf("webhook: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		go r.HandleUpdate(ctx, *upd)
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("webhook listening on %s%s", addr, path)
	if err := httpserver.Run(ctx, addr, mux); err != nil {
		log.Fatal(err)
	}
}

func startPollingMode(ctx context.Context, addr string, mux *http.ServeMux, bot *tgbotapi.BotAPI, r *telegram.Router) {
	go func() {
		log.Printf("health server listening on %s/healthz", addr)
		if err := httpserver.Run(ctx, addr, mux); err != nil {
			log.Printf("health server: %v", err)
		}
	}()

	telegram.RunPolling(ctx, bot, func(upd tgbotapi.Update) {
		r.HandleUpdate(ctx, upd)
	})
}
