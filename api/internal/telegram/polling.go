package telegram

import (
	"context"
	"errors"
	"log"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calc-agent/api/internal/ratelimit"
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

// UpdatesFetcher is the long-polling side of *tgbotapi.BotAPI.
type UpdatesFetcher interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

func RetryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") {
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return 1 * time.Second
}

// RunPolling long-polls until ctx is done, backing off on errors instead of
// exiting.
func RunPolling(ctx context.Context, bot UpdatesFetcher, handle func(tgbotapi.Update)) {
	offset := 0
	baseDelay := 1 * time.Second
	maxDelay := 15 * time.Second

	for {
		select {
		case <-ctx.Done():
			log.Printf("polling: context cancelled")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = 30

		updates, err := bot.GetUpdates(u)
		if err != nil {
			d := min(max(RetryDelayFromError(err), baseDelay), maxDelay)
			log.Printf("polling error: %v; retry in %v", err, d)
			if ratelimit.SleepContext(ctx, d) != nil {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 && ratelimit.SleepContext(ctx, 200*time.Millisecond) != nil {
			return
		}
	}
}
