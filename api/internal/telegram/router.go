package telegram

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"calc-agent/api/internal/agent"
	"calc-agent/api/internal/modules"
	"calc-agent/api/internal/parser"
	"calc-agent/api/internal/util"
	"calc-agent/api/internal/validator"
)

// maxMessage keeps replies under Telegram's 4096 character limit.
const maxMessage = 3900

// Sender is the part of *tgbotapi.BotAPI the router needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Runner interface {
	Run(ctx context.Context, input string, opts modules.Options) agent.Outcome
}

type Router struct {
	Bot     Sender
	Agent   Runner
	Timeout time.Duration
}

func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	cid := msg.Chat.ID

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			r.send(cid, HelpText())
			return
		case "health":
			r.send(cid, "✅ OK")
			return
		case "currency":
			r.handleCurrency(cid, msg.CommandArguments())
			return
		}
	}

	input, ok := CommandInput(msg)
	if !ok {
		r.send(cid, "Unknown command. Send /help for the list.")
		return
	}
	r.calculate(ctx, cid, input)
}

// CommandInput turns a message into calculator input. "/calc x^2" becomes
// "!calc x^2"; plain text is passed through for keyword detection.
func CommandInput(msg *tgbotapi.Message) (string, bool) {
	if !msg.IsCommand() {
		return msg.Text, true
	}
	cmd := strings.ToLower(msg.Command())
	for _, a := range parser.Aliases() {
		if a.Name == cmd {
			return strings.TrimSpace(parser.Marker + cmd + " " + msg.CommandArguments()), true
		}
	}
	return "", false
}

func (r *Router) calculate(ctx context.Context, cid int64, input string) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	out := r.Agent.Run(ctx, input, modules.Options{Currency: getCurrency(cid)})
	log.Printf("telegram: chat=%d domain=%s failed=%v", cid, out.Domain, out.Failed)
	r.send(cid, out.Message)
	if out.PlotPath != "" {
		r.sendPlot(cid, out.PlotPath)
	}
}

func (r *Router) handleCurrency(cid int64, args string) {
	cur := strings.TrimSpace(args)
	switch {
	case cur == "":
		if c := getCurrency(cid); c != "" {
			r.send(cid, "Currency: "+c)
		} else {
			r.send(cid, "Currency: default. Usage: /currency USD")
		}
	case strings.EqualFold(cur, "default"):
		clearCurrency(cid)
		r.send(cid, "✅ Currency reset to default.")
	default:
		code, err := validator.Currency(cur)
		if err != nil {
			r.send(cid, agent.ErrorMessage(err)+"\nUsage: /currency USD")
			return
		}
		setCurrency(cid, code)
		r.send(cid, "✅ Currency: "+code)
	}
}

func (r *Router) sendPlot(cid int64, path string) {
	if _, err := os.Stat(path); err != nil {
		log.Printf("telegram: plot %s: %v", path, err)
		return
	}
	photo := tgbotapi.NewPhoto(cid, tgbotapi.FilePath(path))
	if _, err := r.Bot.Send(photo); err != nil {
		log.Printf("telegram: send plot: %v", err)
	}
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, util.Truncate(text, maxMessage))
	if _, err := r.Bot.Send(msg); err != nil {
		log.Printf("telegram: send: %v", err)
	}
}

func HelpText() string {
	var b strings.Builder
	b.WriteString("Send an expression and I will solve it.\n")
	b.WriteString("Plain text is routed by keywords; commands pick a module explicitly:\n")
	for _, a := range parser.Aliases() {
		fmt.Fprintf(&b, "/%s → %s\n", a.Name, a.Domain)
	}
	b.WriteString("\n/currency USD sets the currency for financial questions.")
	return b.String()
}
