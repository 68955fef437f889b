package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"calc-agent/api/internal/app"
	"calc-agent/api/internal/config"
	"calc-agent/api/internal/parser"
)

const banner = `Calculator agent. Prefix a command with an alias to pick a module,
for example "!calc derivative of x^2" or "!stats 1 2 3". Type quit to leave.`

func main() {
	cfg, err := config.Load(os.Getenv("CALC_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if !cfg.Debug() {
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	run := func(input string) string { return a.Agent.ProcessCommand(ctx, input) }

	if len(os.Args) > 1 {
		fmt.Println(run(strings.Join(os.Args[1:], " ")))
		return
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	histFile := historyPath()
	if f, err := os.Open(histFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(histFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
		line.Close()
	}()

	fmt.Println(banner)
	repl(line, os.Stdout, run)
}

type prompter interface {
	Prompt(p string) (string, error)
	AppendHistory(item string)
}

// repl reads commands until a quit word, Ctrl-C or EOF.
func repl(in prompter, out io.Writer, run func(string) string) {
	for {
		input, err := in.Prompt("calc> ")
		if err != nil {
			if !errors.Is(err, liner.ErrPromptAborted) && !errors.Is(err, io.EOF) {
				fmt.Fprintf(out, "❌ %v\n", err)
			}
			fmt.Fprintln(out, "\nGoodbye!")
			return
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		in.AppendHistory(input)

		switch strings.ToLower(input) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return
		case "help", "?":
			fmt.Fprintln(out, helpText())
			continue
		}
		fmt.Fprintln(out, run(input))
	}
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Aliases:")
	for _, a := range parser.Aliases() {
		fmt.Fprintf(&b, "\n  %s%s → %s", parser.Marker, a.Name, a.Domain)
	}
	return b.String()
}

func historyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	dir = filepath.Join(dir, "calc-agent")
	_ = os.MkdirAll(dir, 0o700)
	return filepath.Join(dir, "history")
}
