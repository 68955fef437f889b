package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/assert"
)

type scriptedInput struct {
	lines   []string
	end     error
	history []string
}

func (s *scriptedInput) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", s.end
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

func (s *scriptedInput) AppendHistory(item string) { s.history = append(s.history, item) }

func TestReplRunsUntilQuit(t *testing.T) {
	in := &scriptedInput{lines: []string{"!basic 2 + 2", "  ", "QUIT", "!basic 9"}, end: io.EOF}
	var out bytes.Buffer
	var ran []string

	repl(in, &out, func(s string) string { ran = append(ran, s); return "✅ Result: 4" })

	assert.Equal(t, []string{"!basic 2 + 2"}, ran)
	assert.Equal(t, "✅ Result: 4\nGoodbye!\n", out.String())
	assert.Equal(t, []string{"!basic 2 + 2", "QUIT"}, in.history)
}

func TestReplStopsOnAbortAndEOF(t *testing.T) {
	for _, end := range []error{liner.ErrPromptAborted, io.EOF} {
		var out bytes.Buffer
		repl(&scriptedInput{end: end}, &out, func(string) string { return "" })
		assert.Equal(t, "\nGoodbye!\n", out.String())
	}
}

func TestReplHelp(t *testing.T) {
	var out bytes.Buffer
	repl(&scriptedInput{lines: []string{"help", "q"}}, &out, func(string) string { return "" })
	assert.Contains(t, out.String(), "!plot → graph_plotter")
}
