package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calc-agent/api/internal/config"
	"calc-agent/api/internal/gemini/geminitest"
	"calc-agent/api/internal/modules"
	"calc-agent/api/internal/types"
)

func TestBuildWiresEveryDomain(t *testing.T) {
	cfg := config.Default()
	cfg.PlotDir = t.TempDir()
	b := geminitest.New(geminitest.Reply(`{"result": 2.5, "steps": ["5 / 2"]}`))
	a := Build(cfg, b)
	defer a.Close()

	assert.Len(t, a.Modules, len(types.AllDomains))
	out := a.Agent.Run(context.Background(), "5 / 2", modules.Options{})
	assert.True(t, strings.HasPrefix(out.Message, "✅ Result: 2.5"), out.Message)
	assert.Equal(t, 1, b.Calls())
	assert.Contains(t, b.Prompts[0], "Expression: 5 / 2")
}

func TestNewRejectsPlaceholderKey(t *testing.T) {
	cfg := config.Default()
	cfg.GeminiAPIKey = config.PlaceholderAPIKey
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}
