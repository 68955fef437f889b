package modules

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"calc-agent/api/internal/types"
)

//go:embed prompts/*.txt
var embeddedPrompts embed.FS

// Prompts resolves a domain's template, first from Dir (when set) and then
// from the templates compiled into the binary.
type Prompts struct {
	Dir string
}

func (p *Prompts) Template(d types.Domain) (string, error) {
	name := string(d) + ".txt"
	if p != nil && p.Dir != "" {
		if b, err := os.ReadFile(filepath.Join(p.Dir, name)); err == nil && len(b) > 0 {
			return string(b), nil
		}
	}
	b, err := embeddedPrompts.ReadFile("prompts/" + name)
	if err != nil {
		return "", fmt.Errorf("prompt for %s not found: %w", d, err)
	}
	return string(b), nil
}

// Render fills {expression} and any extra {name} placeholders.
func (p *Prompts) Render(d types.Domain, expr string, vars map[string]string) (string, error) {
	tpl, err := p.Template(d)
	if err != nil {
		return "", err
	}
	pairs := []string{"{expression}", expr}
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(tpl)), nil
}
