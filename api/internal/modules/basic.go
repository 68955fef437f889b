package modules

import (
	"context"
	"log"
	"regexp"
	"strings"
	"unicode"

	"calc-agent/api/internal/types"
)

const (
	MsgInvalidExpression = "Invalid or forbidden expression."
	MsgMissingOperand    = "Invalid operation: missing operand. Example: !basic 5 + 3"
)

var (
	reArithmetic = regexp.MustCompile(`^[0-9+\-*/.\s]+$`)
	reOperand    = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
)

// BasicMath handles plain arithmetic. It checks the expression shape locally
// and rejects bad input without calling the model.
type BasicMath struct {
	base
}

func NewBasicMath(d Deps) *BasicMath {
	return &BasicMath{base: d.base(types.DomainBasicMath)}
}

func (m *BasicMath) Calculate(ctx context.Context, expr string, _ Options) (*types.CalculationResult, error) {
	clean, err := m.check(expr)
	if err != nil {
		return nil, err
	}
	if msg := checkArithmetic(clean); msg != "" {
		log.Printf("basic_math: rejected %q: %s", clean, msg)
		return errorResult(m.domain, msg), nil
	}

	sr, err := m.ask(ctx, clean, nil)
	if err != nil {
		return nil, err
	}
	res := newResult(sr, m.domain)
	log.Printf("basic_math: %s = %s", clean, res.Result)
	return res, nil
}

// checkArithmetic returns a user-facing message, or "" when expr is a
// well-formed arithmetic expression.
func checkArithmetic(expr string) string {
	if expr == "" {
		return MsgMissingOperand
	}
	if !reArithmetic.MatchString(expr) {
		return MsgInvalidExpression
	}
	if !reOperand.MatchString(expr) {
		return MsgMissingOperand
	}
	compact := strings.Join(strings.Fields(expr), "")
	if operatorWithoutOperand(compact) {
		return MsgMissingOperand
	}
	return ""
}

// operatorWithoutOperand reports an operator with no digit anywhere to its
// right. A leading minus is unary.
func operatorWithoutOperand(s string) bool {
	for i, c := range s {
		if !strings.ContainsRune("+-*/", c) {
			continue
		}
		if c == '-' && i == 0 && len(s) > 1 {
			continue
		}
		if strings.IndexFunc(s[i+1:], unicode.IsDigit) < 0 {
			return true
		}
	}
	return false
}
