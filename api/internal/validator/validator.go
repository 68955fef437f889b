// Package validator guards untrusted expressions before they are interpolated
// into a prompt.
package validator

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"calc-agent/api/internal/types"
	"calc-agent/api/internal/util"
)

// DefaultMaxLength bounds an expression when callers pass no explicit limit.
const DefaultMaxLength = 1000

// forbidden is matched case-insensitively in order; the first hit is
// reported, so more specific entries come first.
var forbidden = []string{
	"__import__",
	"__builtins__",
	"__file__",
	"__name__",
	"__class__",
	"__subclasses__",
	"getattr",
	"compile",
	"globals",
	"locals",
	"subprocess",
	"eval",
	"exec",
	"open",
	"os.",
}

// Forbidden returns a copy of the deny-list.
func Forbidden() []string { return append([]string(nil), forbidden...) }

// Sanitize rejects empty input and deny-listed patterns, and returns the
// expression trimmed.
func Sanitize(expr string) (string, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return "", types.NewInvalidInput("invalid input: expression must be a non-empty string")
	}
	lower := strings.ToLower(trimmed)
	for _, p := range forbidden {
		if strings.Contains(lower, p) {
			return "", &types.SecurityViolationError{Pattern: p}
		}
	}
	return trimmed, nil
}

// ValidateLength fails when the trimmed expression is longer than max runes.
// max <= 0 selects DefaultMaxLength.
func ValidateLength(expr string, max int) error {
	if max <= 0 {
		max = DefaultMaxLength
	}
	if n := utf8.RuneCountInString(strings.TrimSpace(expr)); n > max {
		return types.NewInvalidInput("expression too long: %d characters (max %d)", n, max)
	}
	return nil
}

var (
	reAllowed = regexp.MustCompile(`^[\p{L}\p{N}\s+\-*/^().,=<>!|_:;'\[\]{}%]*$`)
	// a percent sign only makes sense right after a number
	rePercent = regexp.MustCompile(`(^|[^\p{N}\s])\s*%`)
)

// ValidateNumericExpression accepts letters, digits, operators, brackets and
// function-call syntax, and rejects symbols such as @, # or $.
func ValidateNumericExpression(expr string) error {
	if !reAllowed.MatchString(expr) || rePercent.MatchString(expr) {
		return types.NewInvalidInput("invalid characters in expression: %q", expr)
	}
	return nil
}

var reCurrency = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency normalizes an ISO 4217 style code ("usd" -> "USD"). Anything that
// is not three letters is rejected, since the code is placed in a prompt.
func Currency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !reCurrency.MatchString(c) {
		return "", types.NewInvalidInput("invalid currency code: %q", util.Truncate(code, 16))
	}
	return c, nil
}

