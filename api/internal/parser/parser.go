// Package parser routes a raw command to a computation domain.
package parser

import (
	"strings"

	"calc-agent/api/internal/types"
)

// Marker introduces an explicit routing alias, as in "!calc x^2".
const Marker = "!"

type Alias struct {
	Name   string
	Domain types.Domain
}

// aliases are tested in order. An alias that is a prefix of another comes
// after it, otherwise "!financial" would match "finance" and leave "ial".
var aliases = []Alias{
	{"basic", types.DomainBasicMath},
	{"calculus", types.DomainCalculus},
	{"calc", types.DomainCalculus},
	{"linalg", types.DomainLinearAlgebra},
	{"linear", types.DomainLinearAlgebra},
	{"matrix", types.DomainLinearAlgebra},
	{"solve", types.DomainEquationSolver},
	{"equation", types.DomainEquationSolver},
	{"plot", types.DomainGraphPlotter},
	{"graph", types.DomainGraphPlotter},
	{"financial", types.DomainFinancial},
	{"finance", types.DomainFinancial},
	{"statistics", types.DomainStatistics},
	{"stats", types.DomainStatistics},
	{"stat", types.DomainStatistics},
}

type keywordSet struct {
	domain   types.Domain
	keywords []string
}

// keywordSets are scanned in priority order; English and Turkish terms.
var keywordSets = []keywordSet{
	{types.DomainCalculus, []string{
		"derivative", "integral", "limit", "taylor", "gradient",
		"turev", "türev", "seri",
	}},
	{types.DomainLinearAlgebra, []string{
		"matrix", "determinant", "eigenvalue", "vector",
		"matris", "ozdeger", "özdeğer", "vektor", "vektör",
	}},
	{types.DomainEquationSolver, []string{
		"solve", "equation", "coz", "çöz", "denklem", "kok", "kök",
	}},
	{types.DomainGraphPlotter, []string{
		"plot", "graph", "draw", "ciz", "çiz", "grafik",
	}},
	{types.DomainFinancial, []string{
		"npv", "irr", "loan", "interest", "faiz", "kredi", "yatirim", "yatırım",
	}},
	{types.DomainStatistics, []string{
		"mean", "median", "mode", "average", "ortalama", "medyan", "mod",
		"std dev", "standard deviation", "standart sapma",
		"variance", "varyans",
		"correlation", "korelasyon",
		"z-score", "z score", "z skor",
		"percentile", "yuzdelik", "yüzdelik",
		"regression", "regresyon",
		"statistics", "istatistik",
	}},
}

// Aliases returns the routing alias table in match order.
func Aliases() []Alias { return append([]Alias(nil), aliases...) }

// Parse classifies input. It never fails: unmatched input is basic math.
func Parse(input string) types.ParsedCommand {
	input = strings.TrimSpace(input)

	for _, a := range aliases {
		prefix := Marker + a.Name
		if hasPrefixFold(input, prefix) {
			return types.ParsedCommand{
				Domain:     a.Domain,
				Expression: strings.TrimSpace(input[len(prefix):]),
			}
		}
	}

	if d, ok := Detect(input); ok {
		return types.ParsedCommand{Domain: d, Expression: input}
	}
	return types.ParsedCommand{Domain: types.DomainBasicMath, Expression: input}
}

// hasPrefixFold reports whether s starts with the ASCII prefix, ignoring
// ASCII case only. Non-ASCII bytes never match, so the cut at len(prefix)
// always falls on a rune boundary.
func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if lowerASCII(s[i]) != lowerASCII(prefix[i]) {
			return false
		}
	}
	return true
}

func lowerASCII(b byte) byte {
	if 'A' <= b && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Detect finds the first domain whose keywords occur in text.
func Detect(text string) (types.Domain, bool) {
	text = strings.ToLower(text)
	for _, ks := range keywordSets {
		for _, kw := range ks.keywords {
			if strings.Contains(text, kw) {
				return ks.domain, true
			}
		}
	}
	return "", false
}
