package types

import "fmt"

// Domain is the computation category a command is routed to.
type Domain string

const (
	DomainBasicMath      Domain = "basic_math"
	DomainCalculus       Domain = "calculus"
	DomainLinearAlgebra  Domain = "linear_algebra"
	DomainEquationSolver Domain = "equation_solver"
	DomainGraphPlotter   Domain = "graph_plotter"
	DomainFinancial      Domain = "financial"
	DomainStatistics     Domain = "statistics"
)

// AllDomains lists every routable domain in keyword-priority order, with the
// default domain last.
var AllDomains = []Domain{
	DomainCalculus,
	DomainLinearAlgebra,
	DomainEquationSolver,
	DomainGraphPlotter,
	DomainFinancial,
	DomainStatistics,
	DomainBasicMath,
}

func (d Domain) Valid() bool {
	for _, x := range AllDomains {
		if x == d {
			return true
		}
	}
	return false
}

func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown domain %q", s)
	}
	return d, nil
}

// ParsedCommand is the parser output: the routing decision and the
// expression with any routing prefix removed.
type ParsedCommand struct {
	Domain     Domain `json:"domain"`
	Expression string `json:"expression"`
}
