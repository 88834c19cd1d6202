package gate

import "maps"

// EndpointClass groups request paths that share an access rule.
type EndpointClass string

const (
	// ClassMetrics is the monitoring scrape endpoint.
	ClassMetrics EndpointClass = "metrics"
	// ClassGeneral is every other gated path.
	ClassGeneral EndpointClass = "general"
)

// MetricsPath is the only path in ClassMetrics.
const MetricsPath = "/metrics"

// Denial messages for the default policy.
const (
	MetricsDenyMessage = "Valid bearer token required for metrics endpoint"
	GeneralDenyMessage = "Valid bearer token required. Use: Authorization: Bearer <token>"
)

// Rule is the access rule for one endpoint class.
type Rule struct {
	// RequiredScope, when set, must be carried by the presented token.
	RequiredScope string

	// Message is returned in the body of a denial.
	Message string
}

// Policy maps endpoint classes to rules. Classes without a rule use the
// general rule.
type Policy struct {
	rules map[EndpointClass]Rule
}

// DefaultPolicy requires a valid token on both classes and no scopes.
func DefaultPolicy() Policy {
	return NewPolicy(map[EndpointClass]Rule{
		ClassMetrics: {Message: MetricsDenyMessage},
		ClassGeneral: {Message: GeneralDenyMessage},
	})
}

// NewPolicy creates a Policy from rules. The map is copied.
func NewPolicy(rules map[EndpointClass]Rule) Policy {
	return Policy{rules: maps.Clone(rules)}
}

// WithScope returns a copy of p in which class requires scope.
func (p Policy) WithScope(class EndpointClass, scope string) Policy {
	rules := maps.Clone(p.rules)
	if rules == nil {
		rules = make(map[EndpointClass]Rule)
	}
	rule := p.Rule(class)
	rule.RequiredScope = scope
	rules[class] = rule
	return Policy{rules: rules}
}

// Classify returns the endpoint class of path. Matching is exact, so
// "/metrics/" is general.
func (p Policy) Classify(path string) EndpointClass {
	if path == MetricsPath {
		return ClassMetrics
	}
	return ClassGeneral
}

// Rule returns the rule for class, falling back to the general rule.
func (p Policy) Rule(class EndpointClass) Rule {
	if rule, ok := p.rules[class]; ok {
		return rule
	}
	if rule, ok := p.rules[ClassGeneral]; ok {
		return rule
	}
	return Rule{Message: GeneralDenyMessage}
}

// RequiredScopes returns the class→scope map for scope authorization.
func (p Policy) RequiredScopes() map[string]string {
	out := make(map[string]string, len(p.rules))
	for class, rule := range p.rules {
		if rule.RequiredScope != "" {
			out[string(class)] = rule.RequiredScope
		}
	}
	return out
}
