// Package policy evaluates operator-defined expressions against a resolved
// carrier configuration before the application trusts it.
package policy

import (
	"fmt"
	"net/url"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/darmiel/zenkey/internal/core"
)

// Rule is a named boolean expression. The environment exposes issuer,
// authorization_endpoint, mcc_mnc, issuer_host and authorization_host.
type Rule struct {
	Name string `yaml:"name" json:"name"`
	Expr string `yaml:"expr" json:"expr"`

	program *vm.Program
}

// RejectedError is returned by Evaluate for the first rule that did not hold.
type RejectedError struct {
	Rule string
	Err  error
}

func (e *RejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("policy '%s' could not be evaluated: %v", e.Rule, e.Err)
	}
	return fmt.Sprintf("policy '%s' rejected the configuration", e.Rule)
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}

// Compile checks and compiles all rules. Names must be unique.
func Compile(rules []Rule) ([]Rule, error) {
	seen := make(map[string]struct{})
	compiled := make([]Rule, 0, len(rules))
	for i, rule := range rules {
		if rule.Name == "" {
			return nil, fmt.Errorf("policy #%d missing name", i)
		}
		if _, exists := seen[rule.Name]; exists {
			return nil, fmt.Errorf("policy name '%s' is not unique", rule.Name)
		}
		seen[rule.Name] = struct{}{}
		if rule.Expr == "" {
			return nil, fmt.Errorf("policy '%s' missing expr", rule.Name)
		}

		program, err := expr.Compile(rule.Expr, expr.Env(env(&core.OpenIDConfiguration{})), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("compiling expr for policy '%s': %w", rule.Name, err)
		}
		rule.program = program
		compiled = append(compiled, rule)
	}
	return compiled, nil
}

// Set is an ordered list of compiled rules.
type Set struct {
	rules []Rule
}

// NewSet compiles rules into a Set.
func NewSet(rules []Rule) (*Set, error) {
	compiled, err := Compile(rules)
	if err != nil {
		return nil, err
	}
	return &Set{rules: compiled}, nil
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Evaluate runs all rules in order. A nil or empty Set accepts everything.
func (s *Set) Evaluate(cfg *core.OpenIDConfiguration) error {
	if s == nil {
		return nil
	}
	e := env(cfg)
	for _, rule := range s.rules {
		out, err := expr.Run(rule.program, e)
		if err != nil {
			return &RejectedError{Rule: rule.Name, Err: err}
		}
		if ok, _ := out.(bool); !ok {
			return &RejectedError{Rule: rule.Name}
		}
	}
	return nil
}

func env(cfg *core.OpenIDConfiguration) map[string]any {
	return map[string]any{
		"issuer":                 cfg.Issuer,
		"authorization_endpoint": cfg.AuthorizationEndpoint,
		"mcc_mnc":                cfg.MCCMNC,
		"issuer_host":            hostOf(cfg.Issuer),
		"authorization_host":     hostOf(cfg.AuthorizationEndpoint),
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
