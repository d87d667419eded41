package ratelimit

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultRule applies to routes without an explicit rule.
var DefaultRule = Rule{Limit: 15, Window: time.Hour}

// Rule allows Limit requests per Window.
type Rule struct {
	Limit  int
	Window time.Duration
}

func (r Rule) String() string {
	return fmt.Sprintf("%d/%s", r.Limit, r.Window)
}

// ParseRule reads rules written as "<count>/<unit>" where unit is s, m, h or d.
func ParseRule(raw string) (Rule, error) {
	count, unit, ok := strings.Cut(strings.TrimSpace(raw), "/")
	if !ok {
		return Rule{}, fmt.Errorf("rate limit %q: expected <count>/<unit>", raw)
	}

	limit, err := strconv.Atoi(count)
	if err != nil || limit <= 0 {
		return Rule{}, fmt.Errorf("rate limit %q: count must be a positive integer", raw)
	}

	var window time.Duration
	switch unit {
	case "s":
		window = time.Second
	case "m":
		window = time.Minute
	case "h":
		window = time.Hour
	case "d":
		window = 24 * time.Hour
	default:
		return Rule{}, fmt.Errorf("rate limit %q: unknown unit %q", raw, unit)
	}

	return Rule{Limit: limit, Window: window}, nil
}

// Rules maps route names to their rule.
type Rules struct {
	Default Rule
	Named   map[string]Rule
}

// For returns the rule for name, or the default rule.
func (r Rules) For(name string) Rule {
	if rule, ok := r.Named[name]; ok {
		return rule
	}
	if r.Default.Limit > 0 {
		return r.Default
	}
	return DefaultRule
}
