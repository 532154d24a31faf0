// Package waf evaluates request content against an ordered set of
// suspicious-content rules. Evaluation is stateless and safe for
// unsynchronized concurrent use.
package waf

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Rule is one textual pattern checked against URL and body content.
// Patterns are matched case-insensitively as substrings.
type Rule struct {
	ID      string
	Pattern string
}

// DefaultRules returns the built-in rule set: SQL-keyword injection,
// script/markup injection, embedded-script URL schemes, and blind
// code-evaluation calls. Order matters; the first match wins.
func DefaultRules() []Rule {
	return []Rule{
		{ID: "sql-union", Pattern: "union select"},
		{ID: "sql-drop", Pattern: "drop table"},
		{ID: "sql-comment", Pattern: "';--"},
		{ID: "sql-or-true", Pattern: "' or '1'='1"},
		{ID: "xss-script", Pattern: "<script"},
		{ID: "xss-onerror", Pattern: "onerror="},
		{ID: "xss-iframe", Pattern: "<iframe"},
		{ID: "url-javascript", Pattern: "javascript:"},
		{ID: "url-data-html", Pattern: "data:text/html"},
		{ID: "code-eval", Pattern: "eval("},
		{ID: "code-exec", Pattern: "exec("},
		{ID: "path-traversal", Pattern: "../.."},
	}
}

// ParseRules turns "id:pattern" config entries into rules. Entries without
// a colon get a generated id.
func ParseRules(entries []string) []Rule {
	rules := make([]Rule, 0, len(entries))
	for i, e := range entries {
		id, pattern, found := strings.Cut(e, ":")
		if !found || id == "" {
			rules = append(rules, Rule{ID: "custom-" + strconv.Itoa(i), Pattern: e})
			continue
		}
		rules = append(rules, Rule{ID: id, Pattern: pattern})
	}
	return rules
}

// Result reports the outcome of inspecting one request.
type Result struct {
	Matched bool
	// RuleID names the first matching rule for diagnostics.
	RuleID string
	// Unparsable flags a body that could not be inspected as text. Such
	// bodies never match but callers should surface the flag.
	Unparsable bool
}

// Matcher holds the ordered rule set.
type Matcher struct {
	rules []Rule
}

// NewMatcher builds a matcher; nil or empty rules fall back to the defaults.
func NewMatcher(rules []Rule) *Matcher {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Matcher{rules: rules}
}

// Inspect checks the URL and, for payload-carrying methods, the body
// against the rule set. The first matching rule short-circuits.
func (m *Matcher) Inspect(method, url string, body []byte) Result {
	lowURL := strings.ToLower(url)
	for _, r := range m.rules {
		if strings.Contains(lowURL, strings.ToLower(r.Pattern)) {
			return Result{Matched: true, RuleID: r.ID}
		}
	}

	if !carriesPayload(method) || len(body) == 0 {
		return Result{}
	}
	if !utf8.Valid(body) {
		return Result{Unparsable: true}
	}

	lowBody := strings.ToLower(string(body))
	for _, r := range m.rules {
		if strings.Contains(lowBody, strings.ToLower(r.Pattern)) {
			return Result{Matched: true, RuleID: r.ID}
		}
	}
	return Result{}
}

func carriesPayload(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH":
		return true
	}
	return false
}
