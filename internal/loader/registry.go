package loader

import (
	"github.com/gobwas/glob"

	"github.com/kfreiman/docloader/internal/document"
)

// Rule binds a glob pattern to the loader used for matching files
type Rule struct {
	Pattern string
	Loader  document.Loader
}

type compiledRule struct {
	Rule
	matcher glob.Glob
	err     error
}

// registry is an ordered list of rules. Matching walks it in registration
// order and the first matching pattern wins.
type registry struct {
	rules []compiledRule
}

// with returns a copy of r with pattern bound to l. A pattern that is already
// registered keeps its position and only has its loader replaced.
func (r registry) with(pattern string, l document.Loader) registry {
	rules := make([]compiledRule, len(r.rules), len(r.rules)+1)
	copy(rules, r.rules)

	for i := range rules {
		if rules[i].Pattern == pattern {
			rules[i].Loader = l
			return registry{rules: rules}
		}
	}

	// '/' as separator: '*' and '?' stay within one path segment, '**' spans them
	matcher, err := glob.Compile(pattern, '/')
	rules = append(rules, compiledRule{
		Rule:    Rule{Pattern: pattern, Loader: l},
		matcher: matcher,
		err:     err,
	})
	return registry{rules: rules}
}

// match returns the loader of the first rule matching path, or nil when no
// rule matches. A rule whose pattern failed to compile aborts matching once
// it is reached.
func (r registry) match(path string) (document.Loader, error) {
	for _, rule := range r.rules {
		if rule.err != nil {
			return nil, &PatternError{Pattern: rule.Pattern, Err: rule.err}
		}
		if rule.matcher.Match(path) {
			return rule.Loader, nil
		}
	}
	return nil, nil
}

func (r registry) patterns() []string {
	patterns := make([]string, len(r.rules))
	for i, rule := range r.rules {
		patterns[i] = rule.Pattern
	}
	return patterns
}
