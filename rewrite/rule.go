package rewrite

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/retort/entity"
)

// Rule is a fixed-arity rewrite operator. Each reactant role carries a
// substring pattern ("" matches anything); each product template may
// reference matched reactants as $1..$n. An unordered rule matches any
// assignment of reactants to roles; an ordered rule matches positionally.
type Rule struct {
	name      string
	patterns  []string
	templates []string
	ordered   bool
}

// ruleBlob is the stable wire form of a rule.
type ruleBlob struct {
	Name      string   `json:"name"`
	Patterns  []string `json:"patterns"`
	Templates []string `json:"templates"`
	Ordered   bool     `json:"ordered"`
}

// NewRule builds a rewrite rule. Patterns and templates are NFC-normalized
// like molecule text.
func NewRule(name string, patterns, templates []string, ordered bool) Rule {
	r := Rule{
		name:      entity.NormalizeKey(name),
		patterns:  make([]string, len(patterns)),
		templates: make([]string, len(templates)),
		ordered:   ordered,
	}
	for i, p := range patterns {
		r.patterns[i] = entity.NormalizeKey(p)
	}
	for i, tpl := range templates {
		r.templates[i] = entity.NormalizeKey(tpl)
	}
	return r
}

// Name returns the rule's display name. Not part of identity-relevant
// matching behavior but included in the canonical key so two differently
// named copies of the same rewrite stay distinct entities.
func (r Rule) Name() string { return r.name }

// Key returns the canonical identity signature.
func (r Rule) Key() string {
	order := "unordered"
	if r.ordered {
		order = "ordered"
	}
	return fmt.Sprintf("rule/v1|%s|%s|%s|%s",
		r.name, strings.Join(r.patterns, ";"), strings.Join(r.templates, ";"), order)
}

// Blob returns the JSON encoding of the rule.
func (r Rule) Blob() []byte {
	b, err := json.Marshal(ruleBlob{
		Name:      r.name,
		Patterns:  r.patterns,
		Templates: r.templates,
		Ordered:   r.ordered,
	})
	if err != nil {
		panic(fmt.Sprintf("marshal rule: %v", err))
	}
	return b
}

// Arity reports the fixed reactant count.
func (r Rule) Arity() entity.Arity { return entity.Fixed(len(r.patterns)) }

// Ordered reports whether reactant roles are positional.
func (r Rule) Ordered() bool { return r.ordered }

// matchRole reports whether molecule text satisfies the pattern for role i.
func (r Rule) matchRole(i int, text string) bool {
	return strings.Contains(text, r.patterns[i])
}

// DecodeRule reconstructs a rule from its blob.
func DecodeRule(blob []byte) (Rule, error) {
	var rb ruleBlob
	if err := json.Unmarshal(blob, &rb); err != nil {
		return Rule{}, fmt.Errorf("decode rule: %w", err)
	}
	return Rule{name: rb.Name, patterns: rb.Patterns, templates: rb.Templates, ordered: rb.Ordered}, nil
}
