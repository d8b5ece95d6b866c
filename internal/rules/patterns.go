// Package rules implements the deterministic post-processing core:
// dangerous-goods classification, incoterm normalization, product-line
// determination, subject/body reconciliation, and the rule engine that
// assembles the final shipment record. Everything here is pure over the
// immutable catalog and rule set, so records can be processed concurrently
// and reprocessing an email always yields the same record.
package rules

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Polarity marks whether a pattern asserts or negates a hazard mention.
type Polarity string

const (
	Negative Polarity = "negative"
	Positive Polarity = "positive"
)

// PatternRule is one compiled dangerous-goods pattern. Pattern order is
// semantically significant: negatives are applied before positives and
// their matched spans are masked out, so an explicitly negated mention
// ("non-hazardous") never trips the positive scan on its substring.
type PatternRule struct {
	Pattern  *regexp.Regexp
	Polarity Polarity
}

// RuleSet holds the ordered dangerous-goods patterns. Immutable after
// construction.
type RuleSet struct {
	negative []*regexp.Regexp
	positive []*regexp.Regexp
}

// Default pattern sources. Patterns run against lowercased text with
// whitespace collapsed to single spaces.
var (
	defaultNegative = []string{
		`\bnon[ -]?hazardous\b`,
		`\bnon[ -]?dg\b`,
		`\bnon[ -]?dangerous\b`,
		`\bnot dangerous\b`,
		`\bno dangerous goods\b`,
		`\bno dg\b`,
	}
	defaultPositive = []string{
		`\bdg\b`,
		`\bdangerous\b`,
		`\bhazardous\b`,
		`\bhazmat\b`,
		`\bun ?\d{4}\b`,
		`\bimo\b`,
		`\bimdg\b`,
		`\bclass ?\d\b`,
	}
)

// DefaultRuleSet returns the built-in dangerous-goods rule set.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(defaultNegative, defaultPositive)
	if err != nil {
		// Built-in patterns are compile-time constants.
		panic(err)
	}
	return rs
}

// NewRuleSet compiles negative and positive pattern sources.
func NewRuleSet(negative, positive []string) (*RuleSet, error) {
	rs := &RuleSet{}
	for _, src := range negative {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: compile negative pattern %q", src)
		}
		rs.negative = append(rs.negative, re)
	}
	for _, src := range positive {
		re, err := regexp.Compile(src)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: compile positive pattern %q", src)
		}
		rs.positive = append(rs.positive, re)
	}
	return rs, nil
}

// patternFile is the YAML shape of a rule override file.
type patternFile struct {
	Negative []string `yaml:"negative"`
	Positive []string `yaml:"positive"`
}

// LoadRuleSet reads a YAML pattern file and compiles it. A bad file is a
// startup error, same as a bad catalog: there is no safe way to classify
// hazards with a rule set that did not parse.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "rules: read pattern file %s", path)
	}
	var pf patternFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, eris.Wrapf(err, "rules: parse pattern file %s", path)
	}
	if len(pf.Negative) == 0 && len(pf.Positive) == 0 {
		return nil, eris.Errorf("rules: pattern file %s has no patterns", path)
	}
	return NewRuleSet(pf.Negative, pf.Positive)
}

// Rules returns the compiled patterns in scan order, negatives first.
func (rs *RuleSet) Rules() []PatternRule {
	out := make([]PatternRule, 0, len(rs.negative)+len(rs.positive))
	for _, re := range rs.negative {
		out = append(out, PatternRule{Pattern: re, Polarity: Negative})
	}
	for _, re := range rs.positive {
		out = append(out, PatternRule{Pattern: re, Polarity: Positive})
	}
	return out
}

// ClassifyDangerous scans free text for dangerous-goods signals.
// Negatives are matched first and masked out of the text; positives are
// then matched against the remainder. Co-occurrence of a negation and a
// surviving positive signal is a conflict: the shipment is conservatively
// treated as dangerous and flagged ambiguous for mandatory review.
func (rs *RuleSet) ClassifyDangerous(text string) (dangerous, ambiguous bool) {
	masked := normalizeText(text)
	if masked == "" {
		return false, false
	}

	negHit := false
	for _, re := range rs.negative {
		if re.MatchString(masked) {
			negHit = true
			masked = re.ReplaceAllString(masked, " ")
		}
	}

	posHit := false
	for _, re := range rs.positive {
		if re.MatchString(masked) {
			posHit = true
			break
		}
	}

	switch {
	case negHit && posHit:
		return true, true
	case posHit:
		return true, false
	default:
		return false, false
	}
}

// normalizeText lowercases and collapses all whitespace runs to single
// spaces so patterns can assume one canonical spacing.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
