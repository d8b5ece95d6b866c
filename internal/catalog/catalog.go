// Package catalog loads and indexes the canonical port vocabulary used to
// validate extracted port references. The catalog is built once at startup
// from a trusted reference file and is read-only afterwards, so lookups are
// safe from any number of goroutines.
package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// PortEntry is one canonical port: UN/LOCODE, display name, and the alias
// strings it is known by in free text.
type PortEntry struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Options tunes catalog construction and lookup.
type Options struct {
	// FuzzyThreshold is the minimum similarity for a fuzzy match to
	// succeed. Zero disables fuzzy matching entirely.
	FuzzyThreshold float64
	// PreferredNames resolves duplicate-code conflicts in the source
	// file: for a code listed here, the first name containing the given
	// substring wins over earlier entries.
	PreferredNames map[string]string
}

// Catalog is the immutable, indexed port vocabulary.
type Catalog struct {
	entries []PortEntry
	byCode  map[string]int
	byName  map[string]int
	byAlias map[string]int
	// codes in sorted order, for deterministic fuzzy tie-breaking
	codes     []string
	threshold float64
}

// New builds an indexed catalog from validated entries. Entries are
// assumed deduplicated by code; later duplicates are ignored.
func New(entries []PortEntry, opts Options) *Catalog {
	c := &Catalog{
		entries:   make([]PortEntry, 0, len(entries)),
		byCode:    make(map[string]int, len(entries)),
		byName:    make(map[string]int, len(entries)),
		byAlias:   make(map[string]int),
		threshold: opts.FuzzyThreshold,
	}
	for _, e := range entries {
		code := strings.ToUpper(strings.TrimSpace(e.Code))
		if code == "" {
			continue
		}
		if _, dup := c.byCode[code]; dup {
			continue
		}
		e.Code = code
		idx := len(c.entries)
		c.entries = append(c.entries, e)
		c.byCode[code] = idx
		c.byName[Normalize(e.Name)] = idx
		for _, a := range e.Aliases {
			key := Normalize(a)
			if key == "" {
				continue
			}
			if _, taken := c.byAlias[key]; !taken {
				c.byAlias[key] = idx
			}
		}
	}
	c.codes = make([]string, 0, len(c.byCode))
	for code := range c.byCode {
		c.codes = append(c.codes, code)
	}
	sort.Strings(c.codes)
	return c
}

// Len returns the number of ports in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns all ports in deterministic code order.
func (c *Catalog) Entries() []PortEntry {
	out := make([]PortEntry, 0, len(c.codes))
	for _, code := range c.codes {
		out = append(out, c.entries[c.byCode[code]])
	}
	return out
}

// Lookup resolves free text to a canonical port entry. Matching order:
// exact code (case-insensitive), exact canonical name, exact alias, then
// fuzzy match over all names and aliases. A miss is a normal outcome, not
// an error: the second return is false and the entry is zero.
func (c *Catalog) Lookup(text string) (PortEntry, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return PortEntry{}, false
	}

	if idx, ok := c.byCode[strings.ToUpper(trimmed)]; ok {
		return c.entries[idx], true
	}

	key := Normalize(trimmed)
	if idx, ok := c.byName[key]; ok {
		return c.entries[idx], true
	}
	if idx, ok := c.byAlias[key]; ok {
		return c.entries[idx], true
	}

	return c.fuzzyLookup(key)
}

// fuzzyLookup scans every name and alias for the best similarity score at
// or above the threshold. Iteration follows sorted code order and only a
// strictly better score replaces the incumbent, so the result is stable
// across runs for the same catalog.
func (c *Catalog) fuzzyLookup(key string) (PortEntry, bool) {
	if c.threshold <= 0 || key == "" {
		return PortEntry{}, false
	}

	bestIdx := -1
	bestScore := 0.0
	for _, code := range c.codes {
		idx := c.byCode[code]
		e := c.entries[idx]
		for _, cand := range append([]string{e.Name}, e.Aliases...) {
			score := similarity(key, Normalize(cand))
			if score > bestScore {
				bestScore = score
				bestIdx = idx
			}
		}
	}

	if bestIdx < 0 || bestScore < c.threshold {
		return PortEntry{}, false
	}
	zap.L().Debug("catalog: fuzzy match",
		zap.String("input", key),
		zap.String("code", c.entries[bestIdx].Code),
		zap.Float64("score", bestScore),
	)
	return c.entries[bestIdx], true
}

// similarity combines normalized Levenshtein similarity with Jaccard
// word-set overlap and keeps the higher score. Edit distance handles
// misspellings of single-word names; the word-set metric handles
// multi-word names quoted partially or out of order.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	lev := levenshtein.Similarity(a, b, nil)
	if jac := jaccard(a, b); jac > lev {
		return jac
	}
	return lev
}

// jaccard computes Jaccard similarity on word sets.
func jaccard(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}
	intersection := 0
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union := len(wordsA)
	for w := range wordsB {
		if !wordsA[w] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// foldTransformer strips combining marks so "Gdańsk" and "Gdansk" compare
// equal after normalization.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims, collapses whitespace, and strips diacritics
// from a name or alias for exact-key and fuzzy comparison.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}
