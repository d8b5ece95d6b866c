package catalog

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// rawEntry matches one element of the reference file. The aliases field is
// optional; compound names like "Madras / Chennai" additionally contribute
// their parts as aliases.
type rawEntry struct {
	Code    string   `json:"code"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Load reads the port reference file and builds an indexed catalog.
// Individual entries missing a code or name are skipped with a warning;
// an unreadable or unparsable file, or a file yielding no valid entries,
// is an error — processing must not start without a trustworthy catalog.
func Load(path string, opts Options) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var raw []rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}

	entries := selectEntries(raw, opts.PreferredNames)
	if len(entries) == 0 {
		return nil, eris.Errorf("catalog: no valid entries in %s", path)
	}

	c := New(entries, opts)
	zap.L().Info("catalog: loaded",
		zap.String("path", path),
		zap.Int("ports", c.Len()),
		zap.Int("source_entries", len(raw)),
	)
	return c, nil
}

// selectEntries validates raw entries and collapses duplicate codes to a
// single canonical name. The first-seen name wins unless a preferred-name
// override names a substring the chosen name must contain; the reference
// file is known to list some codes twice with a wrong first name.
func selectEntries(raw []rawEntry, preferred map[string]string) []PortEntry {
	byCode := make(map[string]*PortEntry)
	var order []string

	for _, r := range raw {
		code := strings.ToUpper(strings.TrimSpace(r.Code))
		name := strings.TrimSpace(r.Name)
		if code == "" || name == "" {
			zap.L().Warn("catalog: skipping malformed entry",
				zap.String("code", r.Code),
				zap.String("name", r.Name),
			)
			continue
		}

		e, seen := byCode[code]
		if !seen {
			byCode[code] = &PortEntry{
				Code:    code,
				Name:    name,
				Aliases: aliasesFor(name, r.Aliases),
			}
			order = append(order, code)
			continue
		}

		// Duplicate code: keep the incumbent name unless the override
		// prefers this one, but absorb the new spelling as an alias.
		if want, ok := preferred[code]; ok &&
			strings.Contains(name, want) && !strings.Contains(e.Name, want) {
			e.Aliases = appendAlias(e.Aliases, e.Name)
			e.Name = name
			e.Aliases = mergeAliases(e.Aliases, aliasesFor(name, r.Aliases))
			continue
		}
		e.Aliases = appendAlias(e.Aliases, name)
		e.Aliases = mergeAliases(e.Aliases, r.Aliases)
	}

	entries := make([]PortEntry, 0, len(order))
	for _, code := range order {
		entries = append(entries, *byCode[code])
	}
	return entries
}

// aliasesFor derives the alias list for a name: explicit aliases plus the
// parts of compound names ("Madras / Chennai" contributes both).
func aliasesFor(name string, explicit []string) []string {
	var out []string
	out = mergeAliases(out, explicit)
	if strings.Contains(name, "/") {
		for _, part := range strings.Split(name, "/") {
			part = strings.TrimSpace(part)
			if len(part) > 2 {
				out = appendAlias(out, part)
			}
		}
	}
	return out
}

func appendAlias(aliases []string, alias string) []string {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return aliases
	}
	key := Normalize(alias)
	for _, a := range aliases {
		if Normalize(a) == key {
			return aliases
		}
	}
	return append(aliases, alias)
}

func mergeAliases(dst, src []string) []string {
	for _, a := range src {
		dst = appendAlias(dst, a)
	}
	return dst
}
