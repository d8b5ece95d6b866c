package extractor

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/sells-group/shipment-cli/internal/catalog"
	"github.com/sells-group/shipment-cli/internal/model"
)

// OfflineExtractor derives candidates from the text itself with the port
// vocabulary and a handful of regexes. It needs no credentials and is
// fully deterministic, which makes it the fallback when no API key is
// configured and the fixture generator for tests. Its output is still
// routed through the reconciler and rule engine like any other
// extraction.
type OfflineExtractor struct {
	patterns []portPattern
	incoterm *regexp.Regexp
	dg       *regexp.Regexp
	weight   *regexp.Regexp
	volume   *regexp.Regexp
}

// portPattern pairs a compiled search pattern with the port code it
// indicates.
type portPattern struct {
	re   *regexp.Regexp
	code string
}

var (
	offlineIncotermRe = regexp.MustCompile(`(?i)\b(EXW|FCA|FAS|FOB|CFR|CIF|CPT|CIP|DAP|DPU|DDP)\b`)
	offlineDGRe       = regexp.MustCompile(`(?i)\b(non[ -]?hazardous|non[ -]?dg|not dangerous|no dangerous goods|dangerous goods|hazardous|dg|un ?\d{4}|imo|imdg|class ?\d)\b`)
	offlineWeightRe   = regexp.MustCompile(`(?i)(\d+(?:,\d+)*(?:\.\d+)?)\s*(?:kgs?|kilos?|gross weight|gw)\b`)
	offlineVolumeRe   = regexp.MustCompile(`(?i)(\d+(?:,\d+)*(?:\.\d+)?)\s*(?:cbm|m3|vol)\b`)
)

// NewOfflineExtractor builds the offline variant over the loaded catalog.
// Search patterns cover every code, canonical name, and alias, matched on
// word boundaries. Pattern order follows the catalog's deterministic
// entry order so repeated runs scan identically.
func NewOfflineExtractor(c *catalog.Catalog) *OfflineExtractor {
	var patterns []portPattern
	add := func(text, code string) {
		text = strings.TrimSpace(text)
		if len(text) < 3 {
			return
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(text) + `\b`)
		if err != nil {
			return
		}
		patterns = append(patterns, portPattern{re: re, code: code})
	}
	for _, e := range c.Entries() {
		add(e.Code, e.Code)
		add(e.Name, e.Code)
		for _, a := range e.Aliases {
			add(a, e.Code)
		}
	}
	return &OfflineExtractor{
		patterns: patterns,
		incoterm: offlineIncotermRe,
		dg:       offlineDGRe,
		weight:   offlineWeightRe,
		volume:   offlineVolumeRe,
	}
}

// Name implements Extractor.
func (e *OfflineExtractor) Name() string { return "offline" }

// Extract implements Extractor. Subject and body are scanned
// independently, mirroring the live extractor's contract.
func (e *OfflineExtractor) Extract(_ context.Context, email model.Email) (model.CandidateSet, model.CandidateSet, error) {
	subject := e.scan(email.Subject, model.SourceSubject)
	body := e.scan(email.Body, model.SourceBody)
	return subject, body, nil
}

func (e *OfflineExtractor) scan(text string, source model.Source) model.CandidateSet {
	set := model.CandidateSet{Source: source}
	if strings.TrimSpace(text) == "" {
		return set
	}

	origin, dest := e.findRoute(text)
	set.OriginPort = origin
	set.DestinationPort = dest

	if m := e.incoterm.FindString(text); m != "" {
		set.Incoterm = strings.ToUpper(m)
	}
	if m := e.dg.FindString(text); m != "" {
		set.DangerousGoods = m
	}
	if m := e.weight.FindStringSubmatch(text); m != nil {
		set.CargoWeightKG = strings.ReplaceAll(m[1], ",", "")
	}
	if m := e.volume.FindStringSubmatch(text); m != nil {
		set.CargoCBM = strings.ReplaceAll(m[1], ",", "")
	}
	return set
}

// portHit is one vocabulary match at a text position.
type portHit struct {
	pos  int
	code string
}

// findRoute locates port mentions in order of appearance and assigns
// origin and destination. When Indian and foreign ports both appear, the
// import/export wording decides direction (default import: foreign origin,
// Indian destination); otherwise first mention is origin, second is
// destination.
func (e *OfflineExtractor) findRoute(text string) (origin, dest string) {
	var hits []portHit
	seen := make(map[string]bool)
	for _, p := range e.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			hits = append(hits, portHit{pos: loc[0], code: p.code})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var ports []string
	for _, h := range hits {
		if !seen[h.code] {
			ports = append(ports, h.code)
			seen[h.code] = true
		}
	}

	var indian, foreign []string
	for _, p := range ports {
		if strings.HasPrefix(p, "IN") {
			indian = append(indian, p)
		} else {
			foreign = append(foreign, p)
		}
	}

	lower := strings.ToLower(text)
	isImport := strings.Contains(lower, "import")
	// "export" shows up in company names, so import wording wins ties.
	isExport := strings.Contains(lower, "export") && !isImport

	switch {
	case len(indian) > 0 && len(foreign) > 0:
		if isExport {
			return indian[0], foreign[0]
		}
		return foreign[0], indian[0]
	case len(ports) >= 2:
		return ports[0], ports[1]
	case len(ports) == 1:
		p := ports[0]
		if strings.HasPrefix(p, "IN") && !isExport {
			return "", p
		}
		return p, ""
	default:
		return "", ""
	}
}
