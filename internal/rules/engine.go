package rules

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/shipment-cli/internal/catalog"
	"github.com/sells-group/shipment-cli/internal/model"
)

// Engine applies the deterministic business rules to reconciled candidate
// fields and assembles the final shipment record. It holds only the
// immutable catalog and rule set, so a single Engine is safe to share
// across concurrent workers.
type Engine struct {
	catalog *catalog.Catalog
	rules   *RuleSet
}

// NewEngine creates an Engine over the given catalog and rule set.
func NewEngine(c *catalog.Catalog, rs *RuleSet) *Engine {
	return &Engine{catalog: c, rules: rs}
}

// Apply runs the rule sequence for one email and returns its record.
// Per-record problems never surface as errors: they resolve to sentinels
// plus review flags, so a batch of N emails always yields N records.
//
// Order matters: ports resolve first because the product line consumes
// them; dangerous-goods scanning runs over the full combined text rather
// than any single winning field, so a hazard signal in the losing source
// is still seen.
func (e *Engine) Apply(emailID string, rec Reconciled, fullText string) model.ShipmentRecord {
	flags := make(map[string]struct{})

	originCode, originName := e.resolvePort(rec.OriginPort, flags)
	destCode, destName := e.resolvePort(rec.DestinationPort, flags)

	incoterm := NormalizeIncoterm(rec.Incoterm.Value)

	dangerous, ambiguous := e.rules.ClassifyDangerous(fullText)
	if ambiguous {
		flags[model.FlagAmbiguousDG] = struct{}{}
	}

	productLine := DetermineProductLine(originCode, destCode)

	// No candidate from either source for any field: the record is all
	// sentinels and somebody should look at the email.
	if rec.Empty() {
		flags[model.FlagInsufficientData] = struct{}{}
	}

	record := model.ShipmentRecord{
		EmailID:             emailID,
		ProductLine:         productLine,
		OriginPort:          originCode,
		DestinationPort:     destCode,
		Incoterm:            incoterm,
		CargoWeightKG:       parseMetric(rec.CargoWeightKG.Value),
		CargoCBM:            parseMetric(rec.CargoCBM.Value),
		IsDangerous:         dangerous,
		ReviewFlags:         sortedFlags(flags),
	}
	if originCode != model.UnknownPort {
		record.OriginPortName = originName
	}
	if destCode != model.UnknownPort {
		record.DestinationPortName = destName
	}

	if record.NeedsReview() {
		zap.L().Debug("rules: record flagged",
			zap.String("email_id", emailID),
			zap.Strings("flags", record.ReviewFlags),
		)
	}
	return record
}

// resolvePort validates a reconciled port candidate against the catalog.
// An absent candidate is UnknownPort without a flag; a present candidate
// that the catalog cannot resolve is UnknownPort plus UNMATCHED_PORT.
func (e *Engine) resolvePort(c model.CandidateField, flags map[string]struct{}) (code, name string) {
	if !c.Present() {
		return model.UnknownPort, ""
	}
	entry, ok := e.catalog.Lookup(c.Value)
	if !ok {
		flags[model.FlagUnmatchedPort] = struct{}{}
		return model.UnknownPort, ""
	}
	return entry.Code, entry.Name
}

// parseMetric parses a numeric candidate and rounds to two decimals.
// Anything non-numeric (including "TBD" and friends) is nil, never an
// error.
func parseMetric(raw string) *float64 {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	rounded := math.Round(f*100) / 100
	return &rounded
}

// sortedFlags returns the flag set as a sorted slice, never nil, so
// serialized records are stable and flag-free records show [].
func sortedFlags(flags map[string]struct{}) []string {
	out := make([]string, 0, len(flags))
	for f := range flags {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
