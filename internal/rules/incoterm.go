package rules

import (
	"strings"

	"github.com/sells-group/shipment-cli/internal/model"
)

// canonicalIncoterms is the Incoterms 2020 vocabulary. Matching is exact
// after trim and uppercase — no fuzzy matching here: a wrongly inferred
// incoterm shifts commercial liability, so anything else is Unknown.
var canonicalIncoterms = map[string]struct{}{
	"EXW": {}, "FCA": {}, "FAS": {}, "FOB": {},
	"CFR": {}, "CIF": {}, "CPT": {}, "CIP": {},
	"DAP": {}, "DPU": {}, "DDP": {},
}

// NormalizeIncoterm maps raw extracted text to a canonical incoterm or
// model.Unknown. Idempotent: feeding the output back in returns the same
// value, since canonical terms match themselves and Unknown matches
// nothing.
func NormalizeIncoterm(raw string) string {
	term := strings.ToUpper(strings.TrimSpace(raw))
	if _, ok := canonicalIncoterms[term]; ok {
		return term
	}
	return model.Unknown
}
