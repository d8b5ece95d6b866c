// Package extractor produces raw candidate shipment fields from email
// text. Two interchangeable variants exist: a Claude-backed extractor and
// a deterministic offline extractor. The downstream reconciler and rule
// engine never know which one supplied the candidates — candidates are
// untrusted either way and everything authoritative happens after this
// step.
package extractor

import (
	"context"

	"github.com/sells-group/shipment-cli/internal/model"
)

// Extractor turns one email into two parallel candidate sets, one derived
// from the subject line and one from the body.
type Extractor interface {
	Extract(ctx context.Context, email model.Email) (subject, body model.CandidateSet, err error)
	// Name identifies the variant for run metadata and logs.
	Name() string
}
