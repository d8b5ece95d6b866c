package rules

import (
	"strings"

	"github.com/sells-group/shipment-cli/internal/model"
)

// Reconcile merges subject-derived and body-derived candidates for one
// field into the winning value. The precedence is fixed and
// field-independent: a present body candidate wins unconditionally, even
// when the subject disagrees; otherwise a present subject candidate is
// used; otherwise there is no value. No voting, no specificity heuristics.
func Reconcile(subject, body model.CandidateField) (string, model.Source) {
	if body.Present() {
		return strings.TrimSpace(body.Value), model.SourceBody
	}
	if subject.Present() {
		return strings.TrimSpace(subject.Value), model.SourceSubject
	}
	return "", model.SourceNone
}

// Reconciled holds the winning candidate per field after subject/body
// merging. A zero-value field means neither source produced anything.
type Reconciled struct {
	OriginPort      model.CandidateField
	DestinationPort model.CandidateField
	Incoterm        model.CandidateField
	DangerousGoods  model.CandidateField
	CargoWeightKG   model.CandidateField
	CargoCBM        model.CandidateField
}

// Empty reports whether no field got a value from either source.
func (r Reconciled) Empty() bool {
	return !r.OriginPort.Present() && !r.DestinationPort.Present() &&
		!r.Incoterm.Present() && !r.DangerousGoods.Present() &&
		!r.CargoWeightKG.Present() && !r.CargoCBM.Present()
}

// ReconcileSets applies Reconcile to every field of the two candidate
// sets. Product-line hints are deliberately not reconciled: the engine
// always recomputes the product line from validated ports.
func ReconcileSets(subject, body model.CandidateSet) Reconciled {
	merge := func(name string) model.CandidateField {
		value, source := Reconcile(subject.Field(name), body.Field(name))
		return model.CandidateField{Value: value, Source: source}
	}
	return Reconciled{
		OriginPort:      merge(model.FieldOriginPort),
		DestinationPort: merge(model.FieldDestinationPort),
		Incoterm:        merge(model.FieldIncoterm),
		DangerousGoods:  merge(model.FieldDangerousGoods),
		CargoWeightKG:   merge(model.FieldCargoWeightKG),
		CargoCBM:        merge(model.FieldCargoCBM),
	}
}
