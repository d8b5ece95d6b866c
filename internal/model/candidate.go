package model

import "strings"

// Source identifies which part of the email a candidate value came from.
type Source string

const (
	SourceSubject Source = "subject"
	SourceBody    Source = "body"
	SourceNone    Source = "none"
)

// CandidateField is a single raw extracted value plus its provenance.
// The value is untrusted extractor output and may be empty, junk, or
// inconsistent with the other source.
type CandidateField struct {
	Value  string `json:"value"`
	Source Source `json:"source"`
}

// Present reports whether the candidate carries a usable value.
func (c CandidateField) Present() bool {
	return strings.TrimSpace(c.Value) != ""
}

// Field names produced by the extractor for each source text.
const (
	FieldOriginPort      = "origin_port"
	FieldDestinationPort = "destination_port"
	FieldIncoterm        = "incoterm"
	FieldDangerousGoods  = "dangerous_goods_mentions"
	FieldProductLine     = "product_line"
	FieldCargoWeightKG   = "cargo_weight_kg"
	FieldCargoCBM        = "cargo_cbm"
)

// CandidateSet is one extractor's raw field guesses for a single source
// text (subject or body). Empty strings mean the extractor found nothing.
type CandidateSet struct {
	Source          Source `json:"source"`
	OriginPort      string `json:"origin_port"`
	DestinationPort string `json:"destination_port"`
	Incoterm        string `json:"incoterm"`
	DangerousGoods  string `json:"dangerous_goods_mentions"`
	ProductLineHint string `json:"product_line_hint"`
	CargoWeightKG   string `json:"cargo_weight_kg"`
	CargoCBM        string `json:"cargo_cbm"`
}

// Field returns the named field as a CandidateField carrying this set's
// source. Unknown names return an absent candidate.
func (s CandidateSet) Field(name string) CandidateField {
	var v string
	switch name {
	case FieldOriginPort:
		v = s.OriginPort
	case FieldDestinationPort:
		v = s.DestinationPort
	case FieldIncoterm:
		v = s.Incoterm
	case FieldDangerousGoods:
		v = s.DangerousGoods
	case FieldProductLine:
		v = s.ProductLineHint
	case FieldCargoWeightKG:
		v = s.CargoWeightKG
	case FieldCargoCBM:
		v = s.CargoCBM
	}
	return CandidateField{Value: v, Source: s.Source}
}

// Empty reports whether the set contains no values at all.
func (s CandidateSet) Empty() bool {
	return s.OriginPort == "" && s.DestinationPort == "" && s.Incoterm == "" &&
		s.DangerousGoods == "" && s.ProductLineHint == "" &&
		s.CargoWeightKG == "" && s.CargoCBM == ""
}
