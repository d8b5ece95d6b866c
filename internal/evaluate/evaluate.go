// Package evaluate computes field-level accuracy of extraction output
// against ground-truth records. It consumes the same record schema the
// pipeline emits; review flags are traceability metadata and are not
// scored.
package evaluate

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/shipment-cli/internal/model"
)

// scoredFields lists the record fields that count toward accuracy, in
// report order.
var scoredFields = []string{
	"product_line",
	"origin_port_code",
	"origin_port_name",
	"destination_port_code",
	"destination_port_name",
	"incoterm",
	"cargo_weight_kg",
	"cargo_cbm",
	"is_dangerous",
}

// FieldMetric is the correct/total tally for one field.
type FieldMetric struct {
	Field   string `json:"field"`
	Correct int    `json:"correct"`
	Total   int    `json:"total"`
}

// Accuracy returns the field accuracy in percent.
func (m FieldMetric) Accuracy() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Correct) / float64(m.Total) * 100
}

// Report aggregates per-field and overall accuracy.
type Report struct {
	Fields     []FieldMetric `json:"fields"`
	Correct    int           `json:"correct"`
	Total      int           `json:"total"`
	MissingIDs []string      `json:"missing_ids,omitempty"`
}

// Overall returns the overall accuracy in percent.
func (r *Report) Overall() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Total) * 100
}

// LoadRecords reads a JSON array of shipment records.
func LoadRecords(path string) ([]model.ShipmentRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "evaluate: read %s", path)
	}
	var records []model.ShipmentRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "evaluate: parse %s", path)
	}
	return records, nil
}

// Evaluate scores outputs against ground truth, matched by email ID.
// Truth records with no corresponding output are reported as missing and
// skipped, matching the original evaluation behavior.
func Evaluate(outputs, truth []model.ShipmentRecord) *Report {
	byID := make(map[string]model.ShipmentRecord, len(outputs))
	for _, r := range outputs {
		byID[r.EmailID] = r
	}

	metrics := make(map[string]*FieldMetric, len(scoredFields))
	report := &Report{}
	for _, f := range scoredFields {
		m := &FieldMetric{Field: f}
		metrics[f] = m
	}

	for _, want := range truth {
		got, ok := byID[want.EmailID]
		if !ok {
			report.MissingIDs = append(report.MissingIDs, want.EmailID)
			continue
		}
		for _, f := range scoredFields {
			m := metrics[f]
			m.Total++
			report.Total++
			if fieldsMatch(f, got, want) {
				m.Correct++
				report.Correct++
			}
		}
	}

	for _, f := range scoredFields {
		report.Fields = append(report.Fields, *metrics[f])
	}
	return report
}

func fieldsMatch(field string, got, want model.ShipmentRecord) bool {
	switch field {
	case "product_line":
		return stringsEqual(got.ProductLine, want.ProductLine)
	case "origin_port_code":
		return stringsEqual(got.OriginPort, want.OriginPort)
	case "origin_port_name":
		return stringsEqual(got.OriginPortName, want.OriginPortName)
	case "destination_port_code":
		return stringsEqual(got.DestinationPort, want.DestinationPort)
	case "destination_port_name":
		return stringsEqual(got.DestinationPortName, want.DestinationPortName)
	case "incoterm":
		return stringsEqual(got.Incoterm, want.Incoterm)
	case "cargo_weight_kg":
		return floatsEqual(got.CargoWeightKG, want.CargoWeightKG)
	case "cargo_cbm":
		return floatsEqual(got.CargoCBM, want.CargoCBM)
	case "is_dangerous":
		return got.IsDangerous == want.IsDangerous
	default:
		return false
	}
}

// stringsEqual compares case-insensitively after trimming, treating empty
// as an explicit value so sentinel-vs-empty mismatches count as wrong.
func stringsEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// floatsEqual compares at two-decimal precision; both-nil matches,
// one-sided nil does not.
func floatsEqual(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return math.Round(*a*100) == math.Round(*b*100)
}

// Render formats the report as the fixed-width table the evaluate command
// prints.
func (r *Report) Render() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-25s | %-10s | %s\n", "Field", "Accuracy", "Correct/Total"))
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, m := range r.Fields {
		b.WriteString(fmt.Sprintf("%-25s | %6.2f%%    | %d/%d\n", m.Field, m.Accuracy(), m.Correct, m.Total))
	}
	b.WriteString(fmt.Sprintf("\nOVERALL ACCURACY: %.2f%% (%d/%d)\n", r.Overall(), r.Correct, r.Total))
	if len(r.MissingIDs) > 0 {
		b.WriteString(fmt.Sprintf("Missing outputs for %d email(s): %s\n",
			len(r.MissingIDs), strings.Join(r.MissingIDs, ", ")))
	}
	return b.String()
}
