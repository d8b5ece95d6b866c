package evaluate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shipment-cli/internal/model"
)

func fptr(f float64) *float64 { return &f }

func TestEvaluate_AllCorrect(t *testing.T) {
	rec := model.ShipmentRecord{
		EmailID:             "em-1",
		ProductLine:         "pl_sea_import_lcl",
		OriginPort:          "HKHKG",
		OriginPortName:      "Hong Kong",
		DestinationPort:     "INMAA",
		DestinationPortName: "Chennai",
		Incoterm:            "FOB",
		CargoWeightKG:       fptr(500),
		CargoCBM:            fptr(2.5),
	}

	report := Evaluate([]model.ShipmentRecord{rec}, []model.ShipmentRecord{rec})
	assert.Equal(t, 9, report.Total)
	assert.Equal(t, 9, report.Correct)
	assert.InDelta(t, 100.0, report.Overall(), 0.001)
}

func TestEvaluate_PartialMatch(t *testing.T) {
	got := model.ShipmentRecord{
		EmailID:         "em-1",
		ProductLine:     "pl_sea_import_lcl",
		OriginPort:      "HKHKG",
		DestinationPort: model.UnknownPort,
		Incoterm:        "FOB",
		IsDangerous:     false,
	}
	want := model.ShipmentRecord{
		EmailID:         "em-1",
		ProductLine:     "pl_sea_import_lcl",
		OriginPort:      "HKHKG",
		DestinationPort: "INMAA",
		Incoterm:        "CIF",
		IsDangerous:     true,
	}

	report := Evaluate([]model.ShipmentRecord{got}, []model.ShipmentRecord{want})
	assert.Equal(t, 9, report.Total)
	// Wrong: destination code, incoterm, is_dangerous. Names both empty → match.
	assert.Equal(t, 6, report.Correct)

	byField := map[string]FieldMetric{}
	for _, m := range report.Fields {
		byField[m.Field] = m
	}
	assert.Equal(t, 0, byField["incoterm"].Correct)
	assert.Equal(t, 0, byField["is_dangerous"].Correct)
	assert.Equal(t, 1, byField["origin_port_code"].Correct)
}

func TestEvaluate_FloatPrecision(t *testing.T) {
	got := model.ShipmentRecord{EmailID: "em-1", CargoWeightKG: fptr(1234.567)}
	want := model.ShipmentRecord{EmailID: "em-1", CargoWeightKG: fptr(1234.57)}

	report := Evaluate([]model.ShipmentRecord{got}, []model.ShipmentRecord{want})
	byField := map[string]FieldMetric{}
	for _, m := range report.Fields {
		byField[m.Field] = m
	}
	assert.Equal(t, 1, byField["cargo_weight_kg"].Correct)

	// One-sided nil is a mismatch.
	got.CargoWeightKG = nil
	report = Evaluate([]model.ShipmentRecord{got}, []model.ShipmentRecord{want})
	for _, m := range report.Fields {
		if m.Field == "cargo_weight_kg" {
			assert.Equal(t, 0, m.Correct)
		}
	}
}

func TestEvaluate_MissingOutput(t *testing.T) {
	report := Evaluate(nil, []model.ShipmentRecord{{EmailID: "em-9"}})
	assert.Zero(t, report.Total)
	assert.Equal(t, []string{"em-9"}, report.MissingIDs)
}

func TestLoadRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"id": "em-1", "incoterm": "FOB", "is_dangerous": false, "cargo_weight_kg": 500, "cargo_cbm": null}
	]`), 0o644))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "em-1", records[0].EmailID)
	require.NotNil(t, records[0].CargoWeightKG)
	assert.Nil(t, records[0].CargoCBM)

	_, err = LoadRecords(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	rec := model.ShipmentRecord{EmailID: "em-1", Incoterm: "FOB"}
	report := Evaluate([]model.ShipmentRecord{rec}, []model.ShipmentRecord{rec})

	out := report.Render()
	assert.Contains(t, out, "incoterm")
	assert.Contains(t, out, "OVERALL ACCURACY: 100.00%")
}
