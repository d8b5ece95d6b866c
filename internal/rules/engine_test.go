package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/shipment-cli/internal/catalog"
	"github.com/sells-group/shipment-cli/internal/model"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	c := catalog.New([]catalog.PortEntry{
		{Code: "CNSHA", Name: "Shanghai"},
		{Code: "NLRTM", Name: "Rotterdam"},
		{Code: "INMAA", Name: "Chennai", Aliases: []string{"Madras"}},
		{Code: "HKHKG", Name: "Hong Kong"},
	}, catalog.Options{FuzzyThreshold: 0.85})
	return NewEngine(c, DefaultRuleSet())
}

func TestApply_FullyResolvedRecord(t *testing.T) {
	e := testEngine(t)

	rec := Reconciled{
		OriginPort:      model.CandidateField{Value: "Shanghai", Source: model.SourceBody},
		DestinationPort: model.CandidateField{Value: "Rotterdam", Source: model.SourceBody},
		Incoterm:        model.CandidateField{Value: "fob", Source: model.SourceBody},
		CargoWeightKG:   model.CandidateField{Value: "1,234.567", Source: model.SourceBody},
	}
	out := e.Apply("em-1", rec, "Origin: Shanghai, Destination: Rotterdam, Incoterm: fob, goods are non-hazardous")

	assert.Equal(t, "em-1", out.EmailID)
	assert.Equal(t, "CNSHA", out.OriginPort)
	assert.Equal(t, "Shanghai", out.OriginPortName)
	assert.Equal(t, "NLRTM", out.DestinationPort)
	assert.Equal(t, "Rotterdam", out.DestinationPortName)
	assert.Equal(t, "FOB", out.Incoterm)
	assert.False(t, out.IsDangerous)
	assert.Empty(t, out.ReviewFlags)
	require.NotNil(t, out.CargoWeightKG)
	assert.InDelta(t, 1234.57, *out.CargoWeightKG, 0.001)
	assert.Nil(t, out.CargoCBM)
	assert.Equal(t, model.Unknown, out.ProductLine)
}

func TestApply_UnmatchedPort(t *testing.T) {
	e := testEngine(t)

	rec := Reconciled{
		OriginPort:      model.CandidateField{Value: "Shanghai", Source: model.SourceBody},
		DestinationPort: model.CandidateField{Value: "Port of Zzyzx", Source: model.SourceBody},
	}
	out := e.Apply("em-2", rec, "shipment from Shanghai to the Port of Zzyzx")

	assert.Equal(t, "CNSHA", out.OriginPort)
	assert.Equal(t, model.UnknownPort, out.DestinationPort)
	assert.Empty(t, out.DestinationPortName)
	assert.True(t, out.HasFlag(model.FlagUnmatchedPort))
}

func TestApply_ProductLineFromResolvedPorts(t *testing.T) {
	e := testEngine(t)

	rec := Reconciled{
		OriginPort:      model.CandidateField{Value: "Hong Kong", Source: model.SourceBody},
		DestinationPort: model.CandidateField{Value: "Madras", Source: model.SourceBody},
	}
	out := e.Apply("em-3", rec, "import shipment Hong Kong to Madras")

	assert.Equal(t, "HKHKG", out.OriginPort)
	assert.Equal(t, "INMAA", out.DestinationPort)
	assert.Equal(t, "Chennai", out.DestinationPortName)
	assert.Equal(t, ProductLineSeaImportLCL, out.ProductLine)
}

func TestApply_AmbiguousDangerousGoods(t *testing.T) {
	e := testEngine(t)

	out := e.Apply("em-4", Reconciled{
		DangerousGoods: model.CandidateField{Value: "non-hazardous", Source: model.SourceBody},
	}, "Contains UN1234 dangerous goods, non-hazardous packaging used")

	assert.True(t, out.IsDangerous)
	assert.True(t, out.HasFlag(model.FlagAmbiguousDG))
}

func TestApply_DangerSignalInLosingSourceStillSeen(t *testing.T) {
	e := testEngine(t)

	// Subject mentions the hazard, body does not. Scanning runs over the
	// combined text, so the subject-only signal is not lost.
	out := e.Apply("em-5", Reconciled{}, "DG shipment enquiry Please quote Shanghai to Rotterdam")

	assert.True(t, out.IsDangerous)
	assert.False(t, out.HasFlag(model.FlagAmbiguousDG))
}

func TestApply_EmptyInput(t *testing.T) {
	e := testEngine(t)

	out := e.Apply("em-6", Reconciled{}, "")

	assert.Equal(t, model.UnknownPort, out.OriginPort)
	assert.Equal(t, model.UnknownPort, out.DestinationPort)
	assert.Equal(t, model.Unknown, out.Incoterm)
	assert.Equal(t, model.Unknown, out.ProductLine)
	assert.False(t, out.IsDangerous)
	assert.Nil(t, out.CargoWeightKG)
	assert.Nil(t, out.CargoCBM)
	assert.Equal(t, []string{model.FlagInsufficientData}, out.ReviewFlags)
	// Absent candidates are not "unmatched" ports.
	assert.False(t, out.HasFlag(model.FlagUnmatchedPort))
}

func TestApply_NeverReturnsFreeFormFields(t *testing.T) {
	e := testEngine(t)

	rec := Reconciled{
		OriginPort:      model.CandidateField{Value: "somewhere weird", Source: model.SourceBody},
		DestinationPort: model.CandidateField{Value: "elsewhere", Source: model.SourceBody},
		Incoterm:        model.CandidateField{Value: "free on board maybe", Source: model.SourceBody},
		CargoWeightKG:   model.CandidateField{Value: "heavy", Source: model.SourceBody},
	}
	out := e.Apply("em-7", rec, "somewhere weird to elsewhere, free on board maybe")

	assert.Equal(t, model.UnknownPort, out.OriginPort)
	assert.Equal(t, model.UnknownPort, out.DestinationPort)
	assert.Equal(t, model.Unknown, out.Incoterm)
	assert.Equal(t, model.Unknown, out.ProductLine)
	assert.Nil(t, out.CargoWeightKG)
	assert.NotNil(t, out.ReviewFlags)
}

func TestApply_Deterministic(t *testing.T) {
	e := testEngine(t)
	rec := Reconciled{
		OriginPort:      model.CandidateField{Value: "shangai", Source: model.SourceBody},
		DestinationPort: model.CandidateField{Value: "Roterdam", Source: model.SourceBody},
		Incoterm:        model.CandidateField{Value: "CIF", Source: model.SourceSubject},
	}
	text := "shangai to Roterdam CIF, hazardous cargo"

	first := e.Apply("em-8", rec, text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Apply("em-8", rec, text))
	}
}
