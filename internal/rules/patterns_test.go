package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyDangerous(t *testing.T) {
	rs := DefaultRuleSet()

	tests := []struct {
		name          string
		text          string
		wantDangerous bool
		wantAmbiguous bool
	}{
		{
			name: "explicit negation",
			text: "This shipment is non-hazardous",
		},
		{
			name: "negation without hyphen",
			text: "cargo is non hazardous, standard stowage",
		},
		{
			name: "no dangerous goods phrase",
			text: "There are no dangerous goods in this consignment",
		},
		{
			name: "plain text no signals",
			text: "Standard dry goods, no special handling",
		},
		{
			name:          "un number",
			text:          "Contains UN1234, packing group II",
			wantDangerous: true,
		},
		{
			name:          "dg keyword",
			text:          "DG cargo, please advise surcharge",
			wantDangerous: true,
		},
		{
			name:          "imdg class",
			text:          "IMDG Class 3 flammable liquid",
			wantDangerous: true,
		},
		{
			name:          "hazardous keyword",
			text:          "hazardous chemicals in drums",
			wantDangerous: true,
		},
		{
			name:          "conflicting signals",
			text:          "Contains UN1234 dangerous goods, non-hazardous packaging used",
			wantDangerous: true,
			wantAmbiguous: true,
		},
		{
			name:          "negation plus class token",
			text:          "marked non-DG but MSDS mentions Class 8",
			wantDangerous: true,
			wantAmbiguous: true,
		},
		{
			name: "empty text",
			text: "",
		},
		{
			name: "whitespace only",
			text: "   \n\t ",
		},
		{
			name: "negation with odd spacing",
			text: "this  is   NOT   DANGEROUS cargo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dangerous, ambiguous := rs.ClassifyDangerous(tt.text)
			assert.Equal(t, tt.wantDangerous, dangerous, "dangerous")
			assert.Equal(t, tt.wantAmbiguous, ambiguous, "ambiguous")
		})
	}
}

func TestClassifyDangerous_Deterministic(t *testing.T) {
	rs := DefaultRuleSet()
	text := "Contains UN1234 dangerous goods, non-hazardous packaging used"

	d0, a0 := rs.ClassifyDangerous(text)
	for i := 0; i < 10; i++ {
		d, a := rs.ClassifyDangerous(text)
		assert.Equal(t, d0, d)
		assert.Equal(t, a0, a)
	}
}

func TestRules_OrderNegativesFirst(t *testing.T) {
	rs := DefaultRuleSet()
	all := rs.Rules()
	require.NotEmpty(t, all)

	seenPositive := false
	for _, r := range all {
		if r.Polarity == Positive {
			seenPositive = true
		}
		if seenPositive {
			assert.Equal(t, Positive, r.Polarity, "negative after positive")
		}
	}
}

func TestLoadRuleSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patterns.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
negative:
  - '\bsafe cargo\b'
positive:
  - '\bexplosive\b'
`), 0o644))

	rs, err := LoadRuleSet(path)
	require.NoError(t, err)

	dangerous, ambiguous := rs.ClassifyDangerous("explosive material")
	assert.True(t, dangerous)
	assert.False(t, ambiguous)

	dangerous, _ = rs.ClassifyDangerous("safe cargo only")
	assert.False(t, dangerous)
}

func TestLoadRuleSet_Errors(t *testing.T) {
	_, err := LoadRuleSet(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, err = LoadRuleSet(empty)
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("positive:\n  - '['\n"), 0o644))
	_, err = LoadRuleSet(bad)
	require.Error(t, err)
}
