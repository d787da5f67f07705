package fundamental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/models"
)

func rawBalance(periods ...models.RawPeriod) *models.RawStatement {
	return &models.RawStatement{
		Ticker:  "TEST.AU",
		Type:    models.StatementBalanceSheet,
		Periods: periods,
	}
}

func TestNormalizeKeywordMatching(t *testing.T) {
	raw := rawBalance(models.RawPeriod{
		EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Labels:  []string{"Total Current Assets", "Total Current Liab.", "Unrelated Line"},
		Items: map[string]float64{
			"Total Current Assets": 1200,
			"Total Current Liab.":  400,
			"Unrelated Line":       999,
		},
	})

	norm, err := Normalize(raw, ConceptKeywords)
	require.NoError(t, err)
	require.Len(t, norm.Periods, 1)

	p := norm.Periods[0]
	tca, ok := p.Value(models.ConceptTotalCurrentAssets)
	require.True(t, ok)
	assert.Equal(t, 1200.0, tca)

	// "Total Current Liab." matches via the "current liab" keyword
	tcl, ok := p.Value(models.ConceptTotalCurrentLiabilities)
	require.True(t, ok)
	assert.Equal(t, 400.0, tcl)

	// Unmatched labels contribute nothing
	_, ok = p.Value(models.ConceptTotalAssets)
	assert.False(t, ok)
}

func TestNormalizeCaseInsensitive(t *testing.T) {
	raw := rawBalance(models.RawPeriod{
		EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Labels:  []string{"TOTAL CURRENT ASSETS"},
		Items:   map[string]float64{"TOTAL CURRENT ASSETS": 50},
	})

	norm, err := Normalize(raw, ConceptKeywords)
	require.NoError(t, err)

	v, ok := norm.Periods[0].Value(models.ConceptTotalCurrentAssets)
	require.True(t, ok)
	assert.Equal(t, 50.0, v)
}

func TestNormalizeCamelCaseLabels(t *testing.T) {
	// Provider-style camelCase labels fold onto the same keywords
	raw := rawBalance(models.RawPeriod{
		EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Labels:  []string{"totalCurrentAssets", "goodWill", "propertyPlantEquipment"},
		Items: map[string]float64{
			"totalCurrentAssets":     300,
			"goodWill":               40,
			"propertyPlantEquipment": 220,
		},
	})

	norm, err := Normalize(raw, ConceptKeywords)
	require.NoError(t, err)
	p := norm.Periods[0]

	v, ok := p.Value(models.ConceptTotalCurrentAssets)
	require.True(t, ok)
	assert.Equal(t, 300.0, v)

	v, ok = p.Value(models.ConceptGoodwill)
	require.True(t, ok)
	assert.Equal(t, 40.0, v)

	v, ok = p.Value(models.ConceptPropertyPlantEquipment)
	require.True(t, ok)
	assert.Equal(t, 220.0, v)
}

func TestNormalizeFirstMatchWins(t *testing.T) {
	// Two labels match the same concept; the earlier column wins
	raw := rawBalance(models.RawPeriod{
		EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Labels:  []string{"Total Current Assets", "Other Current Assets"},
		Items: map[string]float64{
			"Total Current Assets": 100,
			"Other Current Assets": 25,
		},
	})

	norm, err := Normalize(raw, ConceptKeywords)
	require.NoError(t, err)

	v, ok := norm.Periods[0].Value(models.ConceptTotalCurrentAssets)
	require.True(t, ok)
	assert.Equal(t, 100.0, v)
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := rawBalance(models.RawPeriod{
		EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Labels:  []string{"Total Current Assets", "Inventory", "Total Liab"},
		Items: map[string]float64{
			"Total Current Assets": 100,
			"Inventory":            30,
			"Total Liab":           70,
		},
	})

	first, err := Normalize(raw, ConceptKeywords)
	require.NoError(t, err)

	// Re-feed the normalized output as a raw statement using the canonical
	// concept identifiers as labels
	refed := &models.RawStatement{
		Ticker: first.Ticker,
		Type:   first.Type,
	}
	for _, p := range first.Periods {
		rp := models.RawPeriod{EndDate: p.EndDate, Items: make(map[string]float64)}
		for c, v := range p.Values {
			rp.Items[string(c)] = v
		}
		refed.Periods = append(refed.Periods, rp)
	}

	second, err := Normalize(refed, ConceptKeywords)
	require.NoError(t, err)
	assert.Equal(t, first.Periods[0].Values, second.Periods[0].Values)
}

func TestNormalizeEmptyStatement(t *testing.T) {
	tests := []struct {
		name string
		raw  *models.RawStatement
	}{
		{"nil statement", nil},
		{"zero periods", rawBalance()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw, ConceptKeywords)
			require.Error(t, err)

			var structErr *models.InputStructureError
			require.ErrorAs(t, err, &structErr)
			assert.Contains(t, structErr.Reason, "no periods")
		})
	}
}

func TestNormalizeMissingConceptIsAbsentNotZero(t *testing.T) {
	raw := rawBalance(models.RawPeriod{
		EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Labels:  []string{"Total Current Assets"},
		Items:   map[string]float64{"Total Current Assets": 10},
	})

	norm, err := Normalize(raw, ConceptKeywords)
	require.NoError(t, err)

	p := norm.Periods[0]
	_, ok := p.Values[models.ConceptInventory]
	assert.False(t, ok, "absent concept must not appear in the map")
	assert.Len(t, p.Values, 1)
}

func TestFoldLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Total Current Assets", "total current assets"},
		{"total_current_assets", "total current assets"},
		{"totalCurrentAssets", "total current assets"},
		{"goodWill", "good will"},
		{"NetPPE", "net ppe"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, foldLabel(tt.in))
		})
	}
}
