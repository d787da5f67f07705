package quant

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/tally/internal/models"
)

func day(n int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func pricePoints(closes ...float64) []models.PricePoint {
	out := make([]models.PricePoint, len(closes))
	for i, c := range closes {
		out[i] = models.PricePoint{Date: day(i), Close: c}
	}
	return out
}

func TestReturns(t *testing.T) {
	rets := Returns(pricePoints(100, 110, 99))
	require.Len(t, rets, 2)

	// First period has no return
	assert.Equal(t, day(1), rets[0].Date)
	assert.InDelta(t, 0.10, rets[0].Return, 1e-9)
	assert.InDelta(t, -0.10, rets[1].Return, 1e-9)
}

func TestReturnsUnsortedInput(t *testing.T) {
	prices := []models.PricePoint{
		{Date: day(2), Close: 99},
		{Date: day(0), Close: 100},
		{Date: day(1), Close: 110},
	}

	rets := Returns(prices)
	require.Len(t, rets, 2)
	assert.InDelta(t, 0.10, rets[0].Return, 1e-9)
	assert.InDelta(t, -0.10, rets[1].Return, 1e-9)
}

func TestReturnsTooFewPrices(t *testing.T) {
	assert.Nil(t, Returns(nil))
	assert.Nil(t, Returns(pricePoints(100)))
}

func TestReturnsSkipsZeroPrevious(t *testing.T) {
	rets := Returns(pricePoints(100, 0, 50))
	require.Len(t, rets, 1)
	// 0 -> 50 is skipped; only 100 -> 0 survives
	assert.InDelta(t, -1.0, rets[0].Return, 1e-9)
}

func TestAlignReturns(t *testing.T) {
	a := []models.ReturnPoint{
		{Date: day(1), Return: 0.01},
		{Date: day(2), Return: 0.02},
		{Date: day(4), Return: 0.04},
	}
	b := []models.ReturnPoint{
		{Date: day(2), Return: 0.12},
		{Date: day(3), Return: 0.13},
		{Date: day(4), Return: 0.14},
	}

	alignedA, alignedB := AlignReturns(a, b)
	require.Len(t, alignedA, 2)
	require.Len(t, alignedB, 2)

	assert.Equal(t, day(2), alignedA[0].Date)
	assert.InDelta(t, 0.02, alignedA[0].Return, 1e-9)
	assert.InDelta(t, 0.12, alignedB[0].Return, 1e-9)
	assert.Equal(t, day(4), alignedA[1].Date)
}

func TestAlignReturnsIgnoresTimeOfDay(t *testing.T) {
	a := []models.ReturnPoint{{Date: day(1).Add(10 * time.Hour), Return: 0.01}}
	b := []models.ReturnPoint{{Date: day(1).Add(22 * time.Hour), Return: 0.02}}

	alignedA, alignedB := AlignReturns(a, b)
	require.Len(t, alignedA, 1)
	require.Len(t, alignedB, 1)
}

func TestAlignReturnsNoOverlap(t *testing.T) {
	a := []models.ReturnPoint{{Date: day(1), Return: 0.01}}
	b := []models.ReturnPoint{{Date: day(2), Return: 0.02}}

	alignedA, alignedB := AlignReturns(a, b)
	assert.Empty(t, alignedA)
	assert.Empty(t, alignedB)
}
