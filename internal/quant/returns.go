// Package quant provides return-series and regression calculations
package quant

import (
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

// dateKey truncates a timestamp to its calendar day in UTC so two feeds for
// the same trading day align regardless of time-of-day noise.
func dateKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Returns derives simple fractional returns from a chronological price
// series: r[i] = p[i]/p[i-1] - 1. The first period has no return and is
// dropped, not null-filled. Prices with a non-positive previous close are
// skipped since the ratio is undefined.
func Returns(prices []models.PricePoint) []models.ReturnPoint {
	if len(prices) < 2 {
		return nil
	}

	sorted := make([]models.PricePoint, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	out := make([]models.ReturnPoint, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		prev := sorted[i-1].Close
		if prev == 0 {
			continue
		}
		out = append(out, models.ReturnPoint{
			Date:   sorted[i].Date,
			Return: sorted[i].Close/prev - 1,
		})
	}
	return out
}

// AlignReturns intersects two return series on exact date. Dates present in
// only one series are discarded. Both outputs are chronological and equal
// length.
func AlignReturns(a, b []models.ReturnPoint) (alignedA, alignedB []models.ReturnPoint) {
	bByDate := make(map[time.Time]models.ReturnPoint, len(b))
	for _, p := range b {
		bByDate[dateKey(p.Date)] = p
	}

	for _, p := range a {
		if match, ok := bByDate[dateKey(p.Date)]; ok {
			alignedA = append(alignedA, p)
			alignedB = append(alignedB, match)
		}
	}

	return alignedA, alignedB
}
