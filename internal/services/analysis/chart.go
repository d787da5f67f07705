package analysis

import (
	"bytes"
	"context"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/tally/internal/models"
)

// RenderValuationChart renders the DCF projection for a ticker as a PNG.
// The latest stored valuation is used when present; otherwise one is
// computed. The chart is also written under charts/ in the data path.
func (s *Service) RenderValuationChart(ctx context.Context, ticker string) ([]byte, error) {
	var result *models.ValuationResult
	if report, err := s.storage.ReportStorage().GetLatestReport(ctx, ticker); err == nil && report.Valuation != nil {
		result = report.Valuation
	} else {
		result, err = s.ValueCompany(ctx, ticker, nil)
		if err != nil {
			return nil, err
		}
	}

	png, err := renderProjectionChart(result)
	if err != nil {
		return nil, err
	}

	if err := s.storage.WriteRaw("charts", ticker+".png", png); err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Failed to write chart file")
	}

	return png, nil
}

// renderProjectionChart draws projected versus discounted free cash flow by
// projection year.
func renderProjectionChart(result *models.ValuationResult) ([]byte, error) {
	if len(result.ProjectedFCF) < 2 {
		return nil, fmt.Errorf("need at least 2 projected periods, got %d", len(result.ProjectedFCF))
	}

	xValues := make([]float64, len(result.ProjectedFCF))
	projectedY := make([]float64, len(result.ProjectedFCF))
	discountedY := make([]float64, len(result.ProjectedFCF))

	for i, fcf := range result.ProjectedFCF {
		xValues[i] = float64(i + 1)
		projectedY[i] = fcf
		discountedY[i] = fcf / math.Pow(1+result.WACC, float64(i+1))
	}

	projectedSeries := chart.ContinuousSeries{
		Name: "Projected FCF",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: projectedY,
	}

	discountedSeries := chart.ContinuousSeries{
		Name: "Discounted FCF",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: discountedY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s DCF Projection", result.Ticker),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("Year %.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.1fM", f/1e6)
				}
				return ""
			},
		},
		Series: []chart.Series{
			projectedSeries,
			discountedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
