package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bobmcallan/tally/internal/models"
)

// formatValue renders a statement value in millions for readability.
func formatValue(v float64) string {
	switch {
	case v >= 1e9 || v <= -1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6 || v <= -1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// formatStatements formats normalized statements as markdown, one section
// per statement, periods as columns.
func formatStatements(ticker string, balance, income, cashflow *models.NormalizedStatement) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Normalized Statements: %s\n", ticker))

	sections := []struct {
		title     string
		statement *models.NormalizedStatement
	}{
		{"Balance Sheet", balance},
		{"Income Statement", income},
		{"Cash Flow", cashflow},
	}

	for _, sec := range sections {
		sb.WriteString(fmt.Sprintf("\n## %s\n", sec.title))
		if sec.statement == nil || len(sec.statement.Periods) == 0 {
			sb.WriteString("\nNot available.\n")
			continue
		}
		for _, p := range sec.statement.Periods {
			sb.WriteString(fmt.Sprintf("\n**%s** (%d concepts)\n", p.EndDate.Format("2006-01-02"), len(p.Values)))
			for _, c := range orderedConcepts(p) {
				sb.WriteString(fmt.Sprintf("- %s: %s\n", c, formatValue(p.Values[c])))
			}
		}
	}

	return sb.String()
}

// formatRatioTable formats a ratio table as a markdown table, ratios as
// rows and periods as columns. Unavailable cells render as n/a.
func formatRatioTable(table *models.RatioTable) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Financial Ratios: %s\n\n", table.Ticker))

	if len(table.Records) == 0 {
		sb.WriteString("No periods available.\n")
		return sb.String()
	}

	sb.WriteString("| Ratio |")
	for _, rec := range table.Records {
		sb.WriteString(fmt.Sprintf(" %s |", rec.PeriodEnd.Format("2006-01-02")))
	}
	sb.WriteString("\n|---|")
	for range table.Records {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, name := range models.AllRatios {
		sb.WriteString(fmt.Sprintf("| %s |", name))
		for i := range table.Records {
			if v := table.Records[i].Get(name); v != nil {
				sb.WriteString(fmt.Sprintf(" %.3f |", *v))
			} else {
				sb.WriteString(" n/a |")
			}
		}
		sb.WriteString("\n")
	}

	if len(table.Advisories) > 0 {
		sb.WriteString("\n**Advisories:**\n")
		for _, a := range table.Advisories {
			sb.WriteString(fmt.Sprintf("- %s\n", a))
		}
	}

	return sb.String()
}

// formatRegression formats a beta/alpha regression result.
func formatRegression(r *models.RegressionResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Market Risk: %s vs %s\n\n", r.Ticker, r.Benchmark))
	sb.WriteString(fmt.Sprintf("**Beta:** %.4f\n", r.Beta))
	sb.WriteString(fmt.Sprintf("**Alpha (daily):** %.6f\n", r.Alpha))
	sb.WriteString(fmt.Sprintf("**Correlation (r):** %.4f\n", r.RValue))
	sb.WriteString(fmt.Sprintf("**p-value:** %.4g\n", r.PValue))
	sb.WriteString(fmt.Sprintf("**Std error:** %.6f\n", r.StdErr))
	sb.WriteString(fmt.Sprintf("**Aligned observations:** %d\n", r.Points))
	return sb.String()
}

// formatValuation formats a WACC/DCF valuation result.
func formatValuation(v *models.ValuationResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Valuation: %s\n\n", v.Ticker))
	sb.WriteString(fmt.Sprintf("**WACC:** %.2f%%\n", v.WACC*100))
	sb.WriteString(fmt.Sprintf("**FCF growth:** %.2f%%\n", v.GrowthRate*100))
	sb.WriteString(fmt.Sprintf("**Terminal growth:** %.2f%%\n\n", v.TerminalGrowth*100))

	sb.WriteString("| Year | Projected FCF |\n|---|---|\n")
	for i, fcf := range v.ProjectedFCF {
		sb.WriteString(fmt.Sprintf("| %d | %s |\n", i+1, formatValue(fcf)))
	}

	sb.WriteString(fmt.Sprintf("\n**Terminal value:** %s\n", formatValue(v.TerminalValue)))
	sb.WriteString(fmt.Sprintf("**Enterprise value:** %s\n", formatValue(v.EnterpriseValue)))
	return sb.String()
}

// formatAnalysisReport formats a full analysis report as markdown.
func formatAnalysisReport(report *models.AnalysisReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Analysis: %s\n\n", report.Ticker))
	sb.WriteString(fmt.Sprintf("**Report ID:** %s\n", report.ID))
	sb.WriteString(fmt.Sprintf("**Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04")))

	if len(report.AnnualNI) > 0 {
		sb.WriteString("\n## Annual Net Income\n\n| Year | Net Income | Periods |\n|---|---|---|\n")
		for _, a := range report.AnnualNI {
			sb.WriteString(fmt.Sprintf("| %d | %s | %d |\n", a.Year, formatValue(a.NetIncome), a.Periods))
		}
	}

	if report.Ratios != nil && len(report.Ratios.Records) > 0 {
		latest := report.Ratios.Records[len(report.Ratios.Records)-1]
		sb.WriteString(fmt.Sprintf("\n## Latest Ratios (%s)\n\n", latest.PeriodEnd.Format("2006-01-02")))
		for _, name := range models.AllRatios {
			if v := latest.Get(name); v != nil {
				sb.WriteString(fmt.Sprintf("- %s: %.3f\n", name, *v))
			}
		}
	}

	if report.MarketRisk != nil {
		r := report.MarketRisk
		sb.WriteString(fmt.Sprintf("\n## Market Risk (vs %s)\n\n", r.Benchmark))
		sb.WriteString(fmt.Sprintf("- beta: %.4f\n- alpha: %.6f\n- r: %.4f\n- p-value: %.4g\n- observations: %d\n",
			r.Beta, r.Alpha, r.RValue, r.PValue, r.Points))
	}

	if report.Valuation != nil {
		v := report.Valuation
		sb.WriteString("\n## Valuation\n\n")
		sb.WriteString(fmt.Sprintf("- WACC: %.2f%%\n- FCF growth: %.2f%%\n- terminal value: %s\n- enterprise value: %s\n",
			v.WACC*100, v.GrowthRate*100, formatValue(v.TerminalValue), formatValue(v.EnterpriseValue)))
	}

	if len(report.Errors) > 0 {
		sb.WriteString("\n## Skipped Computations\n\n")
		for name, reason := range report.Errors {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", name, reason))
		}
	}

	return sb.String()
}

// formatReportList formats stored report metadata, newest first.
func formatReportList(reports []*models.AnalysisReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Stored Reports: %s\n\n", reports[0].Ticker))
	for _, r := range reports {
		status := "complete"
		if len(r.Errors) > 0 {
			status = fmt.Sprintf("%d computation(s) skipped", len(r.Errors))
		}
		sb.WriteString(fmt.Sprintf("- %s %s (%s)\n", r.GeneratedAt.Format("2006-01-02 15:04"), r.ID, status))
	}
	return sb.String()
}

// orderedConcepts returns a period's concepts in stable sorted order.
func orderedConcepts(p models.NormalizedPeriod) []models.CanonicalConcept {
	out := make([]models.CanonicalConcept, 0, len(p.Values))
	for c := range p.Values {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
