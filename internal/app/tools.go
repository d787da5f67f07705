package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the Tally server version and status. Use this to verify connectivity."),
	)
}

// createAnalyzeTickerTool returns the analyze_ticker tool definition
func createAnalyzeTickerTool() mcp.Tool {
	return mcp.NewTool("analyze_ticker",
		mcp.WithDescription("Run the full analysis pipeline for a ticker: normalized statements, financial ratios, annual net income, beta/alpha against the benchmark, WACC and a DCF enterprise-value estimate. Partial results are returned when a sub-computation fails."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'BHP.AU', 'AAPL.US')"),
		),
		mcp.WithString("benchmark",
			mcp.Description("Benchmark index ticker for the beta regression (default: configured benchmark, e.g. 'GSPC.INDX')"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Bypass cached provider data and refetch (default: false)"),
		),
	)
}

// createGetStatementsTool returns the get_statements tool definition
func createGetStatementsTool() mcp.Tool {
	return mcp.NewTool("get_statements",
		mcp.WithDescription("Fetch and normalize a ticker's financial statements onto the canonical concept set. Shows which line items were recognized per period."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'BHP.AU', 'AAPL.US')"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Bypass cached provider data and refetch (default: false)"),
		),
	)
}

// createGetRatiosTool returns the get_ratios tool definition
func createGetRatiosTool() mcp.Tool {
	return mcp.NewTool("get_ratios",
		mcp.WithDescription("Compute the per-period financial ratio table for a ticker: liquidity, leverage, profitability and efficiency ratios. Ratios a period cannot support are shown as n/a."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'BHP.AU', 'AAPL.US')"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Bypass cached provider data and refetch (default: false)"),
		),
	)
}

// createEstimateBetaTool returns the estimate_beta tool definition
func createEstimateBetaTool() mcp.Tool {
	return mcp.NewTool("estimate_beta",
		mcp.WithDescription("Estimate a ticker's market beta and alpha by regressing its daily returns on the benchmark index, with correlation, p-value and standard error."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'BHP.AU', 'AAPL.US')"),
		),
	)
}

// createValueCompanyTool returns the value_company tool definition
func createValueCompanyTool() mcp.Tool {
	return mcp.NewTool("value_company",
		mcp.WithDescription("Compute WACC and a discounted-cash-flow enterprise-value estimate for a ticker. Optionally supply CAPM inputs for the cost of equity."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'BHP.AU', 'AAPL.US')"),
		),
		mcp.WithNumber("risk_free_rate",
			mcp.Description("CAPM risk-free rate (e.g., 0.045). Requires beta and market_premium."),
		),
		mcp.WithNumber("beta",
			mcp.Description("CAPM beta. Requires risk_free_rate and market_premium."),
		),
		mcp.WithNumber("market_premium",
			mcp.Description("CAPM equity market risk premium (e.g., 0.055). Requires risk_free_rate and beta."),
		),
	)
}

// createListReportsTool returns the list_reports tool definition
func createListReportsTool() mcp.Tool {
	return mcp.NewTool("list_reports",
		mcp.WithDescription("List stored analysis reports for a ticker, newest first."),
		mcp.WithString("ticker",
			mcp.Required(),
			mcp.Description("Stock ticker with exchange suffix (e.g., 'BHP.AU', 'AAPL.US')"),
		),
	)
}
