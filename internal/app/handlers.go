package app

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Tally Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleAnalyzeTicker implements the analyze_ticker tool
func handleAnalyzeTicker(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		options := interfaces.AnalyzeOptions{
			Force:     request.GetBool("force", false),
			Benchmark: request.GetString("benchmark", ""),
		}

		report, err := svc.AnalyzeTicker(ctx, ticker, options)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Analysis failed")
			return errorResult(fmt.Sprintf("Analysis error: %v", err)), nil
		}

		return textResult(formatAnalysisReport(report)), nil
	}
}

// handleGetStatements implements the get_statements tool
func handleGetStatements(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		force := request.GetBool("force", false)

		balance, income, cashflow, err := svc.GetNormalizedStatements(ctx, ticker, force)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Statement fetch failed")
			return errorResult(fmt.Sprintf("Statement error: %v", err)), nil
		}

		return textResult(formatStatements(ticker, balance, income, cashflow)), nil
	}
}

// handleGetRatios implements the get_ratios tool
func handleGetRatios(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		force := request.GetBool("force", false)

		table, err := svc.ComputeRatios(ctx, ticker, force)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Ratio computation failed")
			return errorResult(fmt.Sprintf("Ratio error: %v", err)), nil
		}

		return textResult(formatRatioTable(table)), nil
	}
}

// handleEstimateBeta implements the estimate_beta tool
func handleEstimateBeta(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		result, err := svc.EstimateMarketRisk(ctx, ticker)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Beta estimation failed")
			return errorResult(fmt.Sprintf("Regression error: %v", err)), nil
		}

		return textResult(formatRegression(result)), nil
	}
}

// handleValueCompany implements the value_company tool
func handleValueCompany(svc interfaces.AnalysisService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		var capm *models.CAPMParams
		riskFree := request.GetFloat("risk_free_rate", 0)
		beta := request.GetFloat("beta", 0)
		premium := request.GetFloat("market_premium", 0)
		if riskFree != 0 || beta != 0 || premium != 0 {
			capm = &models.CAPMParams{
				RiskFreeRate:  riskFree,
				Beta:          beta,
				MarketPremium: premium,
			}
		}

		result, err := svc.ValueCompany(ctx, ticker, capm)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Valuation failed")
			return errorResult(fmt.Sprintf("Valuation error: %v", err)), nil
		}

		return textResult(formatValuation(result)), nil
	}
}

// handleListReports implements the list_reports tool
func handleListReports(storage interfaces.StorageManager, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ticker, err := request.RequireString("ticker")
		if err != nil || ticker == "" {
			return errorResult("Error: ticker parameter is required"), nil
		}

		reports, err := storage.ReportStorage().ListReports(ctx, ticker)
		if err != nil {
			logger.Error().Err(err).Str("ticker", ticker).Msg("Report listing failed")
			return errorResult(fmt.Sprintf("Report error: %v", err)), nil
		}
		if len(reports) == 0 {
			return textResult(fmt.Sprintf("No stored reports for %s.", ticker)), nil
		}

		return textResult(formatReportList(reports)), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
