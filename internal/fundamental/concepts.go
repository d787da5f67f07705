// Package fundamental normalizes raw financial statements and derives ratios
package fundamental

import (
	"github.com/bobmcallan/tally/internal/models"
)

// ConceptKeywords maps each canonical concept to the keyword substrings that
// identify it in raw line-item labels. Matching is case-insensitive and
// order matters: the first raw label (in column order) containing any
// keyword wins. The table is data, not logic. Extend it here without
// touching the normalizer.
var ConceptKeywords = map[models.CanonicalConcept][]string{
	// Balance sheet
	models.ConceptTotalCurrentAssets:      {"total current assets", "current assets"},
	models.ConceptTotalCurrentLiabilities: {"total current liabilities", "current liab"},
	models.ConceptCashAndEquivalents:      {"cash and cash equivalents", "cash and equivalents", "cash & equivalents"},
	models.ConceptInventory:               {"inventory", "inventories"},
	models.ConceptTotalAssets:             {"total assets"},
	models.ConceptTotalLiabilities:        {"total liab"},
	models.ConceptTotalStockholderEquity:  {"total stockholder equity", "stockholders equity", "shareholder equity", "total equity"},
	models.ConceptPropertyPlantEquipment:  {"property plant", "property, plant", "net ppe"},
	models.ConceptGoodwill:                {"goodwill", "good will"},
	models.ConceptIntangibleAssets:        {"intangible"},
	models.ConceptLongTermInvestments:     {"long term investments", "long-term investments"},
	models.ConceptOtherAssets:             {"other assets"},

	// Income statement
	models.ConceptTotalRevenue:      {"total revenue", "revenue"},
	models.ConceptGrossProfit:       {"gross profit"},
	models.ConceptOperatingExpenses: {"total operating expenses", "operating expenses"},
	models.ConceptTotalExpenses:     {"total expenses"},
	models.ConceptOperatingIncome:   {"operating income", "ebit"},
	models.ConceptNetIncome:         {"net income"},
	models.ConceptInterestExpense:   {"interest expense"},
	models.ConceptIncomeTaxExpense:  {"income tax expense", "tax provision"},
	models.ConceptIncomeBeforeTax:   {"income before tax", "pretax income"},

	// Cash flow statement
	models.ConceptFreeCashFlow: {"free cash flow"},
}

// totalAssetComponents are the sub-items summed to derive TotalAssets when a
// statement does not report it directly. Derivation requires all of them.
var totalAssetComponents = []models.CanonicalConcept{
	models.ConceptTotalCurrentAssets,
	models.ConceptPropertyPlantEquipment,
	models.ConceptGoodwill,
	models.ConceptIntangibleAssets,
	models.ConceptLongTermInvestments,
	models.ConceptOtherAssets,
}
