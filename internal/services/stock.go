package services

import (
	"strings"

	"bizdash/internal/models"
)

// ComputeStockAnalysis values the on-hand inventory of every product. A
// product is critical when it still has stock but no more than its limit;
// an empty shelf is not flagged.
func ComputeStockAnalysis(products []models.Product) models.StockAnalysis {
	analysis := models.StockAnalysis{
		DetailedProducts: make([]models.StockEntry, 0, len(products)),
		Categories:       make([]string, 0),
	}
	seen := make(map[string]struct{})

	for _, p := range products {
		profitPerItem := p.Price - p.Cost
		entry := models.StockEntry{
			Product:          p,
			ProfitPerItem:    profitPerItem,
			TotalStockCost:   p.Quantity * p.Cost,
			TotalStockSales:  p.Quantity * p.Price,
			TotalStockProfit: p.Quantity * profitPerItem,
			IsCritical:       p.Quantity > 0 && p.Quantity <= p.CriticalStockLimit,
		}
		analysis.DetailedProducts = append(analysis.DetailedProducts, entry)
		analysis.TotalCostValue += entry.TotalStockCost
		analysis.TotalSalesValue += entry.TotalStockSales
		analysis.TotalPotentialProfit += entry.TotalStockProfit

		category := strings.TrimSpace(p.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; !ok {
			seen[category] = struct{}{}
			analysis.Categories = append(analysis.Categories, category)
		}
	}

	return analysis
}

// FilterStock applies the inventory screen selection to analysed entries.
// The search text matches name, brand or category, ignoring case.
func FilterStock(entries []models.StockEntry, filter models.StockFilter) []models.StockEntry {
	category := strings.TrimSpace(filter.Category)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	result := make([]models.StockEntry, 0, len(entries))
	for _, e := range entries {
		if category != "" && strings.TrimSpace(e.Category) != category {
			continue
		}
		if filter.CriticalOnly && !e.IsCritical {
			continue
		}
		if search != "" && !matchesSearch(e.Product, search) {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matchesSearch(p models.Product, needle string) bool {
	for _, field := range []string{p.Name, p.Brand, p.Category} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
