package services

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bizdash/internal/models"
)

func stockFixture() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Olive Oil", Cost: 4, Price: 7, Quantity: 3, CriticalStockLimit: 5, Category: "Pantry", Brand: "Sol"},
		{ID: "2", Name: "Rice", Cost: 1, Price: 2, Quantity: 0, CriticalStockLimit: 5, Category: "Pantry", Brand: "Oro"},
		{ID: "3", Name: "Soap", Cost: 2, Price: 5, Quantity: 10, CriticalStockLimit: 5, Category: "Household", Brand: "Clean"},
		{ID: "4", Name: "Candles", Cost: 1, Price: 3, Quantity: 5, CriticalStockLimit: 5, Category: "", Brand: "Sol"},
	}
}

func TestComputeStockAnalysis(t *testing.T) {
	analysis := ComputeStockAnalysis(stockFixture())

	if len(analysis.DetailedProducts) != 4 {
		t.Fatalf("got %d entries, want 4", len(analysis.DetailedProducts))
	}

	oil := analysis.DetailedProducts[0]
	if !approx(oil.ProfitPerItem, 3) || !approx(oil.TotalStockCost, 12) || !approx(oil.TotalStockSales, 21) || !approx(oil.TotalStockProfit, 9) {
		t.Errorf("olive oil entry = %+v", oil)
	}

	if !approx(analysis.TotalCostValue, 12+0+20+5) {
		t.Errorf("TotalCostValue = %v, want 37", analysis.TotalCostValue)
	}
	if !approx(analysis.TotalSalesValue, 21+0+50+15) {
		t.Errorf("TotalSalesValue = %v, want 86", analysis.TotalSalesValue)
	}
	if !approx(analysis.TotalPotentialProfit, 9+0+30+10) {
		t.Errorf("TotalPotentialProfit = %v, want 49", analysis.TotalPotentialProfit)
	}

	if diff := cmp.Diff([]string{"Pantry", "Household"}, analysis.Categories); diff != "" {
		t.Errorf("Categories mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeStockAnalysis_Critical(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		limit    float64
		want     bool
	}{
		{"below limit", 3, 5, true},
		{"at limit", 5, 5, true},
		{"above limit", 6, 5, false},
		{"empty shelf", 0, 5, false},
		{"no limit", 1, 0, false},
		{"negative stock", -2, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := ComputeStockAnalysis([]models.Product{{Quantity: tt.quantity, CriticalStockLimit: tt.limit}})
			if got := analysis.DetailedProducts[0].IsCritical; got != tt.want {
				t.Errorf("IsCritical = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeStockAnalysis_Empty(t *testing.T) {
	analysis := ComputeStockAnalysis(nil)

	if analysis.DetailedProducts == nil || analysis.Categories == nil {
		t.Errorf("expected non-nil slices, got %#v", analysis)
	}
	if analysis.TotalCostValue != 0 {
		t.Errorf("TotalCostValue = %v, want 0", analysis.TotalCostValue)
	}
}

func TestFilterStock(t *testing.T) {
	entries := ComputeStockAnalysis(stockFixture()).DetailedProducts

	tests := []struct {
		name   string
		filter models.StockFilter
		want   []string
	}{
		{"no filter", models.StockFilter{}, []string{"Olive Oil", "Rice", "Soap", "Candles"}},
		{"category", models.StockFilter{Category: "Pantry"}, []string{"Olive Oil", "Rice"}},
		{"search by name ignores case", models.StockFilter{Search: "SOAP"}, []string{"Soap"}},
		{"search by brand", models.StockFilter{Search: "sol"}, []string{"Olive Oil", "Candles"}},
		{"critical only", models.StockFilter{CriticalOnly: true}, []string{"Olive Oil", "Candles"}},
		{"combined", models.StockFilter{Category: "Pantry", CriticalOnly: true}, []string{"Olive Oil"}},
		{"no match", models.StockFilter{Search: "zzz"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterStock(entries, tt.filter)
			names := make([]string, 0, len(got))
			for _, e := range got {
				names = append(names, e.Name)
			}
			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("FilterStock() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
