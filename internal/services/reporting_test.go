package services

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"bizdash/internal/models"
)

func sale(product, customer string, price, cost, qty float64, date string) models.Sale {
	return models.Sale{
		ProductName:  product,
		CustomerName: customer,
		Price:        models.Float(price),
		Cost:         models.Float(cost),
		Quantity:     models.Float(qty),
		DateISO:      date,
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeProfit(t *testing.T) {
	products := []models.Product{
		{ID: "p1", Name: "Flour", Cost: 30, Price: 45},
	}

	tests := []struct {
		name string
		sale models.Sale
		want models.ProfitBreakdown
	}{
		{
			name: "explicit fields",
			sale: models.Sale{ProductID: "p1", Price: models.Float(50), Cost: models.Float(20), Quantity: models.Float(3)},
			want: models.ProfitBreakdown{Revenue: 150, Cost: 60, Profit: 90},
		},
		{
			name: "cost falls back to product",
			sale: models.Sale{ProductID: "p1", Price: models.Float(50), Quantity: models.Float(2)},
			want: models.ProfitBreakdown{Revenue: 100, Cost: 60, Profit: 40},
		},
		{
			name: "unmatched product has zero cost",
			sale: models.Sale{ProductID: "missing", Price: models.Float(50), Quantity: models.Float(2)},
			want: models.ProfitBreakdown{Revenue: 100, Cost: 0, Profit: 100},
		},
		{
			name: "quantity defaults to one",
			sale: models.Sale{ProductID: "p1", Price: models.Float(50)},
			want: models.ProfitBreakdown{Revenue: 50, Cost: 30, Profit: 20},
		},
		{
			name: "missing price is zero",
			sale: models.Sale{ProductID: "p1", Quantity: models.Float(2)},
			want: models.ProfitBreakdown{Revenue: 0, Cost: 60, Profit: -60},
		},
		{
			name: "invalid numbers degrade to defaults",
			sale: models.Sale{Price: models.Float(math.NaN()), Cost: models.Float(math.Inf(1)), Quantity: models.Float(math.NaN())},
			want: models.ProfitBreakdown{},
		},
		{
			name: "explicit zero cost is kept",
			sale: models.Sale{ProductID: "p1", Price: models.Float(10), Cost: models.Float(0)},
			want: models.ProfitBreakdown{Revenue: 10, Cost: 0, Profit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeProfit(tt.sale, products)
			if !approx(got.Revenue, tt.want.Revenue) || !approx(got.Cost, tt.want.Cost) || !approx(got.Profit, tt.want.Profit) {
				t.Errorf("ComputeProfit() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeOverview_Example(t *testing.T) {
	sales := []models.Sale{
		sale("B", "Ann", 50, 50, 1, "2024-03-01"),
		sale("A", "Bob", 100, 40, 2, "2024-03-02"),
	}

	overview := ComputeOverview(sales, nil)

	m := overview.SummaryMetrics
	if !approx(m.TotalRevenue, 250) || !approx(m.TotalProfit, 120) || !approx(m.ProfitMargin, 48) {
		t.Errorf("summary = %+v, want revenue 250, profit 120, margin 48", m)
	}
	if m.TotalSalesCount != 2 {
		t.Errorf("TotalSalesCount = %d, want 2", m.TotalSalesCount)
	}

	if len(overview.ProductList) != 2 {
		t.Fatalf("got %d products, want 2", len(overview.ProductList))
	}
	a, b := overview.ProductList[0], overview.ProductList[1]
	if a.Name != "A" || !approx(a.Profit, 120) || !approx(a.Quantity, 2) {
		t.Errorf("first product = %+v, want A with profit 120 and quantity 2", a)
	}
	if b.Name != "B" || !approx(b.Profit, 0) {
		t.Errorf("second product = %+v, want B with profit 0", b)
	}
}

func TestComputeOverview_TotalsMatchPerSaleProfit(t *testing.T) {
	products := []models.Product{{ID: "p1", Name: "Tea", Cost: 3}}
	sales := []models.Sale{
		sale("Coffee", "Ann", 10, 4, 3, ""),
		{ProductID: "p1", CustomerName: "Ann", Price: models.Float(5)},
		{ProductName: "Sugar", Quantity: models.Float(4)},
		sale("Coffee", "Cid", 12, 4, 1, ""),
	}

	var revenue, profit float64
	for _, s := range sales {
		p := ComputeProfit(s, products)
		revenue += p.Revenue
		profit += p.Profit
	}

	overview := ComputeOverview(sales, products)
	if !approx(overview.SummaryMetrics.TotalRevenue, revenue) {
		t.Errorf("TotalRevenue = %v, want %v", overview.SummaryMetrics.TotalRevenue, revenue)
	}
	if !approx(overview.SummaryMetrics.TotalProfit, profit) {
		t.Errorf("TotalProfit = %v, want %v", overview.SummaryMetrics.TotalProfit, profit)
	}

	var listRevenue float64
	for _, p := range overview.ProductList {
		listRevenue += p.Revenue
	}
	if !approx(listRevenue, revenue) {
		t.Errorf("product list revenue = %v, want %v", listRevenue, revenue)
	}
}

func TestComputeOverview_ZeroRevenueMargin(t *testing.T) {
	sales := []models.Sale{sale("Gift", "Ann", 0, 10, 2, "")}

	overview := ComputeOverview(sales, nil)

	if !approx(overview.SummaryMetrics.TotalProfit, -20) {
		t.Errorf("TotalProfit = %v, want -20", overview.SummaryMetrics.TotalProfit)
	}
	if overview.SummaryMetrics.ProfitMargin != 0 {
		t.Errorf("ProfitMargin = %v, want 0", overview.SummaryMetrics.ProfitMargin)
	}
}

func TestComputeOverview_Empty(t *testing.T) {
	overview := ComputeOverview(nil, nil)

	if overview.ProductList == nil || len(overview.ProductList) != 0 {
		t.Errorf("ProductList = %#v, want empty non-nil slice", overview.ProductList)
	}
	if len(overview.CustomerProductRelations) != 0 {
		t.Errorf("CustomerProductRelations = %v, want empty", overview.CustomerProductRelations)
	}
	if overview.SummaryMetrics != (models.SummaryMetrics{}) {
		t.Errorf("SummaryMetrics = %+v, want zero", overview.SummaryMetrics)
	}
}

func TestComputeOverview_ProductListSortedByProfit(t *testing.T) {
	var sales []models.Sale
	for i := range 12 {
		price := float64((i*7)%11 + 1)
		sales = append(sales, sale(fmt.Sprintf("P%d", i%6), "Ann", price, 1, 1, ""))
	}

	list := ComputeOverview(sales, nil).ProductList
	for i := 1; i < len(list); i++ {
		if list[i-1].Profit < list[i].Profit {
			t.Errorf("position %d out of order: %v < %v", i, list[i-1].Profit, list[i].Profit)
		}
	}
}

func TestComputeOverview_TiesKeepInputOrder(t *testing.T) {
	sales := []models.Sale{
		sale("first", "Ann", 10, 5, 1, ""),
		sale("second", "Bob", 10, 5, 1, ""),
		sale("third", "Cid", 10, 5, 1, ""),
	}

	overview := ComputeOverview(sales, nil)

	names := make([]string, 0, len(overview.ProductList))
	for _, p := range overview.ProductList {
		names = append(names, p.Name)
	}
	if diff := cmp.Diff([]string{"first", "second", "third"}, names); diff != "" {
		t.Errorf("product order mismatch (-want +got):\n%s", diff)
	}
	if got := overview.CustomerProductRelations[0].CustomerName; got != "Ann" {
		t.Errorf("first customer = %q, want Ann", got)
	}
}

func TestComputeOverview_CustomerProductRelations(t *testing.T) {
	var sales []models.Sale
	for c := range 7 {
		customer := fmt.Sprintf("C%d", c)
		for p := range 5 {
			sales = append(sales, sale(fmt.Sprintf("P%d", p), customer, float64(10*(c+1)), 1, float64(p+1), ""))
		}
	}

	relations := ComputeOverview(sales, nil).CustomerProductRelations

	if len(relations) != 5 {
		t.Fatalf("got %d relations, want 5", len(relations))
	}
	if relations[0].CustomerName != "C6" {
		t.Errorf("top customer = %q, want C6", relations[0].CustomerName)
	}
	for i, rel := range relations {
		if i > 0 && relations[i-1].CustomerRevenue < rel.CustomerRevenue {
			t.Errorf("relation %d out of revenue order", i)
		}
		if len(rel.TopProducts) > 3 {
			t.Fatalf("%s has %d top products, want at most 3", rel.CustomerName, len(rel.TopProducts))
		}
		for j := 1; j < len(rel.TopProducts); j++ {
			if rel.TopProducts[j-1].Quantity < rel.TopProducts[j].Quantity {
				t.Errorf("%s top products out of quantity order", rel.CustomerName)
			}
		}
		if top := rel.TopProducts[0]; top.Name != "P4" || !approx(top.Quantity, 5) {
			t.Errorf("%s top product = %+v, want P4 x5", rel.CustomerName, top)
		}
	}
}

func TestComputeOverview_UnspecifiedLabels(t *testing.T) {
	products := []models.Product{{ID: "p1", Name: "Rice"}}
	sales := []models.Sale{
		{ProductID: "p1", Price: models.Float(4)},
		{ProductName: "  ", Price: models.Float(2)},
	}

	overview := ComputeOverview(sales, products)

	if len(overview.ProductList) != 2 {
		t.Fatalf("got %d products, want 2", len(overview.ProductList))
	}
	if overview.ProductList[0].Name != "Rice" || overview.ProductList[1].Name != UnspecifiedLabel {
		t.Errorf("product names = %q, %q", overview.ProductList[0].Name, overview.ProductList[1].Name)
	}
	if len(overview.Customers) != 1 {
		t.Fatalf("got %d customers, want 1", len(overview.Customers))
	}
	if c := overview.Customers[0]; c.Name != UnspecifiedLabel || len(c.Sales) != 2 {
		t.Errorf("customer = %q with %d sales, want %q with 2", c.Name, len(c.Sales), UnspecifiedLabel)
	}
}

func TestComputeMonthlyDetail_CalendarMonth(t *testing.T) {
	sales := []models.Sale{sale("A", "Ann", 10, 4, 1, "2024-03-15")}

	tests := []struct {
		month string
		count int
	}{
		{"2024-03", 1},
		{"2024-02", 0},
		{"2023-03", 0},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			ym, err := ParseYearMonth(tt.month)
			if err != nil {
				t.Fatalf("ParseYearMonth() error = %v", err)
			}

			detail := ComputeMonthlyDetail(sales, nil, ym)
			if detail.SalesCount != tt.count || detail.Month != tt.month {
				t.Errorf("detail = %s with %d sales, want %s with %d", detail.Month, detail.SalesCount, tt.month, tt.count)
			}
		})
	}
}

func TestComputeMonthlyDetail_Aggregates(t *testing.T) {
	sales := []models.Sale{
		sale("Bread", "Ann", 10, 4, 5, "2024-03-01T09:00:00Z"),
		sale("Milk", "Bob", 3, 1, 2, "2024-03-20"),
		sale("Bread", "Bob", 10, 4, 1, "2024-03-31T23:59:59+03:00"),
		sale("Bread", "Ann", 10, 4, 100, "2024-04-01"),
		sale("Milk", "Ann", 3, 1, 1, "not a date"),
	}
	ym := YearMonth{Year: 2024, Month: 3}

	detail := ComputeMonthlyDetail(sales, nil, ym)

	// Records, not units.
	if detail.SalesCount != 3 {
		t.Errorf("SalesCount = %d, want 3", detail.SalesCount)
	}
	if !approx(detail.TotalRevenue, 66) || !approx(detail.TotalProfit, 40) {
		t.Errorf("revenue/profit = %v/%v, want 66/40", detail.TotalRevenue, detail.TotalProfit)
	}

	wantCustomers := []models.RankedEntry{
		{Name: "Ann", Value: 50, Color: Palette[0]},
		{Name: "Bob", Value: 16, Color: Palette[1]},
	}
	if diff := cmp.Diff(wantCustomers, detail.TopCustomers); diff != "" {
		t.Errorf("TopCustomers mismatch (-want +got):\n%s", diff)
	}

	if len(detail.TopProducts) != 2 {
		t.Fatalf("got %d top products, want 2", len(detail.TopProducts))
	}
	if top := detail.TopProducts[0]; top.Name != "Bread" || !approx(top.Value, 36) || top.Color != Palette[productPaletteOffset] {
		t.Errorf("top product = %+v", top)
	}
}

func TestComputeMonthlyDetail_TopFive(t *testing.T) {
	var sales []models.Sale
	for i := range 8 {
		sales = append(sales, sale(fmt.Sprintf("P%d", i), fmt.Sprintf("C%d", i), float64(i+1), 0, 1, "2024-05-05"))
	}

	detail := ComputeMonthlyDetail(sales, nil, YearMonth{Year: 2024, Month: 5})

	if len(detail.TopCustomers) != 5 || len(detail.TopProducts) != 5 {
		t.Errorf("got %d customers and %d products, want 5 each", len(detail.TopCustomers), len(detail.TopProducts))
	}
	if detail.TopCustomers[0].Name != "C7" {
		t.Errorf("top customer = %q, want C7", detail.TopCustomers[0].Name)
	}
	if detail.SalesCount != 8 {
		t.Errorf("SalesCount = %d, want 8", detail.SalesCount)
	}
}

func TestComputeMonthlyTrend(t *testing.T) {
	sales := []models.Sale{
		sale("A", "Ann", 10, 5, 1, "2024-03-15"),
		sale("A", "Ann", 10, 5, 2, "2023-12-01"),
		sale("A", "Ann", 10, 5, 1, "2024-03-01"),
		sale("A", "Ann", 10, 5, 1, ""),
	}

	trend := ComputeMonthlyTrend(sales, nil)

	want := []models.MonthlyVolume{
		{Month: "2023-12", Revenue: 20, Profit: 10, SalesCount: 1},
		{Month: "2024-03", Revenue: 20, Profit: 10, SalesCount: 2},
	}
	if diff := cmp.Diff(want, trend); diff != "" {
		t.Errorf("ComputeMonthlyTrend() mismatch (-want +got):\n%s", diff)
	}
}

func BenchmarkComputeOverview(b *testing.B) {
	sales := make([]models.Sale, 10000)
	for i := range sales {
		sales[i] = sale(fmt.Sprintf("P%d", i%200), fmt.Sprintf("C%d", i%500), float64(i%50+1), float64(i%20), float64(i%4+1), "2024-03-15")
	}

	for b.Loop() {
		_ = ComputeOverview(sales, nil)
	}
}
