package services

import (
	"cmp"
	"slices"

	"bizdash/internal/models"
)

const (
	topCustomerLimit       = 5
	topProductsPerCustomer = 3
	monthlyTopLimit        = 5
	productPaletteOffset   = 3
)

// Palette used to color ranked entries. Customers start at index 0, products
// at productPaletteOffset.
var Palette = []string{
	"#4F46E5",
	"#10B981",
	"#F59E0B",
	"#EF4444",
	"#8B5CF6",
	"#06B6D4",
	"#EC4899",
	"#84CC16",
}

type productIndex map[string]*models.Product

func indexProducts(products []models.Product) productIndex {
	idx := make(productIndex, len(products))
	for i := range products {
		if products[i].ID == "" {
			continue
		}
		if _, seen := idx[products[i].ID]; !seen {
			idx[products[i].ID] = &products[i]
		}
	}
	return idx
}

func (idx productIndex) profit(sale models.Sale) models.ProfitBreakdown {
	var productCost *float64
	if p, ok := idx[sale.ProductID]; ok {
		productCost = &p.Cost
	}
	unitCost := ResolveFloat(0, sale.Cost, productCost)
	unitPrice := ResolveFloat(0, sale.Price)
	qty := quantityOf(sale)

	return models.ProfitBreakdown{
		Revenue: unitPrice * qty,
		Cost:    unitCost * qty,
		Profit:  (unitPrice - unitCost) * qty,
	}
}

func (idx productIndex) productName(sale models.Sale) string {
	if p, ok := idx[sale.ProductID]; ok {
		return ResolveLabel(sale.ProductName, p.Name)
	}
	return ResolveLabel(sale.ProductName)
}

func quantityOf(sale models.Sale) float64 {
	return ResolveFloat(1, sale.Quantity)
}

// ComputeProfit returns revenue, cost and profit of one sale. The unit cost
// falls back to the cost of the product referenced by ProductID.
func ComputeProfit(sale models.Sale, products []models.Product) models.ProfitBreakdown {
	var idx productIndex
	for i := range products {
		if products[i].ID != "" && products[i].ID == sale.ProductID {
			idx = productIndex{sale.ProductID: &products[i]}
			break
		}
	}
	return idx.profit(sale)
}

// ComputeOverview aggregates all sales by product and by customer in a single
// pass and derives the global summary metrics.
func ComputeOverview(sales []models.Sale, products []models.Product) models.Overview {
	idx := indexProducts(products)
	byProduct := newGroups[models.ProductPerformance]()
	byCustomer := newGroups[models.CustomerSummary]()

	var metrics models.SummaryMetrics
	for _, sale := range sales {
		p := idx.profit(sale)

		name := idx.productName(sale)
		perf := byProduct.get(name, func() *models.ProductPerformance {
			return &models.ProductPerformance{Name: name}
		})
		perf.Revenue += p.Revenue
		perf.Profit += p.Profit
		perf.Quantity += quantityOf(sale)

		customer := ResolveLabel(sale.CustomerName)
		summary := byCustomer.get(customer, func() *models.CustomerSummary {
			return &models.CustomerSummary{Name: customer}
		})
		summary.Revenue += p.Revenue
		summary.Sales = append(summary.Sales, sale)

		metrics.TotalRevenue += p.Revenue
		metrics.TotalProfit += p.Profit
	}
	metrics.TotalSalesCount = len(sales)
	metrics.ProfitMargin = profitMargin(metrics.TotalProfit, metrics.TotalRevenue)

	productList := byProduct.values()
	sortDesc(productList, func(p models.ProductPerformance) float64 { return p.Profit })

	customers := byCustomer.values()
	sortDesc(customers, func(c models.CustomerSummary) float64 { return c.Revenue })

	relations := make([]models.CustomerProductRelation, 0, topCustomerLimit)
	for _, c := range topN(customers, topCustomerLimit) {
		relations = append(relations, models.CustomerProductRelation{
			CustomerName:    c.Name,
			CustomerRevenue: c.Revenue,
			TopProducts:     topProductsByQuantity(c.Sales, idx, topProductsPerCustomer),
		})
	}

	return models.Overview{
		ProductList:              productList,
		Customers:                customers,
		SummaryMetrics:           metrics,
		CustomerProductRelations: relations,
	}
}

func topProductsByQuantity(sales []models.Sale, idx productIndex, limit int) []models.ProductQuantity {
	byName := newGroups[models.ProductQuantity]()
	for _, sale := range sales {
		name := idx.productName(sale)
		pq := byName.get(name, func() *models.ProductQuantity {
			return &models.ProductQuantity{Name: name}
		})
		pq.Quantity += quantityOf(sale)
	}
	list := byName.values()
	sortDesc(list, func(p models.ProductQuantity) float64 { return p.Quantity })
	return topN(list, limit)
}

// ComputeMonthlyDetail summarizes the sales dated in the given calendar month.
// Sales whose date cannot be parsed are never counted.
func ComputeMonthlyDetail(sales []models.Sale, products []models.Product, ym YearMonth) models.MonthlyDetail {
	idx := indexProducts(products)
	customerRevenue := newGroups[models.RankedEntry]()
	productProfit := newGroups[models.RankedEntry]()

	detail := models.MonthlyDetail{Month: ym.String()}
	for _, sale := range sales {
		date, ok := ParseSaleDate(sale.DateISO)
		if !ok || !ym.Contains(date) {
			continue
		}
		p := idx.profit(sale)
		detail.SalesCount++
		detail.TotalRevenue += p.Revenue
		detail.TotalProfit += p.Profit

		customer := ResolveLabel(sale.CustomerName)
		customerRevenue.get(customer, func() *models.RankedEntry {
			return &models.RankedEntry{Name: customer}
		}).Value += p.Revenue

		name := idx.productName(sale)
		productProfit.get(name, func() *models.RankedEntry {
			return &models.RankedEntry{Name: name}
		}).Value += p.Profit
	}

	detail.TopCustomers = rank(customerRevenue.values(), monthlyTopLimit, 0)
	detail.TopProducts = rank(productProfit.values(), monthlyTopLimit, productPaletteOffset)
	return detail
}

func rank(entries []models.RankedEntry, limit, paletteOffset int) []models.RankedEntry {
	sortDesc(entries, func(e models.RankedEntry) float64 { return e.Value })
	entries = topN(entries, limit)
	for i := range entries {
		entries[i].Color = Palette[(i+paletteOffset)%len(Palette)]
	}
	return entries
}

// ComputeMonthlyTrend returns revenue, profit and sale count per calendar
// month in chronological order.
func ComputeMonthlyTrend(sales []models.Sale, products []models.Product) []models.MonthlyVolume {
	idx := indexProducts(products)
	byMonth := newGroups[models.MonthlyVolume]()
	for _, sale := range sales {
		date, ok := ParseSaleDate(sale.DateISO)
		if !ok {
			continue
		}
		month := YearMonthOf(date).String()
		p := idx.profit(sale)
		vol := byMonth.get(month, func() *models.MonthlyVolume {
			return &models.MonthlyVolume{Month: month}
		})
		vol.Revenue += p.Revenue
		vol.Profit += p.Profit
		vol.SalesCount++
	}
	trend := byMonth.values()
	slices.SortFunc(trend, func(a, b models.MonthlyVolume) int {
		return cmp.Compare(a.Month, b.Month)
	})
	return trend
}

func profitMargin(profit, revenue float64) float64 {
	if revenue <= 0 {
		return 0
	}
	return profit / revenue * 100
}

// groups accumulates values by key and remembers first-seen order, so sorts
// applied afterwards keep input order on ties.
type groups[T any] struct {
	order []string
	items map[string]*T
}

func newGroups[T any]() *groups[T] {
	return &groups[T]{items: make(map[string]*T)}
}

func (g *groups[T]) get(key string, init func() *T) *T {
	if item, ok := g.items[key]; ok {
		return item
	}
	item := init()
	g.items[key] = item
	g.order = append(g.order, key)
	return item
}

func (g *groups[T]) values() []T {
	result := make([]T, 0, len(g.order))
	for _, key := range g.order {
		result = append(result, *g.items[key])
	}
	return result
}

func sortDesc[T any](items []T, key func(T) float64) {
	slices.SortStableFunc(items, func(a, b T) int {
		return cmp.Compare(key(b), key(a))
	})
}

func topN[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return items[:n]
}
