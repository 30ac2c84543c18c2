package models

type ProfitBreakdown struct {
	Revenue float64 `json:"revenue"`
	Cost    float64 `json:"cost"`
	Profit  float64 `json:"profit"`
}

type ProductPerformance struct {
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
	Profit   float64 `json:"profit"`
	Quantity float64 `json:"quantity"`
}

type CustomerSummary struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Sales   []Sale  `json:"sales"`
}

type ProductQuantity struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

type CustomerProductRelation struct {
	CustomerName    string            `json:"customerName"`
	CustomerRevenue float64           `json:"customerRevenue"`
	TopProducts     []ProductQuantity `json:"topProducts"`
}

type SummaryMetrics struct {
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalProfit     float64 `json:"totalProfit"`
	TotalSalesCount int     `json:"totalSalesCount"`
	ProfitMargin    float64 `json:"profitMargin"`
}

type Overview struct {
	ProductList              []ProductPerformance      `json:"productList"`
	Customers                []CustomerSummary         `json:"customers"`
	SummaryMetrics           SummaryMetrics            `json:"summaryMetrics"`
	CustomerProductRelations []CustomerProductRelation `json:"customerProductRelations"`
}

// RankedEntry is one row of a top-N list with its display color.
type RankedEntry struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type MonthlyDetail struct {
	Month        string        `json:"month"`
	TotalRevenue float64       `json:"totalRevenue"`
	TotalProfit  float64       `json:"totalProfit"`
	TopCustomers []RankedEntry `json:"topCustomers"`
	TopProducts  []RankedEntry `json:"topProducts"`
	SalesCount   int           `json:"salesCount"`
}

type MonthlyVolume struct {
	Month      string  `json:"month"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
	SalesCount int     `json:"salesCount"`
}

type StockEntry struct {
	Product
	ProfitPerItem    float64 `json:"profitPerItem"`
	TotalStockCost   float64 `json:"totalStockCost"`
	TotalStockSales  float64 `json:"totalStockSales"`
	TotalStockProfit float64 `json:"totalStockProfit"`
	IsCritical       bool    `json:"isCritical"`
}

type StockAnalysis struct {
	DetailedProducts     []StockEntry `json:"detailedProducts"`
	Categories           []string     `json:"categories"`
	TotalCostValue       float64      `json:"totalCostValue"`
	TotalSalesValue      float64      `json:"totalSalesValue"`
	TotalPotentialProfit float64      `json:"totalPotentialProfit"`
}

// StockFilter carries the inventory screen's selection: category, free-text
// search and the critical-only view mode.
type StockFilter struct {
	Category     string `json:"category"`
	Search       string `json:"search"`
	CriticalOnly bool   `json:"criticalOnly"`
}
