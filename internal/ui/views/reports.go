package views

import (
	"strconv"

	"bizdash/internal/models"
	"github.com/a-h/templ"
)

func card(hw *htmlWriter, label string, value func()) {
	hw.raw(`<div class="card"><small>`)
	hw.text(label)
	hw.raw(`</small><div><strong>`)
	value()
	hw.raw("</strong></div></div>\n")
}

func dollars(hw *htmlWriter, v float64) func() {
	return func() {
		hw.raw("$")
		hw.money(v)
	}
}

func OverviewPanel(overview models.Overview) templ.Component {
	return component(func(hw *htmlWriter) {
		m := overview.SummaryMetrics
		hw.raw("<div id=\"overview-content\">\n<div class=\"cards\">\n")
		card(hw, "Revenue", dollars(hw, m.TotalRevenue))
		card(hw, "Profit", dollars(hw, m.TotalProfit))
		card(hw, "Margin", func() {
			hw.money(m.ProfitMargin)
			hw.raw("%")
		})
		card(hw, "Sales", func() { hw.raw(strconv.Itoa(m.TotalSalesCount)) })
		hw.raw("</div>\n")

		hw.raw("<h3>Products by Profit</h3>\n<table class=\"modern-table\">\n")
		hw.raw("<thead><tr><th>Product</th><th>Revenue</th><th>Profit</th><th>Quantity</th></tr></thead>\n<tbody>\n")
		for i, p := range overview.ProductList {
			if i == MaxProductRows {
				break
			}
			hw.raw("<tr>\n<td>")
			hw.text(p.Name)
			hw.raw("</td>\n<td>$")
			hw.money(p.Revenue)
			hw.raw("</td>\n<td><strong>$")
			hw.money(p.Profit)
			hw.raw("</strong></td>\n<td>")
			hw.qty(p.Quantity)
			hw.raw("</td>\n</tr>\n")
		}
		hw.raw("</tbody>\n</table>\n")

		hw.raw("<h3>Top Customers</h3>\n<table class=\"modern-table\">\n")
		hw.raw("<thead><tr><th>Customer</th><th>Revenue</th><th>Favourite products</th></tr></thead>\n<tbody>\n")
		for _, rel := range overview.CustomerProductRelations {
			hw.raw("<tr>\n<td>")
			hw.text(rel.CustomerName)
			hw.raw("</td>\n<td>$")
			hw.money(rel.CustomerRevenue)
			hw.raw("</td>\n<td>")
			for i, tp := range rel.TopProducts {
				if i > 0 {
					hw.raw(", ")
				}
				hw.text(tp.Name)
				hw.raw(" (")
				hw.qty(tp.Quantity)
				hw.raw(")")
			}
			hw.raw("</td>\n</tr>\n")
		}
		hw.raw("</tbody>\n</table>\n</div>")
	})
}

func MonthlyPanel(detail models.MonthlyDetail) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw("<div id=\"monthly-content\">\n<div class=\"cards\">\n")
		card(hw, "Month", func() { hw.text(detail.Month) })
		card(hw, "Revenue", dollars(hw, detail.TotalRevenue))
		card(hw, "Profit", dollars(hw, detail.TotalProfit))
		card(hw, "Sales", func() { hw.raw(strconv.Itoa(detail.SalesCount)) })
		hw.raw("</div>\n")

		hw.raw("<h3>Top Customers by Revenue</h3>\n")
		rankedList(hw, detail.TopCustomers)
		hw.raw("<h3>Top Products by Profit</h3>\n")
		rankedList(hw, detail.TopProducts)
		hw.raw("</div>")
	})
}

func rankedList(hw *htmlWriter, entries []models.RankedEntry) {
	hw.raw("<ol>")
	for _, e := range entries {
		hw.raw(`<li><span class="swatch" style="background-color: `)
		hw.text(e.Color)
		hw.raw(`"></span>`)
		hw.text(e.Name)
		hw.raw(": $")
		hw.money(e.Value)
		hw.raw("</li>")
	}
	if len(entries) == 0 {
		hw.raw("<li>No sales this month</li>")
	}
	hw.raw("</ol>\n")
}

// StockPanel renders the inventory valuation with the filtered entries.
func StockPanel(analysis models.StockAnalysis, entries []models.StockEntry) templ.Component {
	return component(func(hw *htmlWriter) {
		hw.raw("<div id=\"stock-content\">\n<div class=\"cards\">\n")
		card(hw, "Stock cost", dollars(hw, analysis.TotalCostValue))
		card(hw, "Stock sales value", dollars(hw, analysis.TotalSalesValue))
		card(hw, "Potential profit", dollars(hw, analysis.TotalPotentialProfit))
		hw.raw("</div>\n")

		hw.raw(`<p>Categories: <a href="#" data-on:click__prevent="$category = ''; @get('/sse/stock')">All</a>`)
		for _, c := range analysis.Categories {
			hw.raw(` | <a href="#" data-on:click__prevent="$category = `)
			hw.jsString(c)
			hw.raw(`; @get('/sse/stock')">`)
			hw.text(c)
			hw.raw("</a>")
		}
		hw.raw("</p>\n")

		hw.raw("<table class=\"modern-table\">\n<thead><tr><th>Product</th><th>Category</th><th>Brand</th><th>Stock</th>")
		hw.raw("<th>Unit profit</th><th>Stock cost</th><th>Stock value</th><th>Stock profit</th></tr></thead>\n<tbody>\n")
		for i, e := range entries {
			if i == MaxStockRows {
				break
			}
			if e.IsCritical {
				hw.raw("<tr class=\"critical\">\n")
			} else {
				hw.raw("<tr>\n")
			}
			for _, cell := range []string{e.Name, e.Category, e.Brand} {
				hw.raw("<td>")
				hw.text(cell)
				hw.raw("</td>\n")
			}
			hw.raw("<td>")
			hw.qty(e.Quantity)
			hw.raw(" ")
			hw.text(e.Unit)
			hw.raw("</td>\n")
			for _, v := range []float64{e.ProfitPerItem, e.TotalStockCost, e.TotalStockSales, e.TotalStockProfit} {
				hw.raw("<td>$")
				hw.money(v)
				hw.raw("</td>\n")
			}
			hw.raw("</tr>\n")
		}
		if len(entries) == 0 {
			hw.raw("<tr><td colspan=\"8\">No products match</td></tr>\n")
		}
		hw.raw("</tbody>\n</table>\n</div>")
	})
}
