package views

import (
	"encoding/json"

	"github.com/a-h/templ"
)

// DashboardPage seeds the page signals.
type DashboardPage struct {
	Month string
}

type pageSignals struct {
	Month        string `json:"month"`
	Category     string `json:"category"`
	Search       string `json:"search"`
	CriticalOnly bool   `json:"criticalOnly"`
}

const dashboardHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Business Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #1f2937; }
header { padding: 1.5rem 2rem; background: #1e293b; color: #fff; }
main { display: grid; gap: 1.5rem; padding: 1.5rem 2rem; }
section { background: #fff; border-radius: 8px; padding: 1rem 1.25rem; box-shadow: 0 1px 3px rgba(0,0,0,.08); }
.cards { display: flex; gap: 1rem; flex-wrap: wrap; }
.card { flex: 1; min-width: 10rem; padding: .75rem; border-radius: 6px; background: #f1f5f9; }
.modern-table { width: 100%; border-collapse: collapse; }
.modern-table th, .modern-table td { padding: .4rem .6rem; border-bottom: 1px solid #e5e7eb; text-align: left; }
.critical { background: #fef2f2; }
.swatch { display: inline-block; width: .75rem; height: .75rem; border-radius: 50%; margin-right: .4rem; }
</style>
</head>
`

const dashboardBody = `<header>
<h1>Business Dashboard</h1>
<p>Sales and inventory reports</p>
</header>
<main>
<section>
<h2>Sales Overview</h2>
<div id="overview-content">Loading overview...</div>
</section>
<section>
<h2>Monthly Detail</h2>
<label>Month <input type="month" data-bind:month data-on:change="@get('/sse/monthly')"></label>
<div id="monthly-content">Loading month...</div>
</section>
<section>
<h2>Inventory Valuation</h2>
<label>Search <input type="search" data-bind:search data-on:input__debounce.300ms="@get('/sse/stock')"></label>
<label><input type="checkbox" data-bind:critical-only data-on:change="@get('/sse/stock')"> Critical only</label>
<div id="stock-content">Loading inventory...</div>
</section>
</main>
</body>
</html>
`

// Dashboard is the full page. Its panels are filled by /sse/refresh-all once
// the page loads.
func Dashboard(page DashboardPage) templ.Component {
	return component(func(hw *htmlWriter) {
		signals, err := json.Marshal(pageSignals{Month: page.Month})
		if err != nil {
			hw.err = err
			return
		}
		hw.raw(dashboardHead)
		hw.raw(`<body data-signals="`)
		hw.text(string(signals))
		hw.raw(`" data-init="@get('/sse/refresh-all')">` + "\n")
		hw.raw(dashboardBody)
	})
}
