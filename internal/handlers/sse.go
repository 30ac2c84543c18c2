package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"bizdash/internal/models"
	"bizdash/internal/services"
	"bizdash/internal/ui/views"
	"github.com/starfederation/datastar-go/datastar"
)

const maxChartProducts = 20

// dashboardSignals mirrors the signals declared on the dashboard page.
type dashboardSignals struct {
	Month        string `json:"month"`
	Category     string `json:"category"`
	Search       string `json:"search"`
	CriticalOnly bool   `json:"criticalOnly"`
}

func (s dashboardSignals) stockFilter() models.StockFilter {
	return models.StockFilter{
		Category:     s.Category,
		Search:       s.Search,
		CriticalOnly: s.CriticalOnly,
	}
}

type SSEHandlers struct {
	reports *services.Reports
	logger  *slog.Logger
	now     func() time.Time
}

func NewSSEHandlers(reports *services.Reports, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *SSEHandlers) readSignals(r *http.Request) dashboardSignals {
	var s dashboardSignals
	if err := datastar.ReadSignals(r, &s); err != nil {
		h.logger.Warn("read signals", "error", err)
		return dashboardSignals{}
	}
	return s
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchOverview(sse, r)
	flush(w)
}

func (h *SSEHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchMonthly(sse, r, h.readSignals(r))
	flush(w)
}

func (h *SSEHandlers) HandleStock(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	h.patchStock(sse, r, h.readSignals(r))
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	signals := h.readSignals(r)
	sse := datastar.NewSSE(w, r)

	h.patchOverview(sse, r)
	h.patchMonthly(sse, r, signals)
	h.patchStock(sse, r, signals)
	flush(w)
}

func (h *SSEHandlers) patchOverview(sse *datastar.ServerSentEventGenerator, r *http.Request) {
	overview := h.reports.Overview()

	html, err := views.RenderString(r.Context(), views.OverviewPanel(overview))
	if err != nil {
		h.logger.Error("render overview", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch overview", "error", err)
		return
	}

	products := overview.ProductList
	if len(products) > maxChartProducts {
		products = products[:maxChartProducts]
	}
	h.patchSignals(sse, map[string]any{
		"productsData": products,
		"summary":      overview.SummaryMetrics,
	})
}

func (h *SSEHandlers) patchMonthly(sse *datastar.ServerSentEventGenerator, r *http.Request, signals dashboardSignals) {
	ym, err := resolveMonth(signals.Month, h.reports, h.now)
	if err != nil {
		if err := sse.PatchElements(`<div id="monthly-content">Invalid month, expected YYYY-MM</div>`); err != nil {
			h.logger.Warn("patch monthly", "error", err)
		}
		return
	}

	html, err := views.RenderString(r.Context(), views.MonthlyPanel(h.reports.MonthlyDetail(ym)))
	if err != nil {
		h.logger.Error("render monthly detail", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch monthly", "error", err)
		return
	}

	h.patchSignals(sse, map[string]any{
		"month":       ym.String(),
		"monthlyData": h.reports.MonthlyTrend(),
	})
}

func (h *SSEHandlers) patchStock(sse *datastar.ServerSentEventGenerator, r *http.Request, signals dashboardSignals) {
	analysis := h.reports.StockAnalysis()
	entries := h.reports.FilteredStock(signals.stockFilter())

	html, err := views.RenderString(r.Context(), views.StockPanel(analysis, entries))
	if err != nil {
		h.logger.Error("render stock", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Warn("patch stock", "error", err)
	}
}

func (h *SSEHandlers) patchSignals(sse *datastar.ServerSentEventGenerator, signals map[string]any) {
	data, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal signals", "error", err)
		return
	}
	if err := sse.PatchSignals(data); err != nil {
		h.logger.Warn("patch signals", "error", err)
	}
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
