package handlers

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"bizdash/internal/errors"
	"bizdash/internal/models"
	"bizdash/internal/observability"
	"bizdash/internal/services"
	"bizdash/internal/store"
)

const (
	cacheControl = "public, max-age=60"
	maxBodyBytes = 1 << 20
)

// Store is a writable data source. Writes refresh the reports from it.
type Store interface {
	services.DataSource
	CreateSale(ctx context.Context, sale *models.Sale) error
	SaveProduct(ctx context.Context, product *models.Product) error
}

type APIHandlers struct {
	reports *services.Reports
	store   Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewAPIHandlers builds the JSON handlers. store may be nil, in which case
// the write endpoints answer 503.
func NewAPIHandlers(reports *services.Reports, store Store, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		reports: reports,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.reports.Overview(), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	ym, err := resolveMonth(r.URL.Query().Get("month"), h.reports, h.now)
	if err != nil {
		h.fail(w, r, errors.Validation("invalid month").WithDetails(err.Error()))
		return
	}

	errors.WriteSuccessWithHeaders(w, h.reports.MonthlyDetail(ym), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccessWithHeaders(w, h.reports.MonthlyTrend(), map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.StockFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if raw := q.Get("critical"); raw != "" {
		critical, err := strconv.ParseBool(raw)
		if err != nil {
			h.fail(w, r, errors.Validation("invalid critical flag").WithDetails("critical must be true or false"))
			return
		}
		filter.CriticalOnly = critical
	}

	analysis := h.reports.StockAnalysis()
	analysis.DetailedProducts = h.reports.FilteredStock(filter)

	errors.WriteSuccessWithHeaders(w, analysis, map[string]string{
		"Cache-Control": cacheControl,
	})
}

func (h *APIHandlers) HandleSaleProfit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	profit, ok := h.reports.Profit(id)
	if !ok {
		h.fail(w, r, errors.NotFound("sale not found").WithDetails(id))
		return
	}
	errors.WriteSuccess(w, profit)
}

func (h *APIHandlers) HandleCreateSale(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.fail(w, r, errors.ServiceUnavailable("sales are read-only with the current data driver"))
		return
	}

	var sale models.Sale
	if err := decodeBody(w, r, &sale); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(sale.ProductID) == "" && strings.TrimSpace(sale.ProductName) == "" {
		h.fail(w, r, errors.Validation("sale needs a productId or productName"))
		return
	}
	if sale.DateISO == "" {
		sale.DateISO = h.now().UTC().Format(time.RFC3339)
	}

	if err := h.store.CreateSale(r.Context(), &sale); err != nil {
		if stderrors.Is(err, store.ErrDuplicate) {
			h.fail(w, r, errors.Conflict("sale already exists").WithDetails(sale.ID))
			return
		}
		h.fail(w, r, errors.InternalWrap(err, "failed to store sale"))
		return
	}
	h.refresh(r)

	body := map[string]any{"sale": sale}
	if profit, ok := h.reports.Profit(sale.ID); ok {
		body["profit"] = profit
	} else {
		h.logger.Warn("stored sale missing from reports",
			"sale_id", sale.ID,
			"request_id", observability.GetRequestID(r.Context()),
		)
	}
	errors.WriteCreated(w, body)
}

func (h *APIHandlers) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.fail(w, r, errors.ServiceUnavailable("products are read-only with the current data driver"))
		return
	}

	var product models.Product
	if err := decodeBody(w, r, &product); err != nil {
		h.fail(w, r, err)
		return
	}
	if strings.TrimSpace(product.Name) == "" {
		h.fail(w, r, errors.Validation("product name is required"))
		return
	}

	if err := h.store.SaveProduct(r.Context(), &product); err != nil {
		h.fail(w, r, errors.InternalWrap(err, "failed to store product"))
		return
	}
	h.refresh(r)

	errors.WriteCreated(w, product)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": h.now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.reports.Stats())
}

// refresh reloads the reports after a write. A failed reload leaves the
// previous dataset in place; the write itself already succeeded.
func (h *APIHandlers) refresh(r *http.Request) {
	if err := h.reports.Refresh(r.Context(), h.store); err != nil {
		h.logger.Error("refresh after write failed",
			"error", err,
			"request_id", observability.GetRequestID(r.Context()),
		)
	}
}

func (h *APIHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.BadRequestWrap(err, "invalid JSON body")
	}
	return nil
}

// resolveMonth parses raw as YYYY-MM. An empty value selects the latest month
// with sales, or the current month when there are none.
func resolveMonth(raw string, reports *services.Reports, now func() time.Time) (services.YearMonth, error) {
	if strings.TrimSpace(raw) != "" {
		return services.ParseYearMonth(raw)
	}
	if ym, ok := reports.LatestMonth(); ok {
		return ym, nil
	}
	return services.YearMonthOf(now()), nil
}
