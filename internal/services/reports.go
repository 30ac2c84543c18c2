package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"bizdash/internal/models"
	"bizdash/internal/observability"
	"golang.org/x/sync/singleflight"
)

// DataSource supplies fully materialized input collections.
type DataSource interface {
	ListSales(ctx context.Context) ([]models.Sale, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// DatasetSource is implemented by sources that load both collections at once.
type DatasetSource interface {
	LoadDataset(ctx context.Context) (models.Dataset, error)
}

// Reports holds the current dataset and memoizes report results per dataset
// version. Replacing the dataset invalidates every memoized entry.
type Reports struct {
	// refreshMu orders refreshes so a slow fetch cannot overwrite the
	// result of a later one.
	refreshMu sync.Mutex

	mu       sync.RWMutex
	data     models.Dataset
	version  uint64
	loadedAt time.Time
	memo     map[string]any

	flight singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
	logger *slog.Logger
}

func NewReports(logger *slog.Logger) *Reports {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reports{
		data: models.Dataset{
			Sales:    []models.Sale{},
			Products: []models.Product{},
		},
		memo:   make(map[string]any),
		logger: logger,
	}
}

// SetData replaces the dataset. The slices are copied; callers may reuse theirs.
func (r *Reports) SetData(sales []models.Sale, products []models.Product) {
	data := models.Dataset{
		Sales:    slices.Clone(sales),
		Products: slices.Clone(products),
	}
	if data.Sales == nil {
		data.Sales = []models.Sale{}
	}
	if data.Products == nil {
		data.Products = []models.Product{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	r.version++
	r.loadedAt = time.Now()
	r.memo = make(map[string]any)
}

// Refresh reloads both collections from src and replaces the dataset.
// Concurrent refreshes run one at a time.
func (r *Reports) Refresh(ctx context.Context, src DataSource) error {
	r.refreshMu.Lock()
	defer r.refreshMu.Unlock()

	ctx, span := observability.StartSpan(ctx, "reports.refresh")
	defer func() {
		span.Finish()
		span.Log(r.logger)
	}()

	sales, products, err := fetch(ctx, src)
	if err != nil {
		span.SetError(err)
		return err
	}

	r.SetData(sales, products)
	span.SetTag("sales", fmt.Sprint(len(sales)))
	span.SetTag("products", fmt.Sprint(len(products)))

	r.logger.Info("reports refreshed",
		"sales", len(sales),
		"products", len(products),
		"version", r.Version(),
		"trace_id", span.TraceID,
	)
	return nil
}

func fetch(ctx context.Context, src DataSource) ([]models.Sale, []models.Product, error) {
	if ds, ok := src.(DatasetSource); ok {
		data, err := ds.LoadDataset(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load dataset: %w", err)
		}
		return data.Sales, data.Products, nil
	}

	sales, err := src.ListSales(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list sales: %w", err)
	}
	products, err := src.ListProducts(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list products: %w", err)
	}
	return sales, products, nil
}

func (r *Reports) Version() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.version
}

// Dataset returns the current collections. The slices must not be modified.
func (r *Reports) Dataset() models.Dataset {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

func (r *Reports) Overview() models.Overview {
	return memoized(r, "overview", "", func(d models.Dataset) models.Overview {
		return ComputeOverview(d.Sales, d.Products)
	})
}

func (r *Reports) MonthlyDetail(ym YearMonth) models.MonthlyDetail {
	return memoized(r, "monthly", ym.String(), func(d models.Dataset) models.MonthlyDetail {
		return ComputeMonthlyDetail(d.Sales, d.Products, ym)
	})
}

func (r *Reports) MonthlyTrend() []models.MonthlyVolume {
	return memoized(r, "trend", "", func(d models.Dataset) []models.MonthlyVolume {
		return ComputeMonthlyTrend(d.Sales, d.Products)
	})
}

func (r *Reports) StockAnalysis() models.StockAnalysis {
	return memoized(r, "stock", "", func(d models.Dataset) models.StockAnalysis {
		return ComputeStockAnalysis(d.Products)
	})
}

func (r *Reports) FilteredStock(filter models.StockFilter) []models.StockEntry {
	params := fmt.Sprintf("%q|%q|%t", filter.Category, filter.Search, filter.CriticalOnly)
	return memoized(r, "stock-filter", params, func(d models.Dataset) []models.StockEntry {
		return FilterStock(ComputeStockAnalysis(d.Products).DetailedProducts, filter)
	})
}

// Profit returns the breakdown of the sale with the given id.
func (r *Reports) Profit(saleID string) (models.ProfitBreakdown, bool) {
	r.mu.RLock()
	data := r.data
	r.mu.RUnlock()

	for _, sale := range data.Sales {
		if sale.ID == saleID {
			return ComputeProfit(sale, data.Products), true
		}
	}
	return models.ProfitBreakdown{}, false
}

// LatestMonth is the most recent month that has at least one dated sale.
func (r *Reports) LatestMonth() (YearMonth, bool) {
	trend := r.MonthlyTrend()
	if len(trend) == 0 {
		return YearMonth{}, false
	}
	ym, err := ParseYearMonth(trend[len(trend)-1].Month)
	if err != nil {
		return YearMonth{}, false
	}
	return ym, true
}

// Stats reports dataset and memo counters for monitoring.
func (r *Reports) Stats() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]any{
		"sales":        len(r.data.Sales),
		"products":     len(r.data.Products),
		"version":      r.version,
		"last_loaded":  r.loadedAt,
		"memo_entries": len(r.memo),
		"memo_hits":    r.hits.Load(),
		"memo_misses":  r.misses.Load(),
	}
}

// memoized returns the cached result for op/params at the current version or
// computes it once. Results computed against a superseded version are handed
// back to the caller but not stored.
func memoized[T any](r *Reports, op, params string, compute func(models.Dataset) T) T {
	r.mu.RLock()
	version := r.version
	data := r.data
	key := fmt.Sprintf("%d|%s|%s", version, op, params)
	cached, ok := r.memo[key]
	r.mu.RUnlock()

	if ok {
		r.hits.Add(1)
		return cached.(T)
	}

	v, _, _ := r.flight.Do(key, func() (any, error) {
		r.misses.Add(1)
		result := compute(data)

		r.mu.Lock()
		if r.version == version {
			r.memo[key] = result
		}
		r.mu.Unlock()
		return result, nil
	})
	return v.(T)
}
