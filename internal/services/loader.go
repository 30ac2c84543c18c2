package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"bizdash/internal/models"
	"golang.org/x/sync/errgroup"
)

const (
	batchSize  = 5000
	maxWorkers = 8
)

// Loader reads sales and products from CSV files and keeps a snapshot of the
// parsed dataset in its cache directory.
type Loader struct {
	cacheDir string
	logger   *slog.Logger
}

func NewLoader(cacheDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cacheDir: cacheDir, logger: logger}
}

// Load returns the dataset from the snapshot when it is newer than both CSV
// files, otherwise parses the files and refreshes the snapshot.
func (l *Loader) Load(ctx context.Context, salesPath, productsPath string) (models.Dataset, error) {
	if l.cacheDir != "" {
		if snap, err := l.loadSnapshot(salesPath, productsPath); err == nil && snapshotFresh(snap.SavedAt, salesPath, productsPath) {
			l.logger.Info("loaded from snapshot",
				"sales", len(snap.Dataset.Sales),
				"products", len(snap.Dataset.Products),
			)
			return snap.Dataset, nil
		}
	}

	start := time.Now()
	l.logger.Info("processing CSV files", "sales", salesPath, "products", productsPath)

	sales, err := LoadSalesCSV(ctx, salesPath)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("load sales: %w", err)
	}
	products, err := LoadProductsCSV(ctx, productsPath)
	if err != nil {
		return models.Dataset{}, fmt.Errorf("load products: %w", err)
	}
	data := models.Dataset{Sales: sales, Products: products}

	if l.cacheDir != "" {
		if err := l.saveSnapshot(salesPath, productsPath, data); err != nil {
			l.logger.Warn("failed to save snapshot", "error", err)
		}
	}

	l.logger.Info("csv processing complete",
		"sales", len(sales),
		"products", len(products),
		"duration", time.Since(start),
	)
	return data, nil
}

// CSVSource serves a Loader's dataset through the DataSource interface.
type CSVSource struct {
	Loader       *Loader
	SalesPath    string
	ProductsPath string
}

func (s *CSVSource) LoadDataset(ctx context.Context) (models.Dataset, error) {
	return s.Loader.Load(ctx, s.SalesPath, s.ProductsPath)
}

func (s *CSVSource) ListSales(ctx context.Context) ([]models.Sale, error) {
	data, err := s.Loader.Load(ctx, s.SalesPath, s.ProductsPath)
	if err != nil {
		return nil, err
	}
	return data.Sales, nil
}

func (s *CSVSource) ListProducts(ctx context.Context) ([]models.Product, error) {
	data, err := s.Loader.Load(ctx, s.SalesPath, s.ProductsPath)
	if err != nil {
		return nil, err
	}
	return data.Products, nil
}

// LoadSalesCSV parses a sales file. Columns are located by header name; cells
// that are missing or unparsable are left absent rather than rejected.
func LoadSalesCSV(ctx context.Context, path string) ([]models.Sale, error) {
	return loadCSV(ctx, path, parseSaleRow)
}

func LoadProductsCSV(ctx context.Context, path string) ([]models.Product, error) {
	return loadCSV(ctx, path, parseProductRow)
}

type csvRow struct {
	header map[string]int
	fields []string
}

func (r csvRow) get(names ...string) string {
	for _, name := range names {
		if i, ok := r.header[name]; ok && i < len(r.fields) {
			return strings.TrimSpace(r.fields[i])
		}
	}
	return ""
}

func parseSaleRow(r csvRow) models.Sale {
	return models.Sale{
		ID:           r.get("id"),
		ProductID:    r.get("productid"),
		ProductName:  r.get("productname"),
		CustomerName: r.get("customername", "customer"),
		Price:        parseOptionalFloat(r.get("price")),
		Cost:         parseOptionalFloat(r.get("cost")),
		Quantity:     parseOptionalFloat(r.get("quantity", "qty")),
		DateISO:      r.get("dateiso", "date"),
	}
}

func parseProductRow(r csvRow) models.Product {
	return models.Product{
		ID:                 r.get("id"),
		Name:               r.get("name"),
		Cost:               ResolveFloat(0, parseOptionalFloat(r.get("cost"))),
		Price:              ResolveFloat(0, parseOptionalFloat(r.get("price"))),
		Quantity:           ResolveFloat(0, parseOptionalFloat(r.get("quantity", "stock"))),
		CriticalStockLimit: ResolveFloat(0, parseOptionalFloat(r.get("criticalstocklimit", "criticallimit"))),
		Category:           r.get("category"),
		Brand:              r.get("brand"),
		Unit:               r.get("unit"),
	}
}

func loadCSV[T any](ctx context.Context, path string, parse func(csvRow) T) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	headerFields, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header := make(map[string]int, len(headerFields))
	for i, name := range headerFields {
		key := normalizeHeader(name)
		if _, dup := header[key]; !dup {
			header[key] = i
		}
	}

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		if blankRecord(fields) {
			continue
		}
		records = append(records, fields)
	}

	result := make([]T, len(records))

	var g errgroup.Group
	g.SetLimit(maxWorkers)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				result[i] = parse(csvRow{header: header, fields: records[i]})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return result, nil
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
	return strings.NewReplacer("_", "", " ", "", "-", "").Replace(name)
}

func blankRecord(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
