package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bizdash/internal/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const importBatchSize = 500

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a record with the same id already exists.
	ErrDuplicate = errors.New("record already exists")
)

// importNamespace scopes the ids derived for imported records that carry none.
var importNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("bizdash/import"))

// Repository persists sales and products in SQLite.
type Repository struct {
	db *gorm.DB
}

// Open opens (creating if needed) the SQLite database at path and migrates it.
func Open(path string) (*Repository, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	repo := NewRepository(db)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	return repo, nil
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate() error {
	if err := r.db.AutoMigrate(&SaleRecord{}, &ProductRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// ListSales returns every sale in insertion order.
func (r *Repository) ListSales(ctx context.Context) ([]models.Sale, error) {
	var records []SaleRecord
	if err := r.db.WithContext(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}

	sales := make([]models.Sale, 0, len(records))
	for _, rec := range records {
		sales = append(sales, rec.model())
	}
	return sales, nil
}

// ListProducts returns every product in insertion order.
func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var records []ProductRecord
	if err := r.db.WithContext(ctx).Order("rowid").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]models.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.model())
	}
	return products, nil
}

func (r *Repository) FindSale(ctx context.Context, id string) (*models.Sale, error) {
	var rec SaleRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}
	sale := rec.model()
	return &sale, nil
}

// CreateSale stores a new sale, assigning an id when it has none. A sale whose
// id is already stored is rejected with ErrDuplicate.
func (r *Repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	if sale.ID == "" {
		sale.ID = uuid.NewString()
	}
	rec := saleRecordFrom(*sale)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&SaleRecord{}).Where("id = ?", rec.ID).Count(&existing).Error; err != nil {
			return fmt.Errorf("failed to check sale: %w", err)
		}
		if existing > 0 {
			return fmt.Errorf("sale %s: %w", rec.ID, ErrDuplicate)
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("failed to create sale: %w", err)
		}
		return nil
	})
}

// SaveProduct inserts the product or replaces the one with the same id.
func (r *Repository) SaveProduct(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	rec := productRecordFrom(*product)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(productUpdateColumns),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

var productUpdateColumns = []string{
	"updated_at", "name", "cost", "price", "quantity",
	"critical_stock_limit", "category", "brand", "unit",
}

// ImportDataset upserts a whole dataset in one transaction. Records without an
// id get one derived from their content, so importing the same dataset again
// leaves the store unchanged.
func (r *Repository) ImportDataset(ctx context.Context, data models.Dataset) error {
	ids := newImportIDs()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(data.Products) > 0 {
			products := make([]ProductRecord, 0, len(data.Products))
			for _, p := range data.Products {
				if p.ID == "" {
					p.ID = ids.derive("product", p.Name, p.Brand, p.Unit)
				}
				products = append(products, productRecordFrom(p))
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns(productUpdateColumns),
			}).CreateInBatches(products, importBatchSize).Error
			if err != nil {
				return fmt.Errorf("failed to import products: %w", err)
			}
		}

		if len(data.Sales) > 0 {
			sales := make([]SaleRecord, 0, len(data.Sales))
			for _, s := range data.Sales {
				if s.ID == "" {
					s.ID = ids.derive("sale", s.ProductID, s.ProductName, s.CustomerName,
						amountKey(s.Price), amountKey(s.Cost), amountKey(s.Quantity), s.DateISO)
				}
				sales = append(sales, saleRecordFrom(s))
			}
			err := tx.Clauses(clause.OnConflict{DoNothing: true}).
				CreateInBatches(sales, importBatchSize).Error
			if err != nil {
				return fmt.Errorf("failed to import sales: %w", err)
			}
		}
		return nil
	})
}

// importIDs derives name-based UUIDs. Identical rows within one dataset are
// told apart by their occurrence number.
type importIDs struct {
	seen map[string]int
}

func newImportIDs() *importIDs {
	return &importIDs{seen: make(map[string]int)}
}

func (d *importIDs) derive(kind string, fields ...string) string {
	key := kind + "\x1f" + strings.Join(fields, "\x1f")
	n := d.seen[key]
	d.seen[key] = n + 1
	return uuid.NewSHA1(importNamespace, []byte(key+"\x1f"+strconv.Itoa(n))).String()
}

func amountKey(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// Counts returns the number of stored sales and products.
func (r *Repository) Counts(ctx context.Context) (sales, products int64, err error) {
	if err = r.db.WithContext(ctx).Model(&SaleRecord{}).Count(&sales).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count sales: %w", err)
	}
	if err = r.db.WithContext(ctx).Model(&ProductRecord{}).Count(&products).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count products: %w", err)
	}
	return sales, products, nil
}

func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
