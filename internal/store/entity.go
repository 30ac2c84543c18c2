package store

import (
	"time"

	"bizdash/internal/models"
)

// SaleRecord is the persisted form of a sale. Price, cost and quantity are
// nullable so an absent value stays absent.
type SaleRecord struct {
	ID           string    `gorm:"primarykey;size:36"`
	CreatedAt    time.Time `gorm:"index"`
	ProductID    string    `gorm:"size:64;index"`
	ProductName  string    `gorm:"size:200"`
	CustomerName string    `gorm:"size:200;index"`
	Price        *float64
	Cost         *float64
	Quantity     *float64
	DateISO      string `gorm:"size:64"`
}

func (SaleRecord) TableName() string {
	return "sales"
}

type ProductRecord struct {
	ID                 string    `gorm:"primarykey;size:64"`
	CreatedAt          time.Time `gorm:"index"`
	UpdatedAt          time.Time
	Name               string  `gorm:"size:200;not null"`
	Cost               float64 `gorm:"not null;default:0"`
	Price              float64 `gorm:"not null;default:0"`
	Quantity           float64 `gorm:"not null;default:0"`
	CriticalStockLimit float64 `gorm:"not null;default:0"`
	Category           string  `gorm:"size:100;index"`
	Brand              string  `gorm:"size:100"`
	Unit               string  `gorm:"size:20"`
}

func (ProductRecord) TableName() string {
	return "products"
}

func saleRecordFrom(s models.Sale) SaleRecord {
	return SaleRecord{
		ID:           s.ID,
		ProductID:    s.ProductID,
		ProductName:  s.ProductName,
		CustomerName: s.CustomerName,
		Price:        s.Price,
		Cost:         s.Cost,
		Quantity:     s.Quantity,
		DateISO:      s.DateISO,
	}
}

func (r SaleRecord) model() models.Sale {
	return models.Sale{
		ID:           r.ID,
		ProductID:    r.ProductID,
		ProductName:  r.ProductName,
		CustomerName: r.CustomerName,
		Price:        r.Price,
		Cost:         r.Cost,
		Quantity:     r.Quantity,
		DateISO:      r.DateISO,
	}
}

func productRecordFrom(p models.Product) ProductRecord {
	return ProductRecord{
		ID:                 p.ID,
		Name:               p.Name,
		Cost:               p.Cost,
		Price:              p.Price,
		Quantity:           p.Quantity,
		CriticalStockLimit: p.CriticalStockLimit,
		Category:           p.Category,
		Brand:              p.Brand,
		Unit:               p.Unit,
	}
}

func (r ProductRecord) model() models.Product {
	return models.Product{
		ID:                 r.ID,
		Name:               r.Name,
		Cost:               r.Cost,
		Price:              r.Price,
		Quantity:           r.Quantity,
		CriticalStockLimit: r.CriticalStockLimit,
		Category:           r.Category,
		Brand:              r.Brand,
		Unit:               r.Unit,
	}
}
