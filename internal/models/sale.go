package models

// Sale is a recorded transaction. Numeric fields are optional: nil means the
// value was absent at ingestion and is resolved to a default when reported on.
type Sale struct {
	ID           string   `json:"id"`
	ProductID    string   `json:"productId"`
	ProductName  string   `json:"productName"`
	CustomerName string   `json:"customerName"`
	Price        *float64 `json:"price,omitempty"`
	Cost         *float64 `json:"cost,omitempty"`
	Quantity     *float64 `json:"quantity,omitempty"`
	DateISO      string   `json:"dateISO"`
}

type Product struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Cost               float64 `json:"cost"`
	Price              float64 `json:"price"`
	Quantity           float64 `json:"quantity"`
	CriticalStockLimit float64 `json:"criticalStockLimit"`
	Category           string  `json:"category"`
	Brand              string  `json:"brand"`
	Unit               string  `json:"unit"`
}

// Dataset is a fully materialized pair of input collections.
type Dataset struct {
	Sales    []Sale    `json:"sales"`
	Products []Product `json:"products"`
}

// Float returns a pointer to v, for building optional sale fields.
func Float(v float64) *float64 {
	return &v
}
