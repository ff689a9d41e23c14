// Package catalog serves the shop's priced products and the stock on hand.
package catalog

import (
	"fmt"

	"github.com/odyssey-erp/shopledger/internal/ledger"
	"github.com/odyssey-erp/shopledger/internal/money"
	"github.com/odyssey-erp/shopledger/internal/shared"
)

// Category groups products on the counter.
type Category string

const (
	CategorySarees   Category = "sarees"
	CategoryDresses  Category = "dresses"
	CategoryFabrics  Category = "fabrics"
	CategorySuitSets Category = "suit-sets"
)

// LowStockThreshold is the stock level at or below which a product is
// flagged for reordering.
const LowStockThreshold money.Quantity = 5

var (
	// ErrNegativeStock rejects an adjustment that would take more than is on hand.
	ErrNegativeStock = fmt.Errorf("%w: stock cannot go below zero", shared.ErrInvalidInput)
	// ErrStockLimit rejects stock above money.MaxQuantity.
	ErrStockLimit = fmt.Errorf("%w: stock above limit", shared.ErrInvalidInput)
)

// Product is a sellable catalog entry. Price is the selling price;
// PurchasePrice is what the shop paid.
type Product struct {
	ID            string         `json:"id"`
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Category      Category       `json:"category"`
	Price         money.Money    `json:"price"`
	PurchasePrice money.Money    `json:"purchase_price"`
	Stock         money.Quantity `json:"stock"`
	LowStock      bool           `json:"low_stock"`
}

// IsLowStock reports whether stock is at or below LowStockThreshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= LowStockThreshold
}

func (p Product) flagged() Product {
	p.LowStock = p.IsLowStock()
	return p
}

// LedgerProduct is the view a cart line is priced from.
func (p Product) LedgerProduct() ledger.Product {
	return ledger.Product{ID: p.ID, Name: p.Name, Price: p.Price}
}

// UpsertInput creates or reprices a product.
type UpsertInput struct {
	ID            string         `json:"id" validate:"required,max=32"`
	Code          string         `json:"code" validate:"max=32"`
	Name          string         `json:"name" validate:"required,max=120"`
	Category      Category       `json:"category" validate:"omitempty,oneof=sarees dresses fabrics suit-sets"`
	Price         money.Money    `json:"price" validate:"gte=0,lte=100000000000000"`
	PurchasePrice money.Money    `json:"purchase_price" validate:"gte=0,lte=100000000000000"`
	Stock         money.Quantity `json:"stock" validate:"gte=0,lte=100000"`
}

// AdjustInput moves stock by Delta units: positive for goods in, negative for
// goods out.
type AdjustInput struct {
	Delta int    `json:"delta" validate:"ne=0,gte=-100000,lte=100000"`
	Note  string `json:"note" validate:"max=200"`
}

// InventoryQuery narrows the stock listing. Zero values match everything.
type InventoryQuery struct {
	Query    string
	Category Category
	LowOnly  bool
}

// Inventory is the stock listing with its totals.
type Inventory struct {
	Products []Product `json:"products"`
	// Units is the sum of stock across the listed products.
	Units int64 `json:"units"`
	// LowStock counts listed products at or below LowStockThreshold.
	LowStock int `json:"low_stock"`
	// Cost values the stock at purchase price, Retail at selling price.
	Cost   money.Money `json:"cost_value"`
	Retail money.Money `json:"retail_value"`
}

// Seed is the shop's opening catalog.
func Seed() []Product {
	return []Product{
		{ID: "1", Code: "SAR001", Name: "Kanjeevaram Silk Saree", Category: CategorySarees, Price: money.Rupees(5500), PurchasePrice: money.Rupees(3500), Stock: 12},
		{ID: "2", Code: "SAR002", Name: "Banarasi Silk Saree", Category: CategorySarees, Price: money.Rupees(4500), PurchasePrice: money.Rupees(2800), Stock: 8},
		{ID: "3", Code: "DRS001", Name: "Cotton Kurti", Category: CategoryDresses, Price: money.Rupees(850), PurchasePrice: money.Rupees(450), Stock: 25},
		{ID: "4", Code: "DRS002", Name: "Designer Anarkali", Category: CategoryDresses, Price: money.Rupees(2200), PurchasePrice: money.Rupees(1200), Stock: 5},
		{ID: "5", Code: "FAB001", Name: "Pure Cotton Fabric (per m)", Category: CategoryFabrics, Price: money.Rupees(200), PurchasePrice: money.Rupees(120), Stock: 150},
		{ID: "6", Code: "FAB002", Name: "Silk Fabric (per m)", Category: CategoryFabrics, Price: money.Rupees(550), PurchasePrice: money.Rupees(350), Stock: 80},
		{ID: "7", Code: "SET001", Name: "Churidar Suit Set", Category: CategorySuitSets, Price: money.Rupees(1500), PurchasePrice: money.Rupees(800), Stock: 18},
		{ID: "8", Code: "SET002", Name: "Palazzo Suit Set", Category: CategorySuitSets, Price: money.Rupees(1800), PurchasePrice: money.Rupees(950), Stock: 3},
	}
}
