package domain

import (
	"fmt"
	"time"
)

// CategoryRef is the category snapshot embedded in a product
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Product represents the product entity as returned by the inventory API
type Product struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description,omitempty"`
	SKU               string      `json:"sku"`
	Category          CategoryRef `json:"category"`
	Price             float64     `json:"price"`
	Quantity          int         `json:"quantity"`
	LowStockThreshold int         `json:"lowStockThreshold"`
	CreatedAt         time.Time   `json:"createdAt"`
	UpdatedAt         time.Time   `json:"updatedAt"`
}

// LowStock reports whether the product is at or below its threshold
func (p *Product) LowStock() bool {
	return p.Quantity <= p.LowStockThreshold
}

// Category represents the category entity. ProductCount is the sum of
// quantities of all products in the category, recomputed client-side.
type Category struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	ProductCount int       `json:"productCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TransactionType is the direction of a stock movement
type TransactionType string

const (
	StockIn  TransactionType = "stock-in"
	StockOut TransactionType = "stock-out"
)

// ProductRef is the product snapshot denormalized into a transaction
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// Transaction represents a stock movement. Immutable once created,
// except through the bulk clear operation.
type Transaction struct {
	ID       string          `json:"id"`
	Type     TransactionType `json:"type"`
	Product  ProductRef      `json:"productId"`
	Quantity int             `json:"quantity"`
	Date     time.Time       `json:"date"`
	AddedBy  string          `json:"addedBy"`
}

// DashboardStats represents the aggregate dashboard figures with their
// percentage change relative to the daily baseline
type DashboardStats struct {
	TotalProducts    int    `json:"totalProducts"`
	TotalCategories  int    `json:"totalCategories"`
	TotalStock       int    `json:"totalStock"`
	LowStockProducts int    `json:"lowStockProducts"`
	ProductChange    string `json:"productChange"`
	CategoryChange   string `json:"categoryChange"`
	StockChange      string `json:"stockChange"`
	LowStockChange   string `json:"lowStockChange"`
}

// IsZero reports whether the snapshot carries no counted values.
// A zero baseline means the server has not captured today's opening yet.
func (s DashboardStats) IsZero() bool {
	return s.TotalProducts == 0 && s.TotalCategories == 0 &&
		s.TotalStock == 0 && s.LowStockProducts == 0
}

// User represents the acting user supplied by the auth collaborator
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// InsufficientStockError is returned when a stock-out would drive the
// last-known cached quantity below zero. Advisory: the cache may be
// stale and the server stays authoritative.
type InsufficientStockError struct {
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stocks, %s quantity is currently %d", e.ProductName, e.Available)
}

// CheckStockOut validates a stock-out request against the cached product
func CheckStockOut(p *Product, quantity int) error {
	if quantity > p.Quantity {
		return &InsufficientStockError{
			ProductName: p.Name,
			Requested:   quantity,
			Available:   p.Quantity,
		}
	}
	return nil
}
