package api

import (
	"context"
	"fmt"

	"github.com/credotech/inventory-console/internal/domain"
)

// ProductInput is the create/update payload for a product
type ProductInput struct {
	Name              string             `json:"name"`
	Description       string             `json:"description,omitempty"`
	SKU               string             `json:"sku"`
	Category          domain.CategoryRef `json:"category"`
	Price             float64            `json:"price"`
	Quantity          int                `json:"quantity"`
	LowStockThreshold int                `json:"lowStockThreshold"`
}

// ProductInputFrom builds an update payload carrying all fields of an
// existing product, so a single-field change round-trips the rest
func ProductInputFrom(p *domain.Product) ProductInput {
	return ProductInput{
		Name:              p.Name,
		Description:       p.Description,
		SKU:               p.SKU,
		Category:          p.Category,
		Price:             p.Price,
		Quantity:          p.Quantity,
		LowStockThreshold: p.LowStockThreshold,
	}
}

// ListProducts fetches all products
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&products).
		Get("/api/products")
	if err := c.check("list products", resp, err); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by id
func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&product).
		Get(fmt.Sprintf("/api/products/%s", id))
	if err := c.check("get product", resp, err); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a product and returns the server representation
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var product domain.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&product).
		Post("/api/products")
	if err := c.check("create product", resp, err); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct updates a product and returns the server representation
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*domain.Product, error) {
	var product domain.Product
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&product).
		Put(fmt.Sprintf("/api/products/%s", id))
	if err := c.check("update product", resp, err); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct deletes a product by id
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/products/%s", id))
	return c.check("delete product", resp, err)
}
