package api

import (
	"context"
	"fmt"

	"github.com/credotech/inventory-console/internal/domain"
)

// CategoryInput is the create/update payload for a category
type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListCategories fetches all categories
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&categories).
		Get("/api/categories")
	if err := c.check("list categories", resp, err); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetCategory fetches a single category by id
func (c *Client) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	var category domain.Category
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&category).
		Get(fmt.Sprintf("/api/categories/%s", id))
	if err := c.check("get category", resp, err); err != nil {
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a category and returns the server representation
func (c *Client) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	var category domain.Category
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&category).
		Post("/api/categories")
	if err := c.check("create category", resp, err); err != nil {
		return nil, err
	}
	return &category, nil
}

// UpdateCategory updates a category and returns the server representation
func (c *Client) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*domain.Category, error) {
	var category domain.Category
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&category).
		Put(fmt.Sprintf("/api/categories/%s", id))
	if err := c.check("update category", resp, err); err != nil {
		return nil, err
	}
	return &category, nil
}

// DeleteCategory deletes a category by id
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("/api/categories/%s", id))
	return c.check("delete category", resp, err)
}
