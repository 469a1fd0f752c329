package api

import (
	"context"

	"github.com/credotech/inventory-console/internal/domain"
)

// TransactionInput is the create payload for a stock transaction
type TransactionInput struct {
	Type      domain.TransactionType `json:"type"`
	ProductID string                 `json:"productId"`
	Quantity  int                    `json:"quantity"`
	AddedBy   string                 `json:"addedBy"`
}

// Pagination describes the paging block of the transaction list envelope
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// transactionList is the list envelope; transactions arrive wrapped,
// unlike products and categories which are bare arrays
type transactionList struct {
	Transactions []domain.Transaction `json:"transactions"`
	Pagination   Pagination           `json:"pagination"`
}

// ListTransactions fetches all transactions with their paging info
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, Pagination, error) {
	var list transactionList
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&list).
		Get("/api/transactions")
	if err := c.check("list transactions", resp, err); err != nil {
		return nil, Pagination{}, err
	}
	return list.Transactions, list.Pagination, nil
}

// CreateTransaction creates a transaction and returns the server representation
func (c *Client) CreateTransaction(ctx context.Context, in TransactionInput) (*domain.Transaction, error) {
	var transaction domain.Transaction
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(in).
		SetResult(&transaction).
		Post("/api/transactions")
	if err := c.check("create transaction", resp, err); err != nil {
		return nil, err
	}
	return &transaction, nil
}

// ClearTransactions deletes the whole transaction history
func (c *Client) ClearTransactions(ctx context.Context) error {
	resp, err := c.http.R().
		SetContext(ctx).
		Delete("/api/transactions")
	return c.check("clear transactions", resp, err)
}
