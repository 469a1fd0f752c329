package domain

import (
	"strings"
	"time"
)

// SearchProducts filters a product snapshot by a case-insensitive term
// matched against name, SKU and category name. An empty term returns
// the input unchanged.
func SearchProducts(products []Product, term string) []Product {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.SKU), term) ||
			strings.Contains(strings.ToLower(p.Category.Name), term) {
			out = append(out, p)
		}
	}
	return out
}

// TransactionFilter narrows a transaction snapshot. Zero fields are
// ignored; From/To bound the transaction date inclusively.
type TransactionFilter struct {
	Type TransactionType
	From time.Time
	To   time.Time
	Term string
}

// FilterTransactions applies the filter to a transaction snapshot
func FilterTransactions(transactions []Transaction, f TransactionFilter) []Transaction {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && t.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && t.Date.After(f.To) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(t.Product.Name), term) &&
			!strings.Contains(strings.ToLower(t.Product.SKU), term) &&
			!strings.Contains(strings.ToLower(t.AddedBy), term) {
			continue
		}
		out = append(out, t)
	}
	return out
}
