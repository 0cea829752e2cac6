package repository

import "context"

// ProductRepository serves the configurable product catalog.
type ProductRepository interface {
	// ListActive returns the active product names in catalog order.
	ListActive(ctx context.Context) ([]string, error)
}
