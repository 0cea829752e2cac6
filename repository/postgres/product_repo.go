package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/funneldesk/backend/domain"
	"github.com/funneldesk/backend/repository"
)

type productRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a Postgres-backed ProductRepository.
func NewProductRepository(pool *pgxpool.Pool) repository.ProductRepository {
	return &productRepository{pool: pool}
}

func (r *productRepository) ListActive(ctx context.Context) ([]string, error) {
	const query = `
	SELECT name
	FROM products
	WHERE active = TRUE
	ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, classifyStoreError(err)
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		products = append(products, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyStoreError(err)
	}

	// An empty catalog falls back to the factory list.
	if len(products) == 0 {
		return domain.DefaultProducts(), nil
	}
	return products, nil
}
