// internal/repository/postgres/product_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type productRepository struct {
	db *DB
}

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db}
}

const productColumns = `
	id, name, sku, category, base_cost, current_price, min_price, max_price,
	current_stock, reorder_level, max_stock_level, weight_kg,
	forecasting_enabled, pricing_enabled, seasonal_factors, demand_volatility,
	created_at, updated_at`

func (r *productRepository) List(ctx context.Context, filter *domain.ProductFilter) ([]*domain.Product, int, error) {
	if filter == nil {
		filter = &domain.ProductFilter{}
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 200 {
		pageSize = 200
	}

	where := `
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR sku ILIKE '%' || $2 || '%' OR name ILIKE '%' || $2 || '%')
		  AND ($3::boolean IS NULL OR forecasting_enabled = $3)
		  AND ($4::boolean IS NULL OR pricing_enabled = $4)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products`+where,
		filter.Category, filter.Search, filter.ForecastingEnabled, filter.PricingEnabled); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + `
		ORDER BY name ASC
		LIMIT $5 OFFSET $6`

	var products []*domain.Product
	err := r.db.SelectContext(ctx, &products, query,
		filter.Category, filter.Search, filter.ForecastingEnabled, filter.PricingEnabled,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	err := r.db.GetContext(ctx, &product,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *productRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.GetContext(ctx, &product,
		`SELECT `+productColumns+` FROM products WHERE sku = $1`, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product sku %q: %w", sku, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by sku: %w", err)
	}
	return &product, nil
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (
			name, sku, category, base_cost, current_price, min_price, max_price,
			current_stock, reorder_level, max_stock_level, weight_kg,
			forecasting_enabled, pricing_enabled, seasonal_factors,
			demand_volatility, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		p.Name, p.SKU, p.Category, p.BaseCost, p.CurrentPrice, p.MinPrice, p.MaxPrice,
		p.CurrentStock, p.ReorderLevel, p.MaxStockLevel, p.WeightKg,
		p.ForecastingEnabled, p.PricingEnabled, p.SeasonalFactors, p.DemandVolatility,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *productRepository) UpdateStock(ctx context.Context, id int64, stock int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET current_stock = $2, updated_at = NOW() WHERE id = $1`, id, stock)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
