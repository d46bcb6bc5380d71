// internal/repository/postgres/supplier_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type supplierRepository struct {
	db *DB
}

func NewSupplierRepository(db *DB) *supplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) ListActive(ctx context.Context) ([]*domain.Supplier, error) {
	query := `
		SELECT id, name, code, city, country, avg_delivery_days, on_time_rate,
		       quality_score, financial_stability, geographic_risk, is_active, created_at
		FROM suppliers
		WHERE is_active = TRUE
		ORDER BY name`

	var suppliers []*domain.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

func (r *supplierRepository) Create(ctx context.Context, s *domain.Supplier) error {
	query := `
		INSERT INTO suppliers (
			name, code, city, country, avg_delivery_days, on_time_rate,
			quality_score, financial_stability, geographic_risk, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		s.Name, s.Code, s.City, s.Country, s.AvgDeliveryDays, s.OnTimeRate,
		s.QualityScore, s.FinancialStability, s.GeographicRisk, s.IsActive,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create supplier: %w", err)
	}
	return nil
}
