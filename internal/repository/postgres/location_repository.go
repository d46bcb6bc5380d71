// internal/repository/postgres/location_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/chainopt/internal/domain"
	"github.com/jmoiron/sqlx"
)

type locationRepository struct {
	db *DB
}

func NewLocationRepository(db *DB) *locationRepository {
	return &locationRepository{db: db}
}

const locationColumns = `
	id, name, address, latitude, longitude, window_start, window_end,
	max_weight_kg, avg_service_minutes, access_difficulty, is_active, created_at`

func (r *locationRepository) ListActive(ctx context.Context) ([]*domain.DeliveryLocation, error) {
	query := `SELECT ` + locationColumns + ` FROM delivery_locations WHERE is_active = TRUE ORDER BY name`

	var locations []*domain.DeliveryLocation
	if err := r.db.SelectContext(ctx, &locations, query); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// GetByIDs loads the requested locations. The result preserves the input
// order so route optimization sees stops in the order the caller sent them.
func (r *locationRepository) GetByIDs(ctx context.Context, ids []int64) ([]*domain.DeliveryLocation, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+locationColumns+` FROM delivery_locations WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build location query: %w", err)
	}
	query = r.db.Rebind(query)

	var fetched []*domain.DeliveryLocation
	if err := r.db.SelectContext(ctx, &fetched, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}

	byID := make(map[int64]*domain.DeliveryLocation, len(fetched))
	for _, l := range fetched {
		byID[l.ID] = l
	}

	ordered := make([]*domain.DeliveryLocation, 0, len(ids))
	for _, id := range ids {
		l, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("location %d: %w", id, domain.ErrNotFound)
		}
		ordered = append(ordered, l)
	}
	return ordered, nil
}

func (r *locationRepository) Create(ctx context.Context, l *domain.DeliveryLocation) error {
	query := `
		INSERT INTO delivery_locations (
			name, address, latitude, longitude, window_start, window_end,
			max_weight_kg, avg_service_minutes, access_difficulty, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		RETURNING id, created_at`

	err := r.db.QueryRowxContext(ctx, query,
		l.Name, l.Address, l.Latitude, l.Longitude, l.WindowStart, l.WindowEnd,
		l.MaxWeightKg, l.AvgServiceMinutes, l.AccessDifficulty, l.IsActive,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create location: %w", err)
	}
	return nil
}
