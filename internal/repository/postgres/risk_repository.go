// internal/repository/postgres/risk_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

type riskRepository struct {
	db *DB
}

func NewRiskRepository(db *DB) *riskRepository {
	return &riskRepository{db: db}
}

const riskColumns = `
	id, alert_type, title, description, risk_score, probability,
	confidence_score, entity, factors, recommendations, status,
	resolution_notes, resolved_at, created_at`

// SaveAlerts persists one assessment run atomically and returns the alerts
// with IDs assigned.
func (r *riskRepository) SaveAlerts(ctx context.Context, alerts []domain.RiskAlert) ([]domain.RiskAlert, error) {
	if len(alerts) == 0 {
		return nil, nil
	}

	saved := make([]domain.RiskAlert, len(alerts))
	copy(saved, alerts)

	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO risk_alerts (
				alert_type, title, description, risk_score, probability,
				confidence_score, entity, factors, recommendations, status, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
			RETURNING id, created_at`)
		if err != nil {
			return fmt.Errorf("failed to prepare alert insert: %w", err)
		}
		defer stmt.Close()

		for i := range saved {
			a := &saved[i]
			if a.Status == "" {
				a.Status = "active"
			}
			if err := stmt.QueryRowContext(ctx,
				a.AlertType, a.Title, a.Description, a.RiskScore, a.Probability,
				a.ConfidenceScore, a.Entity, a.Factors, a.Recommendations, a.Status,
			).Scan(&a.ID, &a.CreatedAt); err != nil {
				return fmt.Errorf("failed to save risk alert: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (r *riskRepository) ListAlerts(ctx context.Context, status string, limit int) ([]*domain.RiskAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	query := `
		SELECT ` + riskColumns + `
		FROM risk_alerts
		WHERE ($1 = '' OR status = $1)
		ORDER BY risk_score DESC, created_at DESC
		LIMIT $2`

	var alerts []*domain.RiskAlert
	if err := r.db.SelectContext(ctx, &alerts, query, status, limit); err != nil {
		return nil, fmt.Errorf("failed to list risk alerts: %w", err)
	}
	return alerts, nil
}

func (r *riskRepository) Resolve(ctx context.Context, id int64, notes string) (*domain.RiskAlert, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE risk_alerts
		SET status = 'resolved', resolution_notes = $2, resolved_at = $3
		WHERE id = $1 AND status <> 'resolved'`, id, notes, now)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve risk alert: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("risk alert %d: %w", id, domain.ErrNotFound)
	}

	var alert domain.RiskAlert
	err = r.db.GetContext(ctx, &alert,
		`SELECT `+riskColumns+` FROM risk_alerts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("risk alert %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reload risk alert: %w", err)
	}
	return &alert, nil
}
