package risk

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/chainopt/internal/domain"
)

// fixedAssessor pins the clock to a non-winter month so the seasonal weather
// alert stays out of the way unless a test wants it.
func fixedAssessor(month time.Month) *Assessor {
	a := NewAssessor()
	a.now = func() time.Time {
		return time.Date(2026, month, 15, 0, 0, 0, 0, time.UTC)
	}
	return a
}

func healthySupplier() domain.Supplier {
	return domain.Supplier{
		Name:               "Nusantara Trading",
		OnTimeRate:         95,
		QualityScore:       9,
		FinancialStability: 0.9,
		GeographicRisk:     0.1,
		IsActive:           true,
	}
}

func TestAssessEmptySnapshotStillReportsEconomicWatch(t *testing.T) {
	alerts := fixedAssessor(time.June).Assess(Snapshot{})

	require.Len(t, alerts, 1)
	assert.Equal(t, "economic_risk", alerts[0].AlertType)
	assert.Equal(t, 3.0, alerts[0].RiskScore)
	assert.Equal(t, "active", alerts[0].Status)
}

func TestAssessWinterAddsWeatherAlert(t *testing.T) {
	alerts := fixedAssessor(time.January).Assess(Snapshot{})

	types := make([]string, 0, len(alerts))
	for _, a := range alerts {
		types = append(types, a.AlertType)
	}
	assert.Contains(t, types, "weather_risk")
}

func TestSupplierAlerts(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*domain.Supplier)
		expected bool
	}{
		{"healthy supplier", func(s *domain.Supplier) {}, false},
		{"single factor stays below threshold", func(s *domain.Supplier) {
			s.OnTimeRate = 70
		}, false},
		{"late and financially unstable", func(s *domain.Supplier) {
			s.OnTimeRate = 70
			s.FinancialStability = 0.4
		}, true},
		{"quality and geography", func(s *domain.Supplier) {
			s.QualityScore = 5
			s.GeographicRisk = 0.8
		}, true},
		{"inactive supplier skipped", func(s *domain.Supplier) {
			s.OnTimeRate = 10
			s.FinancialStability = 0.1
			s.IsActive = false
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := healthySupplier()
			tt.mutate(&s)

			alerts := supplierAlerts([]domain.Supplier{s})
			if !tt.expected {
				assert.Empty(t, alerts)
				return
			}

			require.Len(t, alerts, 1)
			alert := alerts[0]
			assert.Equal(t, "supplier_risk", alert.AlertType)
			assert.Equal(t, s.Name, alert.Entity)
			assert.NotEmpty(t, alert.Factors)
			assert.NotEmpty(t, alert.Recommendations)
			assert.LessOrEqual(t, alert.RiskScore, 10.0)
			assert.LessOrEqual(t, alert.Probability, 1.0)
		})
	}
}

func TestSupplierAlertScoring(t *testing.T) {
	s := healthySupplier()
	s.OnTimeRate = 70          // +0.3
	s.QualityScore = 5         // +0.2
	s.FinancialStability = 0.4 // +0.4
	s.GeographicRisk = 0.8     // +0.3

	alerts := supplierAlerts([]domain.Supplier{s})
	require.Len(t, alerts, 1)

	// Total factor score 1.2 saturates probability at 1.0.
	assert.InDelta(t, 1.0, alerts[0].Probability, 1e-9)
	assert.InDelta(t, 10.0, alerts[0].RiskScore, 1e-9)
	assert.Len(t, alerts[0].Factors, 4)
}

func TestDemandAlerts(t *testing.T) {
	products := []domain.Product{
		{
			ID:                 1,
			Name:               "Stable Item",
			CurrentStock:       500,
			DemandVolatility:   0.2,
			ForecastingEnabled: true,
		},
		{
			ID:                 2,
			Name:               "Volatile Item",
			CurrentStock:       500,
			DemandVolatility:   0.7,
			ForecastingEnabled: true,
		},
		{
			ID:                 3,
			Name:               "Short Item",
			CurrentStock:       40,
			DemandVolatility:   0.1,
			ForecastingEnabled: true,
		},
		{
			ID:                 4,
			Name:               "Unforecasted Item",
			CurrentStock:       0,
			DemandVolatility:   0.9,
			ForecastingEnabled: false,
		},
	}
	upcoming := map[int64]int{3: 120}

	alerts := demandAlerts(products, upcoming)
	require.Len(t, alerts, 2)

	byType := map[string]domain.RiskAlert{}
	for _, a := range alerts {
		byType[a.AlertType] = a
	}

	vol, ok := byType["demand_volatility"]
	require.True(t, ok)
	assert.Equal(t, "Volatile Item", vol.Entity)
	assert.InDelta(t, 0.7*5, vol.RiskScore, 1e-9)

	short, ok := byType["stock_shortage"]
	require.True(t, ok)
	assert.Equal(t, "Short Item", short.Entity)
	// 120 predicted over 40 on hand saturates the shortage ratio.
	assert.InDelta(t, 1.0, short.Probability, 1e-9)
	assert.InDelta(t, 8.0, short.RiskScore, 1e-9)
}

func TestLogisticsAlerts(t *testing.T) {
	t.Run("low savings", func(t *testing.T) {
		routes := []domain.RoutePlan{
			{CostSavingsPct: 2},
			{CostSavingsPct: 4},
		}
		alerts := logisticsAlerts(routes, nil)
		require.Len(t, alerts, 1)
		assert.Equal(t, "logistics_efficiency", alerts[0].AlertType)
	})

	t.Run("healthy savings", func(t *testing.T) {
		routes := []domain.RoutePlan{
			{CostSavingsPct: 12},
			{CostSavingsPct: 18},
		}
		assert.Empty(t, logisticsAlerts(routes, nil))
	})

	t.Run("difficult locations", func(t *testing.T) {
		locations := []domain.DeliveryLocation{
			{AccessDifficulty: 5, IsActive: true},
			{AccessDifficulty: 4, IsActive: true},
			{AccessDifficulty: 1, IsActive: true},
			{AccessDifficulty: 5, IsActive: false}, // inactive ignored
		}
		alerts := logisticsAlerts(nil, locations)
		require.Len(t, alerts, 1)
		assert.Equal(t, "delivery_difficulty", alerts[0].AlertType)
	})

	t.Run("few difficult locations", func(t *testing.T) {
		locations := []domain.DeliveryLocation{
			{AccessDifficulty: 5, IsActive: true},
			{AccessDifficulty: 1, IsActive: true},
			{AccessDifficulty: 1, IsActive: true},
			{AccessDifficulty: 2, IsActive: true},
		}
		assert.Empty(t, logisticsAlerts(nil, locations))
	})
}

func TestAssessSortsByRiskScore(t *testing.T) {
	bad := healthySupplier()
	bad.OnTimeRate = 70
	bad.FinancialStability = 0.4

	snap := Snapshot{
		Suppliers: []domain.Supplier{bad},
		Products: []domain.Product{
			{ID: 1, Name: "Volatile", DemandVolatility: 0.8, ForecastingEnabled: true, CurrentStock: 100},
		},
	}

	alerts := fixedAssessor(time.June).Assess(snap)
	require.NotEmpty(t, alerts)

	scores := make([]float64, len(alerts))
	for i, a := range alerts {
		scores[i] = a.RiskScore
	}
	assert.True(t, sort.SliceIsSorted(scores, func(i, j int) bool {
		return scores[i] > scores[j]
	}), "alerts must be sorted by risk score, highest first: %v", scores)
}

func TestCurrentSeason(t *testing.T) {
	assert.Equal(t, "winter", currentSeason(time.December))
	assert.Equal(t, "winter", currentSeason(time.February))
	assert.Equal(t, "spring", currentSeason(time.April))
	assert.Equal(t, "summer", currentSeason(time.July))
	assert.Equal(t, "autumn", currentSeason(time.October))
}

func TestPredictDisruption(t *testing.T) {
	a := NewAssessor()

	tests := []struct {
		riskType string
		horizon  int
		expected float64
	}{
		{"supplier_delay", 30, 0.15},
		{"supplier_delay", 15, 0.075},
		{"demand_spike", 60, 0.10}, // saturates at 30 days
		{"logistics_disruption", 30, 0.08},
		{"unknown_type", 30, 0.05},
	}

	for _, tt := range tests {
		t.Run(tt.riskType, func(t *testing.T) {
			est := a.PredictDisruption(tt.riskType, tt.horizon)
			assert.Equal(t, tt.riskType, est.RiskType)
			assert.Equal(t, tt.horizon, est.TimeHorizonDays)
			assert.InDelta(t, tt.expected, est.Probability, 1e-9)
			assert.Equal(t, 0.7, est.ConfidenceScore)
		})
	}

	known := a.PredictDisruption("supplier_delay", 30)
	assert.NotEmpty(t, known.Factors)
	unknown := a.PredictDisruption("unknown_type", 30)
	assert.Empty(t, unknown.Factors)
}
