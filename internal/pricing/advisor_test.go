package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/chainopt/internal/domain"
)

var june = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func baseProduct() domain.Product {
	return domain.Product{
		Name:          "Cold Brew Concentrate",
		BaseCost:      10,
		CurrentPrice:  20,
		MinPrice:      14,
		MaxPrice:      30,
		CurrentStock:  500,
		ReorderLevel:  100,
		MaxStockLevel: 1000,
	}
}

func f64(v float64) *float64 { return &v }

func TestRecommendStaysWithinBounds(t *testing.T) {
	advisor := NewAdvisor(DefaultConfig())

	products := []domain.Product{
		baseProduct(),
		func() domain.Product {
			p := baseProduct()
			p.CurrentStock = 0 // scarcity pushes price up
			return p
		}(),
		func() domain.Product {
			p := baseProduct()
			p.CurrentStock = 2000 // surplus pushes price down
			return p
		}(),
		func() domain.Product {
			p := baseProduct()
			p.SeasonalFactors = domain.SeasonalFactors{6: 1.8}
			return p
		}(),
	}

	for _, p := range products {
		rec := advisor.Recommend(p, domain.MarketConditions{}, june)
		assert.GreaterOrEqual(t, rec.RecommendedPrice, p.MinPrice)
		assert.LessOrEqual(t, rec.RecommendedPrice, p.MaxPrice)
		assert.GreaterOrEqual(t, rec.RecommendedPrice, p.BaseCost*1.15)
	}
}

func TestRecommendCapsAdjustment(t *testing.T) {
	advisor := NewAdvisor(DefaultConfig())

	p := baseProduct()
	p.MaxPrice = 100
	p.SeasonalFactors = domain.SeasonalFactors{6: 3.0} // extreme demand season

	rec := advisor.Recommend(p, domain.MarketConditions{}, june)

	// The +-20% cap binds before the seasonal multiplier can run away.
	assert.InDelta(t, 20.0, rec.PriceChangePct, 1e-9)
	assert.InDelta(t, 24.0, rec.RecommendedPrice, 1e-9)
}

func TestInventoryFactor(t *testing.T) {
	tests := []struct {
		name           string
		stock, reorder int
		maxStock       int
		expected       float64
	}{
		{"at reorder level", 100, 100, 1000, 1.2},
		{"below reorder level", 10, 100, 1000, 1.2},
		{"at max stock", 1000, 100, 1000, 0.8},
		{"above max stock", 5000, 100, 1000, 0.8},
		{"midpoint", 550, 100, 1000, 1.0},
		{"degenerate levels", 50, 100, 100, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, inventoryFactor(tt.stock, tt.reorder, tt.maxStock), 1e-9)
		})
	}
}

func TestCompetitionFactor(t *testing.T) {
	assert.Equal(t, 1.0, competitionFactor(20, nil))
	assert.Equal(t, 1.0, competitionFactor(20, f64(0)))
	// Priced at parity with competitors.
	assert.InDelta(t, 1.2, competitionFactor(20, f64(20)), 1e-9)
	// Priced well below competitors.
	assert.InDelta(t, 1.0, competitionFactor(10, f64(20)), 1e-9)
}

func TestClassifyStrategy(t *testing.T) {
	tests := []struct {
		name                           string
		inventory, demand, competition float64
		expected                       string
	}{
		{"scarce stock wins", 1.2, 1.5, 0.8, "inventory_based"},
		{"hot demand", 1.0, 1.3, 0.8, "demand_based"},
		{"undercut competitors", 1.0, 1.0, 0.85, "competitive"},
		{"weak demand", 1.0, 0.7, 1.0, "penetration"},
		{"default", 1.0, 1.0, 1.0, "premium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyStrategy(tt.inventory, tt.demand, tt.competition))
		})
	}
}

func TestRecommendMarginFloor(t *testing.T) {
	advisor := NewAdvisor(DefaultConfig())

	p := baseProduct()
	p.BaseCost = 18
	p.CurrentPrice = 15 // selling below a sustainable margin
	p.MinPrice = 5
	p.MaxPrice = 50
	p.CurrentStock = 2000 // surplus would push the price even lower

	rec := advisor.Recommend(p, domain.MarketConditions{}, june)

	// 18 * 1.15 margin floor overrides the downward adjustment.
	assert.InDelta(t, 20.7, rec.RecommendedPrice, 1e-9)
}

func TestRecommendConfidence(t *testing.T) {
	advisor := NewAdvisor(DefaultConfig())
	p := baseProduct()

	withoutMarket := advisor.Recommend(p, domain.MarketConditions{}, june)
	withMarket := advisor.Recommend(p, domain.MarketConditions{
		CompetitorAvgPrice: f64(21),
		MarketStability:    f64(0.9),
	}, june)

	assert.InDelta(t, (0.8+0.7+0.4)/3, withoutMarket.ConfidenceScore, 1e-9)
	assert.InDelta(t, (0.8+0.9+0.6)/3, withMarket.ConfidenceScore, 1e-9)
	assert.Greater(t, withMarket.ConfidenceScore, withoutMarket.ConfidenceScore)
}

func TestDemandElasticity(t *testing.T) {
	// A 10% increase on a volatile product loses demand.
	assert.InDelta(t, -8.0, demandElasticity(0.4, 0.1), 1e-9)
	// Price cuts gain demand.
	assert.InDelta(t, 8.0, demandElasticity(0.4, -0.1), 1e-9)
	assert.Equal(t, 0.0, demandElasticity(0, 0.1))
}

func TestMaintain(t *testing.T) {
	p := baseProduct()
	rec := Maintain(p)

	assert.Equal(t, p.CurrentPrice, rec.RecommendedPrice)
	assert.Equal(t, "maintain", rec.Strategy)
	assert.Equal(t, 0.3, rec.ConfidenceScore)
	assert.Equal(t, Factors{Inventory: 1, Demand: 1, Competition: 1, Seasonality: 1}, rec.Factors)
}
