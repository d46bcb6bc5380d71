// Package pricing computes price recommendations from bounded inventory,
// demand, competition and seasonality factors combined by configured weights.
// No learning is involved; the strategy label is a rule-based classification.
package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

// Config carries the advisor's tunable weights and bounds, passed explicitly
// per call site instead of read from shared state.
type Config struct {
	MinProfitMarginPct    float64
	MaxPriceAdjustmentPct float64
	InventoryWeight       float64
	MarketWeight          float64
	CompetitorWeight      float64
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinProfitMarginPct:    15.0,
		MaxPriceAdjustmentPct: 20.0,
		InventoryWeight:       0.3,
		MarketWeight:          0.4,
		CompetitorWeight:      0.3,
	}
}

// Factors is the breakdown behind a recommendation.
type Factors struct {
	Inventory   float64 `json:"inventory_factor"`
	Demand      float64 `json:"demand_factor"`
	Competition float64 `json:"competition_factor"`
	Seasonality float64 `json:"seasonality_factor"`
}

// Recommendation is the advisor's output.
type Recommendation struct {
	RecommendedPrice      float64 `json:"recommended_price"`
	PriceChangePct        float64 `json:"price_change_percentage"`
	Strategy              string  `json:"pricing_strategy"`
	Factors               Factors `json:"factors"`
	ExpectedDemandChange  float64 `json:"expected_demand_change"`
	ExpectedRevenueImpact float64 `json:"expected_revenue_impact"`
	ConfidenceScore       float64 `json:"confidence_score"`
}

// ErrPricingDisabled is returned for products with dynamic pricing switched off.
var ErrPricingDisabled = errors.New("dynamic pricing is not enabled for this product")

// Advisor computes recommendations under a fixed configuration.
type Advisor struct {
	cfg Config
}

func NewAdvisor(cfg Config) *Advisor {
	return &Advisor{cfg: cfg}
}

// Recommend computes the optimal price for the product at the given time.
// The result always lies within [product.MinPrice, product.MaxPrice] and
// above the configured margin floor over base cost.
func (a *Advisor) Recommend(product domain.Product, market domain.MarketConditions, asOf time.Time) Recommendation {
	inventory := inventoryFactor(product.CurrentStock, product.ReorderLevel, product.MaxStockLevel)
	demand := a.demandFactor(product, market, asOf)
	competition := competitionFactor(product.CurrentPrice, market.CompetitorAvgPrice)
	seasonality := product.SeasonalFactors.Factor(asOf.Month())

	total := (a.cfg.InventoryWeight*inventory +
		a.cfg.MarketWeight*demand +
		a.cfg.CompetitorWeight*competition) * seasonality

	maxAdjustment := a.cfg.MaxPriceAdjustmentPct / 100
	adjustment := clamp(total-1.0, -maxAdjustment, maxAdjustment)

	price := product.CurrentPrice * (1 + adjustment)

	// Margin floor over cost, then the product's own bounds.
	floor := product.BaseCost * (1 + a.cfg.MinProfitMarginPct/100)
	if price < floor {
		price = floor
	}
	price = clamp(price, product.MinPrice, product.MaxPrice)

	demandChange := demandElasticity(product.DemandVolatility, adjustment)

	return Recommendation{
		RecommendedPrice:      round2(price),
		PriceChangePct:        round2(adjustment * 100),
		Strategy:              classifyStrategy(inventory, demand, competition),
		Factors: Factors{
			Inventory:   round3(inventory),
			Demand:      round3(demand),
			Competition: round3(competition),
			Seasonality: round3(seasonality),
		},
		ExpectedDemandChange:  round2(demandChange),
		ExpectedRevenueImpact: round2(revenueImpact(product.CurrentPrice, price, demandChange)),
		ConfidenceScore:       confidence(market),
	}
}

// Maintain is the deterministic fallback when a recommendation cannot be
// computed: keep the current price.
func Maintain(product domain.Product) Recommendation {
	return Recommendation{
		RecommendedPrice: product.CurrentPrice,
		Strategy:         "maintain",
		Factors:          Factors{Inventory: 1.0, Demand: 1.0, Competition: 1.0, Seasonality: 1.0},
		ConfidenceScore:  0.3,
	}
}

// inventoryFactor maps the stock-to-reorder ratio onto [0.8, 1.2]: scarce
// stock pushes prices up, surplus pushes them down. At stock == reorder the
// factor is exactly 1.2.
func inventoryFactor(stock, reorderLevel, maxStock int) float64 {
	if maxStock <= reorderLevel {
		return 1.0
	}
	ratio := float64(stock-reorderLevel) / float64(maxStock-reorderLevel)
	ratio = clamp(ratio, 0, 1)
	return 1.2 - ratio*0.4
}

func (a *Advisor) demandFactor(product domain.Product, market domain.MarketConditions, asOf time.Time) float64 {
	trend := 1.0
	if market.DemandTrend != nil {
		trend = *market.DemandTrend
	}
	return trend * product.SeasonalFactors.Factor(asOf.Month())
}

func competitionFactor(currentPrice float64, competitorAvg *float64) float64 {
	if competitorAvg == nil || *competitorAvg <= 0 {
		return 1.0
	}
	return 0.8 + (currentPrice / *competitorAvg * 0.4)
}

func classifyStrategy(inventory, demand, competition float64) string {
	switch {
	case inventory > 1.1:
		return "inventory_based"
	case demand > 1.2:
		return "demand_based"
	case competition < 0.9:
		return "competitive"
	case demand < 0.8:
		return "penetration"
	default:
		return "premium"
	}
}

// demandElasticity estimates the demand change (%) for a price adjustment,
// using demand volatility as a stand-in for elasticity.
func demandElasticity(volatility, adjustment float64) float64 {
	return volatility * -2.0 * adjustment * 100
}

func revenueImpact(oldPrice, newPrice, demandChange float64) float64 {
	if oldPrice == 0 {
		return 0
	}
	priceChangePct := (newPrice - oldPrice) / oldPrice
	return (priceChangePct + demandChange/100) * 100
}

func confidence(market domain.MarketConditions) float64 {
	const dataQuality = 0.8

	stability := 0.7
	if market.MarketStability != nil {
		stability = *market.MarketStability
	}

	competitorQuality := 0.4
	if market.CompetitorAvgPrice != nil {
		competitorQuality = 0.6
	}

	return (dataQuality + stability + competitorQuality) / 3
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
