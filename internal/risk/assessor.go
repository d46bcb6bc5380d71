// Package risk implements rule-based supply chain risk assessment over
// suppliers, demand patterns, logistics history and seasonal conditions.
package risk

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

// Snapshot is the data slice the assessor evaluates. Callers load it from the
// repositories; the assessor itself performs no I/O.
type Snapshot struct {
	Suppliers []domain.Supplier
	Products  []domain.Product

	// UpcomingDemand maps product ID to the summed predicted demand over the
	// next seven forecast days.
	UpcomingDemand map[int64]int

	// RecentRoutes are plans from the last thirty days.
	RecentRoutes []domain.RoutePlan
	Locations    []domain.DeliveryLocation
}

// DisruptionEstimate is the output of PredictDisruption.
type DisruptionEstimate struct {
	RiskType        string   `json:"risk_type"`
	TimeHorizonDays int      `json:"time_horizon_days"`
	Probability     float64  `json:"disruption_probability"`
	ConfidenceScore float64  `json:"confidence_score"`
	Factors         []string `json:"contributing_factors"`
}

// Assessor evaluates the rule set against a snapshot. The clock is injected
// for the seasonal rules.
type Assessor struct {
	now func() time.Time
}

func NewAssessor() *Assessor {
	return &Assessor{now: time.Now}
}

// Assess runs every rule category and returns alerts sorted by risk score,
// highest first. Scores are on a 0-10 scale, probabilities on 0-1.
func (a *Assessor) Assess(snap Snapshot) []domain.RiskAlert {
	var alerts []domain.RiskAlert

	alerts = append(alerts, supplierAlerts(snap.Suppliers)...)
	alerts = append(alerts, demandAlerts(snap.Products, snap.UpcomingDemand)...)
	alerts = append(alerts, logisticsAlerts(snap.RecentRoutes, snap.Locations)...)
	alerts = append(alerts, a.externalAlerts()...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return alerts[i].RiskScore > alerts[j].RiskScore
	})
	return alerts
}

// supplierAlerts scores each active supplier against delivery, quality,
// financial and geographic thresholds. Only suppliers accumulating a score
// above 0.3 are reported.
func supplierAlerts(suppliers []domain.Supplier) []domain.RiskAlert {
	var alerts []domain.RiskAlert

	for _, s := range suppliers {
		if !s.IsActive {
			continue
		}

		var factors domain.StringList
		score := 0.0

		if s.OnTimeRate < 80 {
			factors = append(factors, "Poor on-time delivery performance")
			score += 0.3
		}
		if s.QualityScore < 7.0 {
			factors = append(factors, "Quality issues")
			score += 0.2
		}
		if s.FinancialStability < 0.6 {
			factors = append(factors, "Financial instability")
			score += 0.4
		}
		if s.GeographicRisk > 0.5 {
			factors = append(factors, "High geographic risk")
			score += 0.3
		}

		if score <= 0.3 {
			continue
		}

		alerts = append(alerts, domain.RiskAlert{
			AlertType:       "supplier_risk",
			Title:           fmt.Sprintf("Supplier Risk: %s", s.Name),
			Description:     fmt.Sprintf("Multiple risk factors identified for supplier %s", s.Name),
			RiskScore:       math.Min(10, score*10),
			Probability:     math.Min(1.0, score),
			Entity:          s.Name,
			Factors:         factors,
			Recommendations: supplierRecommendations(factors),
			Status:          "active",
		})
	}
	return alerts
}

func supplierRecommendations(factors domain.StringList) domain.StringList {
	var recs domain.StringList
	for _, f := range factors {
		switch f {
		case "Poor on-time delivery performance":
			recs = append(recs, "Negotiate improved delivery SLAs", "Identify backup suppliers")
		case "Quality issues":
			recs = append(recs, "Implement additional quality checks", "Provide supplier quality training")
		case "Financial instability":
			recs = append(recs, "Monitor supplier financial health", "Secure payment terms protection")
		case "High geographic risk":
			recs = append(recs, "Diversify supplier geographic locations", "Develop local supplier alternatives")
		}
	}
	if len(recs) == 0 {
		recs = domain.StringList{"Monitor supplier performance closely"}
	}
	return recs
}

// demandAlerts covers volatility and near-term stock shortages.
func demandAlerts(products []domain.Product, upcoming map[int64]int) []domain.RiskAlert {
	var alerts []domain.RiskAlert

	for _, p := range products {
		if !p.ForecastingEnabled {
			continue
		}

		if p.DemandVolatility > 0.5 {
			alerts = append(alerts, domain.RiskAlert{
				AlertType:   "demand_volatility",
				Title:       fmt.Sprintf("High Demand Volatility: %s", p.Name),
				Description: fmt.Sprintf("Product %s shows high demand volatility", p.Name),
				RiskScore:   p.DemandVolatility * 5,
				Probability: p.DemandVolatility,
				Entity:      p.Name,
				Factors:     domain.StringList{"High demand volatility", "Unpredictable sales patterns"},
				Recommendations: domain.StringList{
					"Increase safety stock levels",
					"Implement more frequent forecasting",
					"Consider demand smoothing strategies",
				},
				Status: "active",
			})
		}

		predicted := upcoming[p.ID]
		if predicted > 0 && p.CurrentStock < predicted {
			shortage := math.Min(1.0, float64(predicted)/math.Max(1, float64(p.CurrentStock)))
			alerts = append(alerts, domain.RiskAlert{
				AlertType:   "stock_shortage",
				Title:       fmt.Sprintf("Potential Stock Shortage: %s", p.Name),
				Description: "Current stock may not meet predicted demand",
				RiskScore:   shortage * 8,
				Probability: shortage,
				Entity:      p.Name,
				Factors:     domain.StringList{"Low current stock", "High predicted demand"},
				Recommendations: domain.StringList{
					"Immediate reordering required",
					"Expedite supplier delivery",
					"Consider substitute products",
				},
				Status: "active",
			})
		}
	}
	return alerts
}

func logisticsAlerts(routes []domain.RoutePlan, locations []domain.DeliveryLocation) []domain.RiskAlert {
	var alerts []domain.RiskAlert

	if len(routes) > 0 {
		var totalSavings float64
		for _, r := range routes {
			totalSavings += r.CostSavingsPct
		}
		if totalSavings/float64(len(routes)) < 5 {
			alerts = append(alerts, domain.RiskAlert{
				AlertType:   "logistics_efficiency",
				Title:       "Low Logistics Efficiency",
				Description: "Route optimization showing minimal cost savings",
				RiskScore:   6.0,
				Probability: 0.7,
				Entity:      "Logistics Operations",
				Factors:     domain.StringList{"Low route optimization savings", "Inefficient delivery patterns"},
				Recommendations: domain.StringList{
					"Review route optimization algorithms",
					"Analyze delivery location clustering",
					"Consider delivery time window adjustments",
				},
				Status: "active",
			})
		}
	}

	active, difficult := 0, 0
	for _, l := range locations {
		if !l.IsActive {
			continue
		}
		active++
		if l.AccessDifficulty >= 4 {
			difficult++
		}
	}
	if active > 0 && float64(difficult) > float64(active)*0.3 {
		alerts = append(alerts, domain.RiskAlert{
			AlertType:   "delivery_difficulty",
			Title:       "High Delivery Difficulty Locations",
			Description: "Many delivery locations have high access difficulty",
			RiskScore:   5.0,
			Probability: 0.8,
			Entity:      "Delivery Operations",
			Factors:     domain.StringList{"High access difficulty scores", "Delivery delays"},
			Recommendations: domain.StringList{
				"Negotiate alternative delivery points",
				"Increase delivery time allowances",
				"Consider specialized delivery equipment",
			},
			Status: "active",
		})
	}
	return alerts
}

// externalAlerts covers seasonal weather and the standing economic watch item.
func (a *Assessor) externalAlerts() []domain.RiskAlert {
	var alerts []domain.RiskAlert

	season := currentSeason(a.now().Month())
	if season == "winter" {
		alerts = append(alerts, domain.RiskAlert{
			AlertType:   "weather_risk",
			Title:       "Seasonal Weather Risk (Winter)",
			Description: "Increased delivery delays expected during winter",
			RiskScore:   4.0,
			Probability: 0.6,
			Entity:      "Delivery Operations",
			Factors:     domain.StringList{"Seasonal weather patterns", "Historical delivery delays"},
			Recommendations: domain.StringList{
				"Increase delivery time buffers",
				"Prepare alternative routes",
				"Stock up critical items",
			},
			Status: "active",
		})
	}

	alerts = append(alerts, domain.RiskAlert{
		AlertType:   "economic_risk",
		Title:       "Economic Uncertainty",
		Description: "General economic conditions may affect supply chain",
		RiskScore:   3.0,
		Probability: 0.4,
		Entity:      "Overall Supply Chain",
		Factors:     domain.StringList{"Market volatility", "Economic indicators"},
		Recommendations: domain.StringList{
			"Monitor economic indicators",
			"Diversify supplier base",
			"Maintain flexible inventory levels",
		},
		Status: "active",
	})
	return alerts
}

func currentSeason(month time.Month) string {
	switch month {
	case time.December, time.January, time.February:
		return "winter"
	case time.March, time.April, time.May:
		return "spring"
	case time.June, time.July, time.August:
		return "summer"
	default:
		return "autumn"
	}
}

var baseDisruptionProbabilities = map[string]float64{
	"supplier_delay":       0.15,
	"demand_spike":         0.10,
	"logistics_disruption": 0.08,
	"quality_issue":        0.05,
	"external_event":       0.03,
}

var disruptionFactors = map[string][]string{
	"supplier_delay": {
		"Historical delivery performance",
		"Supplier capacity utilization",
		"Geographic location risks",
	},
	"demand_spike": {
		"Seasonal patterns",
		"Market trends",
		"Economic indicators",
	},
	"logistics_disruption": {
		"Weather conditions",
		"Route complexity",
		"Transportation capacity",
	},
	"quality_issue": {
		"Supplier quality scores",
		"Historical defect rates",
		"Process changes",
	},
	"external_event": {
		"Economic conditions",
		"Political stability",
		"Natural disaster risk",
	},
}

// PredictDisruption scales a base per-type probability by the time horizon,
// saturating at 30 days.
func (a *Assessor) PredictDisruption(riskType string, horizonDays int) DisruptionEstimate {
	base, ok := baseDisruptionProbabilities[riskType]
	if !ok {
		base = 0.05
	}
	timeFactor := math.Min(1.0, float64(horizonDays)/30)

	return DisruptionEstimate{
		RiskType:        riskType,
		TimeHorizonDays: horizonDays,
		Probability:     base * timeFactor,
		ConfidenceScore: 0.7,
		Factors:         disruptionFactors[riskType],
	}
}
