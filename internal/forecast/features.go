package forecast

import (
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

// featureCount is the fixed width of the demand feature vector: month, ISO
// week, weekday, price, stock level, promotion flag, competitor price,
// economic indicator, weather factor, seasonal factor.
const featureCount = 10

func featureVector(p domain.Product, date time.Time, f domain.ExternalFactors) []float64 {
	_, week := date.ISOWeek()

	price := p.CurrentPrice
	if f.Price != nil {
		price = *f.Price
	}
	stock := float64(p.CurrentStock)
	if f.StockLevel != nil {
		stock = *f.StockLevel
	}
	promo := 0.0
	if f.Promotion != nil && *f.Promotion {
		promo = 1.0
	}
	competitor := p.CurrentPrice * 1.1
	if f.CompetitorPrice != nil {
		competitor = *f.CompetitorPrice
	}
	economic := 1.0
	if f.EconomicIndicator != nil {
		economic = *f.EconomicIndicator
	}
	weather := 1.0
	if f.WeatherFactor != nil {
		weather = *f.WeatherFactor
	}

	return []float64{
		float64(date.Month()),
		float64(week),
		float64(date.Weekday()),
		price,
		stock,
		promo,
		competitor,
		economic,
		weather,
		p.SeasonalFactors.Factor(date.Month()),
	}
}

// trainingData converts sales history into feature rows and demand targets.
// Stock level is not recorded per sale, so the product's current stock stands
// in for it on every row.
func trainingData(p domain.Product, history []domain.SalesRecord) ([][]float64, []float64) {
	X := make([][]float64, 0, len(history))
	y := make([]float64, 0, len(history))

	for _, rec := range history {
		_, week := rec.SoldOn.ISOWeek()
		promo := 0.0
		if rec.Promotion {
			promo = 1.0
		}
		competitor := rec.CompetitorPrice
		if competitor == 0 {
			competitor = p.CurrentPrice * 1.1
		}
		economic := rec.EconomicIndex
		if economic == 0 {
			economic = 1.0
		}
		weather := rec.WeatherFactor
		if weather == 0 {
			weather = 1.0
		}

		X = append(X, []float64{
			float64(rec.SoldOn.Month()),
			float64(week),
			float64(rec.SoldOn.Weekday()),
			rec.Price,
			float64(p.CurrentStock),
			promo,
			competitor,
			economic,
			weather,
			p.SeasonalFactors.Factor(rec.SoldOn.Month()),
		})
		y = append(y, float64(rec.Quantity))
	}

	return X, y
}
