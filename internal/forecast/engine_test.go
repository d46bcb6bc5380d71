package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/chainopt/internal/domain"
)

func testProduct() domain.Product {
	return domain.Product{
		ID:           1,
		Name:         "Sparkling Water 500ml",
		CurrentPrice: 12.5,
		CurrentStock: 300,
		SeasonalFactors: domain.SeasonalFactors{
			6: 1.3,
			7: 1.3,
			1: 0.8,
		},
	}
}

// testHistory builds a deterministic weekly demand pattern long enough to train on.
func testHistory(days int) []domain.SalesRecord {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	records := make([]domain.SalesRecord, 0, days)
	for i := 0; i < days; i++ {
		day := start.AddDate(0, 0, i)
		qty := 20 + int(day.Weekday())*3
		records = append(records, domain.SalesRecord{
			ProductID: 1,
			SoldOn:    day,
			Quantity:  qty,
			Price:     12.5,
		})
	}
	return records
}

func TestTrainRejectsShortHistory(t *testing.T) {
	engine := NewEngine(1)

	_, err := engine.Train(testProduct(), testHistory(MinTrainingPoints-1))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestTrainAndPredict(t *testing.T) {
	engine := NewEngine(1)
	product := testProduct()

	model, err := engine.Train(product, testHistory(90))
	require.NoError(t, err)
	assert.Equal(t, ModelVersion, model.Version)
	assert.Equal(t, 90, model.TrainingPoints)

	date := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	pred := model.Predict(product, date, domain.ExternalFactors{})

	assert.Equal(t, "ensemble", pred.Algorithm)
	assert.GreaterOrEqual(t, pred.PredictedDemand, 0)
	assert.LessOrEqual(t, pred.IntervalLower, pred.PredictedDemand)
	assert.GreaterOrEqual(t, pred.IntervalUpper, pred.PredictedDemand)
	assert.GreaterOrEqual(t, pred.ConfidenceScore, 0.0)
	assert.LessOrEqual(t, pred.ConfidenceScore, 1.0)
	assert.Len(t, pred.ModelPredictions, 3)
	assert.InDelta(t, 1.3, pred.SeasonalFactor, 1e-9)

	// Demand in the trained range, not wildly off the 20-38 target band.
	assert.Greater(t, pred.PredictedDemand, 5)
	assert.Less(t, pred.PredictedDemand, 80)
}

func TestTrainIsDeterministicUnderSeed(t *testing.T) {
	product := testProduct()
	history := testHistory(90)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	m1, err := NewEngine(7).Train(product, history)
	require.NoError(t, err)
	m2, err := NewEngine(7).Train(product, history)
	require.NoError(t, err)

	p1 := m1.Predict(product, date, domain.ExternalFactors{})
	p2 := m2.Predict(product, date, domain.ExternalFactors{})
	assert.Equal(t, p1, p2)
}

func TestFallback(t *testing.T) {
	product := testProduct()
	product.CurrentStock = 90 // base of 3 per day

	june := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	pred := Fallback(product, june)

	assert.Equal(t, "fallback", pred.Algorithm)
	assert.Equal(t, 3, pred.ModelPredictions["fallback"]) // 3 * 1.3 truncated
	assert.Equal(t, 3, pred.PredictedDemand)
	assert.Equal(t, 0.5, pred.ConfidenceScore)
	assert.InDelta(t, 1.3, pred.SeasonalFactor, 1e-9)
	assert.LessOrEqual(t, pred.IntervalLower, pred.PredictedDemand)
	assert.GreaterOrEqual(t, pred.IntervalUpper, pred.PredictedDemand)
}

func TestFallbackZeroStock(t *testing.T) {
	product := testProduct()
	product.CurrentStock = 0

	pred := Fallback(product, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	// Base demand never drops below one unit per day.
	assert.Equal(t, 1, pred.PredictedDemand)
	assert.GreaterOrEqual(t, pred.IntervalLower, 0)
}

func TestPredictionVariance(t *testing.T) {
	assert.Equal(t, 0.0, predictionVariance(nil))
	assert.Equal(t, 0.0, predictionVariance(map[string]int{"a": 5, "b": 5}))

	v := predictionVariance(map[string]int{"a": 2, "b": 4, "c": 6})
	assert.InDelta(t, 8.0/3.0, v, 1e-9)
}

func TestFeatureVectorDefaults(t *testing.T) {
	product := testProduct()
	date := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	x := featureVector(product, date, domain.ExternalFactors{})
	require.Len(t, x, featureCount)

	assert.Equal(t, 7.0, x[0])                              // month
	assert.Equal(t, float64(time.Friday), x[2])             // weekday
	assert.Equal(t, product.CurrentPrice, x[3])             // price defaults to current
	assert.InDelta(t, product.CurrentPrice*1.1, x[6], 1e-9) // competitor default
	assert.Equal(t, 1.0, x[7])                              // economic default
	assert.InDelta(t, 1.3, x[9], 1e-9)                      // seasonal
}

func TestFeatureVectorOverrides(t *testing.T) {
	product := testProduct()
	date := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)

	price := 9.99
	promo := true
	competitor := 11.0
	x := featureVector(product, date, domain.ExternalFactors{
		Price:           &price,
		Promotion:       &promo,
		CompetitorPrice: &competitor,
	})

	assert.Equal(t, price, x[3])
	assert.Equal(t, 1.0, x[5])
	assert.Equal(t, competitor, x[6])
}

func TestTrainingDataTargets(t *testing.T) {
	history := testHistory(35)
	X, y := trainingData(testProduct(), history)

	require.Len(t, X, len(history))
	require.Len(t, y, len(history))
	for i, rec := range history {
		assert.Equal(t, float64(rec.Quantity), y[i])
		assert.Len(t, X[i], featureCount)
	}
}

func TestPredictLowerBoundNeverNegative(t *testing.T) {
	engine := NewEngine(3)
	product := testProduct()

	// Near-zero demand history pushes the prediction toward zero where the
	// interval would otherwise cross below it.
	history := testHistory(60)
	for i := range history {
		history[i].Quantity = i % 2
	}

	model, err := engine.Train(product, history)
	require.NoError(t, err)

	pred := model.Predict(product, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), domain.ExternalFactors{})
	assert.GreaterOrEqual(t, pred.IntervalLower, 0)
	assert.False(t, math.IsNaN(pred.ConfidenceScore))
}
