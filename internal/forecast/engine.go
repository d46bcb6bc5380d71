// Package forecast implements the demand forecasting ensemble: a bagged
// forest, gradient-boosted trees and an OLS baseline combined by fixed
// weights. Training and prediction are separate phases; Train returns an
// explicit Model artifact the caller can cache and reuse.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

// MinTrainingPoints is the history size below which training is refused and
// callers must use the proportional fallback.
const MinTrainingPoints = 30

// ModelVersion identifies the current ensemble configuration.
const ModelVersion = "1.0"

const (
	memberForest = "random_forest"
	memberBoost  = "gradient_boost"
	memberLinear = "linear_regression"
)

var ensembleWeights = map[string]float64{
	memberForest: 0.4,
	memberBoost:  0.4,
	memberLinear: 0.2,
}

// ErrInsufficientHistory is returned by Train when fewer than
// MinTrainingPoints sales records are available.
var ErrInsufficientHistory = errors.New("insufficient sales history for training")

// Prediction is the result of a single demand forecast.
type Prediction struct {
	PredictedDemand  int            `json:"predicted_demand"`
	IntervalLower    int            `json:"confidence_interval_lower"`
	IntervalUpper    int            `json:"confidence_interval_upper"`
	ConfidenceScore  float64        `json:"confidence_score"`
	ModelPredictions map[string]int `json:"model_predictions"`
	SeasonalFactor   float64        `json:"seasonal_factor"`
	Algorithm        string         `json:"algorithm"`
}

// Model is a trained ensemble artifact.
type Model struct {
	Version        string
	TrainedAt      time.Time
	TrainingPoints int

	scaler  *standardScaler
	members map[string]regressor
}

// Engine trains forecasting models. The seed fixes the randomness in the
// forest and boosting members so repeated training runs are reproducible.
type Engine struct {
	seed int64
	now  func() time.Time
}

func NewEngine(seed int64) *Engine {
	return &Engine{seed: seed, now: time.Now}
}

// Train fits the three ensemble members on the product's sales history and
// returns the model artifact. History shorter than MinTrainingPoints yields
// ErrInsufficientHistory; callers should fall back to Fallback.
func (e *Engine) Train(product domain.Product, history []domain.SalesRecord) (*Model, error) {
	if len(history) < MinTrainingPoints {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientHistory, len(history), MinTrainingPoints)
	}

	X, y := trainingData(product, history)

	scaler := &standardScaler{}
	scaler.fit(X)
	scaled := scaler.transformAll(X)

	rng := rand.New(rand.NewSource(e.seed))
	members := map[string]regressor{
		memberForest: newForestRegressor(100, rng),
		memberBoost:  newBoostedRegressor(100, 0.1, rng),
		memberLinear: &linearRegressor{},
	}
	for name, m := range members {
		if err := m.fit(scaled, y); err != nil {
			return nil, fmt.Errorf("training %s: %w", name, err)
		}
	}

	return &Model{
		Version:        ModelVersion,
		TrainedAt:      e.now(),
		TrainingPoints: len(history),
		scaler:         scaler,
		members:        members,
	}, nil
}

// Predict runs the ensemble for a product/date pair. The confidence interval
// is the weighted prediction ± 1.96·stddev across the three member outputs,
// with the lower bound clamped at zero so it always brackets the prediction.
func (m *Model) Predict(product domain.Product, date time.Time, factors domain.ExternalFactors) Prediction {
	x := m.scaler.transform(featureVector(product, date, factors))

	predictions := make(map[string]int, len(m.members))
	for name, member := range m.members {
		p := member.predict(x)
		if p < 0 {
			p = 0
		}
		predictions[name] = int(p)
	}

	var ensemble float64
	for name, p := range predictions {
		ensemble += float64(p) * ensembleWeights[name]
	}

	variance := predictionVariance(predictions)
	interval := int(math.Sqrt(variance) * 1.96)

	demand := int(ensemble)
	confidence := 0.5
	if demand > 0 {
		confidence = 1.0 - variance/ensemble
		if confidence > 1 {
			confidence = 1
		}
		if confidence < 0 {
			confidence = 0
		}
	}

	lower := demand - interval
	if lower < 0 {
		lower = 0
	}

	return Prediction{
		PredictedDemand:  demand,
		IntervalLower:    lower,
		IntervalUpper:    demand + interval,
		ConfidenceScore:  confidence,
		ModelPredictions: predictions,
		SeasonalFactor:   product.SeasonalFactors.Factor(date.Month()),
		Algorithm:        "ensemble",
	}
}

// Fallback produces the proportional estimate used when no trained model is
// available: current stock spread over 30 days, scaled by the month's
// seasonal factor, with a fixed low confidence.
func Fallback(product domain.Product, date time.Time) Prediction {
	base := product.CurrentStock / 30
	if base < 1 {
		base = 1
	}
	seasonal := product.SeasonalFactors.Factor(date.Month())
	demand := int(float64(base) * seasonal)

	lower := int(float64(demand) * 0.8)
	if lower < 0 {
		lower = 0
	}

	return Prediction{
		PredictedDemand:  demand,
		IntervalLower:    lower,
		IntervalUpper:    int(float64(demand) * 1.2),
		ConfidenceScore:  0.5,
		ModelPredictions: map[string]int{"fallback": demand},
		SeasonalFactor:   seasonal,
		Algorithm:        "fallback",
	}
}

func predictionVariance(predictions map[string]int) float64 {
	if len(predictions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range predictions {
		sum += float64(p)
	}
	mean := sum / float64(len(predictions))

	var sq float64
	for _, p := range predictions {
		diff := float64(p) - mean
		sq += diff * diff
	}
	return sq / float64(len(predictions))
}
