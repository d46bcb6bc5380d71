package forecast

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardScaler(t *testing.T) {
	X := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
	}

	s := &standardScaler{}
	s.fit(X)
	scaled := s.transformAll(X)

	for j := 0; j < 2; j++ {
		var sum float64
		for i := range scaled {
			sum += scaled[i][j]
		}
		assert.InDelta(t, 0, sum/3, 1e-9, "column %d should be centered", j)
	}

	// Middle row sits exactly at the mean.
	assert.InDelta(t, 0, scaled[1][0], 1e-9)
	assert.InDelta(t, 0, scaled[1][1], 1e-9)
}

func TestStandardScalerConstantColumn(t *testing.T) {
	X := [][]float64{{5, 1}, {5, 2}, {5, 3}}

	s := &standardScaler{}
	s.fit(X)

	// Zero-variance columns transform to zero instead of dividing by zero.
	out := s.transform([]float64{5, 2})
	assert.Equal(t, 0.0, out[0])
}

func TestLinearRegressorRecoversCoefficients(t *testing.T) {
	// y = 2*x1 - 3*x2 + 5
	rng := rand.New(rand.NewSource(1))
	var X [][]float64
	var y []float64
	for i := 0; i < 50; i++ {
		x1 := rng.Float64() * 10
		x2 := rng.Float64() * 10
		X = append(X, []float64{x1, x2})
		y = append(y, 2*x1-3*x2+5)
	}

	r := &linearRegressor{}
	require.NoError(t, r.fit(X, y))

	assert.InDelta(t, 13.0, r.predict([]float64{6, 1}), 1e-3)
	assert.InDelta(t, 5.0, r.predict([]float64{0, 0}), 1e-3)
}

func TestLinearRegressorRejectsMismatchedInput(t *testing.T) {
	r := &linearRegressor{}
	assert.Error(t, r.fit(nil, nil))
	assert.Error(t, r.fit([][]float64{{1}}, []float64{1, 2}))
}

func TestSolveLinearSystem(t *testing.T) {
	// 2x + y = 5, x - y = 1  =>  x = 2, y = 1
	a := [][]float64{{2, 1}, {1, -1}}
	b := []float64{5, 1}

	w, err := solveLinearSystem(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 2, w[0], 1e-9)
	assert.InDelta(t, 1, w[1], 1e-9)
}

func TestSolveLinearSystemSingular(t *testing.T) {
	a := [][]float64{{1, 1}, {2, 2}}
	b := []float64{1, 2}

	_, err := solveLinearSystem(a, b)
	assert.Error(t, err)
}

func TestForestRegressorFitsStepFunction(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		v := float64(i)
		X = append(X, []float64{v})
		if v < 20 {
			y = append(y, 10)
		} else {
			y = append(y, 50)
		}
	}

	f := newForestRegressor(50, rand.New(rand.NewSource(2)))
	require.NoError(t, f.fit(X, y))

	assert.InDelta(t, 10, f.predict([]float64{5}), 8)
	assert.InDelta(t, 50, f.predict([]float64{35}), 8)
}

func TestForestRegressorEmptyInput(t *testing.T) {
	f := newForestRegressor(10, rand.New(rand.NewSource(2)))
	assert.Error(t, f.fit(nil, nil))
	assert.Equal(t, 0.0, f.predict([]float64{1}))
}

func TestBoostedRegressorReducesResiduals(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 40; i++ {
		v := float64(i)
		X = append(X, []float64{v})
		y = append(y, 3*v+2)
	}

	b := newBoostedRegressor(100, 0.1, rand.New(rand.NewSource(3)))
	require.NoError(t, b.fit(X, y))

	// Inside the training range boosting should track the trend closely.
	assert.InDelta(t, 3*15+2, b.predict([]float64{15}), 10)
	assert.InDelta(t, 3*30+2, b.predict([]float64{30}), 10)
}

func TestMeanAt(t *testing.T) {
	y := []float64{1, 2, 3, 4}
	assert.Equal(t, 0.0, meanAt(y, nil))
	assert.Equal(t, 2.5, meanAt(y, []int{0, 1, 2, 3}))
	assert.Equal(t, 4.0, meanAt(y, []int{3}))
}
