package routing

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/chainopt/internal/domain"
)

var testCosts = CostParams{FuelCostPerKm: 1.5, DriverCostPerHour: 25}

func location(name string, lat, lon float64) domain.DeliveryLocation {
	return domain.DeliveryLocation{Name: name, Latitude: lat, Longitude: lon, IsActive: true}
}

// jakartaStops spreads n stops around the depot coordinates.
func jakartaStops(n int) []domain.DeliveryLocation {
	rng := rand.New(rand.NewSource(99))
	stops := make([]domain.DeliveryLocation, 0, n)
	for i := 0; i < n; i++ {
		stops = append(stops, location(
			"stop",
			-6.2+rng.Float64()*0.3,
			106.8+rng.Float64()*0.3,
		))
	}
	return stops
}

func assertPermutation(t *testing.T, order []int, n int) {
	t.Helper()
	require.Len(t, order, n)
	require.Equal(t, 0, order[0], "depot must come first")
	seen := make(map[int]bool, n)
	for _, v := range order {
		assert.False(t, seen[v], "index %d repeated", v)
		seen[v] = true
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, n)
	}
}

func TestHaversine(t *testing.T) {
	// One degree of longitude at the equator is about 111.19 km.
	assert.InDelta(t, 111.19, Haversine(0, 0, 0, 1), 0.5)

	// Jakarta to Surabaya is roughly 660 km.
	assert.InDelta(t, 660, Haversine(-6.2088, 106.8456, -7.2575, 112.7521), 30)

	assert.Equal(t, 0.0, Haversine(-6.2, 106.8, -6.2, 106.8))
}

func TestOptimizeRequiresStops(t *testing.T) {
	o := NewOptimizer(testCosts, nil)

	_, err := o.Optimize(context.Background(), location("depot", -6.2, 106.8), nil)
	assert.ErrorIs(t, err, ErrNoStops)
}

func TestOptimizeSmallUsesNearestNeighbor(t *testing.T) {
	o := NewOptimizer(testCosts, nil)
	depot := location("depot", -6.2088, 106.8456)

	result, err := o.Optimize(context.Background(), depot, jakartaStops(4))
	require.NoError(t, err)

	assert.Equal(t, "nearest_neighbor", result.Algorithm)
	assertPermutation(t, result.Order, 5)
	assert.Greater(t, result.TotalDistanceKm, 0.0)
	assert.Greater(t, result.TotalTimeHours, 0.0)
	assert.Len(t, result.Legs, 4)
	assert.InDelta(t, result.FuelCost+result.DriverCost, result.TotalCost, 0.02)
	assert.GreaterOrEqual(t, result.CostSavingsPct, 0.0)
}

func TestOptimizeLargeUsesGeneticAlgorithm(t *testing.T) {
	o := NewOptimizer(testCosts, rand.New(rand.NewSource(5)))
	depot := location("depot", -6.2088, 106.8456)

	result, err := o.Optimize(context.Background(), depot, jakartaStops(15))
	require.NoError(t, err)

	assert.Equal(t, "genetic_algorithm", result.Algorithm)
	assertPermutation(t, result.Order, 16)
	assert.Len(t, result.Legs, 15)
}

func TestOptimizeIsDeterministicUnderSeed(t *testing.T) {
	depot := location("depot", -6.2088, 106.8456)
	stops := jakartaStops(15)

	r1, err := NewOptimizer(testCosts, rand.New(rand.NewSource(11))).
		Optimize(context.Background(), depot, stops)
	require.NoError(t, err)
	r2, err := NewOptimizer(testCosts, rand.New(rand.NewSource(11))).
		Optimize(context.Background(), depot, stops)
	require.NoError(t, err)

	assert.Equal(t, r1.Order, r2.Order)
	assert.Equal(t, r1.TotalDistanceKm, r2.TotalDistanceKm)
}

func TestOptimizeHonorsCancellation(t *testing.T) {
	o := NewOptimizer(testCosts, rand.New(rand.NewSource(5)))
	depot := location("depot", -6.2088, 106.8456)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Optimize(ctx, depot, jakartaStops(15))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptimizeSingleStop(t *testing.T) {
	o := NewOptimizer(testCosts, nil)
	depot := location("depot", -6.2088, 106.8456)
	stop := location("store", -6.3, 106.9)

	result, err := o.Optimize(context.Background(), depot, []domain.DeliveryLocation{stop})
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1}, result.Order)
	// The only possible route matches the naive baseline exactly.
	assert.Equal(t, 0.0, result.CostSavingsPct)
}

func TestGeneticAlgorithmBeatsOrNaiveBaseline(t *testing.T) {
	o := NewOptimizer(testCosts, rand.New(rand.NewSource(7)))
	depot := location("depot", -6.2088, 106.8456)
	stops := jakartaStops(20)

	all := append([]domain.DeliveryLocation{depot}, stops...)
	matrix := distanceMatrix(all)
	naive := naiveCycleDistance(matrix)

	result, err := o.Optimize(context.Background(), depot, stops)
	require.NoError(t, err)

	optimized := result.TotalDistanceKm
	assert.LessOrEqual(t, optimized, naive+0.01, "optimized route must not be worse than visiting in input order")
}

func TestNearestNeighborVisitsClosestFirst(t *testing.T) {
	// Three points on a line east of the depot.
	locations := []domain.DeliveryLocation{
		location("depot", 0, 0),
		location("far", 0, 3),
		location("near", 0, 1),
		location("mid", 0, 2),
	}
	matrix := distanceMatrix(locations)

	order := nearestNeighbor(matrix)
	assert.Equal(t, []int{0, 2, 3, 1}, order)
}

func TestCycleDistanceIncludesReturnHop(t *testing.T) {
	matrix := [][]float64{
		{0, 1, 4},
		{1, 0, 2},
		{4, 2, 0},
	}
	assert.Equal(t, 7.0, cycleDistance(matrix, []int{0, 1, 2}))
}

func TestOrderCrossoverProducesValidChild(t *testing.T) {
	o := NewOptimizer(testCosts, rand.New(rand.NewSource(13)))
	p1 := []int{0, 1, 2, 3, 4, 5}
	p2 := []int{0, 5, 4, 3, 2, 1}

	for i := 0; i < 50; i++ {
		child := o.orderCrossover(p1, p2)
		assertPermutation(t, child, 6)
	}
}

func TestOptimizationSecondsRecorded(t *testing.T) {
	o := NewOptimizer(testCosts, nil)
	o.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	result, err := o.Optimize(context.Background(), location("depot", -6.2, 106.8), jakartaStops(3))
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.OptimizationSeconds)
}
