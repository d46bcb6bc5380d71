// Package routing computes approximate delivery routes over haversine
// distances: nearest-neighbor for small stop counts, a genetic algorithm for
// larger ones. Neither carries an optimality guarantee; results are compared
// against the naive sequential route to report savings.
package routing

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/andresuchdata/chainopt/internal/domain"
)

const (
	earthRadiusKm = 6371.0
	avgSpeedKmh   = 50.0
	serviceHours  = 0.5 // per-stop service time

	// Nearest-neighbor handles up to this many stops; beyond it the GA runs.
	exactStopLimit = 10

	gaGenerations  = 100
	mutationRate   = 0.1
	tournamentSize = 3
)

// ErrNoStops is returned when a route is requested without delivery locations.
var ErrNoStops = errors.New("no delivery locations provided")

// CostParams holds the tunable route cost rates.
type CostParams struct {
	FuelCostPerKm     float64
	DriverCostPerHour float64
}

// Leg is one hop of the optimized path, indices into depot+stops ordering.
type Leg struct {
	FromIndex     int     `json:"from_index"`
	ToIndex       int     `json:"to_index"`
	DistanceKm    float64 `json:"distance_km"`
	TravelMinutes int     `json:"travel_minutes"`
}

// Result describes an optimized route. Order is a permutation of
// {0..len(stops)} with the depot (index 0) first.
type Result struct {
	Order               []int   `json:"optimized_route"`
	TotalDistanceKm     float64 `json:"total_distance_km"`
	TotalTimeHours      float64 `json:"total_time_hours"`
	TotalCost           float64 `json:"total_cost"`
	FuelCost            float64 `json:"fuel_cost"`
	DriverCost          float64 `json:"driver_cost"`
	CostSavingsPct      float64 `json:"cost_savings_percentage"`
	Algorithm           string  `json:"algorithm_used"`
	OptimizationSeconds float64 `json:"optimization_time_seconds"`
	Legs                []Leg   `json:"legs"`
}

// Optimizer computes visiting orders. The injected rand source makes GA runs
// reproducible under a fixed seed.
type Optimizer struct {
	costs CostParams
	rng   *rand.Rand
	now   func() time.Time
}

func NewOptimizer(costs CostParams, rng *rand.Rand) *Optimizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Optimizer{costs: costs, rng: rng, now: time.Now}
}

// Optimize returns a visiting order over depot+stops and its cost breakdown.
func (o *Optimizer) Optimize(ctx context.Context, depot domain.DeliveryLocation, stops []domain.DeliveryLocation) (*Result, error) {
	if len(stops) == 0 {
		return nil, ErrNoStops
	}

	started := o.now()
	all := append([]domain.DeliveryLocation{depot}, stops...)
	matrix := distanceMatrix(all)

	var (
		order     []int
		algorithm string
		err       error
	)
	if len(stops) <= exactStopLimit {
		order = nearestNeighbor(matrix)
		algorithm = "nearest_neighbor"
	} else {
		order, err = o.geneticAlgorithm(ctx, matrix)
		if err != nil {
			return nil, err
		}
		algorithm = "genetic_algorithm"
	}

	result := o.buildResult(matrix, order)
	result.Algorithm = algorithm
	result.OptimizationSeconds = round2(o.now().Sub(started).Seconds())
	return result, nil
}

func (o *Optimizer) buildResult(matrix [][]float64, order []int) *Result {
	distance := cycleDistance(matrix, order)

	// Travel at city speed plus fixed service time per leg of the cycle.
	totalTime := distance/avgSpeedKmh + serviceHours*float64(len(order))

	fuelCost := distance * o.costs.FuelCostPerKm
	driverCost := totalTime * o.costs.DriverCostPerHour

	naive := naiveCycleDistance(matrix)
	savings := 0.0
	if naive > 0 {
		savings = (naive - distance) / naive * 100
	}
	if savings < 0 {
		savings = 0
	}

	legs := make([]Leg, 0, len(order)-1)
	for i := 1; i < len(order); i++ {
		d := matrix[order[i-1]][order[i]]
		legs = append(legs, Leg{
			FromIndex:     order[i-1],
			ToIndex:       order[i],
			DistanceKm:    round2(d),
			TravelMinutes: int(math.Round(d / avgSpeedKmh * 60)),
		})
	}

	return &Result{
		Order:           append([]int(nil), order...),
		TotalDistanceKm: round2(distance),
		TotalTimeHours:  round2(totalTime),
		TotalCost:       round2(fuelCost + driverCost),
		FuelCost:        round2(fuelCost),
		DriverCost:      round2(driverCost),
		CostSavingsPct:  round2(savings),
		Legs:            legs,
	}
}

// Haversine returns the great-circle distance in km between two coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1, lon1 = radians(lat1), radians(lon1)
	lat2, lon2 = radians(lat2), radians(lon2)

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	c := 2 * math.Asin(math.Sqrt(a))

	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func distanceMatrix(locations []domain.DeliveryLocation) [][]float64 {
	n := len(locations)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := Haversine(locations[i].Latitude, locations[i].Longitude, locations[j].Latitude, locations[j].Longitude)
			matrix[i][j] = d
			matrix[j][i] = d
		}
	}
	return matrix
}

func nearestNeighbor(matrix [][]float64) []int {
	n := len(matrix)
	order := make([]int, 0, n)
	order = append(order, 0)

	unvisited := make(map[int]struct{}, n-1)
	for i := 1; i < n; i++ {
		unvisited[i] = struct{}{}
	}

	current := 0
	for len(unvisited) > 0 {
		nearest, best := -1, math.MaxFloat64
		for candidate := range unvisited {
			if matrix[current][candidate] < best {
				best = matrix[current][candidate]
				nearest = candidate
			}
		}
		order = append(order, nearest)
		delete(unvisited, nearest)
		current = nearest
	}

	return order
}

func (o *Optimizer) geneticAlgorithm(ctx context.Context, matrix [][]float64) ([]int, error) {
	n := len(matrix)
	populationSize := 2 * n
	if populationSize > 50 {
		populationSize = 50
	}

	population := make([][]int, populationSize)
	for i := range population {
		route := make([]int, n)
		route[0] = 0
		perm := o.rng.Perm(n - 1)
		for j, p := range perm {
			route[j+1] = p + 1
		}
		population[i] = route
	}

	var best []int
	bestDistance := math.Inf(1)

	fitness := make([]float64, populationSize)
	for gen := 0; gen < gaGenerations; gen++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for i, route := range population {
			d := cycleDistance(matrix, route)
			fitness[i] = 1 / (1 + d)
			if d < bestDistance {
				bestDistance = d
				best = append(best[:0], route...)
			}
		}

		next := make([][]int, populationSize)
		for i := range next {
			p1 := o.tournament(population, fitness)
			p2 := o.tournament(population, fitness)
			child := o.orderCrossover(p1, p2)
			if o.rng.Float64() < mutationRate {
				o.mutate(child)
			}
			next[i] = child
		}
		population = next
	}

	if best == nil {
		best = nearestNeighbor(matrix)
	}
	return best, nil
}

func (o *Optimizer) tournament(population [][]int, fitness []float64) []int {
	winner := o.rng.Intn(len(population))
	for i := 1; i < tournamentSize; i++ {
		challenger := o.rng.Intn(len(population))
		if fitness[challenger] > fitness[winner] {
			winner = challenger
		}
	}
	return population[winner]
}

// orderCrossover copies a random segment from the first parent and fills the
// rest in second-parent order. The depot stays fixed at position 0.
func (o *Optimizer) orderCrossover(p1, p2 []int) []int {
	n := len(p1)
	if n <= 2 {
		return append([]int(nil), p1...)
	}

	a, b := 1+o.rng.Intn(n-1), 1+o.rng.Intn(n-1)
	if a > b {
		a, b = b, a
	}

	child := make([]int, n)
	inSegment := make(map[int]bool, b-a)
	for i := a; i < b; i++ {
		child[i] = p1[i]
		inSegment[p1[i]] = true
	}

	fill := make([]int, 0, n-(b-a)-1)
	for _, v := range p2 {
		if v != 0 && !inSegment[v] {
			fill = append(fill, v)
		}
	}

	j := 0
	for i := 1; i < n; i++ {
		if i >= a && i < b {
			continue
		}
		child[i] = fill[j]
		j++
	}
	return child
}

func (o *Optimizer) mutate(route []int) {
	if len(route) <= 3 {
		return
	}
	i := 1 + o.rng.Intn(len(route)-1)
	j := 1 + o.rng.Intn(len(route)-1)
	route[i], route[j] = route[j], route[i]
}

// cycleDistance is the total length of the route including the return hop.
func cycleDistance(matrix [][]float64, route []int) float64 {
	var total float64
	for i := range route {
		total += matrix[route[i]][route[(i+1)%len(route)]]
	}
	return total
}

// naiveCycleDistance visits stops in input order and returns to the depot;
// it is the baseline for the savings percentage.
func naiveCycleDistance(matrix [][]float64) float64 {
	n := len(matrix)
	var total float64
	for i := 0; i < n-1; i++ {
		total += matrix[i][i+1]
	}
	total += matrix[n-1][0]
	return total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
