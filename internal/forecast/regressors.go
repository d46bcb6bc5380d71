package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// regressor is the contract shared by the three ensemble members.
type regressor interface {
	fit(X [][]float64, y []float64) error
	predict(x []float64) float64
}

// standardScaler centers each feature to zero mean and unit variance.
type standardScaler struct {
	mean []float64
	std  []float64
}

func (s *standardScaler) fit(X [][]float64) {
	if len(X) == 0 {
		return
	}
	d := len(X[0])
	s.mean = make([]float64, d)
	s.std = make([]float64, d)

	for j := 0; j < d; j++ {
		var sum float64
		for i := range X {
			sum += X[i][j]
		}
		s.mean[j] = sum / float64(len(X))

		var sq float64
		for i := range X {
			diff := X[i][j] - s.mean[j]
			sq += diff * diff
		}
		s.std[j] = math.Sqrt(sq / float64(len(X)))
		if s.std[j] == 0 {
			s.std[j] = 1
		}
	}
}

func (s *standardScaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j := range x {
		out[j] = (x[j] - s.mean[j]) / s.std[j]
	}
	return out
}

func (s *standardScaler) transformAll(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i := range X {
		out[i] = s.transform(X[i])
	}
	return out
}

// linearRegressor is ordinary least squares with a small ridge term so the
// normal equations stay solvable on collinear features.
type linearRegressor struct {
	weights []float64 // last entry is the intercept
}

func (r *linearRegressor) fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("linear fit: %d samples, %d targets", len(X), len(y))
	}

	d := len(X[0]) + 1 // augmented with intercept column
	a := make([][]float64, d)
	b := make([]float64, d)
	for i := range a {
		a[i] = make([]float64, d)
	}

	row := make([]float64, d)
	for i := range X {
		copy(row, X[i])
		row[d-1] = 1
		for p := 0; p < d; p++ {
			b[p] += row[p] * y[i]
			for q := 0; q < d; q++ {
				a[p][q] += row[p] * row[q]
			}
		}
	}
	const ridge = 1e-6
	for p := 0; p < d; p++ {
		a[p][p] += ridge
	}

	w, err := solveLinearSystem(a, b)
	if err != nil {
		return err
	}
	r.weights = w
	return nil
}

func (r *linearRegressor) predict(x []float64) float64 {
	n := len(r.weights)
	out := r.weights[n-1]
	for j := 0; j < n-1 && j < len(x); j++ {
		out += r.weights[j] * x[j]
	}
	return out
}

// solveLinearSystem solves a*w = b via Gaussian elimination with partial pivoting.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	n := len(a)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	w := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * w[k]
		}
		w[row] = sum / a[row][row]
	}
	return w, nil
}

// treeNode is a node in a variance-reduction regression tree.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

func (n *treeNode) eval(x []float64) float64 {
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

type treeParams struct {
	maxDepth    int
	minLeaf     int
	featureFrac float64 // fraction of features considered per split; 1 means all
}

func buildTree(X [][]float64, y []float64, idx []int, depth int, p treeParams, rng *rand.Rand) *treeNode {
	if depth >= p.maxDepth || len(idx) < 2*p.minLeaf {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	feature, threshold, ok := bestSplit(X, y, idx, p, rng)
	if !ok {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < p.minLeaf || len(right) < p.minLeaf {
		return &treeNode{leaf: true, value: meanAt(y, idx)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(X, y, left, depth+1, p, rng),
		right:     buildTree(X, y, right, depth+1, p, rng),
	}
}

// bestSplit scans candidate features for the split with the largest reduction
// in total squared error, using prefix sums over the feature-sorted order.
func bestSplit(X [][]float64, y []float64, idx []int, p treeParams, rng *rand.Rand) (int, float64, bool) {
	d := len(X[0])
	candidates := make([]int, d)
	for j := range candidates {
		candidates[j] = j
	}
	if p.featureFrac > 0 && p.featureFrac < 1 {
		rng.Shuffle(d, func(a, b int) { candidates[a], candidates[b] = candidates[b], candidates[a] })
		k := int(math.Ceil(p.featureFrac * float64(d)))
		if k < 1 {
			k = 1
		}
		candidates = candidates[:k]
	}

	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0
	order := make([]int, len(idx))

	for _, j := range candidates {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool { return X[order[a]][j] < X[order[b]][j] })

		var totalSum, totalSq float64
		for _, i := range order {
			totalSum += y[i]
			totalSq += y[i] * y[i]
		}
		n := float64(len(order))
		baseErr := totalSq - totalSum*totalSum/n

		var leftSum, leftSq float64
		for k := 0; k < len(order)-1; k++ {
			i := order[k]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			// Only split between distinct feature values.
			if X[order[k]][j] == X[order[k+1]][j] {
				continue
			}
			nl := float64(k + 1)
			nr := n - nl
			if int(nl) < p.minLeaf || int(nr) < p.minLeaf {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			splitErr := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			gain := baseErr - splitErr
			if gain > bestGain {
				bestGain = gain
				bestFeature = j
				bestThreshold = (X[order[k]][j] + X[order[k+1]][j]) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

// forestRegressor bags variance-reduction trees over bootstrap samples.
type forestRegressor struct {
	trees int
	rng   *rand.Rand
	built []*treeNode
}

func newForestRegressor(trees int, rng *rand.Rand) *forestRegressor {
	return &forestRegressor{trees: trees, rng: rng}
}

func (f *forestRegressor) fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("forest fit: no samples")
	}
	params := treeParams{maxDepth: 6, minLeaf: 2, featureFrac: 0.6}
	f.built = make([]*treeNode, 0, f.trees)

	n := len(X)
	for t := 0; t < f.trees; t++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = f.rng.Intn(n)
		}
		f.built = append(f.built, buildTree(X, y, sample, 0, params, f.rng))
	}
	return nil
}

func (f *forestRegressor) predict(x []float64) float64 {
	if len(f.built) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.built {
		sum += t.eval(x)
	}
	return sum / float64(len(f.built))
}

// boostedRegressor is gradient boosting with shallow trees on residuals.
type boostedRegressor struct {
	rounds       int
	learningRate float64
	rng          *rand.Rand
	base         float64
	stages       []*treeNode
}

func newBoostedRegressor(rounds int, learningRate float64, rng *rand.Rand) *boostedRegressor {
	return &boostedRegressor{rounds: rounds, learningRate: learningRate, rng: rng}
}

func (b *boostedRegressor) fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("boosting fit: no samples")
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}

	b.base = meanAt(y, idx)
	b.stages = b.stages[:0]

	current := make([]float64, len(y))
	for i := range current {
		current[i] = b.base
	}
	residual := make([]float64, len(y))
	params := treeParams{maxDepth: 3, minLeaf: 2, featureFrac: 1}

	for m := 0; m < b.rounds; m++ {
		for i := range y {
			residual[i] = y[i] - current[i]
		}
		stage := buildTree(X, residual, idx, 0, params, b.rng)
		b.stages = append(b.stages, stage)
		for i := range X {
			current[i] += b.learningRate * stage.eval(X[i])
		}
	}
	return nil
}

func (b *boostedRegressor) predict(x []float64) float64 {
	out := b.base
	for _, stage := range b.stages {
		out += b.learningRate * stage.eval(x)
	}
	return out
}
