package core

import (
	"math"
	"math/rand"

	"github.com/huangsam/prlens/schema"
	"gonum.org/v1/gonum/mat"
)

// Clustering constraints.
const (
	kmeansSeed     = 42
	kmeansRestarts = 10
	kmeansMaxIter  = 100
	kmeansTol      = 1e-4
)

// ClusterRows partitions the normalized rows via k-means over the schema's
// cluster feature subset. requestedK <= 0 triggers elbow auto-selection up
// to maxK. Clustering never fails: degenerate input (fewer than 2 rows, or
// an effective k below 2) yields an empty result the caller can proceed
// without.
func ClusterRows(table *schema.FeatureTable, norm *schema.NormalizedTable, requestedK, maxK int) schema.ClusterResult {
	result := schema.ClusterResult{
		Clusters:    []schema.Cluster{},
		Assignments: []int{},
	}

	n := norm.Len()
	if n < 2 {
		return result
	}

	features := norm.Schema.ClusterFeatures
	data := buildMatrix(norm, features)
	rng := rand.New(rand.NewSource(kmeansSeed))

	k := requestedK
	if k <= 0 {
		k = findOptimalK(data, maxK, rng)
		result.AutoK = true
	}
	if k > n {
		k = n
	}
	if k < 2 {
		// Degenerates to a single trivial cluster, reported as such.
		result.OptimalK = 1
		all := make([]int, n)
		result.Assignments = make([]int, n)
		for i := range all {
			all[i] = i
		}
		result.Clusters = []schema.Cluster{describeCluster(table, 0, all, features)}
		return result
	}

	assignments, centroids, inertia := kmeansBestOf(data, k, rng)
	result.OptimalK = k
	result.Assignments = assignments
	result.Inertia = inertia

	members := make([][]int, k)
	for i, c := range assignments {
		members[c] = append(members[c], i)
	}
	for c := range k {
		if len(members[c]) == 0 {
			continue
		}
		result.Clusters = append(result.Clusters, describeCluster(table, c, members[c], features))
	}

	if len(result.Clusters) >= 2 {
		result.Silhouette = silhouetteScore(data, assignments, centroids)
	}

	return result
}

// buildMatrix packs the selected feature columns into a dense row matrix.
func buildMatrix(norm *schema.NormalizedTable, features []string) *mat.Dense {
	n := norm.Len()
	d := len(features)
	data := mat.NewDense(n, d, nil)
	for i := range norm.Rows {
		for j, f := range features {
			v := norm.Rows[i].Num[f]
			if !isFinite(v) {
				v = 0
			}
			data.Set(i, j, v)
		}
	}
	return data
}

// kmeansBestOf runs several seeded k-means restarts and keeps the fit with
// the lowest inertia, mirroring the n_init behavior of the reference
// implementation.
func kmeansBestOf(data *mat.Dense, k int, rng *rand.Rand) ([]int, *mat.Dense, float64) {
	var bestAssign []int
	var bestCentroids *mat.Dense
	bestInertia := math.Inf(1)

	for range kmeansRestarts {
		assign, centroids := kmeansOnce(data, k, rng)
		inertia := computeInertia(data, assign, centroids)
		if inertia < bestInertia {
			bestInertia = inertia
			bestAssign = assign
			bestCentroids = centroids
		}
	}
	return bestAssign, bestCentroids, bestInertia
}

// kmeansOnce performs one k-means fit with k-means++ initialization.
func kmeansOnce(data *mat.Dense, k int, rng *rand.Rand) ([]int, *mat.Dense) {
	centroids := initCentroids(data, k, rng)
	n, _ := data.Dims()
	assignments := make([]int, n)

	for range kmeansMaxIter {
		newAssignments := assignPoints(data, centroids)

		converged := true
		for i := range assignments {
			if assignments[i] != newAssignments[i] {
				converged = false
				break
			}
		}
		assignments = newAssignments
		if converged {
			break
		}

		newCentroids := updateCentroids(data, assignments, k)
		if centroidShift(centroids, newCentroids) < kmeansTol {
			centroids = newCentroids
			break
		}
		centroids = newCentroids
	}

	return assignments, centroids
}

// initCentroids chooses starting centroids with the k-means++ weighting.
func initCentroids(data *mat.Dense, k int, rng *rand.Rand) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)

	centroids.SetRow(0, data.RawRowView(rng.Intn(n)))

	for i := 1; i < k; i++ {
		distances := make([]float64, n)
		var total float64
		for j := range n {
			point := data.RawRowView(j)
			minDist := math.Inf(1)
			for c := range i {
				if dist := squaredDistance(point, centroids.RawRowView(c)); dist < minDist {
					minDist = dist
				}
			}
			distances[j] = minDist
			total += minDist
		}

		if total == 0 {
			// All points identical; fall back to a random pick.
			centroids.SetRow(i, data.RawRowView(rng.Intn(n)))
			continue
		}

		target := rng.Float64() * total
		var cum float64
		for j, dist := range distances {
			cum += dist
			if cum >= target {
				centroids.SetRow(i, data.RawRowView(j))
				break
			}
		}
	}

	return centroids
}

// assignPoints assigns each row to its nearest centroid by Euclidean distance.
func assignPoints(data *mat.Dense, centroids *mat.Dense) []int {
	n, _ := data.Dims()
	k, _ := centroids.Dims()
	assignments := make([]int, n)

	for i := range n {
		point := data.RawRowView(i)
		minDist := math.Inf(1)
		best := 0
		for j := range k {
			if dist := squaredDistance(point, centroids.RawRowView(j)); dist < minDist {
				minDist = dist
				best = j
			}
		}
		assignments[i] = best
	}
	return assignments
}

// updateCentroids recalculates cluster centroids as member means.
func updateCentroids(data *mat.Dense, assignments []int, k int) *mat.Dense {
	n, d := data.Dims()
	centroids := mat.NewDense(k, d, nil)
	counts := make([]int, k)

	for i := range n {
		c := assignments[i]
		point := data.RawRowView(i)
		for j := range d {
			centroids.Set(c, j, centroids.At(c, j)+point[j])
		}
		counts[c]++
	}
	for c := range k {
		if counts[c] == 0 {
			continue
		}
		for j := range d {
			centroids.Set(c, j, centroids.At(c, j)/float64(counts[c]))
		}
	}
	return centroids
}

func centroidShift(old, next *mat.Dense) float64 {
	k, _ := old.Dims()
	var total float64
	for i := range k {
		total += math.Sqrt(squaredDistance(old.RawRowView(i), next.RawRowView(i)))
	}
	return total / float64(k)
}

func computeInertia(data *mat.Dense, assignments []int, centroids *mat.Dense) float64 {
	n, _ := data.Dims()
	var inertia float64
	for i := range n {
		inertia += squaredDistance(data.RawRowView(i), centroids.RawRowView(assignments[i]))
	}
	return inertia
}

func squaredDistance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// findOptimalK applies the elbow heuristic: fit k = 2..min(maxK, n-1) and
// pick the k at the largest marginal inertia decrease.
func findOptimalK(data *mat.Dense, maxK int, rng *rand.Rand) int {
	n, _ := data.Dims()
	if maxK > n-1 {
		maxK = n - 1
	}
	if maxK < 2 {
		return 1
	}

	inertias := make([]float64, 0, maxK-1)
	for k := 2; k <= maxK; k++ {
		assign, centroids := kmeansOnce(data, k, rng)
		inertias = append(inertias, computeInertia(data, assign, centroids))
	}
	if len(inertias) < 2 {
		return 2
	}

	bestIdx := 0
	bestDrop := math.Inf(-1)
	for i := 0; i < len(inertias)-1; i++ {
		if drop := inertias[i] - inertias[i+1]; drop > bestDrop {
			bestDrop = drop
			bestIdx = i
		}
	}
	return 2 + bestIdx
}

// silhouetteScore averages the per-row silhouette over all rows: for each
// row, (b-a)/max(a,b) where a is the mean distance to its own cluster and b
// the mean distance to the nearest other cluster.
func silhouetteScore(data *mat.Dense, assignments []int, centroids *mat.Dense) float64 {
	n, _ := data.Dims()
	k, _ := centroids.Dims()
	if n < 2 || k < 2 {
		return 0
	}

	members := make([][]int, k)
	for i, c := range assignments {
		members[c] = append(members[c], i)
	}

	var total float64
	var counted int
	for i := range n {
		own := assignments[i]
		if len(members[own]) < 2 {
			// Singleton clusters contribute a silhouette of 0.
			counted++
			continue
		}

		a := meanDistance(data, i, members[own], true)
		b := math.Inf(1)
		for c := range k {
			if c == own || len(members[c]) == 0 {
				continue
			}
			if d := meanDistance(data, i, members[c], false); d < b {
				b = d
			}
		}
		if math.IsInf(b, 1) {
			counted++
			continue
		}

		denom := math.Max(a, b)
		if denom > 0 {
			total += (b - a) / denom
		}
		counted++
	}

	if counted == 0 {
		return 0
	}
	return total / float64(counted)
}

func meanDistance(data *mat.Dense, i int, members []int, skipSelf bool) float64 {
	var sum float64
	var count int
	point := data.RawRowView(i)
	for _, j := range members {
		if skipSelf && j == i {
			continue
		}
		sum += math.Sqrt(squaredDistance(point, data.RawRowView(j)))
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// describeCluster summarizes one cluster from the original-scale feature
// table: centroid means over the cluster features plus the fixed-threshold
// qualitative labels and the flagged-rate used by recommendation rules.
func describeCluster(table *schema.FeatureTable, id int, members []int, features []string) schema.Cluster {
	cluster := schema.Cluster{
		ID:       id,
		Members:  members,
		Size:     len(members),
		Centroid: make(map[string]float64, len(features)),
	}

	for _, f := range features {
		var sum float64
		for _, i := range members {
			sum += table.Rows[i].Num[f]
		}
		cluster.Centroid[f] = sum / float64(len(members))
	}

	var flagged int
	for _, i := range members {
		if table.Schema.Flag.Matches(&table.Rows[i]) {
			flagged++
		}
	}
	cluster.FlaggedRate = float64(flagged) / float64(len(members))

	for _, rule := range table.Schema.Labels {
		mean := centroidMean(table, members, rule.Feature)
		switch {
		case mean > rule.High:
			cluster.Characteristics = append(cluster.Characteristics, rule.Names[0])
		case mean > rule.Mid:
			cluster.Characteristics = append(cluster.Characteristics, rule.Names[1])
		default:
			cluster.Characteristics = append(cluster.Characteristics, rule.Names[2])
		}
	}
	if len(cluster.Characteristics) > 0 {
		cluster.Label = cluster.Characteristics[0]
	}

	return cluster
}

func centroidMean(table *schema.FeatureTable, members []int, feature string) float64 {
	if len(members) == 0 {
		return 0
	}
	var sum float64
	for _, i := range members {
		sum += table.Rows[i].Num[feature]
	}
	return sum / float64(len(members))
}
