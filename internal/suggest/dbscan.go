package suggest

const noise = -1

const distanceTolerance = 1e-9

// dbscan labels points from a precomputed distance matrix. A point is core
// when at least minSamples points (itself included) lie within eps. Clusters
// are numbered in the order their first core point appears; border points
// join the first cluster that reaches them.
func dbscan(dist [][]float64, eps float64, minSamples int) []int {
	n := len(dist)
	neighbours := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dist[i][j] <= eps+distanceTolerance {
				neighbours[i] = append(neighbours[i], j)
			}
		}
	}
	core := func(i int) bool { return len(neighbours[i]) >= minSamples }

	labels := make([]int, n)
	for i := range labels {
		labels[i] = noise
	}

	next := 0
	for i := 0; i < n; i++ {
		if labels[i] != noise || !core(i) {
			continue
		}
		labels[i] = next
		stack := []int{i}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !core(p) {
				continue
			}
			for _, q := range neighbours[p] {
				if labels[q] == noise {
					labels[q] = next
					stack = append(stack, q)
				}
			}
		}
		next++
	}
	return labels
}
