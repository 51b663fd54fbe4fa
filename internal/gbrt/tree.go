package gbrt

// node is one cell of a flattened regression tree. Feature -1 marks a leaf
// carrying Value; interior nodes route on x[Feature] <= Threshold.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int32   `json:"l"`
	Right     int32   `json:"r"`
	Value     float64 `json:"v"`
}

type tree struct {
	Nodes []node `json:"nodes"`
}

func (t *tree) predict(x []float64) float64 {
	i := int32(0)
	for {
		n := &t.Nodes[i]
		if n.Feature < 0 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// builder grows one tree per boosting stage against the current residuals.
// Feature orderings are computed once per fit and shared across stages; at
// each node the global ordering is filtered by membership, which keeps split
// search linear in the node size instead of re-sorting.
type builder struct {
	x        [][]float64
	residual []float64
	sorted   [][]int
	cfg      Config
	inNode   []bool
	nodes    []node
}

func (b *builder) grow(members []int, depth int) int32 {
	id := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{})

	if depth >= b.cfg.MaxDepth || len(members) < 2*b.cfg.MinLeaf {
		b.nodes[id] = node{Feature: -1, Value: meanAt(b.residual, members)}
		return id
	}

	f, threshold, ok := b.bestSplit(members)
	if !ok {
		b.nodes[id] = node{Feature: -1, Value: meanAt(b.residual, members)}
		return id
	}

	left := make([]int, 0, len(members))
	right := make([]int, 0, len(members))
	for _, i := range members {
		if b.x[i][f] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[id] = node{Feature: f, Threshold: threshold, Left: l, Right: r}
	return id
}

// bestSplit scans every feature for the split minimizing the summed squared
// error of the two children. Sum-of-squares identities over prefix sums make
// each candidate O(1). Returns ok=false when no split improves on the node.
func (b *builder) bestSplit(members []int) (int, float64, bool) {
	n := float64(len(members))
	var total, totalSq float64
	for _, i := range members {
		v := b.residual[i]
		total += v
		totalSq += v * v
	}
	parentSSE := totalSq - total*total/n
	if parentSSE <= 1e-12 {
		return -1, 0, false
	}

	for _, i := range members {
		b.inNode[i] = true
	}
	defer func() {
		for _, i := range members {
			b.inNode[i] = false
		}
	}()

	bestSSE := parentSSE - 1e-10
	bestFeature := -1
	var bestThreshold float64

	nFeatures := len(b.x[members[0]])
	ordered := make([]int, 0, len(members))
	for f := 0; f < nFeatures; f++ {
		ordered = ordered[:0]
		for _, i := range b.sorted[f] {
			if b.inNode[i] {
				ordered = append(ordered, i)
			}
		}

		var leftSum, leftSq float64
		for k := 0; k < len(ordered)-1; k++ {
			i := ordered[k]
			v := b.residual[i]
			leftSum += v
			leftSq += v * v

			nl := k + 1
			nr := len(ordered) - nl
			if nl < b.cfg.MinLeaf || nr < b.cfg.MinLeaf {
				continue
			}
			xi, xj := b.x[i][f], b.x[ordered[k+1]][f]
			if xi == xj {
				continue
			}

			leftSSE := leftSq - leftSum*leftSum/float64(nl)
			rightSum := total - leftSum
			rightSq := totalSq - leftSq
			rightSSE := rightSq - rightSum*rightSum/float64(nr)

			if sse := leftSSE + rightSSE; sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = (xi + xj) / 2
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func meanAt(values []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}
