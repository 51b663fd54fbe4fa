// Package gbrt implements gradient-boosted regression trees: an ensemble of
// shallow least-squares trees fit stage-wise to the residuals of the stages
// before it. Training is deterministic for a given input order, so model
// reproducibility reduces to seeding whatever produced the training set.
package gbrt

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Config controls the boosting run.
type Config struct {
	Trees        int     `json:"trees"`
	MaxDepth     int     `json:"max_depth"`
	LearningRate float64 `json:"learning_rate"`
	MinLeaf      int     `json:"min_leaf"`
}

// DefaultConfig returns the configuration the degradation engine trains with.
func DefaultConfig() Config {
	return Config{
		Trees:        200,
		MaxDepth:     5,
		LearningRate: 0.1,
		MinLeaf:      5,
	}
}

func (c Config) validate() error {
	if c.Trees <= 0 {
		return fmt.Errorf("trees must be positive, got %d", c.Trees)
	}
	if c.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", c.MaxDepth)
	}
	if c.LearningRate <= 0 || c.LearningRate > 1 {
		return fmt.Errorf("learning_rate must be in (0, 1], got %g", c.LearningRate)
	}
	if c.MinLeaf < 1 {
		return fmt.Errorf("min_leaf must be at least 1, got %d", c.MinLeaf)
	}
	return nil
}

// ErrNoData is returned by Fit when the training matrix is empty.
var ErrNoData = errors.New("no training data")

// Regressor is a boosted ensemble. The zero value is unusable; construct
// with New and call Fit, or restore a fitted one from JSON.
type Regressor struct {
	cfg   Config
	init  float64
	trees []tree
}

func New(cfg Config) *Regressor {
	return &Regressor{cfg: cfg}
}

// Fit trains the ensemble on the feature matrix x and targets y. Every row
// of x must have the same width. Fit replaces any previously trained state.
func (r *Regressor) Fit(x [][]float64, y []float64) error {
	if err := r.cfg.validate(); err != nil {
		return err
	}
	if len(x) == 0 {
		return ErrNoData
	}
	if len(x) != len(y) {
		return fmt.Errorf("feature rows (%d) and targets (%d) differ", len(x), len(y))
	}

	n := len(x)
	nFeatures := len(x[0])
	for i, row := range x {
		if len(row) != nFeatures {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), nFeatures)
		}
	}

	// One ordering per feature, reused by every stage. Stable sort keeps
	// tie order deterministic.
	sorted := make([][]int, nFeatures)
	for f := 0; f < nFeatures; f++ {
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})
		sorted[f] = order
	}

	r.init = stat.Mean(y, nil)
	r.trees = make([]tree, 0, r.cfg.Trees)

	pred := make([]float64, n)
	for i := range pred {
		pred[i] = r.init
	}
	residual := make([]float64, n)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	b := &builder{
		x:        x,
		residual: residual,
		sorted:   sorted,
		cfg:      r.cfg,
		inNode:   make([]bool, n),
	}

	for stage := 0; stage < r.cfg.Trees; stage++ {
		for i := range residual {
			residual[i] = y[i] - pred[i]
		}

		b.nodes = b.nodes[:0]
		b.grow(all, 0)
		t := tree{Nodes: append([]node(nil), b.nodes...)}
		r.trees = append(r.trees, t)

		for i := range pred {
			pred[i] += r.cfg.LearningRate * t.predict(x[i])
		}
	}
	return nil
}

// Predict returns the ensemble output for one feature vector. The vector
// must have the width the regressor was trained on.
func (r *Regressor) Predict(x []float64) float64 {
	out := r.init
	for i := range r.trees {
		out += r.cfg.LearningRate * r.trees[i].predict(x)
	}
	return out
}

// NumTrees reports how many boosting stages have been fit.
func (r *Regressor) NumTrees() int {
	return len(r.trees)
}

// Config returns the configuration the regressor was built with.
func (r *Regressor) Config() Config {
	return r.cfg
}

type regressorState struct {
	Config Config  `json:"config"`
	Init   float64 `json:"init"`
	Trees  []tree  `json:"trees"`
}

func (r *Regressor) MarshalJSON() ([]byte, error) {
	return json.Marshal(regressorState{Config: r.cfg, Init: r.init, Trees: r.trees})
}

func (r *Regressor) UnmarshalJSON(data []byte) error {
	var state regressorState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if err := state.Config.validate(); err != nil {
		return fmt.Errorf("invalid regressor state: %w", err)
	}
	r.cfg = state.Config
	r.init = state.Init
	r.trees = state.Trees
	return nil
}

// Save writes the fitted ensemble as JSON.
func (r *Regressor) Save(w io.Writer) error {
	return json.NewEncoder(w).Encode(r)
}

// Load restores an ensemble previously written by Save.
func Load(rd io.Reader) (*Regressor, error) {
	var r Regressor
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, err
	}
	return &r, nil
}
