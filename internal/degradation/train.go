package degradation

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/undercut/pitwall/internal/feature"
	"github.com/undercut/pitwall/internal/gbrt"
	"github.com/undercut/pitwall/internal/synth"
)

// DefaultValidationSplit is the held-out fraction used to score a run.
const DefaultValidationSplit = 0.2

// TrainOptions bounds one training run. A nil Samples slice means "generate
// from Years/MaxEventsPerYear with Seed"; a non-nil one is used as given.
// The same seed drives both generation and the train/validation shuffle, so
// a run is reproducible from its options alone.
type TrainOptions struct {
	Samples          []synth.Sample
	Years            []int
	MaxEventsPerYear int
	Seed             int64
	ValidationSplit  float64
}

// Train fits a new regressor and atomically publishes it as the served
// snapshot. Exactly one run may be in flight; concurrent calls fail fast
// with ErrTrainingInProgress. On any error the previous snapshot stays up.
func (m *Model) Train(opts TrainOptions) (Meta, error) {
	if !m.trainMu.TryLock() {
		return Meta{}, ErrTrainingInProgress
	}
	defer m.trainMu.Unlock()

	start := time.Now()

	samples := opts.Samples
	if samples == nil {
		years := opts.Years
		if len(years) == 0 {
			years = synth.DefaultYears
		}
		maxEvents := opts.MaxEventsPerYear
		if maxEvents <= 0 {
			maxEvents = synth.DefaultMaxEventsPerYear
		}
		m.logger.Info("generating training data",
			"years", years,
			"max_events_per_year", maxEvents,
			"seed", opts.Seed,
		)
		samples = synth.NewGenerator(m.catalog, opts.Seed).Generate(years, maxEvents)
	}
	if len(samples) == 0 {
		return Meta{}, ErrEmptyTrainingSet
	}

	encoders, x, y := feature.Fit(samples)
	xTrain, yTrain, xTest, yTest := split(x, y, opts.ValidationSplit, opts.Seed)

	reg := gbrt.New(m.cfg)
	if err := reg.Fit(xTrain, yTrain); err != nil {
		return Meta{}, fmt.Errorf("fit regressor: %w", err)
	}
	r2, rmse := evaluate(reg, xTest, yTest)

	meta := Meta{
		RunID:     uuid.NewString(),
		Seed:      opts.Seed,
		TrainedAt: time.Now().UTC(),
		Samples:   len(samples),
		TrainRows: len(xTrain),
		TestRows:  len(xTest),
		R2:        r2,
		RMSE:      rmse,
	}
	m.snap.Store(&Snapshot{Regressor: reg, Encoders: encoders, Catalog: m.catalog, Meta: meta})

	m.logger.Info("model trained",
		"run_id", meta.RunID,
		"samples", meta.Samples,
		"train_rows", meta.TrainRows,
		"test_rows", meta.TestRows,
		"r2", r2,
		"rmse", rmse,
		"duration", time.Since(start),
	)
	return meta, nil
}

// split shuffles row indices with the run seed and holds out the validation
// fraction. At least one row stays on each side whenever the input allows.
func split(x [][]float64, y []float64, validation float64, seed int64) (xTrain [][]float64, yTrain []float64, xTest [][]float64, yTest []float64) {
	if validation <= 0 || validation >= 1 {
		validation = DefaultValidationSplit
	}
	n := len(y)
	nTest := int(float64(n) * validation)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		nTest = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	for i, p := range perm {
		if i < n-nTest {
			xTrain = append(xTrain, x[p])
			yTrain = append(yTrain, y[p])
		} else {
			xTest = append(xTest, x[p])
			yTest = append(yTest, y[p])
		}
	}
	return xTrain, yTrain, xTest, yTest
}

// evaluate scores the regressor on held-out rows. Degenerate sets (empty, or
// zero-variance targets that would blow up R2) score as zero rather than
// poisoning JSON output with NaN.
func evaluate(reg *gbrt.Regressor, x [][]float64, y []float64) (r2, rmse float64) {
	if len(y) == 0 {
		return 0, 0
	}
	est := make([]float64, len(y))
	for i := range x {
		est[i] = reg.Predict(x[i])
	}

	r2 = stat.RSquaredFrom(est, y, nil)
	rmse = floats.Distance(est, y, 2) / math.Sqrt(float64(len(y)))

	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		r2 = 0
	}
	if math.IsNaN(rmse) || math.IsInf(rmse, 0) {
		rmse = 0
	}
	return r2, rmse
}
