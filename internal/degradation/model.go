// Package degradation predicts per-lap tire wear, in seconds of lap-time
// loss, for a compound/driver/track combination. A trained snapshot serves
// gradient-boosted predictions; before the first training run a closed-form
// wear curve answers instead, so the engine is never unavailable.
package degradation

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/feature"
	"github.com/undercut/pitwall/internal/gbrt"
)

// Source labels which path produced a prediction. The values are surfaced
// verbatim in API responses.
type Source string

const (
	SourceModel    Source = "ML Model"
	SourceFallback Source = "Fallback Formula"
)

// Meta describes one completed training run.
type Meta struct {
	RunID     string    `json:"run_id"`
	Seed      int64     `json:"seed"`
	TrainedAt time.Time `json:"trained_at"`
	Samples   int       `json:"samples"`
	TrainRows int       `json:"train_rows"`
	TestRows  int       `json:"test_rows"`
	R2        float64   `json:"r2"`
	RMSE      float64   `json:"rmse"`
}

// Snapshot is one immutable trained state: the regressor, the encoders it
// was fit with, and the catalog its lookups came from. Snapshots are swapped
// atomically and never mutated, so readers need no locks.
type Snapshot struct {
	Regressor *gbrt.Regressor     `json:"regressor"`
	Encoders  *feature.EncoderSet `json:"encoders"`
	Catalog   *catalog.Catalog    `json:"catalog"`
	Meta      Meta                `json:"meta"`
}

// Model is the prediction engine. Predictions read the current snapshot
// through an atomic pointer; training runs are serialized by a mutex and
// publish a complete new snapshot only on success.
type Model struct {
	cfg     gbrt.Config
	catalog *catalog.Catalog
	logger  *slog.Logger

	trainMu sync.Mutex
	snap    atomic.Pointer[Snapshot]
}

func New(cat *catalog.Catalog, cfg gbrt.Config, logger *slog.Logger) *Model {
	return &Model{cfg: cfg, catalog: cat, logger: logger}
}

// Current returns the served snapshot, or nil before the first training run.
func (m *Model) Current() *Snapshot {
	return m.snap.Load()
}

// Trained reports whether a snapshot is being served.
func (m *Model) Trained() bool {
	return m.snap.Load() != nil
}

// Restore installs a snapshot loaded from disk.
func (m *Model) Restore(snap *Snapshot) {
	m.snap.Store(snap)
	m.logger.Info("model restored",
		"run_id", snap.Meta.RunID,
		"trained_at", snap.Meta.TrainedAt,
		"r2", snap.Meta.R2,
	)
}

// Request identifies one prediction point. Catalog-derived features (skill,
// severity, track length) are resolved internally from the snapshot's own
// catalog, so a later catalog edit cannot skew a served model.
type Request struct {
	Compound  catalog.Compound
	Driver    string
	Track     string
	TireAge   float64
	TrackTemp float64
	LapNumber float64
	FuelLoad  float64
}

// Prediction is the engine's answer. Seconds is never negative.
type Prediction struct {
	Seconds float64
	Source  Source
}

// Predict returns expected wear for the request. With no trained snapshot it
// answers from the fallback curve. With one, unseen compound/driver/track
// values return a *feature.UnknownCategoryError rather than a guess.
func (m *Model) Predict(req Request) (Prediction, error) {
	snap := m.snap.Load()
	if snap == nil {
		return Prediction{Seconds: m.Fallback(req.TireAge, req.Compound), Source: SourceFallback}, nil
	}

	vec, err := snap.Encoders.Vector(feature.Point{
		TireAge:       req.TireAge,
		Compound:      req.Compound,
		Driver:        req.Driver,
		Track:         req.Track,
		TrackTemp:     req.TrackTemp,
		LapNumber:     req.LapNumber,
		DriverSkill:   snap.Catalog.Skill(req.Driver),
		TrackSeverity: snap.Catalog.Severity(req.Track),
		TrackLength:   snap.Catalog.LengthKM(req.Track),
		FuelLoad:      req.FuelLoad,
		StintPosition: req.TireAge + 1,
	})
	if err != nil {
		return Prediction{}, err
	}

	seconds := snap.Regressor.Predict(vec)
	if seconds < 0 {
		seconds = 0
	}
	return Prediction{Seconds: seconds, Source: SourceModel}, nil
}

// Fallback is the closed-form wear curve: base rate times age, steepened by
// age/50 to mimic cliff behavior on long stints. Unknown compounds use the
// catalog's default rate.
func (m *Model) Fallback(tireAge float64, compound catalog.Compound) float64 {
	seconds := m.catalog.BaseRate(compound) * tireAge * (1 + tireAge/50)
	if seconds < 0 {
		seconds = 0
	}
	return seconds
}
