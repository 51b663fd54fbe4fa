// Package strategy ranks one-stop pit strategies by estimated time loss:
// predicted tire wear across both stints plus a fixed pit-stop cost.
package strategy

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/degradation"
)

// Policy constants. Tunable knobs, not physics: the pit cost is a paddock
// average and the bands are product thresholds carried over unchanged.
const (
	PitStopSeconds = 24.0

	// Loss within these fractions above the best scenario's loss.
	GoodWithin     = 0.10
	ConsiderWithin = 0.25
)

const (
	RecommendationGood     = "Good"
	RecommendationConsider = "Consider alternatives"
	RecommendationRisky    = "Risky"
)

// Policy holds the comparison knobs so deployments can tune them in config.
type Policy struct {
	PitStopSeconds float64
	GoodWithin     float64
	ConsiderWithin float64
}

func DefaultPolicy() Policy {
	return Policy{
		PitStopSeconds: PitStopSeconds,
		GoodWithin:     GoodWithin,
		ConsiderWithin: ConsiderWithin,
	}
}

func (p Policy) recommend(loss, best float64) string {
	if loss <= best {
		return RecommendationGood
	}
	if best <= 0 {
		return RecommendationRisky
	}
	ratio := (loss - best) / best
	switch {
	case ratio <= p.GoodWithin:
		return RecommendationGood
	case ratio <= p.ConsiderWithin:
		return RecommendationConsider
	default:
		return RecommendationRisky
	}
}

// Predictor is the slice of the degradation engine the evaluator needs.
type Predictor interface {
	Predict(degradation.Request) (degradation.Prediction, error)
}

// Scenario is one candidate strategy: pit on PitLap, leave on Compound.
type Scenario struct {
	Name     string           `json:"name"`
	PitLap   int              `json:"pit_lap"`
	Compound catalog.Compound `json:"compound"`
}

// Request frames one comparison.
type Request struct {
	Driver     string
	Track      string
	CurrentLap int
	RaceLaps   int
	TrackTemp  float64
	Scenarios  []Scenario
}

// Result is the evaluated outcome for one scenario.
type Result struct {
	Scenario         string           `json:"scenario"`
	PitLap           int              `json:"pit_lap"`
	Compound         catalog.Compound `json:"compound"`
	Stint1Seconds    float64          `json:"stint1_degradation"`
	Stint2Seconds    float64          `json:"stint2_degradation"`
	TotalDegradation float64          `json:"total_degradation"`
	PitStopSeconds   float64          `json:"pit_stop_seconds"`
	TimeLoss         float64          `json:"estimated_time_loss"`
	Recommendation   string           `json:"recommendation"`
}

// Skipped records a scenario rejected before evaluation, so one bad entry
// never aborts the rest of the comparison.
type Skipped struct {
	Scenario string `json:"scenario"`
	Reason   string `json:"reason"`
}

// Comparison is the ranked outcome. Results are ascending by time loss with
// input order preserved on ties; Best duplicates the front entry.
type Comparison struct {
	Best    *Result   `json:"best_strategy,omitempty"`
	Results []Result  `json:"strategy_analysis"`
	Skipped []Skipped `json:"skipped,omitempty"`
}

type Evaluator struct {
	predictor Predictor
	catalog   *catalog.Catalog
	policy    Policy
	logger    *slog.Logger
}

func NewEvaluator(p Predictor, cat *catalog.Catalog, policy Policy, logger *slog.Logger) *Evaluator {
	return &Evaluator{predictor: p, catalog: cat, policy: policy, logger: logger}
}

// Compare evaluates every valid scenario. The race splits at the pit lap:
// stint 1 covers laps 1..pit_lap, stint 2 the remainder, and each stint is
// costed at an age equal to its length with wear sampled at its midpoint.
// Prediction failures (unseen driver or track) abort the whole comparison
// since they would poison every scenario alike.
func (e *Evaluator) Compare(req Request) (Comparison, error) {
	if req.RaceLaps < 1 {
		return Comparison{}, fmt.Errorf("race_laps must be at least 1, got %d", req.RaceLaps)
	}

	var cmp Comparison
	for _, sc := range req.Scenarios {
		if sc.PitLap < 1 || sc.PitLap > req.RaceLaps {
			cmp.Skipped = append(cmp.Skipped, Skipped{
				Scenario: sc.Name,
				Reason:   fmt.Sprintf("pit_lap %d outside [1, %d]", sc.PitLap, req.RaceLaps),
			})
			e.logger.Debug("scenario skipped", "scenario", sc.Name, "pit_lap", sc.PitLap)
			continue
		}
		if !e.catalog.HasCompound(sc.Compound) {
			cmp.Skipped = append(cmp.Skipped, Skipped{
				Scenario: sc.Name,
				Reason:   fmt.Sprintf("unknown compound %q", sc.Compound),
			})
			e.logger.Debug("scenario skipped", "scenario", sc.Name, "compound", sc.Compound)
			continue
		}

		stint1Len := sc.PitLap
		stint2Len := req.RaceLaps - sc.PitLap

		stint1, err := e.predictor.Predict(degradation.Request{
			Compound:  sc.Compound,
			Driver:    req.Driver,
			Track:     req.Track,
			TireAge:   float64(stint1Len),
			TrackTemp: req.TrackTemp,
			LapNumber: float64(stint1Len / 2),
			FuelLoad:  clampZero(80 - 1.5*float64(req.CurrentLap)),
		})
		if err != nil {
			return Comparison{}, err
		}
		stint2, err := e.predictor.Predict(degradation.Request{
			Compound:  sc.Compound,
			Driver:    req.Driver,
			Track:     req.Track,
			TireAge:   float64(stint2Len),
			TrackTemp: req.TrackTemp,
			LapNumber: float64(sc.PitLap + stint2Len/2),
			FuelLoad:  clampZero(40 - 1.5*float64(stint2Len)),
		})
		if err != nil {
			return Comparison{}, err
		}

		wear := stint1.Seconds + stint2.Seconds
		cmp.Results = append(cmp.Results, Result{
			Scenario:         sc.Name,
			PitLap:           sc.PitLap,
			Compound:         sc.Compound,
			Stint1Seconds:    stint1.Seconds,
			Stint2Seconds:    stint2.Seconds,
			TotalDegradation: wear,
			PitStopSeconds:   e.policy.PitStopSeconds,
			TimeLoss:         e.policy.PitStopSeconds + wear,
		})
	}

	if len(cmp.Results) == 0 {
		return cmp, nil
	}

	sort.SliceStable(cmp.Results, func(i, j int) bool {
		return cmp.Results[i].TimeLoss < cmp.Results[j].TimeLoss
	})
	best := cmp.Results[0].TimeLoss
	for i := range cmp.Results {
		cmp.Results[i].Recommendation = e.policy.recommend(cmp.Results[i].TimeLoss, best)
	}
	front := cmp.Results[0]
	cmp.Best = &front
	return cmp, nil
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
