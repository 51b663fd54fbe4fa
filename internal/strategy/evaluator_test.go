package strategy

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/degradation"
	"github.com/undercut/pitwall/internal/feature"
	"github.com/undercut/pitwall/internal/gbrt"
	"github.com/undercut/pitwall/internal/logger"
)

type predictFunc func(degradation.Request) (degradation.Prediction, error)

func (f predictFunc) Predict(r degradation.Request) (degradation.Prediction, error) {
	return f(r)
}

// quadraticWear punishes unbalanced stints, giving strict, known rankings.
var quadraticWear = predictFunc(func(r degradation.Request) (degradation.Prediction, error) {
	return degradation.Prediction{Seconds: r.TireAge * r.TireAge * 0.01, Source: degradation.SourceFallback}, nil
})

func newEvaluator(p Predictor) *Evaluator {
	return NewEvaluator(p, catalog.Default(), DefaultPolicy(), logger.Discard())
}

func TestEvaluator_RanksAscendingWithBands(t *testing.T) {
	cmp, err := newEvaluator(quadraticWear).Compare(Request{
		Driver:   "HAM",
		Track:    "Silverstone",
		RaceLaps: 52,
		Scenarios: []Scenario{
			{Name: "Sprint", PitLap: 4, Compound: catalog.CompoundSoft},
			{Name: "Balanced", PitLap: 26, Compound: catalog.CompoundMedium},
			{Name: "Long first", PitLap: 40, Compound: catalog.CompoundHard},
		},
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(cmp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(cmp.Results))
	}

	wantOrder := []string{"Balanced", "Long first", "Sprint"}
	wantLoss := []float64{37.52, 41.44, 47.2}
	wantRec := []string{RecommendationGood, RecommendationConsider, RecommendationRisky}
	for i, r := range cmp.Results {
		if r.Scenario != wantOrder[i] {
			t.Errorf("position %d = %q, want %q", i, r.Scenario, wantOrder[i])
		}
		if math.Abs(r.TimeLoss-wantLoss[i]) > 1e-9 {
			t.Errorf("%s loss = %v, want %v", r.Scenario, r.TimeLoss, wantLoss[i])
		}
		if r.Recommendation != wantRec[i] {
			t.Errorf("%s recommendation = %q, want %q", r.Scenario, r.Recommendation, wantRec[i])
		}
		if math.Abs(r.TimeLoss-(r.PitStopSeconds+r.TotalDegradation)) > 1e-9 {
			t.Errorf("%s loss does not decompose into pit cost plus wear", r.Scenario)
		}
	}
	if cmp.Best == nil || cmp.Best.Scenario != "Balanced" {
		t.Errorf("best = %+v, want Balanced", cmp.Best)
	}
	for _, r := range cmp.Results {
		if cmp.Best.TimeLoss > r.TimeLoss {
			t.Errorf("best loss %v exceeds %s loss %v", cmp.Best.TimeLoss, r.Scenario, r.TimeLoss)
		}
	}
}

func TestEvaluator_TiesKeepInputOrder(t *testing.T) {
	// Linear wear makes every split of the same race cost the same.
	linear := predictFunc(func(r degradation.Request) (degradation.Prediction, error) {
		return degradation.Prediction{Seconds: r.TireAge * 0.1}, nil
	})

	cmp, err := newEvaluator(linear).Compare(Request{
		Driver:   "VER",
		Track:    "Monaco",
		RaceLaps: 50,
		Scenarios: []Scenario{
			{Name: "late stop", PitLap: 30, Compound: catalog.CompoundMedium},
			{Name: "early stop", PitLap: 10, Compound: catalog.CompoundMedium},
			{Name: "mid stop", PitLap: 20, Compound: catalog.CompoundMedium},
		},
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	want := []string{"late stop", "early stop", "mid stop"}
	for i, r := range cmp.Results {
		if r.Scenario != want[i] {
			t.Errorf("position %d = %q, want %q (input order on ties)", i, r.Scenario, want[i])
		}
		if r.Recommendation != RecommendationGood {
			t.Errorf("%s recommendation = %q, want %q", r.Scenario, r.Recommendation, RecommendationGood)
		}
	}
}

func TestEvaluator_SkipsInvalidScenarios(t *testing.T) {
	cmp, err := newEvaluator(quadraticWear).Compare(Request{
		Driver:   "HAM",
		Track:    "Silverstone",
		RaceLaps: 52,
		Scenarios: []Scenario{
			{Name: "too early", PitLap: 0, Compound: catalog.CompoundSoft},
			{Name: "too late", PitLap: 53, Compound: catalog.CompoundSoft},
			{Name: "alien rubber", PitLap: 20, Compound: catalog.Compound("ULTRA")},
			{Name: "fine", PitLap: 20, Compound: catalog.CompoundSoft},
		},
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(cmp.Results) != 1 || cmp.Results[0].Scenario != "fine" {
		t.Fatalf("expected only the valid scenario, got %+v", cmp.Results)
	}
	if cmp.Best == nil || cmp.Best.Scenario != "fine" {
		t.Errorf("best = %+v, want fine", cmp.Best)
	}
	if len(cmp.Skipped) != 3 {
		t.Fatalf("expected 3 skipped, got %d", len(cmp.Skipped))
	}
	wantReasons := []string{"pit_lap 0", "pit_lap 53", `unknown compound "ULTRA"`}
	for i, sk := range cmp.Skipped {
		if !strings.Contains(sk.Reason, wantReasons[i]) {
			t.Errorf("skip reason %q missing %q", sk.Reason, wantReasons[i])
		}
	}
}

func TestEvaluator_StintGeometry(t *testing.T) {
	var calls []degradation.Request
	capture := predictFunc(func(r degradation.Request) (degradation.Prediction, error) {
		calls = append(calls, r)
		return degradation.Prediction{Seconds: 1}, nil
	})

	_, err := newEvaluator(capture).Compare(Request{
		Driver:     "HAM",
		Track:      "Silverstone",
		CurrentLap: 25,
		RaceLaps:   52,
		TrackTemp:  42,
		Scenarios:  []Scenario{{Name: "wait", PitLap: 30, Compound: catalog.CompoundMedium}},
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(calls))
	}

	stint1, stint2 := calls[0], calls[1]
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"stint1 age", stint1.TireAge, 30},
		{"stint1 lap", stint1.LapNumber, 15},
		{"stint1 fuel", stint1.FuelLoad, 42.5},
		{"stint1 temp", stint1.TrackTemp, 42},
		{"stint2 age", stint2.TireAge, 22},
		{"stint2 lap", stint2.LapNumber, 41},
		{"stint2 fuel", stint2.FuelLoad, 7},
		{"stint2 temp", stint2.TrackTemp, 42},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestEvaluator_UnknownDriverAbortsComparison(t *testing.T) {
	failing := predictFunc(func(r degradation.Request) (degradation.Prediction, error) {
		return degradation.Prediction{}, &feature.UnknownCategoryError{Field: "driver", Value: r.Driver}
	})

	_, err := newEvaluator(failing).Compare(Request{
		Driver:    "ZZZ",
		Track:     "Monaco",
		RaceLaps:  50,
		Scenarios: []Scenario{{Name: "any", PitLap: 20, Compound: catalog.CompoundSoft}},
	})
	var unknown *feature.UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}
}

func TestEvaluator_RequestValidation(t *testing.T) {
	if _, err := newEvaluator(quadraticWear).Compare(Request{RaceLaps: 0}); err == nil {
		t.Error("expected an error for zero race_laps")
	}

	cmp, err := newEvaluator(quadraticWear).Compare(Request{Driver: "HAM", Track: "Monaco", RaceLaps: 50})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if cmp.Best != nil || len(cmp.Results) != 0 {
		t.Errorf("empty scenario list should produce an empty comparison, got %+v", cmp)
	}
}

// The documented race situation: Hamilton at Silverstone on lap 25 of 52,
// choosing between an immediate hard-tire stop and a five-lap wait for
// mediums. With no trained model both stints cost out on the fallback curve.
func TestEvaluator_HamiltonSilverstoneComparison(t *testing.T) {
	model := degradation.New(catalog.Default(), gbrt.DefaultConfig(), logger.Discard())
	ev := NewEvaluator(model, catalog.Default(), DefaultPolicy(), logger.Discard())

	cmp, err := ev.Compare(Request{
		Driver:     "HAM",
		Track:      "Silverstone",
		CurrentLap: 25,
		RaceLaps:   52,
		TrackTemp:  42,
		Scenarios: []Scenario{
			{Name: "Pit Now-Hard", PitLap: 25, Compound: catalog.CompoundHard},
			{Name: "Wait-Medium", PitLap: 30, Compound: catalog.CompoundMedium},
		},
	})
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if len(cmp.Results) != 2 {
		t.Fatalf("expected exactly 2 results, got %d", len(cmp.Results))
	}

	// Hard: 0.02*25*1.5 + 0.02*27*1.54 = 1.5816. Medium: 0.04*30*1.6 +
	// 0.04*22*1.44 = 3.1872. Both plus the 24s stop.
	if cmp.Best == nil || cmp.Best.Scenario != "Pit Now-Hard" {
		t.Fatalf("best = %+v, want Pit Now-Hard", cmp.Best)
	}
	if math.Abs(cmp.Best.TimeLoss-25.5816) > 1e-9 {
		t.Errorf("best loss = %v, want 25.5816", cmp.Best.TimeLoss)
	}
	if math.Abs(cmp.Results[1].TimeLoss-27.1872) > 1e-9 {
		t.Errorf("runner-up loss = %v, want 27.1872", cmp.Results[1].TimeLoss)
	}
	if cmp.Best.TimeLoss > cmp.Results[1].TimeLoss {
		t.Error("best is not the minimum loss")
	}
}

func TestPolicy_RecommendBoundaries(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		loss float64
		best float64
		want string
	}{
		{"equal to best", 100, 100, RecommendationGood},
		{"exactly ten percent over", 110, 100, RecommendationGood},
		{"just past ten percent", 110.1, 100, RecommendationConsider},
		{"exactly twenty-five percent over", 125, 100, RecommendationConsider},
		{"past twenty-five percent", 125.1, 100, RecommendationRisky},
		{"zero best with loss", 5, 0, RecommendationRisky},
		{"zero best zero loss", 0, 0, RecommendationGood},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.recommend(tt.loss, tt.best); got != tt.want {
				t.Errorf("recommend(%v, %v) = %q, want %q", tt.loss, tt.best, got, tt.want)
			}
		})
	}
}
