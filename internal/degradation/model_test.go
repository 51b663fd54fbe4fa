package degradation

import (
	"errors"
	"math"
	"testing"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/feature"
	"github.com/undercut/pitwall/internal/gbrt"
	"github.com/undercut/pitwall/internal/logger"
	"github.com/undercut/pitwall/internal/synth"
)

// testConfig keeps training fast enough for unit tests while leaving the
// ensemble accurate on the synthetic wear surface.
func testConfig() gbrt.Config {
	return gbrt.Config{Trees: 40, MaxDepth: 4, LearningRate: 0.2, MinLeaf: 5}
}

func newTestModel() *Model {
	return New(catalog.Default(), testConfig(), logger.Discard())
}

func TestModel_FallbackCurve(t *testing.T) {
	m := newTestModel()

	tests := []struct {
		name     string
		compound catalog.Compound
		age      float64
		want     float64
	}{
		{"medium at twenty laps", catalog.CompoundMedium, 20, 1.12},
		{"soft at ten laps", catalog.CompoundSoft, 10, 0.96},
		{"hard fresh", catalog.CompoundHard, 0, 0},
		{"unknown compound uses default rate", catalog.Compound("XSOFT"), 10, 0.6},
		{"negative age clamps to zero", catalog.CompoundSoft, -5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Fallback(tt.age, tt.compound)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Fallback(%v, %s) = %v, want %v", tt.age, tt.compound, got, tt.want)
			}
		})
	}
}

func TestModel_PredictBeforeTraining(t *testing.T) {
	m := newTestModel()

	if m.Trained() {
		t.Fatal("fresh model reports trained")
	}
	if m.Current() != nil {
		t.Fatal("fresh model serves a snapshot")
	}

	pred, err := m.Predict(Request{
		Compound: catalog.CompoundMedium,
		Driver:   "HAM",
		Track:    "Silverstone",
		TireAge:  20,
	})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.Source != SourceFallback {
		t.Errorf("source = %q, want %q", pred.Source, SourceFallback)
	}
	if math.Abs(pred.Seconds-1.12) > 1e-9 {
		t.Errorf("seconds = %v, want 1.12", pred.Seconds)
	}
}

func TestModel_PredictUnknownCategory(t *testing.T) {
	m := newTestModel()
	if _, err := m.Train(TrainOptions{Years: []int{2023}, MaxEventsPerYear: 1, Seed: 42}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"unseen track", Request{Compound: catalog.CompoundSoft, Driver: "VER", Track: "Imola", TireAge: 10}, "track"},
		{"unseen driver", Request{Compound: catalog.CompoundSoft, Driver: "XXX", Track: "Monaco", TireAge: 10}, "driver"},
		{"unseen compound", Request{Compound: catalog.Compound("SUPERSOFT"), Driver: "VER", Track: "Monaco", TireAge: 10}, "compound"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Predict(tt.req)
			var unknown *feature.UnknownCategoryError
			if !errors.As(err, &unknown) {
				t.Fatalf("expected UnknownCategoryError, got %v", err)
			}
			if unknown.Field != tt.field {
				t.Errorf("field = %q, want %q", unknown.Field, tt.field)
			}
		})
	}
}

func TestModel_PredictClampsNegativeOutput(t *testing.T) {
	m := newTestModel()

	// A snapshot fit on uniformly negative labels predicts below zero for
	// every point, so the clamp is the only thing keeping output valid.
	samples := []synth.Sample{
		{DegradationSeconds: -1, TireAge: 0, Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco"},
		{DegradationSeconds: -1, TireAge: 5, Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco"},
		{DegradationSeconds: -1, TireAge: 10, Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco"},
		{DegradationSeconds: -1, TireAge: 15, Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco"},
		{DegradationSeconds: -1, TireAge: 20, Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco"},
		{DegradationSeconds: -1, TireAge: 25, Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco"},
	}
	encoders, x, y := feature.Fit(samples)
	reg := gbrt.New(testConfig())
	if err := reg.Fit(x, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	m.Restore(&Snapshot{Regressor: reg, Encoders: encoders, Catalog: catalog.Default()})

	pred, err := m.Predict(Request{Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco", TireAge: 10})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.Seconds != 0 {
		t.Errorf("seconds = %v, want clamp to 0", pred.Seconds)
	}
	if pred.Source != SourceModel {
		t.Errorf("source = %q, want %q", pred.Source, SourceModel)
	}
}
