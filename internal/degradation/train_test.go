package degradation

import (
	"errors"
	"sync"
	"testing"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/synth"
)

func smallRun() TrainOptions {
	return TrainOptions{Years: []int{2023}, MaxEventsPerYear: 1, Seed: 42}
}

func TestModel_TrainPublishesSnapshot(t *testing.T) {
	m := newTestModel()

	meta, err := m.Train(smallRun())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	// One season, one event: 20 drivers x 5 compounds x 19 stint rows.
	if meta.Samples != 1900 {
		t.Errorf("samples = %d, want 1900", meta.Samples)
	}
	if meta.TrainRows+meta.TestRows != meta.Samples {
		t.Errorf("split rows %d+%d do not cover %d samples", meta.TrainRows, meta.TestRows, meta.Samples)
	}
	if meta.TestRows != 380 {
		t.Errorf("test rows = %d, want 380", meta.TestRows)
	}
	if meta.RunID == "" {
		t.Error("run id is empty")
	}
	if meta.Seed != 42 {
		t.Errorf("seed = %d, want 42", meta.Seed)
	}
	if meta.R2 <= 0.5 || meta.R2 > 1 {
		t.Errorf("r2 = %v, expected a usable fit", meta.R2)
	}
	if meta.RMSE <= 0 {
		t.Errorf("rmse = %v, expected positive", meta.RMSE)
	}

	if !m.Trained() {
		t.Fatal("model not serving after training")
	}
	pred, err := m.Predict(Request{Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco", TireAge: 10, TrackTemp: 35, LapNumber: 11, FuelLoad: 50})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pred.Source != SourceModel {
		t.Errorf("source = %q, want %q", pred.Source, SourceModel)
	}
	if pred.Seconds < 0 {
		t.Errorf("seconds = %v, want non-negative", pred.Seconds)
	}
}

func TestModel_TrainEmptySetKeepsServing(t *testing.T) {
	m := newTestModel()

	first, err := m.Train(smallRun())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	_, err = m.Train(TrainOptions{Samples: []synth.Sample{}})
	if !errors.Is(err, ErrEmptyTrainingSet) {
		t.Fatalf("expected ErrEmptyTrainingSet, got %v", err)
	}

	snap := m.Current()
	if snap == nil || snap.Meta.RunID != first.RunID {
		t.Error("failed training run disturbed the served snapshot")
	}
}

func TestModel_TrainRejectsConcurrentRun(t *testing.T) {
	m := newTestModel()

	m.trainMu.Lock()
	defer m.trainMu.Unlock()

	if _, err := m.Train(smallRun()); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("expected ErrTrainingInProgress, got %v", err)
	}
}

func TestModel_TrainReproducibleFromSeed(t *testing.T) {
	probe := Request{Compound: catalog.CompoundMedium, Driver: "HAM", Track: "Monaco", TireAge: 15, TrackTemp: 35, LapNumber: 16, FuelLoad: 50}

	a := newTestModel()
	b := newTestModel()
	metaA, err := a.Train(smallRun())
	if err != nil {
		t.Fatalf("first Train failed: %v", err)
	}
	metaB, err := b.Train(smallRun())
	if err != nil {
		t.Fatalf("second Train failed: %v", err)
	}

	if metaA.R2 != metaB.R2 || metaA.RMSE != metaB.RMSE {
		t.Errorf("metrics differ across identical seeds: %+v vs %+v", metaA, metaB)
	}
	pa, err := a.Predict(probe)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	pb, err := b.Predict(probe)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if pa.Seconds != pb.Seconds {
		t.Errorf("predictions differ across identical seeds: %v vs %v", pa.Seconds, pb.Seconds)
	}
}

func TestModel_PredictSafeDuringTraining(t *testing.T) {
	m := newTestModel()
	req := Request{Compound: catalog.CompoundSoft, Driver: "VER", Track: "Monaco", TireAge: 10, TrackTemp: 35, LapNumber: 11, FuelLoad: 50}

	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				pred, err := m.Predict(req)
				if err != nil {
					t.Errorf("Predict failed mid-training: %v", err)
					return
				}
				if pred.Seconds < 0 {
					t.Errorf("negative prediction mid-training: %v", pred.Seconds)
					return
				}
			}
		}()
	}

	if _, err := m.Train(smallRun()); err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	close(done)
	wg.Wait()

	if !m.Trained() {
		t.Fatal("model not serving after training")
	}
}
