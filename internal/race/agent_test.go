package race

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/degradation"
	"github.com/undercut/pitwall/internal/gbrt"
	"github.com/undercut/pitwall/internal/logger"
)

// newTestAgent plans against the fallback wear curve: deterministic and
// cheap, no trained tire model required.
func newTestAgent() *Agent {
	model := degradation.New(catalog.Default(), gbrt.DefaultConfig(), logger.Discard())
	return NewAgent(DefaultAgentConfig(), DefaultSimConfig(), model, logger.Discard())
}

func TestAgent_PlanBeforeTraining(t *testing.T) {
	a := newTestAgent()
	if _, _, err := a.Plan(PlanOptions{Driver: "HAM", Track: "Silverstone", Seed: 1}); !errors.Is(err, ErrAgentNotTrained) {
		t.Fatalf("expected ErrAgentNotTrained, got %v", err)
	}

	st := a.Status()
	if st.Trained || st.Episodes != 0 || st.QStates != 0 {
		t.Errorf("fresh agent status = %+v", st)
	}
}

func TestAgent_TrainThenPlan(t *testing.T) {
	a := newTestAgent()

	summary, err := a.Train(TrainOptions{Episodes: 5, Seed: 42})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if summary.Episodes != 5 || summary.TotalEpisodes != 5 {
		t.Errorf("episodes = %d/%d, want 5/5", summary.Episodes, summary.TotalEpisodes)
	}
	if summary.RunID == "" {
		t.Error("run id is empty")
	}
	if summary.QStates == 0 {
		t.Error("no states learned")
	}
	if summary.Epsilon >= 1.0 {
		t.Errorf("epsilon = %v, want decayed below 1.0", summary.Epsilon)
	}
	if summary.BestTimeSeconds <= 0 {
		t.Errorf("best time = %v, want positive", summary.BestTimeSeconds)
	}

	st := a.Status()
	if !st.Trained || st.Episodes != 5 {
		t.Errorf("status = %+v, want trained with 5 episodes", st)
	}

	stops, race, err := a.Plan(PlanOptions{Driver: "HAM", Track: "Silverstone", Seed: 7})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if race.Laps != 70 {
		t.Errorf("planned race ran %d laps, want 70", race.Laps)
	}
	if race.PitStops != len(stops) {
		t.Errorf("summary counts %d stops but plan lists %d", race.PitStops, len(stops))
	}
	for _, stop := range stops {
		if stop.Lap < 1 || stop.Lap > 70 {
			t.Errorf("stop lap %d out of race bounds", stop.Lap)
		}
		switch stop.Compound {
		case catalog.CompoundSoft, catalog.CompoundMedium, catalog.CompoundHard:
		default:
			t.Errorf("stop compound %q not a slick", stop.Compound)
		}
	}
}

func TestAgent_TrainRejectsConcurrentRun(t *testing.T) {
	a := newTestAgent()
	a.trainMu.Lock()
	defer a.trainMu.Unlock()

	if _, err := a.Train(TrainOptions{Episodes: 1}); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("expected ErrTrainingInProgress, got %v", err)
	}
}

func TestAgent_TrainReproducibleFromSeed(t *testing.T) {
	opts := TrainOptions{Episodes: 5, Seed: 11}

	a := newTestAgent()
	b := newTestAgent()
	sa, err := a.Train(opts)
	if err != nil {
		t.Fatalf("first Train failed: %v", err)
	}
	sb, err := b.Train(opts)
	if err != nil {
		t.Fatalf("second Train failed: %v", err)
	}

	if sa.QStates != sb.QStates || sa.Epsilon != sb.Epsilon || sa.BestTimeSeconds != sb.BestTimeSeconds {
		t.Errorf("summaries diverge across identical seeds: %+v vs %+v", sa, sb)
	}

	stopsA, raceA, err := a.Plan(PlanOptions{Driver: "VER", Track: "Monaco", Seed: 3})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	stopsB, raceB, err := b.Plan(PlanOptions{Driver: "VER", Track: "Monaco", Seed: 3})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !reflect.DeepEqual(stopsA, stopsB) {
		t.Errorf("plans diverge: %+v vs %+v", stopsA, stopsB)
	}
	if raceA.TotalSeconds != raceB.TotalSeconds {
		t.Errorf("race times diverge: %v vs %v", raceA.TotalSeconds, raceB.TotalSeconds)
	}
}

func TestAgent_SnapshotRestoreRoundTrip(t *testing.T) {
	a := newTestAgent()
	if _, err := a.Train(TrainOptions{Episodes: 5, Seed: 42}); err != nil {
		t.Fatalf("Train failed: %v", err)
	}

	// Through JSON, as the artifact store would carry it.
	raw, err := json.Marshal(a.Snapshot())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var state AgentState
	if err := json.Unmarshal(raw, &state); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	b := newTestAgent()
	if err := b.Restore(state); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if a.Status() != b.Status() {
		t.Errorf("status diverges after restore: %+v vs %+v", a.Status(), b.Status())
	}
	stopsA, raceA, err := a.Plan(PlanOptions{Driver: "HAM", Track: "Silverstone", Seed: 9})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	stopsB, raceB, err := b.Plan(PlanOptions{Driver: "HAM", Track: "Silverstone", Seed: 9})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if !reflect.DeepEqual(stopsA, stopsB) || raceA.TotalSeconds != raceB.TotalSeconds {
		t.Error("restored agent plans differently")
	}
}

func TestAgent_RestoreRejectsCorruptKeys(t *testing.T) {
	a := newTestAgent()

	bad := []AgentState{
		{Q: map[string][4]float64{"123": {}}},
		{Q: map[string][4]float64{"12345678x": {}}},
		{Q: map[string][4]float64{"1234567a": {}}},
	}
	for _, st := range bad {
		if err := a.Restore(st); err == nil {
			t.Errorf("Restore accepted corrupt key set %v", st.Q)
		}
	}
}

func TestDiscretize(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"all zero", State{}, "00000000"},
		{"all one clamps to top bin", State{1, 1, 1, 1, 1, 1, 1, 1}, "99999999"},
		{"negative clamps to bottom", State{-0.5, 0, 0, 0, 0, 0, 0, 0}, "00000000"},
		{"mid values", State{0.55, 0.19, 0.5, 0.95, 0.31, 0.99, 0, 0.33}, "51593903"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := discretize(tt.state)
			if key.String() != tt.want {
				t.Errorf("discretize = %q, want %q", key.String(), tt.want)
			}
			back, err := parseStateKey(key.String())
			if err != nil {
				t.Fatalf("parseStateKey failed: %v", err)
			}
			if back != key {
				t.Errorf("round trip changed key: %v vs %v", back, key)
			}
		})
	}
}
