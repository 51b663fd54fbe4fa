package race

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/undercut/pitwall/internal/catalog"
)

// AgentConfig holds the Q-learning hyperparameters. Epsilon decays per
// episode and persists across runs, so a restored agent keeps exploring
// from where it left off.
type AgentConfig struct {
	LearningRate float64 `json:"learning_rate"`
	Discount     float64 `json:"discount"`
	Epsilon      float64 `json:"epsilon"`
	EpsilonDecay float64 `json:"epsilon_decay"`
	EpsilonMin   float64 `json:"epsilon_min"`
}

func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		LearningRate: 0.1,
		Discount:     0.95,
		Epsilon:      1.0,
		EpsilonDecay: 0.995,
		EpsilonMin:   0.01,
	}
}

// DefaultEpisodes is the training length used when a request names none.
const DefaultEpisodes = 500

// Default rotation pools. Variety across drivers and circuits keeps the
// Q-table from overfitting one race shape.
var (
	DefaultDrivers = []string{"HAM", "VER", "LEC", "NOR", "RUS"}
	DefaultTracks  = []string{"Silverstone", "Monaco", "Spain", "Italy"}
)

const stateBins = 10

// stateKey is the discretized observation: each dimension bucketed into
// stateBins bins. Arrays are comparable, so it keys the Q-table directly.
type stateKey [8]int8

func discretize(s State) stateKey {
	var k stateKey
	for i, v := range s {
		b := int(v * stateBins)
		if b < 0 {
			b = 0
		}
		if b > stateBins-1 {
			b = stateBins - 1
		}
		k[i] = int8(b)
	}
	return k
}

func (k stateKey) String() string {
	var b [8]byte
	for i, v := range k {
		b[i] = '0' + byte(v)
	}
	return string(b[:])
}

func parseStateKey(s string) (stateKey, error) {
	var k stateKey
	if len(s) != len(k) {
		return k, fmt.Errorf("state key %q: want %d digits", s, len(k))
	}
	for i := 0; i < len(k); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return k, fmt.Errorf("state key %q: bad digit %q", s, c)
		}
		k[i] = int8(c - '0')
	}
	return k, nil
}

// greedy picks the highest-valued action, first index on ties. Missing
// states read as all-zero values, which favors ActionStay.
func greedy(q map[stateKey][4]float64, s State) Action {
	vals := q[discretize(s)]
	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}
	return Action(best)
}

// Agent learns pit strategy by Q-learning over simulated races. Training
// runs are serialized and work on a private copy of the Q-table, publishing
// it wholesale on completion, so Plan and Status always read a consistent
// table without blocking a run in progress.
type Agent struct {
	simCfg    SimConfig
	predictor Predictor
	logger    *slog.Logger

	trainMu sync.Mutex

	mu       sync.RWMutex
	cfg      AgentConfig
	q        map[stateKey][4]float64
	epsilon  float64
	episodes int
	bestTime float64 // zero until the first run publishes
	bestPits int
}

func NewAgent(cfg AgentConfig, simCfg SimConfig, p Predictor, logger *slog.Logger) *Agent {
	return &Agent{
		simCfg:    simCfg,
		predictor: p,
		logger:    logger,
		cfg:       cfg,
		q:         make(map[stateKey][4]float64),
		epsilon:   cfg.Epsilon,
	}
}

// TrainOptions bounds one optimization run. Zero values fall back to the
// package defaults; the seed drives every random draw in the run.
type TrainOptions struct {
	Episodes int
	Drivers  []string
	Tracks   []string
	Seed     int64
}

// TrainSummary reports one completed run.
type TrainSummary struct {
	RunID           string  `json:"run_id"`
	Episodes        int     `json:"episodes"`
	TotalEpisodes   int     `json:"total_episodes"`
	Epsilon         float64 `json:"epsilon"`
	QStates         int     `json:"q_states"`
	BestTimeSeconds float64 `json:"best_time_seconds"`
	BestPitStops    int     `json:"best_pit_stops"`
}

// Train runs the requested number of episodes and merges the result into
// the served table. Concurrent calls fail fast with ErrTrainingInProgress.
func (a *Agent) Train(opts TrainOptions) (TrainSummary, error) {
	if !a.trainMu.TryLock() {
		return TrainSummary{}, ErrTrainingInProgress
	}
	defer a.trainMu.Unlock()

	episodes := opts.Episodes
	if episodes <= 0 {
		episodes = DefaultEpisodes
	}
	drivers := opts.Drivers
	if len(drivers) == 0 {
		drivers = DefaultDrivers
	}
	tracks := opts.Tracks
	if len(tracks) == 0 {
		tracks = DefaultTracks
	}

	a.mu.RLock()
	table := make(map[stateKey][4]float64, len(a.q))
	for k, v := range a.q {
		table[k] = v
	}
	tr := &trainer{cfg: a.cfg, q: table, epsilon: a.epsilon}
	a.mu.RUnlock()

	start := time.Now()
	rng := rand.New(rand.NewSource(opts.Seed))
	sim := NewSimulator(a.simCfg, a.predictor, rng)

	a.logger.Info("agent training started",
		"episodes", episodes,
		"drivers", drivers,
		"tracks", tracks,
		"seed", opts.Seed,
	)

	var rewards []float64
	bestTime := 0.0
	bestPits := 0
	for ep := 0; ep < episodes; ep++ {
		driver := drivers[rng.Intn(len(drivers))]
		track := tracks[rng.Intn(len(tracks))]

		total, summary, err := tr.episode(sim, rng, driver, track)
		if err != nil {
			return TrainSummary{}, fmt.Errorf("episode %d (%s at %s): %w", ep+1, driver, track, err)
		}
		rewards = append(rewards, total)
		if bestTime == 0 || summary.TotalSeconds < bestTime {
			bestTime = summary.TotalSeconds
			bestPits = summary.PitStops
		}

		if (ep+1)%100 == 0 {
			window := rewards
			if len(window) > 100 {
				window = window[len(window)-100:]
			}
			a.logger.Debug("training progress",
				"episode", ep+1,
				"avg_reward", stat.Mean(window, nil),
				"epsilon", tr.epsilon,
				"best_time", bestTime,
			)
		}
	}

	a.mu.Lock()
	a.q = tr.q
	a.epsilon = tr.epsilon
	a.episodes += episodes
	if a.bestTime == 0 || bestTime < a.bestTime {
		a.bestTime = bestTime
		a.bestPits = bestPits
	}
	summary := TrainSummary{
		RunID:           uuid.NewString(),
		Episodes:        episodes,
		TotalEpisodes:   a.episodes,
		Epsilon:         a.epsilon,
		QStates:         len(a.q),
		BestTimeSeconds: a.bestTime,
		BestPitStops:    a.bestPits,
	}
	a.mu.Unlock()

	a.logger.Info("agent trained",
		"run_id", summary.RunID,
		"episodes", episodes,
		"total_episodes", summary.TotalEpisodes,
		"q_states", summary.QStates,
		"best_time", summary.BestTimeSeconds,
		"duration", time.Since(start),
	)
	return summary, nil
}

// trainer is the run-private learning state.
type trainer struct {
	cfg     AgentConfig
	q       map[stateKey][4]float64
	epsilon float64
}

func (t *trainer) episode(sim *Simulator, rng *rand.Rand, driver, track string) (float64, RaceSummary, error) {
	state, err := sim.Reset(driver, track)
	if err != nil {
		return 0, RaceSummary{}, err
	}

	var total float64
	for {
		action := t.choose(state, rng)
		next, reward, done, err := sim.Step(action)
		if err != nil {
			return 0, RaceSummary{}, err
		}
		t.update(state, action, reward, next, done)
		total += reward
		state = next
		if done {
			break
		}
	}

	if t.epsilon > t.cfg.EpsilonMin {
		t.epsilon *= t.cfg.EpsilonDecay
	}
	return total, sim.Summary(), nil
}

func (t *trainer) choose(s State, rng *rand.Rand) Action {
	if rng.Float64() < t.epsilon {
		return Action(rng.Intn(4))
	}
	return greedy(t.q, s)
}

func (t *trainer) update(s State, action Action, reward float64, next State, done bool) {
	key := discretize(s)
	target := reward
	if !done {
		vals := t.q[discretize(next)]
		maxNext := vals[0]
		for _, v := range vals[1:] {
			if v > maxNext {
				maxNext = v
			}
		}
		target += t.cfg.Discount * maxNext
	}
	vals := t.q[key]
	vals[action] += t.cfg.LearningRate * (target - vals[action])
	t.q[key] = vals
}

// PlannedStop is one pit call in a planned strategy: the lap to box on,
// the compound to take, and the position and tire age going in.
type PlannedStop struct {
	Lap      int              `json:"lap"`
	Compound catalog.Compound `json:"compound"`
	Position int              `json:"position"`
	TireAge  int              `json:"tire_age"`
}

// PlanOptions configure a greedy rollout. An unset driver or track falls
// back to the first training default; StartingPosition 0 keeps the seeded
// random grid slot.
type PlanOptions struct {
	Driver           string
	Track            string
	StartingPosition int
	Seed             int64
}

// Plan rolls a race greedily under the learned policy and returns the pit
// calls it makes plus the simulated outcome. The seed fixes grid position
// and weather, so a plan is reproducible.
func (a *Agent) Plan(opts PlanOptions) ([]PlannedStop, RaceSummary, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.episodes == 0 {
		return nil, RaceSummary{}, ErrAgentNotTrained
	}

	driver := opts.Driver
	if driver == "" {
		driver = DefaultDrivers[0]
	}
	track := opts.Track
	if track == "" {
		track = DefaultTracks[0]
	}

	sim := NewSimulator(a.simCfg, a.predictor, rand.New(rand.NewSource(opts.Seed)))
	state, err := sim.Reset(driver, track)
	if err != nil {
		return nil, RaceSummary{}, err
	}
	if opts.StartingPosition > 0 {
		if state, err = sim.PlaceAt(opts.StartingPosition); err != nil {
			return nil, RaceSummary{}, err
		}
	}

	var stops []PlannedStop
	for {
		action := greedy(a.q, state)
		if action != ActionStay {
			stops = append(stops, PlannedStop{
				Lap:      sim.lap,
				Compound: stintCompounds[int(action)-1],
				Position: sim.position,
				TireAge:  sim.tireAge,
			})
		}
		next, _, done, err := sim.Step(action)
		if err != nil {
			return nil, RaceSummary{}, err
		}
		state = next
		if done {
			break
		}
	}
	return stops, sim.Summary(), nil
}

// Training reports whether an optimization run is in flight. The answer is
// advisory: a run may start or finish right after the probe.
func (a *Agent) Training() bool {
	if a.trainMu.TryLock() {
		a.trainMu.Unlock()
		return false
	}
	return true
}

// Config returns the hyperparameters currently in effect. Restore may have
// replaced the ones the agent was constructed with.
func (a *Agent) Config() AgentConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Environment describes the simulated race the agent trains against.
type Environment struct {
	RaceLength     int                `json:"race_length"`
	PitStopSeconds float64            `json:"pit_stop_time"`
	Compounds      []catalog.Compound `json:"compounds"`
}

func (a *Agent) Environment() Environment {
	return Environment{
		RaceLength:     a.simCfg.TotalLaps,
		PitStopSeconds: a.simCfg.PitStopSeconds,
		Compounds:      append([]catalog.Compound(nil), stintCompounds...),
	}
}

// Status reports the agent for health and UI surfaces.
type Status struct {
	Trained         bool    `json:"trained"`
	Episodes        int     `json:"episodes_completed"`
	Epsilon         float64 `json:"epsilon"`
	QStates         int     `json:"q_states"`
	BestTimeSeconds float64 `json:"best_time_seconds,omitempty"`
	BestPitStops    int     `json:"best_pit_stops,omitempty"`
}

func (a *Agent) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Status{
		Trained:         a.episodes > 0,
		Episodes:        a.episodes,
		Epsilon:         a.epsilon,
		QStates:         len(a.q),
		BestTimeSeconds: a.bestTime,
		BestPitStops:    a.bestPits,
	}
}

// AgentState is the persistable form of a trained agent. Q-table keys are
// the bin digits of each state dimension.
type AgentState struct {
	Config   AgentConfig           `json:"config"`
	Epsilon  float64               `json:"epsilon"`
	Episodes int                   `json:"episodes"`
	BestTime float64               `json:"best_time_seconds"`
	BestPits int                   `json:"best_pit_stops"`
	Q        map[string][4]float64 `json:"q"`
}

// Snapshot copies the agent's learned state for persistence.
func (a *Agent) Snapshot() AgentState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	q := make(map[string][4]float64, len(a.q))
	for k, v := range a.q {
		q[k.String()] = v
	}
	return AgentState{
		Config:   a.cfg,
		Epsilon:  a.epsilon,
		Episodes: a.episodes,
		BestTime: a.bestTime,
		BestPits: a.bestPits,
		Q:        q,
	}
}

// Restore replaces the agent's learned state with a persisted one.
func (a *Agent) Restore(st AgentState) error {
	q := make(map[stateKey][4]float64, len(st.Q))
	for s, v := range st.Q {
		k, err := parseStateKey(s)
		if err != nil {
			return err
		}
		q[k] = v
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg = st.Config
	a.epsilon = st.Epsilon
	a.episodes = st.Episodes
	a.bestTime = st.BestTime
	a.bestPits = st.BestPits
	a.q = q
	return nil
}
