// Package race simulates full race distances lap by lap and trains a
// Q-learning agent to decide when to pit and which compound to take. Tire
// wear comes from the degradation engine, so the agent plans against the
// same physics the rest of the system predicts with.
package race

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/degradation"
)

// Action is one per-lap decision.
type Action int

const (
	ActionStay Action = iota
	ActionPitSoft
	ActionPitMedium
	ActionPitHard
)

// stintCompounds maps the pit actions' compound index (action-1) to rubber.
var stintCompounds = []catalog.Compound{
	catalog.CompoundSoft,
	catalog.CompoundMedium,
	catalog.CompoundHard,
}

// Predictor is the slice of the degradation engine the simulator needs.
type Predictor interface {
	Predict(degradation.Request) (degradation.Prediction, error)
}

// SimConfig fixes the race model. Values describe a typical grand prix and
// feed both training and planning, so changing them invalidates a learned
// Q-table.
type SimConfig struct {
	TotalLaps      int
	BaseLapSeconds float64
	PitStopSeconds float64
	GridSize       int
	TrafficFreePos int     // positions above this pay the traffic penalty
	TrafficPenalty float64 // seconds per position stuck in traffic
	WeatherChance  float64 // per-lap probability of a weather flip
	TrackTemp      float64
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		TotalLaps:      70,
		BaseLapSeconds: 85.0,
		PitStopSeconds: 24.0,
		GridSize:       20,
		TrafficFreePos: 10,
		TrafficPenalty: 0.1,
		WeatherChance:  0.1,
		TrackTemp:      35,
	}
}

// Reward shaping. Per-lap urgency plus strategy realism at the flag.
const (
	lapPenalty         = 0.1
	strategicPitBonus  = 5.0
	strategicMinLap    = 15
	strategicMinAge    = 15
	finishRewardScale  = 100.0
	realisticBonus     = 10.0
	unrealisticPenalty = 5.0
	wetPenalty         = 2.0
	maxPitPositionLoss = 3
)

// Fuel burn model shared with the training data generator.
const (
	fuelStartKG  = 110.0
	fuelPerLapKG = 1.8
)

// State is the agent's normalized observation: lap progress, tire age,
// compound, track position, wear, laps remaining, weather, and stops made.
type State [8]float64

// Simulator is one race in progress. Not safe for concurrent use; every
// training run and plan builds its own.
type Simulator struct {
	cfg       SimConfig
	predictor Predictor
	rng       *rand.Rand

	driver string
	track  string

	lap       int
	tireAge   int
	compound  int // index into stintCompounds
	position  int
	weather   int // 0 dry, 1 wet
	pitStops  int
	totalTime float64
	lapTimes  []float64
	pits      []PitEvent
}

// PitEvent records one stop as it happened: the lap, the compound taken,
// the position after the stop, and the age of the discarded set.
type PitEvent struct {
	Lap      int              `json:"lap"`
	Compound catalog.Compound `json:"compound"`
	Position int              `json:"position"`
	TireAge  int              `json:"tire_age"`
}

// RaceSummary describes a completed race distance.
type RaceSummary struct {
	TotalSeconds  float64    `json:"total_time_seconds"`
	PitStops      int        `json:"pit_stops"`
	FinalPosition int        `json:"final_position"`
	AverageLap    float64    `json:"average_lap_seconds"`
	Laps          int        `json:"laps"`
	PitHistory    []PitEvent `json:"pit_history,omitempty"`
}

func NewSimulator(cfg SimConfig, p Predictor, rng *rand.Rand) *Simulator {
	return &Simulator{cfg: cfg, predictor: p, rng: rng}
}

// Reset starts a fresh race on medium tires from a random grid slot.
func (s *Simulator) Reset(driver, track string) (State, error) {
	s.driver = driver
	s.track = track
	s.lap = 1
	s.tireAge = 0
	s.compound = 1 // medium
	s.position = s.rng.Intn(s.cfg.GridSize) + 1
	s.weather = 0
	s.pitStops = 0
	s.totalTime = 0
	s.lapTimes = nil
	s.pits = nil
	return s.state()
}

// PlaceAt overrides the grid slot, clamped to [1, GridSize], and returns
// the refreshed state.
func (s *Simulator) PlaceAt(position int) (State, error) {
	if position < 1 {
		position = 1
	} else if position > s.cfg.GridSize {
		position = s.cfg.GridSize
	}
	s.position = position
	return s.state()
}

// Step runs one lap under the given action and returns the next state, the
// shaped reward, and whether the race is over.
func (s *Simulator) Step(action Action) (State, float64, bool, error) {
	if action < ActionStay || action > ActionPitHard {
		return State{}, 0, false, fmt.Errorf("invalid action %d", action)
	}

	wear, err := s.wear()
	if err != nil {
		return State{}, 0, false, err
	}
	lapTime := s.cfg.BaseLapSeconds + wear
	if s.position > s.cfg.TrafficFreePos {
		lapTime += float64(s.position-s.cfg.TrafficFreePos) * s.cfg.TrafficPenalty
	}

	var reward float64
	if action == ActionStay {
		s.tireAge++
		s.totalTime += lapTime
	} else {
		s.totalTime += lapTime + s.cfg.PitStopSeconds

		discardedAge := s.tireAge
		s.compound = int(action) - 1
		s.tireAge = 0
		s.pitStops++

		loss := maxPitPositionLoss
		if room := s.cfg.GridSize - s.position; room < loss {
			loss = room
		}
		s.position += loss

		s.pits = append(s.pits, PitEvent{
			Lap:      s.lap,
			Compound: stintCompounds[s.compound],
			Position: s.position,
			TireAge:  discardedAge,
		})

		// An undercut only pays off when the old set was actually worn.
		if s.lap > strategicMinLap && discardedAge > strategicMinAge {
			reward += strategicPitBonus
		}
	}

	s.lapTimes = append(s.lapTimes, lapTime)
	s.lap++

	done := s.lap > s.cfg.TotalLaps
	if done {
		reward -= s.totalTime / finishRewardScale
		switch {
		case s.pitStops >= 1 && s.pitStops <= 2:
			reward += realisticBonus
		case s.pitStops == 0 || s.pitStops > 3:
			reward -= unrealisticPenalty
		}
	}
	reward -= lapPenalty

	if s.rng.Float64() < s.cfg.WeatherChance {
		s.weather = 1 - s.weather
		if s.weather == 1 {
			reward -= wetPenalty
		}
	}

	state, err := s.state()
	if err != nil {
		return State{}, 0, false, err
	}
	return state, reward, done, nil
}

// Summary reports the race as run so far.
func (s *Simulator) Summary() RaceSummary {
	var avg float64
	if len(s.lapTimes) > 0 {
		avg = stat.Mean(s.lapTimes, nil)
	}
	return RaceSummary{
		TotalSeconds:  s.totalTime,
		PitStops:      s.pitStops,
		FinalPosition: s.position,
		AverageLap:    avg,
		Laps:          len(s.lapTimes),
		PitHistory:    s.pits,
	}
}

func (s *Simulator) wear() (float64, error) {
	fuel := fuelStartKG - fuelPerLapKG*float64(s.lap)
	if fuel < 0 {
		fuel = 0
	}
	pred, err := s.predictor.Predict(degradation.Request{
		Compound:  stintCompounds[s.compound],
		Driver:    s.driver,
		Track:     s.track,
		TireAge:   float64(s.tireAge),
		TrackTemp: s.cfg.TrackTemp,
		LapNumber: float64(s.lap),
		FuelLoad:  fuel,
	})
	if err != nil {
		return 0, err
	}
	return pred.Seconds, nil
}

func (s *Simulator) state() (State, error) {
	wear, err := s.wear()
	if err != nil {
		return State{}, err
	}
	if wear > 5 {
		wear = 5
	}
	return State{
		float64(s.lap) / float64(s.cfg.TotalLaps),
		float64(s.tireAge) / 50.0,
		float64(s.compound) / 2.0,
		float64(s.position) / float64(s.cfg.GridSize),
		wear / 5.0,
		float64(s.cfg.TotalLaps-s.lap) / float64(s.cfg.TotalLaps),
		float64(s.weather),
		float64(s.pitStops) / 3.0,
	}, nil
}
