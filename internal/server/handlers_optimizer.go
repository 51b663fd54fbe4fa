package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/undercut/pitwall/internal/feature"
	"github.com/undercut/pitwall/internal/race"
)

// OptimizerTrainRequest bounds one optimization run. All fields are
// optional; config and package defaults fill the gaps.
type OptimizerTrainRequest struct {
	Episodes int      `json:"episodes"`
	Drivers  []string `json:"drivers"`
	Tracks   []string `json:"tracks"`
	Seed     *int64   `json:"seed"`
}

type OptimizerTrainResponse struct {
	Success           bool    `json:"success"`
	EpisodesCompleted int     `json:"episodes_completed"`
	BestRaceTime      float64 `json:"best_race_time"`
	BestPitStops      int     `json:"best_pit_stops"`
	Epsilon           float64 `json:"epsilon"`
}

func (s *Server) handleOptimizerTrain(w http.ResponseWriter, r *http.Request) {
	var req OptimizerTrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	episodes := req.Episodes
	if episodes <= 0 {
		episodes = s.config.Optimizer.Episodes
	}
	seed := s.config.Optimizer.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	summary, err := s.agent.Train(race.TrainOptions{
		Episodes: episodes,
		Drivers:  req.Drivers,
		Tracks:   req.Tracks,
		Seed:     seed,
	})
	if err != nil {
		if errors.Is(err, race.ErrTrainingInProgress) {
			s.writeError(w, http.StatusConflict, err.Error())
			return
		}
		var unknown *feature.UnknownCategoryError
		if errors.As(err, &unknown) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.agentEpisodes.Set(float64(summary.TotalEpisodes))

	if err := s.store.SaveAgent(s.agent.Snapshot()); err != nil {
		s.logger.Error("failed to save pit agent artifact", "error", err)
	}

	s.writeJSON(w, http.StatusOK, OptimizerTrainResponse{
		Success:           true,
		EpisodesCompleted: summary.TotalEpisodes,
		BestRaceTime:      round1(summary.BestTimeSeconds),
		BestPitStops:      summary.BestPitStops,
		Epsilon:           summary.Epsilon,
	})
}

// OptimizerPlanRequest frames one plan rollout. An unset driver or track
// falls back to the first training default; an unset seed draws a fresh
// race, so repeated calls explore different grids and weather.
type OptimizerPlanRequest struct {
	Driver           string `json:"driver"`
	Track            string `json:"track"`
	StartingPosition int    `json:"starting_position"`
	Seed             *int64 `json:"seed"`
}

// PlanSummary is the simulated outcome of following the planned strategy.
type PlanSummary struct {
	TotalRaceTime   float64 `json:"total_race_time"`
	TotalPitStops   int     `json:"total_pit_stops"`
	FinalPosition   int     `json:"final_position"`
	AverageLapTime  float64 `json:"average_lap_time"`
	StrategyQuality string  `json:"strategy_quality"`
}

type OptimizerPlanResponse struct {
	Driver          string             `json:"driver"`
	Track           string             `json:"track"`
	PitSchedule     []race.PlannedStop `json:"pit_schedule"`
	RaceSummary     PlanSummary        `json:"race_summary"`
	ModelConfidence string             `json:"model_confidence"`
}

// strategyQuality grades a simulated race time against grand prix
// expectations: over 100 minutes reads as poor, under ~83 as excellent.
func strategyQuality(totalSeconds float64) string {
	switch {
	case totalSeconds > 6000:
		return "Poor"
	case totalSeconds > 5400:
		return "Average"
	case totalSeconds > 5000:
		return "Good"
	default:
		return "Excellent"
	}
}

func (s *Server) handleOptimizerPlan(w http.ResponseWriter, r *http.Request) {
	var req OptimizerPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.StartingPosition < 0 {
		s.writeError(w, http.StatusBadRequest, "starting_position must be positive")
		return
	}
	if s.agent.Training() {
		s.writeError(w, http.StatusConflict, race.ErrTrainingInProgress.Error())
		return
	}

	driver := req.Driver
	if driver == "" {
		driver = race.DefaultDrivers[0]
	}
	track := req.Track
	if track == "" {
		track = race.DefaultTracks[0]
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	stops, summary, err := s.agent.Plan(race.PlanOptions{
		Driver:           driver,
		Track:            track,
		StartingPosition: req.StartingPosition,
		Seed:             seed,
	})
	if err != nil {
		if errors.Is(err, race.ErrAgentNotTrained) {
			s.writeError(w, http.StatusPreconditionFailed, err.Error())
			return
		}
		var unknown *feature.UnknownCategoryError
		if errors.As(err, &unknown) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stops == nil {
		stops = []race.PlannedStop{}
	}

	confidence := "Medium"
	if s.agent.Status().Episodes > race.DefaultEpisodes {
		confidence = "High"
	}

	s.writeJSON(w, http.StatusOK, OptimizerPlanResponse{
		Driver:      driver,
		Track:       track,
		PitSchedule: stops,
		RaceSummary: PlanSummary{
			TotalRaceTime:   round1(summary.TotalSeconds),
			TotalPitStops:   summary.PitStops,
			FinalPosition:   summary.FinalPosition,
			AverageLapTime:  round2(summary.AverageLap),
			StrategyQuality: strategyQuality(summary.TotalSeconds),
		},
		ModelConfidence: confidence,
	})
}

type OptimizerParameters struct {
	LearningRate   float64 `json:"learning_rate"`
	DiscountFactor float64 `json:"discount_factor"`
}

type OptimizerStatusResponse struct {
	race.Status
	Parameters  OptimizerParameters `json:"parameters"`
	Environment race.Environment    `json:"environment"`
}

func (s *Server) handleOptimizerStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.agent.Config()

	s.writeJSON(w, http.StatusOK, OptimizerStatusResponse{
		Status: s.agent.Status(),
		Parameters: OptimizerParameters{
			LearningRate:   cfg.LearningRate,
			DiscountFactor: cfg.Discount,
		},
		Environment: s.agent.Environment(),
	})
}
