package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/undercut/pitwall/internal/catalog"
	"github.com/undercut/pitwall/internal/degradation"
	"github.com/undercut/pitwall/internal/feature"
	"github.com/undercut/pitwall/internal/race"
	"github.com/undercut/pitwall/internal/strategy"
	"github.com/undercut/pitwall/internal/sysinfo"
)

// Request defaults applied when the caller leaves a field unset.
const (
	defaultTrackTemp = 35.0
	defaultLapNumber = 10.0
	defaultFuelLoad  = 50.0
	defaultRaceLaps  = 50
)

type InfoResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Ready bool `json:"ready"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	resp := InfoResponse{
		Name:    "pitwall",
		Version: s.version,
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status: "ok",
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// handleReady reports readiness. The engine answers from the fallback curve
// before any training run, so serving at all means ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ReadyResponse{Ready: true})
}

// ModelStatus summarizes the tire model for the status surface.
type ModelStatus struct {
	Trained            bool               `json:"trained"`
	LastRun            *degradation.Meta  `json:"last_run,omitempty"`
	AvailableCompounds []catalog.Compound `json:"available_compounds"`
	SupportedDrivers   int                `json:"supported_drivers"`
}

type StatusResponse struct {
	Name          string           `json:"name"`
	Version       string           `json:"version"`
	UptimeSeconds float64          `json:"uptime_seconds"`
	Model         ModelStatus      `json:"model"`
	Optimizer     race.Status      `json:"optimizer"`
	Host          sysinfo.Snapshot `json:"host"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	host, err := sysinfo.Collect()
	if err != nil {
		// Partial snapshots still serve; failed probes read as zero
		s.logger.Warn("host snapshot incomplete", "error", err)
	}

	model := ModelStatus{
		Trained:            s.model.Trained(),
		AvailableCompounds: make([]catalog.Compound, 0, 5),
		SupportedDrivers:   len(s.catalog.RankedDrivers()),
	}
	for _, p := range s.catalog.Compounds() {
		model.AvailableCompounds = append(model.AvailableCompounds, p.Compound)
	}
	if snap := s.model.Current(); snap != nil {
		meta := snap.Meta
		model.LastRun = &meta
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		Name:          "pitwall",
		Version:       s.version,
		UptimeSeconds: time.Since(s.started).Seconds(),
		Model:         model,
		Optimizer:     s.agent.Status(),
		Host:          host,
	})
}

// CompoundInfo describes one compound for the reference endpoint.
type CompoundInfo struct {
	BaseDegradationRate float64 `json:"base_degradation_rate"`
	Characteristics     string  `json:"characteristics"`
}

type CompoundsResponse struct {
	Compounds            map[catalog.Compound]CompoundInfo `json:"compounds"`
	OptimalStrategyGuide map[string]string                 `json:"optimal_strategy_guide"`
}

var compoundCharacteristics = map[catalog.Compound]string{
	catalog.CompoundSoft:         "Fastest lap times, high degradation, 10-25 lap stints",
	catalog.CompoundMedium:       "Balanced performance, moderate degradation, 20-35 lap stints",
	catalog.CompoundHard:         "Slowest but most durable, low degradation, 30-50 lap stints",
	catalog.CompoundIntermediate: "For light wet conditions, high degradation",
	catalog.CompoundWet:          "For heavy rain, very high degradation",
}

var strategyGuide = map[string]string{
	"short_race":     "SOFT for speed, accept higher degradation",
	"medium_race":    "MEDIUM for balance of speed and durability",
	"long_race":      "HARD for consistency, plan 1-stop strategy",
	"wet_conditions": "INTERMEDIATE then WET as conditions worsen",
}

func (s *Server) handleCompounds(w http.ResponseWriter, r *http.Request) {
	compounds := make(map[catalog.Compound]CompoundInfo)
	for _, p := range s.catalog.Compounds() {
		text, ok := compoundCharacteristics[p.Compound]
		if !ok {
			text = "Unknown compound characteristics"
		}
		compounds[p.Compound] = CompoundInfo{
			BaseDegradationRate: p.BaseDegradation,
			Characteristics:     text,
		}
	}

	s.writeJSON(w, http.StatusOK, CompoundsResponse{
		Compounds:            compounds,
		OptimalStrategyGuide: strategyGuide,
	})
}

// DriverRanking is one row of the tire-management leaderboard.
type DriverRanking struct {
	Rank                int     `json:"rank"`
	Driver              string  `json:"driver"`
	TireManagementSkill float64 `json:"tire_management_skill"`
	SkillLevel          string  `json:"skill_level"`
}

type DriversResponse struct {
	DriverRankings  []DriverRanking `json:"driver_rankings"`
	TopTireManagers []string        `json:"top_3_tire_managers"`
}

func skillLevel(skill float64) string {
	switch {
	case skill > 0.9:
		return "Excellent"
	case skill > 0.85:
		return "Good"
	default:
		return "Average"
	}
}

func (s *Server) handleDrivers(w http.ResponseWriter, r *http.Request) {
	ranked := s.catalog.RankedDrivers()

	resp := DriversResponse{
		DriverRankings:  make([]DriverRanking, 0, len(ranked)),
		TopTireManagers: make([]string, 0, 3),
	}
	for i, d := range ranked {
		resp.DriverRankings = append(resp.DriverRankings, DriverRanking{
			Rank:                i + 1,
			Driver:              d.Code,
			TireManagementSkill: d.TireSkill,
			SkillLevel:          skillLevel(d.TireSkill),
		})
		if i < 3 {
			resp.TopTireManagers = append(resp.TopTireManagers, d.Code)
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// TrainRequest bounds one training run. All fields are optional; config
// defaults fill the gaps. An empty body trains with pure defaults.
type TrainRequest struct {
	Years            []int  `json:"years"`
	MaxEventsPerYear int    `json:"max_events_per_year"`
	Seed             *int64 `json:"seed"`
}

type TrainResponse struct {
	Success    bool    `json:"success"`
	RunID      string  `json:"run_id"`
	R2         float64 `json:"r2"`
	RMSE       float64 `json:"rmse"`
	Samples    int     `json:"samples"`
	DurationMS int64   `json:"duration_ms"`
}

// TrainFailure reports a run that completed without producing a model.
type TrainFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	opts := degradation.TrainOptions{
		Years:            req.Years,
		MaxEventsPerYear: req.MaxEventsPerYear,
		Seed:             s.config.Training.Seed,
		ValidationSplit:  s.config.Training.ValidationSplit,
	}
	if len(opts.Years) == 0 {
		opts.Years = s.config.Training.Years
	}
	if opts.MaxEventsPerYear <= 0 {
		opts.MaxEventsPerYear = s.config.Training.MaxEventsPerYear
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}

	start := time.Now()
	meta, err := s.model.Train(opts)
	switch {
	case errors.Is(err, degradation.ErrTrainingInProgress):
		s.writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, degradation.ErrEmptyTrainingSet):
		s.writeJSON(w, http.StatusOK, TrainFailure{Success: false, Error: err.Error()})
		return
	case err != nil:
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.trainDuration.Observe(time.Since(start).Seconds())
	s.metrics.modelTrained.Set(1)

	if err := s.store.SaveModel(s.model.Current()); err != nil {
		s.logger.Error("failed to save tire model artifact", "error", err)
	}

	s.writeJSON(w, http.StatusOK, TrainResponse{
		Success:    true,
		RunID:      meta.RunID,
		R2:         meta.R2,
		RMSE:       meta.RMSE,
		Samples:    meta.Samples,
		DurationMS: time.Since(start).Milliseconds(),
	})
}

// PredictRequest is one inference point. Pointer fields distinguish "absent"
// from an explicit zero so the documented defaults only fill true gaps.
type PredictRequest struct {
	TireAge   *float64 `json:"tire_age"`
	Compound  string   `json:"compound"`
	Driver    string   `json:"driver"`
	Track     string   `json:"track"`
	TrackTemp *float64 `json:"track_temp"`
	LapNumber *float64 `json:"lap_number"`
	FuelLoad  *float64 `json:"fuel_load"`
}

type PredictResponse struct {
	DegradationSeconds float64 `json:"degradation_seconds"`
	IsMLPrediction     bool    `json:"is_ml_prediction"`
	PredictionType     string  `json:"prediction_type"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TireAge == nil {
		s.writeError(w, http.StatusBadRequest, "missing required field: tire_age")
		return
	}
	if req.Compound == "" || req.Driver == "" || req.Track == "" {
		s.writeError(w, http.StatusBadRequest, "compound, driver and track are required")
		return
	}

	pred, err := s.model.Predict(degradation.Request{
		Compound:  catalog.Compound(req.Compound),
		Driver:    req.Driver,
		Track:     req.Track,
		TireAge:   *req.TireAge,
		TrackTemp: floatOr(req.TrackTemp, defaultTrackTemp),
		LapNumber: floatOr(req.LapNumber, defaultLapNumber),
		FuelLoad:  floatOr(req.FuelLoad, defaultFuelLoad),
	})
	if err != nil {
		var unknown *feature.UnknownCategoryError
		if errors.As(err, &unknown) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.predictions.WithLabelValues(string(pred.Source)).Inc()

	s.writeJSON(w, http.StatusOK, PredictResponse{
		DegradationSeconds: round2(pred.Seconds),
		IsMLPrediction:     pred.Source == degradation.SourceModel,
		PredictionType:     string(pred.Source),
	})
}

type CompareRequest struct {
	Driver     string              `json:"driver"`
	Track      string              `json:"track"`
	CurrentLap int                 `json:"current_lap"`
	RaceLaps   int                 `json:"race_laps"`
	TrackTemp  *float64            `json:"track_temp"`
	Strategies []strategy.Scenario `json:"strategies"`
}

// CompareResponse echoes the scenario frame and embeds the ranked outcome.
type CompareResponse struct {
	Driver     string `json:"driver"`
	Track      string `json:"track"`
	CurrentLap int    `json:"current_lap"`
	*strategy.Comparison
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Driver == "" || req.Track == "" {
		s.writeError(w, http.StatusBadRequest, "driver and track are required")
		return
	}
	if req.RaceLaps == 0 {
		req.RaceLaps = defaultRaceLaps
	}

	cmp, err := s.evaluator.Compare(strategy.Request{
		Driver:     req.Driver,
		Track:      req.Track,
		CurrentLap: req.CurrentLap,
		RaceLaps:   req.RaceLaps,
		TrackTemp:  floatOr(req.TrackTemp, defaultTrackTemp),
		Scenarios:  req.Strategies,
	})
	if err != nil {
		var unknown *feature.UnknownCategoryError
		if errors.As(err, &unknown) {
			s.writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cmp.Results == nil {
		cmp.Results = []strategy.Result{}
	}

	s.metrics.comparisons.Inc()

	s.writeJSON(w, http.StatusOK, CompareResponse{
		Driver:     req.Driver,
		Track:      req.Track,
		CurrentLap: req.CurrentLap,
		Comparison: &cmp,
	})
}

func floatOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, ErrorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to encode JSON response",
			"error", err,
			"status", status,
		)
	}
}
