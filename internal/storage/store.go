// Package storage persists trained artifacts: the tire model snapshot and
// the pit strategy agent. Writes are atomic (temp file plus rename) and
// every artifact carries a format tag checked on load, so an incompatible
// or damaged file degrades to "no artifact" instead of a crash.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/undercut/pitwall/internal/degradation"
	"github.com/undercut/pitwall/internal/race"
)

const (
	DefaultModelFile = "tire_model.json"
	DefaultAgentFile = "pit_agent.json"

	modelFormat = "pitwall/tire-model@1"
	agentFormat = "pitwall/pit-agent@1"
)

// ErrNoArtifact is returned on load when the file is missing, unreadable,
// or tagged with an unknown format. Callers fall back to fresh state.
var ErrNoArtifact = errors.New("no stored artifact")

// Store reads and writes artifacts under one data directory.
type Store struct {
	mu        sync.Mutex
	dataDir   string
	modelFile string
	agentFile string
	logger    *slog.Logger
}

func New(dataDir, modelFile, agentFile string, logger *slog.Logger) *Store {
	if modelFile == "" {
		modelFile = DefaultModelFile
	}
	if agentFile == "" {
		agentFile = DefaultAgentFile
	}
	return &Store{dataDir: dataDir, modelFile: modelFile, agentFile: agentFile, logger: logger}
}

type modelArtifact struct {
	Format   string                `json:"format"`
	SavedAt  time.Time             `json:"saved_at"`
	Snapshot *degradation.Snapshot `json:"snapshot"`
}

type agentArtifact struct {
	Format  string          `json:"format"`
	SavedAt time.Time       `json:"saved_at"`
	Agent   race.AgentState `json:"agent"`
}

// SaveModel persists a trained snapshot.
func (s *Store) SaveModel(snap *degradation.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dataDir, s.modelFile)
	art := modelArtifact{Format: modelFormat, SavedAt: time.Now().UTC(), Snapshot: snap}
	if err := s.writeAtomic(path, art); err != nil {
		return err
	}
	s.logger.Debug("saved tire model", "path", path, "run_id", snap.Meta.RunID)
	return nil
}

// LoadModel restores the persisted snapshot. Missing, corrupt, or
// wrong-format files return ErrNoArtifact.
func (s *Store) LoadModel() (*degradation.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dataDir, s.modelFile)
	var art modelArtifact
	if err := s.readArtifact(path, &art); err != nil {
		return nil, err
	}
	if art.Format != modelFormat {
		return nil, fmt.Errorf("%w: %s has format %q, want %q", ErrNoArtifact, path, art.Format, modelFormat)
	}
	snap := art.Snapshot
	if snap == nil || snap.Regressor == nil || snap.Encoders == nil || snap.Catalog == nil {
		return nil, fmt.Errorf("%w: %s is incomplete", ErrNoArtifact, path)
	}
	s.logger.Info("loaded tire model", "path", path, "run_id", snap.Meta.RunID, "trained_at", snap.Meta.TrainedAt)
	return snap, nil
}

// SaveAgent persists the pit strategy agent.
func (s *Store) SaveAgent(state race.AgentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dataDir, s.agentFile)
	art := agentArtifact{Format: agentFormat, SavedAt: time.Now().UTC(), Agent: state}
	if err := s.writeAtomic(path, art); err != nil {
		return err
	}
	s.logger.Debug("saved pit agent", "path", path, "episodes", state.Episodes)
	return nil
}

// LoadAgent restores the persisted agent state. Missing, corrupt, or
// wrong-format files return ErrNoArtifact.
func (s *Store) LoadAgent() (race.AgentState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dataDir, s.agentFile)
	var art agentArtifact
	if err := s.readArtifact(path, &art); err != nil {
		return race.AgentState{}, err
	}
	if art.Format != agentFormat {
		return race.AgentState{}, fmt.Errorf("%w: %s has format %q, want %q", ErrNoArtifact, path, art.Format, agentFormat)
	}
	s.logger.Info("loaded pit agent", "path", path, "episodes", art.Agent.Episodes)
	return art.Agent, nil
}

func (s *Store) writeAtomic(path string, v any) error {
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := json.NewEncoder(file).Encode(v); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode artifact: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func (s *Store) readArtifact(path string, v any) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNoArtifact, path)
		}
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		s.logger.Warn("artifact unreadable", "path", path, "error", err)
		return fmt.Errorf("%w: %s: %v", ErrNoArtifact, path, err)
	}
	return nil
}

// ArtifactInfo describes one artifact file on disk.
type ArtifactInfo struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// ModelInfo reports the tire model artifact.
func (s *Store) ModelInfo() ArtifactInfo {
	return s.info(s.modelFile)
}

// AgentInfo reports the pit agent artifact.
func (s *Store) AgentInfo() ArtifactInfo {
	return s.info(s.agentFile)
}

func (s *Store) info(name string) ArtifactInfo {
	path := filepath.Join(s.dataDir, name)
	info := ArtifactInfo{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		return info
	}
	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info
}
