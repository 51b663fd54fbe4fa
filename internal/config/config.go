package config

import (
	"net"
	"strconv"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Debug     DebugConfig     `yaml:"debug"`
	Logging   LoggingConfig   `yaml:"logging"`
	Storage   StorageConfig   `yaml:"storage"`
	Training  TrainingConfig  `yaml:"training"`
	Strategy  StrategyConfig  `yaml:"strategy"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
}

type ServerConfig struct {
	Host      string          `yaml:"host"`
	Port      int             `yaml:"port"`
	PIDFile   string          `yaml:"pid_file"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Profiling ProfilingConfig `yaml:"profiling"`
}

// RateLimitConfig throttles the HTTP API. The limit is shared across all
// clients; Burst absorbs short spikes.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

type ProfilingConfig struct {
	Enabled bool `yaml:"enabled"`
}

type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

// DebugConfig holds debug mode configuration.
type DebugConfig struct {
	// Enabled allows debug endpoints like /debug/pprof
	Enabled bool `yaml:"enabled"`
	// Auth holds debug-specific authentication.
	// If set, debug endpoints require this token.
	// If not set but main auth is enabled, main auth is used.
	Auth DebugAuthConfig `yaml:"auth"`
}

// DebugAuthConfig holds debug endpoint authentication.
type DebugAuthConfig struct {
	// Token for Bearer authentication on debug endpoints.
	// If empty, falls back to main auth.
	Token string `yaml:"token"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`
	ModelFile string `yaml:"model_file"`
	AgentFile string `yaml:"agent_file"`
}

// TrainingConfig shapes the synthetic training set and the boosted
// ensemble fitted on it.
type TrainingConfig struct {
	Years            []int   `yaml:"years"`
	MaxEventsPerYear int     `yaml:"max_events_per_year"`
	Seed             int64   `yaml:"seed"`
	Trees            int     `yaml:"trees"`
	MaxDepth         int     `yaml:"max_depth"`
	LearningRate     float64 `yaml:"learning_rate"`
	MinLeaf          int     `yaml:"min_leaf"`
	ValidationSplit  float64 `yaml:"validation_split"`
}

// StrategyConfig tunes the pit window evaluator. GoodWithin and
// ConsiderWithin are fractions of the best scenario's time loss.
type StrategyConfig struct {
	PitStopSeconds float64 `yaml:"pit_stop_seconds"`
	GoodWithin     float64 `yaml:"good_within"`
	ConsiderWithin float64 `yaml:"consider_within"`
}

// OptimizerConfig tunes the Q-learning pit stop optimizer.
type OptimizerConfig struct {
	Episodes     int     `yaml:"episodes"`
	LearningRate float64 `yaml:"learning_rate"`
	Discount     float64 `yaml:"discount"`
	EpsilonDecay float64 `yaml:"epsilon_decay"`
	EpsilonMin   float64 `yaml:"epsilon_min"`
	Seed         int64   `yaml:"seed"`
}

func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}
