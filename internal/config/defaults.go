package config

import (
	"os"
	"path/filepath"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "127.0.0.1",
			Port:    8119,
			PIDFile: "",
			RateLimit: RateLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 100,
				Burst:             200,
			},
		},
		Auth: AuthConfig{
			Enabled:  false,
			User:     "",
			Password: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			DataDir:   defaultDataDir(),
			ModelFile: "tire_model.json",
			AgentFile: "pit_agent.json",
		},
		Training: TrainingConfig{
			Years:            []int{2023, 2024},
			MaxEventsPerYear: 10,
			Seed:             42,
			Trees:            200,
			MaxDepth:         5,
			LearningRate:     0.1,
			MinLeaf:          5,
			ValidationSplit:  0.2,
		},
		Strategy: StrategyConfig{
			PitStopSeconds: 24.0,
			GoodWithin:     0.10,
			ConsiderWithin: 0.25,
		},
		Optimizer: OptimizerConfig{
			Episodes:     500,
			LearningRate: 0.1,
			Discount:     0.95,
			EpsilonDecay: 0.995,
			EpsilonMin:   0.01,
			Seed:         7,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pitwall"
	}
	return filepath.Join(home, ".pitwall")
}
