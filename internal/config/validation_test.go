package config

import (
	"testing"
)

func TestValidateDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestValidateServerPort(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{65536, true},
		{1, false},
		{8119, false},
		{65535, false},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Server.Port = tt.port
		err := cfg.Server.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("port %d: wantErr=%v, got %v", tt.port, tt.wantErr, err)
		}
	}
}

func TestValidateRateLimit(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*RateLimitConfig)
		wantErr bool
	}{
		{
			name:    "disabled ignores values",
			modify:  func(r *RateLimitConfig) { r.RequestsPerSecond = -1 },
			wantErr: false,
		},
		{
			name: "enabled valid",
			modify: func(r *RateLimitConfig) {
				r.Enabled = true
			},
			wantErr: false,
		},
		{
			name: "enabled zero rate",
			modify: func(r *RateLimitConfig) {
				r.Enabled = true
				r.RequestsPerSecond = 0
			},
			wantErr: true,
		},
		{
			name: "enabled zero burst",
			modify: func(r *RateLimitConfig) {
				r.Enabled = true
				r.Burst = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Server.RateLimit)
			err := cfg.Server.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateLogging(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		wantErr bool
	}{
		{"debug", "json", false},
		{"info", "json", false},
		{"warn", "json", false},
		{"error", "json", false},
		{"info", "text", false},
		{"invalid", "json", true},
		{"info", "invalid", true},
	}

	for _, tt := range tests {
		cfg := Default()
		cfg.Logging.Level = tt.level
		cfg.Logging.Format = tt.format
		err := cfg.Logging.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("level=%s format=%s: wantErr=%v, got %v", tt.level, tt.format, tt.wantErr, err)
		}
	}
}

func TestValidateAuth(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		user     string
		password string
		wantErr  bool
	}{
		{"disabled no creds", false, "", "", false},
		{"enabled with creds", true, "admin", "secret", false},
		{"enabled no user", true, "", "secret", true},
		{"enabled no password", true, "admin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.Enabled = tt.enabled
			cfg.Auth.User = tt.user
			cfg.Auth.Password = tt.password
			err := cfg.Auth.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateTraining(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*TrainingConfig)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(tc *TrainingConfig) {},
			wantErr: false,
		},
		{
			name: "no years",
			modify: func(tc *TrainingConfig) {
				tc.Years = nil
			},
			wantErr: true,
		},
		{
			name: "zero events",
			modify: func(tc *TrainingConfig) {
				tc.MaxEventsPerYear = 0
			},
			wantErr: true,
		},
		{
			name: "zero trees",
			modify: func(tc *TrainingConfig) {
				tc.Trees = 0
			},
			wantErr: true,
		},
		{
			name: "zero depth",
			modify: func(tc *TrainingConfig) {
				tc.MaxDepth = 0
			},
			wantErr: true,
		},
		{
			name: "learning rate above one",
			modify: func(tc *TrainingConfig) {
				tc.LearningRate = 1.5
			},
			wantErr: true,
		},
		{
			name: "learning rate zero",
			modify: func(tc *TrainingConfig) {
				tc.LearningRate = 0
			},
			wantErr: true,
		},
		{
			name: "split of one",
			modify: func(tc *TrainingConfig) {
				tc.ValidationSplit = 1.0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Training)
			err := cfg.Training.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateStrategy(t *testing.T) {
	tests := []struct {
		name     string
		good     float64
		consider float64
		wantErr  bool
	}{
		{"defaults", 0.10, 0.25, false},
		{"good above consider", 0.30, 0.25, true},
		{"good equals consider", 0.25, 0.25, true},
		{"good zero", 0, 0.25, true},
		{"consider above one", 0.10, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Strategy.GoodWithin = tt.good
			cfg.Strategy.ConsiderWithin = tt.consider
			err := cfg.Strategy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateOptimizer(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*OptimizerConfig)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			modify:  func(o *OptimizerConfig) {},
			wantErr: false,
		},
		{
			name: "zero episodes",
			modify: func(o *OptimizerConfig) {
				o.Episodes = 0
			},
			wantErr: true,
		},
		{
			name: "discount above one",
			modify: func(o *OptimizerConfig) {
				o.Discount = 1.1
			},
			wantErr: true,
		},
		{
			name: "negative epsilon min",
			modify: func(o *OptimizerConfig) {
				o.EpsilonMin = -0.1
			},
			wantErr: true,
		},
		{
			name: "decay zero",
			modify: func(o *OptimizerConfig) {
				o.EpsilonDecay = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg.Optimizer)
			err := cfg.Optimizer.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateDebugSecurity(t *testing.T) {
	tests := []struct {
		name             string
		debugEnabled     bool
		profilingEnabled bool
		authEnabled      bool
		debugToken       string
		wantErr          bool
	}{
		{
			name:             "no debug no profiling",
			debugEnabled:     false,
			profilingEnabled: false,
			authEnabled:      false,
			debugToken:       "",
			wantErr:          false,
		},
		{
			name:             "debug enabled with main auth",
			debugEnabled:     true,
			profilingEnabled: false,
			authEnabled:      true,
			debugToken:       "",
			wantErr:          false,
		},
		{
			name:             "debug enabled with debug token",
			debugEnabled:     true,
			profilingEnabled: false,
			authEnabled:      false,
			debugToken:       "secret-token",
			wantErr:          false,
		},
		{
			name:             "debug enabled no auth",
			debugEnabled:     true,
			profilingEnabled: false,
			authEnabled:      false,
			debugToken:       "",
			wantErr:          true,
		},
		{
			name:             "profiling enabled with main auth",
			debugEnabled:     false,
			profilingEnabled: true,
			authEnabled:      true,
			debugToken:       "",
			wantErr:          false,
		},
		{
			name:             "profiling enabled no auth",
			debugEnabled:     false,
			profilingEnabled: true,
			authEnabled:      false,
			debugToken:       "",
			wantErr:          true,
		},
		{
			name:             "both enabled with token",
			debugEnabled:     true,
			profilingEnabled: true,
			authEnabled:      false,
			debugToken:       "token",
			wantErr:          false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Debug.Enabled = tt.debugEnabled
			cfg.Server.Profiling.Enabled = tt.profilingEnabled
			cfg.Auth.Enabled = tt.authEnabled
			if tt.authEnabled {
				cfg.Auth.User = "admin"
				cfg.Auth.Password = "secret"
			}
			cfg.Debug.Auth.Token = tt.debugToken

			err := cfg.validateDebugSecurity()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}
