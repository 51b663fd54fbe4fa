package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}

	if err := c.Auth.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("storage: %w", err))
	}

	if err := c.Training.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("training: %w", err))
	}

	if err := c.Strategy.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("strategy: %w", err))
	}

	if err := c.Optimizer.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("optimizer: %w", err))
	}

	if err := c.validateDebugSecurity(); err != nil {
		errs = append(errs, fmt.Errorf("debug: %w", err))
	}

	return errors.Join(errs...)
}

func (s *ServerConfig) Validate() error {
	var errs []error

	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", s.Port))
	}

	if s.RateLimit.Enabled {
		if s.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, fmt.Errorf("rate_limit.requests_per_second must be positive, got %g", s.RateLimit.RequestsPerSecond))
		}
		if s.RateLimit.Burst < 1 {
			errs = append(errs, fmt.Errorf("rate_limit.burst must be at least 1, got %d", s.RateLimit.Burst))
		}
	}

	return errors.Join(errs...)
}

func (a *AuthConfig) Validate() error {
	if a.Enabled {
		if a.User == "" {
			return fmt.Errorf("user cannot be empty when auth is enabled")
		}
		if a.Password == "" {
			return fmt.Errorf("password cannot be empty when auth is enabled")
		}
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s (valid: debug, info, warn, error)", l.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[l.Format] {
		return fmt.Errorf("invalid log format: %s (valid: json, text)", l.Format)
	}

	return nil
}

func (s *StorageConfig) Validate() error {
	if s.DataDir == "" {
		return fmt.Errorf("data_dir cannot be empty")
	}
	return nil
}

func (t *TrainingConfig) Validate() error {
	var errs []error

	if len(t.Years) == 0 {
		errs = append(errs, fmt.Errorf("years cannot be empty"))
	}
	if t.MaxEventsPerYear < 1 {
		errs = append(errs, fmt.Errorf("max_events_per_year must be at least 1, got %d", t.MaxEventsPerYear))
	}
	if t.Trees < 1 {
		errs = append(errs, fmt.Errorf("trees must be at least 1, got %d", t.Trees))
	}
	if t.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("max_depth must be at least 1, got %d", t.MaxDepth))
	}
	if t.LearningRate <= 0 || t.LearningRate > 1 {
		errs = append(errs, fmt.Errorf("learning_rate must be in (0, 1], got %g", t.LearningRate))
	}
	if t.MinLeaf < 1 {
		errs = append(errs, fmt.Errorf("min_leaf must be at least 1, got %d", t.MinLeaf))
	}
	if t.ValidationSplit <= 0 || t.ValidationSplit >= 1 {
		errs = append(errs, fmt.Errorf("validation_split must be in (0, 1), got %g", t.ValidationSplit))
	}

	return errors.Join(errs...)
}

func (s *StrategyConfig) Validate() error {
	var errs []error

	if s.PitStopSeconds < 0 {
		errs = append(errs, fmt.Errorf("pit_stop_seconds must be non-negative, got %g", s.PitStopSeconds))
	}
	if s.GoodWithin <= 0 || s.GoodWithin > 1 {
		errs = append(errs, fmt.Errorf("good_within must be in (0, 1], got %g", s.GoodWithin))
	}
	if s.ConsiderWithin <= 0 || s.ConsiderWithin > 1 {
		errs = append(errs, fmt.Errorf("consider_within must be in (0, 1], got %g", s.ConsiderWithin))
	}
	if s.GoodWithin >= s.ConsiderWithin {
		errs = append(errs, fmt.Errorf("good_within must be below consider_within, got %g >= %g", s.GoodWithin, s.ConsiderWithin))
	}

	return errors.Join(errs...)
}

func (o *OptimizerConfig) Validate() error {
	var errs []error

	if o.Episodes < 1 {
		errs = append(errs, fmt.Errorf("episodes must be at least 1, got %d", o.Episodes))
	}
	if o.LearningRate <= 0 || o.LearningRate > 1 {
		errs = append(errs, fmt.Errorf("learning_rate must be in (0, 1], got %g", o.LearningRate))
	}
	if o.Discount <= 0 || o.Discount > 1 {
		errs = append(errs, fmt.Errorf("discount must be in (0, 1], got %g", o.Discount))
	}
	if o.EpsilonDecay <= 0 || o.EpsilonDecay > 1 {
		errs = append(errs, fmt.Errorf("epsilon_decay must be in (0, 1], got %g", o.EpsilonDecay))
	}
	if o.EpsilonMin < 0 || o.EpsilonMin > 1 {
		errs = append(errs, fmt.Errorf("epsilon_min must be in [0, 1], got %g", o.EpsilonMin))
	}

	return errors.Join(errs...)
}

// validateDebugSecurity rejects configs that expose debug or profiling
// endpoints without any authentication in front of them.
func (c *Config) validateDebugSecurity() error {
	exposed := c.Debug.Enabled || c.Server.Profiling.Enabled
	if !exposed {
		return nil
	}
	if c.Auth.Enabled || c.Debug.Auth.Token != "" {
		return nil
	}
	return fmt.Errorf("debug or profiling endpoints require auth.enabled or debug.auth.token")
}
