// pkg/config/env.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// EnvironmentConfig holds runtime settings that are not part of a level
type EnvironmentConfig struct {
	TickInterval time.Duration
	FadeTicks    int
	MaxCatchUp   int
	Seed         uint64 // 0 draws from the entropy source
	MetricsAddr  string
	AudioEnabled bool
	Renderer     string

	// Process supervision
	MaxMemoryMB           int64
	MaxTasks              int
	ShutdownTimeout       time.Duration
	ResourceCheckInterval time.Duration
}

// Renderer names accepted by the front-ends
const (
	RendererTerminal = "terminal"
	RendererEngo     = "engo"
	RendererNull     = "null"
)

// LoadConfigFromEnv reads LANDER_* variables, falling back to defaults
func LoadConfigFromEnv() (*EnvironmentConfig, error) {
	config := &EnvironmentConfig{
		TickInterval: getEnvAsDurationOrDefault("LANDER_TICK_INTERVAL", 25*time.Millisecond),
		FadeTicks:    getEnvAsIntOrDefault("LANDER_FADE_TICKS", 100),
		MaxCatchUp:   getEnvAsIntOrDefault("LANDER_MAX_CATCH_UP", 10),
		Seed:         getEnvAsUint64OrDefault("LANDER_SEED", 0),
		MetricsAddr:  getEnvOrDefault("LANDER_METRICS_ADDR", ""),
		AudioEnabled: getEnvAsBoolOrDefault("LANDER_AUDIO", false),
		Renderer:     getEnvOrDefault("LANDER_RENDERER", RendererTerminal),

		MaxMemoryMB:           int64(getEnvAsIntOrDefault("LANDER_MAX_MEMORY_MB", 512)),
		MaxTasks:              getEnvAsIntOrDefault("LANDER_MAX_TASKS", 16),
		ShutdownTimeout:       getEnvAsDurationOrDefault("LANDER_SHUTDOWN_TIMEOUT", 5*time.Second),
		ResourceCheckInterval: getEnvAsDurationOrDefault("LANDER_RESOURCE_CHECK_INTERVAL", 10*time.Second),
	}

	if err := ValidateEnvironmentConfig(config); err != nil {
		return nil, fmt.Errorf("invalid environment configuration: %w", err)
	}

	return config, nil
}

// ValidateEnvironmentConfig checks that runtime settings are usable
func ValidateEnvironmentConfig(config *EnvironmentConfig) error {
	var errs []error

	if config.TickInterval < time.Millisecond || config.TickInterval > time.Second {
		errs = append(errs, fmt.Errorf("TickInterval must be between 1ms and 1s, got %v", config.TickInterval))
	}
	if config.FadeTicks < 0 {
		errs = append(errs, fmt.Errorf("FadeTicks must not be negative, got %d", config.FadeTicks))
	}
	if config.MaxCatchUp < 1 {
		errs = append(errs, fmt.Errorf("MaxCatchUp must be at least 1, got %d", config.MaxCatchUp))
	}
	if config.MaxMemoryMB < 1 {
		errs = append(errs, fmt.Errorf("MaxMemoryMB must be positive, got %d", config.MaxMemoryMB))
	}
	if config.MaxTasks < 1 {
		errs = append(errs, fmt.Errorf("MaxTasks must be at least 1, got %d", config.MaxTasks))
	}
	if config.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("ShutdownTimeout must be positive, got %v", config.ShutdownTimeout))
	}
	if config.ResourceCheckInterval < 100*time.Millisecond {
		errs = append(errs, fmt.Errorf("ResourceCheckInterval must be at least 100ms, got %v", config.ResourceCheckInterval))
	}
	switch config.Renderer {
	case RendererTerminal, RendererEngo, RendererNull:
	default:
		errs = append(errs, fmt.Errorf("Renderer must be one of %s, %s, %s, got %q",
			RendererTerminal, RendererEngo, RendererNull, config.Renderer))
	}

	return errors.Join(errs...)
}

// ApplyEnvironmentOverrides lets LANDER_* variables tweak a built level
func ApplyEnvironmentOverrides(gameConfig *GameConfig) error {
	gameConfig.InitialFuel = getEnvAsIntOrDefault("LANDER_INITIAL_FUEL", gameConfig.InitialFuel)
	gameConfig.FullFuel = max(gameConfig.FullFuel, gameConfig.InitialFuel)
	gameConfig.Gravity.Y = getEnvAsFloatOrDefault("LANDER_GRAVITY", gameConfig.Gravity.Y)
	gameConfig.Friction = getEnvAsFloatOrDefault("LANDER_FRICTION", gameConfig.Friction)
	gameConfig.ThrustPower = getEnvAsFloatOrDefault("LANDER_THRUST_POWER", gameConfig.ThrustPower)
	gameConfig.Asteroids.Count = getEnvAsIntOrDefault("LANDER_ASTEROIDS", gameConfig.Asteroids.Count)

	if gameConfig.Friction <= 0 || gameConfig.Friction > 1 {
		return fmt.Errorf("LANDER_FRICTION must be in (0, 1], got %v", gameConfig.Friction)
	}
	if gameConfig.InitialFuel < 0 {
		return fmt.Errorf("LANDER_INITIAL_FUEL must not be negative, got %d", gameConfig.InitialFuel)
	}
	if gameConfig.Asteroids.Count < 0 {
		return fmt.Errorf("LANDER_ASTEROIDS must not be negative, got %d", gameConfig.Asteroids.Count)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsUint64OrDefault(key string, defaultValue uint64) uint64 {
	if v, err := strconv.ParseUint(os.Getenv(key), 10, 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}
