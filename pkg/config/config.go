// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/physics"
)

// GameConfig contains everything the engine needs to build one session.
// The engine copies it at construction and never re-validates it.
type GameConfig struct {
	Name         string            `json:"name,omitempty"`
	Area         physics.Vector2D  `json:"area"`
	Viewport     *physics.Vector2D `json:"viewport,omitempty"`
	ViewportPos  *physics.Vector2D `json:"viewportPos,omitempty"`
	ShipPos      physics.Vector2D  `json:"shipPos"`
	ShipVelocity physics.Vector2D  `json:"shipVelocity"`
	Target       TargetConfig      `json:"target"`
	Asteroids    AsteroidConfig    `json:"asteroids"`
	Leveling     LevelingConfig    `json:"leveling"`
	InitialFuel  int               `json:"initialFuel"`
	FullFuel     int               `json:"fullFuel"`
	ThrustPower  float64           `json:"thrustPower"`
	Gravity      physics.Vector2D  `json:"gravity"`
	Friction     float64           `json:"friction"`
	Walls        []entity.Wall     `json:"walls,omitempty"`
	Winds        []WindConfig      `json:"winds,omitempty"`
}

// TargetConfig is the landing pad: x in [X0, X1], top edge at Y
type TargetConfig struct {
	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y  float64 `json:"y"`
}

// AsteroidConfig controls asteroid spawning
type AsteroidConfig struct {
	Count  int              `json:"count"`
	Origin physics.Vector2D `json:"origin"`
	Area   physics.Vector2D `json:"area"`
}

// LevelingConfig holds the attitude limits for a clean landing
type LevelingConfig struct {
	Rotation int     `json:"rotation"`
	SpeedX   float64 `json:"speedX"`
	SpeedY   float64 `json:"speedY"`
}

// WindConfig describes one wind region
type WindConfig struct {
	Shape       physics.Polygon `json:"shape"`
	Power       float64         `json:"power"`
	Orientation int             `json:"orientation"`
}

// LoadConfig loads a configuration from a file
func LoadConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *GameConfig, path string) error {
	if config == nil {
		return fmt.Errorf("failed to marshal config: nil config")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the SIMPLE map at default difficulty
func DefaultConfig() *GameConfig {
	return DefaultSettings().Build()
}

// Scrollable reports whether the configuration declares a viewport
func (c *GameConfig) Scrollable() bool {
	return c.Viewport != nil
}

// Clone returns a deep copy
func (c *GameConfig) Clone() *GameConfig {
	out := *c
	if c.Viewport != nil {
		v := *c.Viewport
		out.Viewport = &v
	}
	if c.ViewportPos != nil {
		v := *c.ViewportPos
		out.ViewportPos = &v
	}
	out.Walls = make([]entity.Wall, len(c.Walls))
	for i, w := range c.Walls {
		w.Points = slices.Clone(w.Points)
		out.Walls[i] = w
	}
	out.Winds = make([]WindConfig, len(c.Winds))
	for i, w := range c.Winds {
		w.Shape = slices.Clone(w.Shape)
		out.Winds[i] = w
	}
	return &out
}
