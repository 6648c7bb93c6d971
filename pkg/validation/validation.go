// Package validation checks level configurations before they reach the engine.
// The engine trusts its configuration, so anything loaded from disk or
// assembled from flags goes through ValidateGameConfig first.
package validation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/opd-ai/go-lander/pkg/config"
	"github.com/opd-ai/go-lander/pkg/entity"
	"github.com/opd-ai/go-lander/pkg/physics"
)

// Limits for user supplied levels
const (
	MaxLevelNameLen    = 32
	MaxAreaSize        = 10000
	MaxPolygonVertices = 64
	MaxAsteroids       = 64
	MaxLevelingAngle   = 90
)

// Allow alphanumeric, spaces, hyphens, underscores and basic punctuation for level names
var validLevelNameChars = regexp.MustCompile(`^[a-zA-Z0-9\s\-_.()]+$`)

// ValidateLevelName validates and trims a level name
func ValidateLevelName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("level name cannot be empty")
	}

	if len(name) > MaxLevelNameLen {
		return "", fmt.Errorf("level name too long: %d characters (max %d)", len(name), MaxLevelNameLen)
	}

	if !utf8.ValidString(name) {
		return "", fmt.Errorf("level name contains invalid UTF-8 characters")
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("level name cannot be only whitespace")
	}

	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("level name contains control characters")
		}
	}

	if !validLevelNameChars.MatchString(trimmed) {
		return "", fmt.Errorf("level name contains invalid characters (only alphanumeric, spaces, hyphens, underscores, and basic punctuation allowed)")
	}

	return trimmed, nil
}

// ValidatePolygon checks that a polygon has a usable number of finite vertices
func ValidatePolygon(p physics.Polygon) error {
	if len(p) < 3 {
		return fmt.Errorf("polygon needs at least 3 vertices, got %d", len(p))
	}
	if len(p) > MaxPolygonVertices {
		return fmt.Errorf("polygon has too many vertices: %d (max %d)", len(p), MaxPolygonVertices)
	}
	for i, v := range p {
		if !finite(v) {
			return fmt.Errorf("vertex %d is not finite: %v", i, v)
		}
	}
	return nil
}

// ValidateGameConfig reports every problem with cfg at once. An empty level
// name is allowed; a present one must pass ValidateLevelName.
func ValidateGameConfig(cfg *config.GameConfig) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if cfg.Name != "" {
		if _, err := ValidateLevelName(cfg.Name); err != nil {
			errs = append(errs, err)
		}
	}

	area := cfg.Area
	if !finite(area) || area.X <= 0 || area.Y <= 0 || area.X > MaxAreaSize || area.Y > MaxAreaSize {
		add("area must be positive and at most %d, got %v", MaxAreaSize, area)
	}

	if cfg.Viewport != nil {
		vp := *cfg.Viewport
		if vp.X <= 0 || vp.Y <= 0 || vp.X > area.X || vp.Y > area.Y {
			add("viewport must be positive and fit inside the area, got %v", vp)
		}
	}
	if cfg.ViewportPos != nil && !finite(*cfg.ViewportPos) {
		add("viewport position is not finite: %v", *cfg.ViewportPos)
	}

	if !inside(cfg.ShipPos, area) {
		add("ship position %v is outside the area", cfg.ShipPos)
	}
	if !finite(cfg.ShipVelocity) {
		add("ship velocity is not finite: %v", cfg.ShipVelocity)
	}

	t := cfg.Target
	if t.X0 >= t.X1 || t.X0 < 0 || t.X1 > area.X || t.Y < 0 || t.Y > area.Y {
		add("landing pad x0=%v x1=%v y=%v does not fit the area", t.X0, t.X1, t.Y)
	}

	l := cfg.Leveling
	if l.Rotation < 0 || l.Rotation > MaxLevelingAngle {
		add("leveling rotation must be in [0, %d], got %d", MaxLevelingAngle, l.Rotation)
	}
	if l.SpeedX <= 0 || l.SpeedY <= 0 {
		add("leveling speeds must be positive, got %v/%v", l.SpeedX, l.SpeedY)
	}

	if cfg.InitialFuel < 0 {
		add("initial fuel cannot be negative: %d", cfg.InitialFuel)
	}
	if cfg.FullFuel <= 0 {
		add("full fuel must be positive: %d", cfg.FullFuel)
	}
	if cfg.ThrustPower < 0 || math.IsNaN(cfg.ThrustPower) || math.IsInf(cfg.ThrustPower, 0) {
		add("thrust power must be a non-negative number, got %v", cfg.ThrustPower)
	}
	if !finite(cfg.Gravity) {
		add("gravity is not finite: %v", cfg.Gravity)
	}
	if !(cfg.Friction > 0 && cfg.Friction <= 1) {
		add("friction must be in (0, 1], got %v", cfg.Friction)
	}

	a := cfg.Asteroids
	if a.Count < 0 || a.Count > MaxAsteroids {
		add("asteroid count must be in [0, %d], got %d", MaxAsteroids, a.Count)
	}
	if a.Count > 0 && (a.Area.X < 0 || a.Area.Y < 0 || !finite(a.Origin)) {
		add("asteroid spawn region is invalid: origin %v area %v", a.Origin, a.Area)
	}

	for i := range cfg.Walls {
		if err := validateWall(&cfg.Walls[i]); err != nil {
			errs = append(errs, fmt.Errorf("wall %d: %w", i, err))
		}
	}

	for i, w := range cfg.Winds {
		if err := ValidatePolygon(w.Shape); err != nil {
			errs = append(errs, fmt.Errorf("wind %d: %w", i, err))
		}
		if w.Power < 0 || math.IsNaN(w.Power) {
			errs = append(errs, fmt.Errorf("wind %d: power cannot be negative: %v", i, w.Power))
		}
	}

	return errors.Join(errs...)
}

func validateWall(w *entity.Wall) error {
	if _, err := entity.ParseWallKind(string(w.Kind)); err != nil {
		return err
	}
	if err := ValidatePolygon(w.Points); err != nil {
		return err
	}
	if w.Speed < 0 {
		return fmt.Errorf("speed cannot be negative: %d", w.Speed)
	}
	if w.Kind == entity.WallRotating && !finite(w.Pivot) {
		return fmt.Errorf("pivot is not finite: %v", w.Pivot)
	}
	return nil
}

func finite(v physics.Vector2D) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

func inside(p, area physics.Vector2D) bool {
	return finite(p) && p.X >= 0 && p.Y >= 0 && p.X <= area.X && p.Y <= area.Y
}
