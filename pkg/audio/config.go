package audio

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/gopxl/beep"
)

// Environment variables read by LoadConfigFromEnv
const (
	envMasterVolume = "LANDER_MASTER_VOLUME"
	envSFXVolumes   = "LANDER_SFX_VOLUMES"
	envSampleRate   = "LANDER_SAMPLE_RATE"
)

// Config holds the mixing levels
type Config struct {
	SampleRate    int
	MasterVolume  float64
	EffectVolumes map[Sound]float64
}

// DefaultConfig returns the standard levels at 48kHz
func DefaultConfig() *Config {
	return &Config{
		SampleRate:   48000,
		MasterVolume: 0.8,
		EffectVolumes: map[Sound]float64{
			SoundThrust:      0.35,
			SoundExplosion:   1.0,
			SoundLanding:     0.6,
			SoundFuelWarning: 0.5,
		},
	}
}

// LoadConfigFromEnv overlays environment settings on the defaults.
// LANDER_MASTER_VOLUME is 0-100, LANDER_SFX_VOLUMES a JSON object keyed by
// sound name with values in [0,1].
func LoadConfigFromEnv() (*Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv(envMasterVolume); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", envMasterVolume, v, err)
		}
		cfg.MasterVolume = clamp01(float64(n) / 100)
	}

	if v := os.Getenv(envSFXVolumes); v != "" {
		var volumes map[string]float64
		if err := json.Unmarshal([]byte(v), &volumes); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", envSFXVolumes, err)
		}
		for s := Sound(0); s < soundCount; s++ {
			if vol, ok := volumes[s.String()]; ok {
				cfg.EffectVolumes[s] = clamp01(vol)
			}
		}
	}

	if v := os.Getenv(envSampleRate); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid %s %q", envSampleRate, v)
		}
		cfg.SampleRate = n
	}

	return cfg, nil
}

func (c *Config) rate() beep.SampleRate {
	return beep.SampleRate(c.SampleRate)
}

// volume returns the effective linear volume of s
func (c *Config) volume(s Sound) float64 {
	return c.EffectVolumes[s] * c.MasterVolume
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
