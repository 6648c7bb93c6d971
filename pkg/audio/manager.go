package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-lander/pkg/event"
	"github.com/opd-ai/go-lander/pkg/logging"
)

// speakerBuffer is the speaker latency
const speakerBuffer = 100 * time.Millisecond

// SoundManager plays effects for simulation events. The thrust rumble runs
// continuously in the mixer and is paused while the engine is off.
type SoundManager struct {
	mu     sync.Mutex
	cfg    *Config
	logger *logging.Logger

	mixer  *beep.Mixer
	thrust *beep.Ctrl
	played [soundCount]int
	seed   uint64

	// lock and unlock guard the mixer against the playback goroutine
	lock   func()
	unlock func()

	subs        []*event.Subscription
	initialized bool
}

// NewSoundManager creates a sound manager. Nothing is audible until
// Initialize connects it to the speaker.
func NewSoundManager(cfg *Config, logger *logging.Logger) *SoundManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SoundManager{
		cfg:    cfg,
		logger: logger,
		mixer:  &beep.Mixer{},
		lock:   func() {},
		unlock: func() {},
	}
}

// Initialize opens the speaker and starts playing the mixer
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	rate := sm.cfg.rate()
	if err := speaker.Init(rate, rate.N(speakerBuffer)); err != nil {
		return logging.WrapError(err, "failed to initialize speaker at %d Hz", sm.cfg.SampleRate)
	}
	speaker.Play(sm.mixer)
	sm.lock, sm.unlock = speaker.Lock, speaker.Unlock
	sm.start()

	sm.logger.Info(context.Background(), "audio initialized", "sample_rate", sm.cfg.SampleRate)
	return nil
}

// start installs the thrust loop, paused. Caller holds sm.mu.
func (sm *SoundManager) start() {
	sm.thrust = &beep.Ctrl{Streamer: CreateThrustSound(sm.cfg, sm.nextSeed()), Paused: true}
	sm.lock()
	sm.mixer.Add(sm.thrust)
	sm.unlock()
	sm.initialized = true
}

func (sm *SoundManager) nextSeed() uint64 {
	sm.seed++
	return sm.seed
}

// Cleanup stops all sounds and detaches from the event bus
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	for _, sub := range sm.subs {
		sub.Cancel()
	}
	sm.subs = nil

	if !sm.initialized {
		return
	}
	sm.lock()
	sm.thrust.Paused = true
	sm.mixer.Clear()
	sm.unlock()
	sm.initialized = false
}

// Subscribe plays effects for events published on bus
func (sm *SoundManager) Subscribe(bus *event.Bus) {
	handlers := map[event.Type]event.Handler{
		event.ThrustEngaged: func(event.Event) { sm.SetThrust(true) },
		event.ThrustCut:     func(event.Event) { sm.SetThrust(false) },
		event.ShipDestroyed: func(event.Event) {
			sm.SetThrust(false)
			sm.Play(SoundExplosion)
		},
		event.ShipLanded: func(event.Event) { sm.Play(SoundLanding) },
		event.FuelLow:    func(event.Event) { sm.Play(SoundFuelWarning) },
		event.AlertChanged: func(e event.Event) {
			if alert, ok := e.(*event.AlertEvent); ok && alert.Blocked {
				sm.SetThrust(false)
			}
		},
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for t, h := range handlers {
		sm.subs = append(sm.subs, bus.Subscribe(t, h))
	}
}

// SetThrust starts or pauses the engine rumble
func (sm *SoundManager) SetThrust(on bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	sm.lock()
	changed := sm.thrust.Paused == on
	sm.thrust.Paused = !on
	sm.unlock()
	if changed && on {
		sm.played[SoundThrust]++
	}
}

// Play starts a one-shot effect
func (sm *SoundManager) Play(s Sound) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	var streamer beep.Streamer
	switch s {
	case SoundExplosion:
		streamer = CreateExplosionSound(sm.cfg, sm.nextSeed())
	case SoundLanding:
		streamer = CreateLandingSound(sm.cfg)
	case SoundFuelWarning:
		streamer = CreateFuelWarningSound(sm.cfg)
	default:
		return
	}

	sm.lock()
	sm.mixer.Add(streamer)
	sm.unlock()
	sm.played[s]++
	sm.logger.Debug(context.Background(), "sound played", "sound", s.String())
}

// Thrusting reports whether the engine rumble is audible
func (sm *SoundManager) Thrusting() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if !sm.initialized {
		return false
	}
	sm.lock()
	defer sm.unlock()
	return !sm.thrust.Paused
}

// Played returns how many times s has been started
func (sm *SoundManager) Played(s Sound) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.played[s]
}
