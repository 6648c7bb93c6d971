// Package audio synthesizes the lander's sound effects with beep and plays
// them in response to simulation events.
package audio

import (
	"math"
	"time"

	"github.com/MichaelTJones/pcg"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Sound identifies an effect
type Sound int

const (
	SoundThrust Sound = iota
	SoundExplosion
	SoundLanding
	SoundFuelWarning
	soundCount
)

func (s Sound) String() string {
	switch s {
	case SoundThrust:
		return "thrust"
	case SoundExplosion:
		return "explosion"
	case SoundLanding:
		return "landing"
	case SoundFuelWarning:
		return "fuel_warning"
	default:
		return "unknown"
	}
}

// Effect timings
const (
	explosionDuration = 700 * time.Millisecond
	explosionAttack   = 5 * time.Millisecond
	chimeNote1        = 120 * time.Millisecond
	chimeNote2        = 250 * time.Millisecond
	chimeAttack       = 5 * time.Millisecond
	warningBeep       = 100 * time.Millisecond
	warningGap        = 60 * time.Millisecond
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// noiseSequence selects the PCG stream for noise; any odd constant works
const noiseSequence = 0x5851f42d4c957f2d

// oscillator generates raw audio waves. A zero duration runs forever.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *pcg.PCG32
}

// NewOscillator creates an oscillator. Noise is drawn from a PCG stream
// seeded with seed, so a given seed always produces the same waveform.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate, seed uint64) beep.Streamer {
	o := &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
	}
	if wave == WaveNoise {
		o.noise = pcg.NewPCG32()
		o.noise.Seed(seed, noiseSequence)
	}
	return o
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.duration > 0 && o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = float64(o.noise.Random())/math.MaxUint32*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope shapes a stream with a linear attack and release
type envelope struct {
	streamer       beep.Streamer
	position       int
	attackSamples  int
	releaseSamples int
	totalSamples   int
}

// NewEnvelope limits s to duration and ramps its volume in over attack and
// out over release
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := min(rate.N(attack), total)
	rel := min(rate.N(release), total-att)
	return &envelope{
		streamer:       s,
		attackSamples:  att,
		releaseSamples: rel,
		totalSamples:   total,
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	if e.position >= e.totalSamples {
		return 0, false
	}
	if left := e.totalSamples - e.position; len(samples) > left {
		samples = samples[:left]
	}
	n, ok = e.streamer.Stream(samples)

	releaseStart := e.totalSamples - e.releaseSamples
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.position < e.attackSamples {
			vol = float64(e.position) / float64(e.attackSamples)
		}
		if e.position >= releaseStart && e.releaseSamples > 0 {
			vol = float64(e.totalSamples-e.position) / float64(e.releaseSamples)
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales s linearly by vol. math.Log2(0) is -Inf, so zero is
// handled with Silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CreateThrustSound returns an endless low rumble for the engine
func CreateThrustSound(cfg *Config, seed uint64) beep.Streamer {
	rate := cfg.rate()
	rumble := beep.Mix(
		newVolume(NewOscillator(0, 0, WaveNoise, rate, seed), 0.4),
		newVolume(NewOscillator(55, 0, WaveSaw, rate, 0), 0.3),
	)
	return newVolume(rumble, cfg.volume(SoundThrust))
}

// CreateExplosionSound returns a decaying noise burst
func CreateExplosionSound(cfg *Config, seed uint64) beep.Streamer {
	rate := cfg.rate()
	burst := beep.Mix(
		newVolume(NewOscillator(0, explosionDuration, WaveNoise, rate, seed), 0.7),
		newVolume(NewOscillator(40, explosionDuration, WaveSine, rate, 0), 0.5),
	)
	shaped := NewEnvelope(burst, explosionDuration, explosionAttack, explosionDuration-explosionAttack, rate)
	return newVolume(shaped, cfg.volume(SoundExplosion))
}

// CreateLandingSound returns a rising two-note chime
func CreateLandingSound(cfg *Config) beep.Streamer {
	rate := cfg.rate()
	n1 := NewEnvelope(NewOscillator(659.25, chimeNote1, WaveSine, rate, 0), chimeNote1, chimeAttack, chimeNote1/2, rate)
	n2 := NewEnvelope(NewOscillator(987.77, chimeNote2, WaveSine, rate, 0), chimeNote2, chimeAttack, chimeNote2*3/4, rate)
	return newVolume(beep.Seq(n1, n2), cfg.volume(SoundLanding))
}

// CreateFuelWarningSound returns two short square wave beeps
func CreateFuelWarningSound(cfg *Config) beep.Streamer {
	rate := cfg.rate()
	note := func() beep.Streamer {
		return NewEnvelope(NewOscillator(880, warningBeep, WaveSquare, rate, 0), warningBeep, chimeAttack, chimeAttack, rate)
	}
	seq := beep.Seq(note(), beep.Silence(rate.N(warningGap)), note())
	return newVolume(seq, cfg.volume(SoundFuelWarning))
}
