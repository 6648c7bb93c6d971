// Package metrics exports simulation events as Prometheus metrics
package metrics

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opd-ai/go-lander/pkg/event"
	"github.com/opd-ai/go-lander/pkg/logging"
)

const namespace = "lander"

// shutdownTimeout bounds how long Serve waits for in-flight scrapes
const shutdownTimeout = 5 * time.Second

// Collector turns events from the bus into metrics on its own registry
type Collector struct {
	registry *prometheus.Registry
	logger   *logging.Logger

	sessions     prometheus.Counter
	outcomes     *prometheus.CounterVec
	destroyed    *prometheus.CounterVec
	steps        prometheus.Counter
	sessionSteps prometheus.Histogram
	fuel         prometheus.Gauge
	particles    prometheus.Gauge
	asteroids    prometheus.Gauge
	thrusting    prometheus.Gauge
	blocked      prometheus.Gauge
	fuelWarnings prometheus.Counter

	mu   sync.Mutex
	subs []*event.Subscription
}

// NewCollector creates a collector with every metric registered
func NewCollector(logger *logging.Logger) *Collector {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Sessions started",
		}),
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_outcomes_total",
				Help:      "Finished sessions by outcome",
			},
			[]string{"outcome"},
		),
		destroyed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ships_destroyed_total",
				Help:      "Ships destroyed by what they hit",
			},
			[]string{"cause"},
		),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Simulation steps run",
		}),
		sessionSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_steps",
			Help:      "Steps taken by a session before it finished",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 10),
		}),
		fuel: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fuel",
			Help:      "Fuel remaining after the last step",
		}),
		particles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "particles",
			Help:      "Live particles after the last step",
		}),
		asteroids: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "asteroids",
			Help:      "Live asteroids after the last step",
		}),
		thrusting: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "thrusting",
			Help:      "1 while the engine is firing",
		}),
		blocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "block_alert",
			Help:      "1 while stepping is suspended by the block alert",
		}),
		fuelWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fuel_warnings_total",
			Help:      "Sessions that dropped below the fuel warning level",
		}),
	}

	c.registry.MustRegister(
		c.sessions, c.outcomes, c.destroyed,
		c.steps, c.sessionSteps,
		c.fuel, c.particles, c.asteroids,
		c.thrusting, c.blocked, c.fuelWarnings,
	)
	return c
}

// Registry returns the registry holding the collector's metrics
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Subscribe records events published on bus
func (c *Collector) Subscribe(bus *event.Bus) {
	handlers := map[event.Type]event.Handler{
		event.SessionStarted:  func(event.Event) { c.sessions.Inc() },
		event.SessionFinished: c.onFinished,
		event.StepCompleted:   c.onStep,
		event.ShipDestroyed:   c.onDestroyed,
		event.ThrustEngaged:   func(event.Event) { c.thrusting.Set(1) },
		event.ThrustCut:       func(event.Event) { c.thrusting.Set(0) },
		event.FuelLow:         func(event.Event) { c.fuelWarnings.Inc() },
		event.AlertChanged:    c.onAlert,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for t, h := range handlers {
		c.subs = append(c.subs, bus.Subscribe(t, h))
	}
}

// Unsubscribe detaches the collector from every bus it was subscribed to
func (c *Collector) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, sub := range c.subs {
		sub.Cancel()
	}
	c.subs = nil
}

func (c *Collector) onStep(e event.Event) {
	step, ok := e.(*event.StepEvent)
	if !ok {
		return
	}
	c.steps.Inc()
	c.fuel.Set(float64(step.Fuel))
	c.particles.Set(float64(step.Particles))
	c.asteroids.Set(float64(step.Asteroids))
}

func (c *Collector) onFinished(e event.Event) {
	session, ok := e.(*event.SessionEvent)
	if !ok {
		return
	}
	c.outcomes.WithLabelValues(string(session.Outcome)).Inc()
	c.sessionSteps.Observe(float64(session.Steps))
	c.thrusting.Set(0)
}

func (c *Collector) onDestroyed(e event.Event) {
	if d, ok := e.(*event.DestroyedEvent); ok {
		c.destroyed.WithLabelValues(string(d.Cause)).Inc()
	}
}

func (c *Collector) onAlert(e event.Event) {
	alert, ok := e.(*event.AlertEvent)
	if !ok {
		return
	}
	if alert.Blocked {
		c.blocked.Set(1)
	} else {
		c.blocked.Set(0)
	}
}

// Handler serves the collector's registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled. Each mount may add
// further routes to the same router.
func (c *Collector) Serve(ctx context.Context, addr string, mounts ...func(*mux.Router)) error {
	router := mux.NewRouter()
	router.Handle("/metrics", c.Handler()).Methods(http.MethodGet)
	for _, mount := range mounts {
		mount(router)
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.logger.Info(ctx, "metrics server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return logging.WrapError(err, "metrics server on %s failed", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return logging.WrapError(err, "failed to stop metrics server")
		}
		c.logger.Info(context.Background(), "metrics server stopped", "addr", addr)
		return nil
	}
}
