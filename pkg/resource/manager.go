// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-lander/pkg/config"
	"github.com/opd-ai/go-lander/pkg/logging"
)

// ErrTaskLimit is returned by Go when every task slot is taken.
var ErrTaskLimit = errors.New("task limit reached")

// Manager supervises the long running tasks of a lander process (the
// simulation loop, the metrics server, terminal input) and watches the
// heap. Shutdown cancels every task and waits for them to return.
type Manager struct {
	maxMemoryMB     int64
	maxTasks        int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration
	logger          *logging.Logger

	taskCount atomic.Int64
	memoryMB  atomic.Int64

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	tasks   map[string]int
	err     error

	lastMemoryCheck time.Time
}

// NewManager creates a manager with the limits from cfg.
func NewManager(cfg *config.EnvironmentConfig, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		maxMemoryMB:     cfg.MaxMemoryMB,
		maxTasks:        int64(cfg.MaxTasks),
		shutdownTimeout: cfg.ShutdownTimeout,
		checkInterval:   cfg.ResourceCheckInterval,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
		done:            make(chan struct{}),
		tasks:           make(map[string]int),
		lastMemoryCheck: time.Now(),
	}
}

// Start begins the periodic memory check.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return fmt.Errorf("resource manager already running")
	}
	m.running = true
	m.mu.Unlock()

	go m.monitoringLoop()

	m.logger.Info(m.ctx, "Resource manager started",
		"max_memory_mb", m.maxMemoryMB,
		"max_tasks", m.maxTasks,
		"check_interval", m.checkInterval,
	)
	return nil
}

// Context is cancelled when the manager shuts down.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Go runs fn on a tracked goroutine. fn's context is cancelled when
// either ctx or the manager is done. A panic or a non-nil error other than
// context cancellation is recorded and can be read back with Err.
func (m *Manager) Go(ctx context.Context, name string, fn func(context.Context) error) error {
	if n := m.taskCount.Add(1); n > m.maxTasks {
		m.taskCount.Add(-1)
		m.logger.Warn(ctx, "Task limit exceeded",
			"current", n-1,
			"limit", m.maxTasks,
			"name", name,
		)
		return fmt.Errorf("%w: %d/%d starting %s", ErrTaskLimit, n-1, m.maxTasks, name)
	}

	m.mu.Lock()
	m.tasks[name]++
	m.mu.Unlock()
	m.wg.Add(1)

	taskCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.ctx, cancel)

	go func() {
		defer m.wg.Done()
		defer m.taskCount.Add(-1)
		defer m.release(name)
		defer stop()
		defer cancel()

		if err := m.run(taskCtx, name, fn); err != nil {
			m.fail(ctx, name, err)
		}
	}()

	return nil
}

func (m *Manager) run(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", name, r)
		}
	}()
	m.logger.Debug(ctx, "Task started", "name", name)
	return fn(ctx)
}

func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tasks[name]--; m.tasks[name] <= 0 {
		delete(m.tasks, name)
	}
}

func (m *Manager) fail(ctx context.Context, name string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.logger.Error(ctx, "Task failed", err, "name", name)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil {
		m.err = logging.WrapError(err, "task %s", name)
	}
}

// Err returns the first task failure.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Tasks lists the names of running tasks.
func (m *Manager) Tasks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.tasks))
	for name := range m.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TaskCount returns the number of running tasks.
func (m *Manager) TaskCount() int64 {
	return m.taskCount.Load()
}

// CheckMemoryUsage samples the heap and compares it with the limit.
func (m *Manager) CheckMemoryUsage() error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	currentMB := int64(ms.Alloc / 1024 / 1024)
	m.memoryMB.Store(currentMB)

	m.mu.Lock()
	m.lastMemoryCheck = time.Now()
	m.mu.Unlock()

	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// MemoryUsage returns the last sampled heap size in MB.
func (m *Manager) MemoryUsage() int64 {
	return m.memoryMB.Load()
}

// Stats is a snapshot of resource usage.
type Stats struct {
	TaskCount       int64     `json:"task_count"`
	MaxTasks        int64     `json:"max_tasks"`
	Tasks           []string  `json:"tasks"`
	MemoryUsageMB   int64     `json:"memory_usage_mb"`
	MaxMemoryMB     int64     `json:"max_memory_mb"`
	LastMemoryCheck time.Time `json:"last_memory_check"`
}

// Stats returns current resource usage.
func (m *Manager) Stats() Stats {
	tasks := m.Tasks()
	m.mu.Lock()
	last := m.lastMemoryCheck
	m.mu.Unlock()
	return Stats{
		TaskCount:       m.TaskCount(),
		MaxTasks:        m.maxTasks,
		Tasks:           tasks,
		MemoryUsageMB:   m.MemoryUsage(),
		MaxMemoryMB:     m.maxMemoryMB,
		LastMemoryCheck: last,
	}
}

// Shutdown cancels all tasks and waits up to the shutdown timeout for
// them to return. It is safe to call more than once.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	wasRunning := m.running
	m.running = false
	m.mu.Unlock()

	m.logger.Info(ctx, "Shutting down resource manager", "tasks", m.Tasks())
	m.cancel()

	shutdownCtx, cancel := context.WithTimeout(ctx, m.shutdownTimeout)
	defer cancel()

	if wasRunning {
		select {
		case <-m.done:
		case <-shutdownCtx.Done():
			m.logger.Warn(ctx, "Resource monitoring loop did not stop in time")
		}
	}

	return m.waitForTasks(shutdownCtx)
}

func (m *Manager) waitForTasks(ctx context.Context) error {
	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		m.logger.Info(ctx, "All tasks finished")
		return nil
	case <-ctx.Done():
		remaining := m.Tasks()
		m.logger.Warn(ctx, "Shutdown timeout exceeded with tasks still running",
			"remaining", remaining,
		)
		return fmt.Errorf("shutdown timeout: %d tasks still running %v", len(remaining), remaining)
	}
}

func (m *Manager) monitoringLoop() {
	defer close(m.done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.performResourceChecks()
		case <-m.ctx.Done():
			return
		}
	}
}

func (m *Manager) performResourceChecks() {
	if err := m.CheckMemoryUsage(); err != nil {
		m.logger.Error(m.ctx, "Memory limit exceeded", err,
			"current_mb", m.MemoryUsage(),
			"limit_mb", m.maxMemoryMB,
		)
	}

	m.logger.Debug(m.ctx, "Resource usage check",
		"tasks", m.TaskCount(),
		"max_tasks", m.maxTasks,
		"memory_mb", m.MemoryUsage(),
		"max_memory_mb", m.maxMemoryMB,
	)
}
