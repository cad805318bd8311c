// Package health собирает проверки компонентов сервера и отдаёт их
// по HTTP: /healthz с деталями, /readyz и /livez для оркестратора.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"
)

const defaultTimeout = 2 * time.Second

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusUnhealthy:
		return 2
	case StatusDegraded:
		return 1
	default:
		return 0
	}
}

// Check: результат одной проверки.
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Report: тело ответа /healthz.
type Report struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker проверяет компонент в пределах ctx. Имя и длительность
// заполняет Registry.
type Checker interface {
	Check(ctx context.Context) Check
}

// Registry хранит проверки и выполняет их параллельно.
type Registry struct {
	mu       sync.RWMutex
	checkers map[string]Checker
	version  string
	started  time.Time
	timeout  time.Duration
}

func NewRegistry(version string) *Registry {
	return &Registry{
		checkers: make(map[string]Checker),
		version:  version,
		started:  time.Now(),
		timeout:  defaultTimeout,
	}
}

// Register добавляет или заменяет проверку name.
func (r *Registry) Register(name string, c Checker) {
	r.mu.Lock()
	r.checkers[name] = c
	r.mu.Unlock()
}

// Run выполняет все проверки с общим таймаутом.
func (r *Registry) Run(ctx context.Context) Report {
	r.mu.RLock()
	names := slices.Sorted(maps.Keys(r.checkers))
	checkers := maps.Clone(r.checkers)
	r.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	results := make([]Check, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			c := checkers[name].Check(ctx)
			c.Name = name
			c.DurationMs = time.Since(start).Milliseconds()
			results[i] = c
		}()
	}
	wg.Wait()

	report := Report{
		Status:        StatusHealthy,
		Timestamp:     time.Now().UTC(),
		Checks:        make(map[string]Check, len(results)),
		Version:       r.version,
		UptimeSeconds: int64(time.Since(r.started).Seconds()),
	}
	for _, c := range results {
		report.Checks[c.Name] = c
		if c.Status.rank() > report.Status.rank() {
			report.Status = c.Status
		}
	}
	return report
}

// ServeHTTP отдаёт Report; 503 только при unhealthy.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	report := r.Run(req.Context())

	code := http.StatusOK
	if report.Status == StatusUnhealthy {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report)
}

// Ready: проверка готовности. Degraded сервис остаётся в балансировке.
func (r *Registry) Ready(w http.ResponseWriter, req *http.Request) {
	if r.Run(req.Context()).Status == StatusUnhealthy {
		http.Error(w, "not ready", http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte("ready"))
}

// Live: проверка живости, всегда 200.
func Live(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// CheckFunc превращает функцию в Checker: ошибка означает unhealthy.
type CheckFunc func(ctx context.Context) error

func (f CheckFunc) Check(ctx context.Context) Check {
	if err := f(ctx); err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error()}
	}
	return Check{Status: StatusHealthy}
}

// Pinger: хранилище с проверкой соединения, например postgres.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func Ping(p Pinger) Checker {
	return CheckFunc(p.Ping)
}

// BacklogFunc возвращает размер очереди и время самой старой записи.
type BacklogFunc func(ctx context.Context) (pending int, oldest time.Time, err error)

// Backlog: проверка очереди (outbox): degraded, если самая старая запись
// ждёт дольше maxAge.
type Backlog struct {
	stats  BacklogFunc
	maxAge time.Duration
	now    func() time.Time
}

func NewBacklog(stats BacklogFunc, maxAge time.Duration) *Backlog {
	return &Backlog{stats: stats, maxAge: maxAge, now: time.Now}
}

func (b *Backlog) Check(ctx context.Context) Check {
	pending, oldest, err := b.stats(ctx)
	if err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error()}
	}
	if pending == 0 || oldest.IsZero() {
		return Check{Status: StatusHealthy}
	}
	if age := b.now().Sub(oldest); age > b.maxAge {
		return Check{
			Status:  StatusDegraded,
			Message: fmt.Sprintf("%d pending, oldest %s", pending, age.Truncate(time.Second)),
		}
	}
	return Check{Status: StatusHealthy}
}
