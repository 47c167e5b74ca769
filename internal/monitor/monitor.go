// Package monitor samples engine health while episodes run and ships
// the samples to the performance metrics bucket.
package monitor

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/gridcombat/engine/internal/influx"
)

// Dependencies holds all dependencies for the monitor service
type Dependencies struct {
	Influx *influx.Manager
	Log    *slog.Logger
}

// Stats is one point-in-time sample of engine health.
type Stats struct {
	Time        time.Time
	Goroutines  int
	HeapAllocMB float64
	SysMB       float64
	NumGC       uint32
	Uptime      time.Duration
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	interval  time.Duration
	started   time.Time
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service. A zero interval falls back
// to one second.
func NewService(deps Dependencies, interval time.Duration) *Service {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{
		deps:     deps,
		interval: interval,
		started:  time.Now().UTC(),
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot returns the current engine health sample.
func (s *Service) Snapshot() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	now := time.Now().UTC()
	return Stats{
		Time:        now,
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: float64(mem.HeapAlloc) / (1024 * 1024),
		SysMB:       float64(mem.Sys) / (1024 * 1024),
		NumGC:       mem.NumGC,
		Uptime:      now.Sub(s.started),
	}
}

// Start starts the status monitor goroutine
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Log.Debug("Starting status monitor goroutine", "interval", s.interval)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.sample()
			}
		}
	}()
}

// Stop stops the status monitor
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}

// sample writes one health point. Write failures are logged and the
// loop keeps going.
func (s *Service) sample() {
	if s.deps.Influx == nil {
		return
	}

	stats := s.Snapshot()
	point := influxdb2.NewPoint(
		"engine_status",
		map[string]string{},
		map[string]any{
			"goroutines":    stats.Goroutines,
			"heap_alloc_mb": stats.HeapAllocMB,
			"sys_mb":        stats.SysMB,
			"num_gc":        int(stats.NumGC),
			"uptime_s":      stats.Uptime.Seconds(),
		},
		stats.Time,
	)

	if err := s.deps.Influx.WritePoint(context.Background(), influx.BucketPerformance, point); err != nil {
		s.deps.Log.Error("Error writing engine status point", "error", err)
	}
}
