package sim

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RunMetrics collects metrics during a run
type RunMetrics struct {
	RunID     string    `json:"run_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	Agents      int  `json:"agents"`
	AutoPlanned bool `json:"auto_planned"`
	Ticks       int  `json:"ticks"`
	Moves       int  `json:"moves"`
	Arrived     int  `json:"arrived"`
	Halted      bool `json:"halted"`

	WallTimeMs float64 `json:"wall_time_ms"`
}

// Runner is the periodic trigger: it ticks a simulation on a fixed cadence
// until it halts, a tick limit is hit, or the context ends.
type Runner struct {
	mu sync.Mutex

	sim *Simulation

	// Time between ticks; 0 ticks as fast as possible
	Interval time.Duration

	// Stop after this many ticks; 0 means no limit
	MaxTicks int

	// Called after every tick, from the Run goroutine
	OnTick func(TickResult)

	metrics RunMetrics
}

// NewRunner creates a runner for s.
func NewRunner(s *Simulation, interval time.Duration) *Runner {
	return &Runner{sim: s, Interval: interval}
}

// Run plans all agents if nothing is planned yet, then ticks until the
// simulation halts or MaxTicks is reached. On context cancellation it
// returns the metrics so far together with the context error.
func (r *Runner) Run(ctx context.Context) (*RunMetrics, error) {
	m := RunMetrics{
		RunID:     r.sim.RunID().String(),
		StartTime: time.Now(),
		Agents:    len(r.sim.Agents()),
	}
	log := r.sim.log.WithFields(logrus.Fields{
		"run_id":   m.RunID,
		"interval": r.Interval.String(),
	})

	if !r.sim.HasPlans() {
		r.sim.PlanAll()
		m.AutoPlanned = true
	}
	log.WithField("agents", m.Agents).Info("run started")

	var tick <-chan time.Time
	if r.Interval > 0 {
		ticker := time.NewTicker(r.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	var err error
loop:
	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				err = ctx.Err()
				break loop
			case <-tick:
			}
		} else if err = ctx.Err(); err != nil {
			break loop
		}

		res := r.sim.Tick()
		m.Ticks++
		m.Moves += res.Moved
		m.Arrived = res.Arrived
		r.store(m)

		if r.OnTick != nil {
			r.OnTick(res)
		}
		if res.Halted {
			m.Halted = true
			break loop
		}
		if r.MaxTicks > 0 && m.Ticks >= r.MaxTicks {
			break loop
		}
	}

	m.EndTime = time.Now()
	m.WallTimeMs = float64(m.EndTime.Sub(m.StartTime).Microseconds()) / 1000
	r.store(m)

	log.WithFields(logrus.Fields{
		"ticks":   m.Ticks,
		"moves":   m.Moves,
		"arrived": m.Arrived,
		"halted":  m.Halted,
	}).Info("run finished")
	return &m, err
}

func (r *Runner) store(m RunMetrics) {
	r.mu.Lock()
	r.metrics = m
	r.mu.Unlock()
}

// Metrics returns the metrics of the current or last run.
func (r *Runner) Metrics() RunMetrics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.metrics
}

// ExportMetrics writes metrics to a JSON file
func (r *Runner) ExportMetrics(path string) error {
	data, err := json.MarshalIndent(r.Metrics(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
