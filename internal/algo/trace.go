package algo

import (
	"github.com/sirupsen/logrus"

	"github.com/elektrokombinacija/dmapf/internal/core"
)

// PruneReason tells why a successor was discarded.
type PruneReason int

const (
	PruneReserved PruneReason = iota // Cell reserved at arrival time
	PruneSwap                        // Opposite move reserved at arrival time
	PruneHorizon                     // Time horizon reached
)

func (r PruneReason) String() string {
	return [...]string{"reserved", "swap", "horizon"}[r]
}

// Tracer observes search decision points. Spatial searches report the
// step count from the start as T.
type Tracer interface {
	// OnExpand is called when a node is finalized.
	OnExpand(n core.TimedCell, g, f int)

	// OnPrune is called when a successor of from is rejected.
	OnPrune(from, to core.TimedCell, reason PruneReason)

	// OnDone is called once per search.
	OnDone(found bool, expanded int)
}

// NopTracer ignores all events.
type NopTracer struct{}

func (NopTracer) OnExpand(core.TimedCell, int, int) {}
func (NopTracer) OnPrune(core.TimedCell, core.TimedCell, PruneReason) {}
func (NopTracer) OnDone(bool, int) {}

// LogTracer writes search events at debug level.
type LogTracer struct {
	Entry *logrus.Entry
}

// NewLogTracer creates a tracer logging through entry.
func NewLogTracer(entry *logrus.Entry) *LogTracer {
	return &LogTracer{Entry: entry.WithField("component", "search")}
}

func (l *LogTracer) OnExpand(n core.TimedCell, g, f int) {
	l.Entry.WithFields(logrus.Fields{
		"cell": n.P.String(),
		"t":    n.T,
		"g":    g,
		"f":    f,
	}).Debug("expand")
}

func (l *LogTracer) OnPrune(from, to core.TimedCell, reason PruneReason) {
	l.Entry.WithFields(logrus.Fields{
		"from":   from.P.String(),
		"to":     to.P.String(),
		"t":      to.T,
		"reason": reason.String(),
	}).Debug("prune")
}

func (l *LogTracer) OnDone(found bool, expanded int) {
	l.Entry.WithFields(logrus.Fields{
		"found":    found,
		"expanded": expanded,
	}).Debug("search finished")
}

// MultiTracer fans events out to several tracers.
type MultiTracer []Tracer

func (m MultiTracer) OnExpand(n core.TimedCell, g, f int) {
	for _, t := range m {
		t.OnExpand(n, g, f)
	}
}

func (m MultiTracer) OnPrune(from, to core.TimedCell, reason PruneReason) {
	for _, t := range m {
		t.OnPrune(from, to, reason)
	}
}

func (m MultiTracer) OnDone(found bool, expanded int) {
	for _, t := range m {
		t.OnDone(found, expanded)
	}
}

// CountingTracer tallies events; handy for tests and metrics.
type CountingTracer struct {
	Expanded int
	Pruned   map[PruneReason]int
	Searches int
	Found    int
}

func (c *CountingTracer) OnExpand(core.TimedCell, int, int) { c.Expanded++ }

func (c *CountingTracer) OnPrune(_, _ core.TimedCell, reason PruneReason) {
	if c.Pruned == nil {
		c.Pruned = make(map[PruneReason]int)
	}
	c.Pruned[reason]++
}

func (c *CountingTracer) OnDone(found bool, _ int) {
	c.Searches++
	if found {
		c.Found++
	}
}
