// Package scoring computes per-metric and daily points from logged values.
package scoring

import (
	"fmt"
	"math"

	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
)

// ComputePoints returns the points def awards for value against goal.
//
// Boolean metrics award the full weight for any positive value. Numeric
// metrics award the full weight once value reaches goal and otherwise
// floor(value/goal*weight). Negative or NaN values score 0. A goal that is
// not positive awards the full weight for any positive value.
func ComputePoints(def catalog.MetricDefinition, value, goal float64) int {
	if math.IsNaN(value) || value <= 0 {
		return 0
	}
	weight := def.PointWeight
	if def.IsBoolean() {
		return weight
	}
	if math.IsNaN(goal) || goal <= 0 || value >= goal {
		return weight
	}
	return int(math.Floor(value / goal * float64(weight)))
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCatalog sets the metric catalog used for weights.
func WithCatalog(c *catalog.Catalog) Option {
	return func(e *Engine) {
		if c != nil {
			e.catalog = c
		}
	}
}

// Engine scores entries against one catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates an engine over the default catalog unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{catalog: catalog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine scores with.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Points scores a single metric value.
func (e *Engine) Points(id model.MetricID, value, goal float64) (int, error) {
	def, ok := e.catalog.Get(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownMetric, id)
	}
	return ComputePoints(def, value, goal), nil
}

// DailyTotal sums the points of every catalog metric in entry using goals.
func (e *Engine) DailyTotal(entry *model.DailyEntry, goals model.Goals) int {
	if entry == nil {
		return 0
	}
	total := 0
	for _, def := range e.catalog.Definitions() {
		total += ComputePoints(def, entry.Value(def.ID), goals.Goal(def.ID))
	}
	return total
}

// Breakdown returns the per-metric points that make up DailyTotal.
func (e *Engine) Breakdown(entry *model.DailyEntry, goals model.Goals) map[model.MetricID]int {
	out := make(map[model.MetricID]int, len(e.catalog.IDs()))
	for _, def := range e.catalog.Definitions() {
		v := 0.0
		if entry != nil {
			v = entry.Value(def.ID)
		}
		out[def.ID] = ComputePoints(def, v, goals.Goal(def.ID))
	}
	return out
}

// Rescore writes the daily total into entry.Points and returns it.
func (e *Engine) Rescore(entry *model.DailyEntry, goals model.Goals) int {
	if entry == nil {
		return 0
	}
	entry.Points = e.DailyTotal(entry, goals)
	return entry.Points
}
