// Package catalog holds the static metric definitions and the rank table.
package catalog

import (
	"math"

	"github.com/okian/arete/internal/domain/model"
)

// InputKind describes how a metric is entered.
type InputKind string

// Input kinds.
const (
	Numeric InputKind = "numeric"
	Boolean InputKind = "boolean"
)

// MetricDefinition describes one tracked metric.
type MetricDefinition struct {
	ID          model.MetricID `json:"id"`
	DisplayName string         `json:"displayName"`
	Unit        string         `json:"unit"`
	InputKind   InputKind      `json:"inputKind"`
	StepSize    float64        `json:"stepSize,omitempty"`
	PointWeight int            `json:"pointWeight"`
}

// IsBoolean reports whether the metric is a met/not-met check.
func (d MetricDefinition) IsBoolean() bool {
	return d.InputKind == Boolean
}

func defaultDefinitions() []MetricDefinition {
	return []MetricDefinition{
		{ID: model.Workout, DisplayName: "Workout Minutes", Unit: "min", InputKind: Numeric, StepSize: 1, PointWeight: 10},
		{ID: model.Sleep, DisplayName: "Sleep Hours", Unit: "hrs", InputKind: Numeric, StepSize: 0.5, PointWeight: 5},
		{ID: model.Water, DisplayName: "Water Intake", Unit: "L", InputKind: Numeric, StepSize: 0.1, PointWeight: 3},
		{ID: model.Steps, DisplayName: "Steps Count", Unit: "steps", InputKind: Numeric, StepSize: 100, PointWeight: 5},
		{ID: model.Diet, DisplayName: "Nutrient Check", Unit: "", InputKind: Boolean, PointWeight: 7},
	}
}

// Option applies a configuration option to a Catalog.
type Option func(*Catalog)

// WithPointWeights overrides point weights by metric id. Unknown ids and
// weights below 1 are ignored; fractions are truncated.
func WithPointWeights(weights map[string]float64) Option {
	return func(c *Catalog) {
		for id, w := range weights {
			if math.IsNaN(w) || w < 1 || w > math.MaxInt32 {
				continue
			}
			if i, ok := c.index[model.MetricID(id)]; ok {
				c.defs[i].PointWeight = int(w)
			}
		}
	}
}

// Catalog is the immutable set of metric definitions.
type Catalog struct {
	defs  []MetricDefinition
	index map[model.MetricID]int
}

// New builds a catalog from the default definitions and applies opts.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		defs:  defaultDefinitions(),
		index: make(map[model.MetricID]int),
	}
	for i, d := range c.defs {
		c.index[d.ID] = i
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Default returns the catalog with the stock point weights.
func Default() *Catalog {
	return New()
}

// IDs returns metric ids in catalog order.
func (c *Catalog) IDs() []model.MetricID {
	ids := make([]model.MetricID, len(c.defs))
	for i, d := range c.defs {
		ids[i] = d.ID
	}
	return ids
}

// Get returns the definition for id.
func (c *Catalog) Get(id model.MetricID) (MetricDefinition, bool) {
	i, ok := c.index[id]
	if !ok {
		return MetricDefinition{}, false
	}
	return c.defs[i], true
}

// Definitions returns a copy of all definitions in catalog order.
func (c *Catalog) Definitions() []MetricDefinition {
	out := make([]MetricDefinition, len(c.defs))
	copy(out, c.defs)
	return out
}
