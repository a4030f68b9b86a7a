// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"time"
)

// MetricID identifies one tracked daily activity.
type MetricID string

// Catalog metric ids.
const (
	Workout MetricID = "workout"
	Sleep   MetricID = "sleep"
	Water   MetricID = "water"
	Steps   MetricID = "steps"
	Diet    MetricID = "diet"
)

// DietGoal is the implicit "met" target of the diet check.
const DietGoal = 1.0

const dateLayout = "2006-01-02"

// MetricIDs returns every metric id in display order.
func MetricIDs() []MetricID {
	return []MetricID{Workout, Sleep, Water, Steps, Diet}
}

// NumericMetricIDs returns the metrics that carry a user goal.
func NumericMetricIDs() []MetricID {
	return []MetricID{Workout, Sleep, Water, Steps}
}

// DateKey is a calendar date in YYYY-MM-DD form. Lexicographic order is
// chronological order.
type DateKey string

// DateKeyFor formats t as a date key in loc. A nil loc means UTC.
func DateKeyFor(t time.Time, loc *time.Location) DateKey {
	if loc == nil {
		loc = time.UTC
	}
	return DateKey(t.In(loc).Format(dateLayout))
}

// ParseDateKey validates s and returns it as a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return DateKey(s), nil
}

// Goals maps numeric metric ids to their daily target.
type Goals map[MetricID]float64

// DefaultGoals returns a fresh copy of the default targets.
func DefaultGoals() Goals {
	return Goals{
		Workout: 30,
		Sleep:   8,
		Water:   2,
		Steps:   10000,
	}
}

// Goal returns the target for id. Diet always reports DietGoal.
func (g Goals) Goal(id MetricID) float64 {
	if id == Diet {
		return DietGoal
	}
	return g[id]
}

// Clone returns a copy of g.
func (g Goals) Clone() Goals {
	out := make(Goals, len(g))
	for k, v := range g {
		out[k] = v
	}
	return out
}

// DailyEntry holds one day's raw values and its derived point total.
type DailyEntry struct {
	Workout float64 `json:"workout"`
	Sleep   float64 `json:"sleep"`
	Water   float64 `json:"water"`
	Steps   float64 `json:"steps"`
	Diet    float64 `json:"diet"`
	Points  int     `json:"points"`
}

// Value returns the logged value for id, or 0 for an unknown id.
func (e *DailyEntry) Value(id MetricID) float64 {
	switch id {
	case Workout:
		return e.Workout
	case Sleep:
		return e.Sleep
	case Water:
		return e.Water
	case Steps:
		return e.Steps
	case Diet:
		return e.Diet
	default:
		return 0
	}
}

// SetValue stores v for id and reports whether id is known. Values that are
// negative or not finite become 0; diet becomes 0 or 1.
func (e *DailyEntry) SetValue(id MetricID, v float64) bool {
	v = SanitizeValue(v)
	switch id {
	case Workout:
		e.Workout = v
	case Sleep:
		e.Sleep = v
	case Water:
		e.Water = v
	case Steps:
		e.Steps = v
	case Diet:
		e.Diet = dietFlag(v)
	default:
		return false
	}
	return true
}

// Clone returns a copy of e.
func (e *DailyEntry) Clone() *DailyEntry {
	if e == nil {
		return &DailyEntry{}
	}
	c := *e
	return &c
}

// SanitizeValue maps NaN, infinities and negatives to 0.
func SanitizeValue(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func dietFlag(v float64) float64 {
	if v > 0 {
		return 1
	}
	return 0
}

// UserProfile is everything persisted for one username.
type UserProfile struct {
	Goals            Goals                   `json:"goals"`
	History          map[DateKey]*DailyEntry `json:"history"`
	CumulativePoints int                     `json:"cumulativePoints"`
}

// NewProfile returns a profile with default goals and no history.
func NewProfile() *UserProfile {
	return &UserProfile{
		Goals:   DefaultGoals(),
		History: make(map[DateKey]*DailyEntry),
	}
}

// Entry returns the entry for day, or nil.
func (p *UserProfile) Entry(day DateKey) *DailyEntry {
	return p.History[day]
}

// EnsureEntry creates an all-zero entry for day when missing and reports
// whether it did.
func (p *UserProfile) EnsureEntry(day DateKey) (*DailyEntry, bool) {
	if p.History == nil {
		p.History = make(map[DateKey]*DailyEntry)
	}
	if e, ok := p.History[day]; ok && e != nil {
		return e, false
	}
	e := &DailyEntry{}
	p.History[day] = e
	return e, true
}

// RecomputeCumulative sets CumulativePoints to the sum of entry points.
func (p *UserProfile) RecomputeCumulative() int {
	total := 0
	for _, e := range p.History {
		if e != nil {
			total += e.Points
		}
	}
	p.CumulativePoints = total
	return total
}

// Clone returns a deep copy of p.
func (p *UserProfile) Clone() *UserProfile {
	out := &UserProfile{
		Goals:            p.Goals.Clone(),
		History:          make(map[DateKey]*DailyEntry, len(p.History)),
		CumulativePoints: p.CumulativePoints,
	}
	for day, e := range p.History {
		out.History[day] = e.Clone()
	}
	return out
}

// Normalize repairs a decoded profile in place: unknown or unusable goals
// fall back to defaults, nil entries become zero entries and negative
// values or points become 0. Entries are kept under whatever key they were
// stored with, so their points still count toward the cumulative total.
func (p *UserProfile) Normalize() {
	defaults := DefaultGoals()
	goals := make(Goals, len(defaults))
	for _, id := range NumericMetricIDs() {
		g, ok := p.Goals[id]
		if !ok || math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
			g = defaults[id]
		}
		goals[id] = g
	}
	p.Goals = goals

	if p.History == nil {
		p.History = make(map[DateKey]*DailyEntry)
	}
	for day, e := range p.History {
		if e == nil {
			p.History[day] = &DailyEntry{}
			continue
		}
		for _, id := range MetricIDs() {
			e.SetValue(id, e.Value(id))
		}
		if e.Points < 0 {
			e.Points = 0
		}
	}
}
