// Package progress reduces a profile's history into summaries, ranks and
// ordered windows for display.
package progress

import (
	"sort"

	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
)

// Summary is the all-time reduction of a history.
type Summary struct {
	TotalsByMetric   map[model.MetricID]float64 `json:"totalsByMetric"`
	DietDays         int                        `json:"dietDays"`
	CumulativePoints int                        `json:"cumulativePoints"`
}

// Aggregate sums numeric metric values, counts diet days and recomputes
// cumulative points from entry points.
func Aggregate(history map[model.DateKey]*model.DailyEntry) Summary {
	s := Summary{TotalsByMetric: make(map[model.MetricID]float64, len(model.NumericMetricIDs()))}
	for _, id := range model.NumericMetricIDs() {
		s.TotalsByMetric[id] = 0
	}
	for _, e := range history {
		if e == nil {
			continue
		}
		for _, id := range model.NumericMetricIDs() {
			s.TotalsByMetric[id] += e.Value(id)
		}
		if e.Diet > 0 {
			s.DietDays++
		}
		s.CumulativePoints += e.Points
	}
	return s
}

// Standing is a rank resolved for a point total.
type Standing struct {
	Name         string `json:"name"`
	Threshold    int    `json:"threshold"`
	Next         string `json:"next,omitempty"`
	PointsToNext int    `json:"pointsToNext"`
	MaxRank      bool   `json:"maxRank"`
}

// RankFor returns the highest rank whose threshold is at most points.
// Thresholds are inclusive lower bounds; negative points resolve to the
// lowest rank.
func RankFor(table *catalog.RankTable, points int) Standing {
	n := table.Len()
	// First rank strictly above points.
	i := sort.Search(n, func(i int) bool { return table.At(i).Threshold > points })
	cur := 0
	if i > 0 {
		cur = i - 1
	}
	r := table.At(cur)
	st := Standing{Name: r.Name, Threshold: r.Threshold}
	if cur+1 >= n {
		st.MaxRank = true
		return st
	}
	next := table.At(cur + 1)
	st.Next = next.Name
	st.PointsToNext = next.Threshold - points
	return st
}

// Direction orders a history window.
type Direction int

// Window orders.
const (
	// Descending yields the most recent n days, newest first.
	Descending Direction = iota
	// Ascending yields the last n days in chronological order.
	Ascending
)

// DayRecord pairs a date with a copy of its entry.
type DayRecord struct {
	Day   model.DateKey     `json:"date"`
	Entry *model.DailyEntry `json:"entry"`
}

// RecentHistory returns the last n days of history ordered by dir.
func RecentHistory(history map[model.DateKey]*model.DailyEntry, n int, dir Direction) []DayRecord {
	if n <= 0 || len(history) == 0 {
		return []DayRecord{}
	}
	days := make([]model.DateKey, 0, len(history))
	for d := range history {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	if len(days) > n {
		days = days[len(days)-n:]
	}

	out := make([]DayRecord, len(days))
	for i, d := range days {
		idx := i
		if dir == Descending {
			idx = len(days) - 1 - i
		}
		out[idx] = DayRecord{Day: d, Entry: history[d].Clone()}
	}
	return out
}

// Today returns a copy of the entry for day, or a zero entry.
func Today(history map[model.DateKey]*model.DailyEntry, day model.DateKey) *model.DailyEntry {
	return history[day].Clone()
}

// PercentOfGoal reports progress toward goal capped at 100. Boolean metrics
// report 0 or 100.
func PercentOfGoal(def catalog.MetricDefinition, value, goal float64) float64 {
	if value <= 0 {
		return 0
	}
	if def.IsBoolean() || goal <= 0 || value >= goal {
		return 100
	}
	return value / goal * 100
}
