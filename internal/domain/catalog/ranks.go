package catalog

import (
	"fmt"
	"sort"
)

// Rank is a named tier reached at Threshold cumulative points.
type Rank struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
}

// DefaultRanks returns the stock rank ladder in ascending order.
func DefaultRanks() []Rank {
	return []Rank{
		{Name: "Rookie", Threshold: 0},
		{Name: "Aspirant", Threshold: 500},
		{Name: "Prodigy", Threshold: 1500},
		{Name: "Master", Threshold: 4000},
		{Name: "Elite", Threshold: 8000},
	}
}

// RankTable is an ascending, validated list of ranks.
type RankTable struct {
	ranks []Rank
}

// NewRankTable sorts ranks by threshold and validates them.
func NewRankTable(ranks []Rank) (*RankTable, error) {
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRankTable)
	}
	sorted := make([]Rank, len(ranks))
	copy(sorted, ranks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Threshold < sorted[j].Threshold })

	if sorted[0].Threshold != 0 {
		return nil, fmt.Errorf("%w: lowest threshold is %d, want 0", ErrInvalidRankTable, sorted[0].Threshold)
	}
	names := make(map[string]struct{}, len(sorted))
	for i, r := range sorted {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: rank without name", ErrInvalidRankTable)
		}
		if _, dup := names[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate rank %q", ErrInvalidRankTable, r.Name)
		}
		names[r.Name] = struct{}{}
		if i > 0 && sorted[i-1].Threshold == r.Threshold {
			return nil, fmt.Errorf("%w: duplicate threshold %d", ErrInvalidRankTable, r.Threshold)
		}
	}
	return &RankTable{ranks: sorted}, nil
}

// DefaultRankTable returns the table built from DefaultRanks.
func DefaultRankTable() *RankTable {
	t, err := NewRankTable(DefaultRanks())
	if err != nil {
		panic(err)
	}
	return t
}

// Ranks returns a copy of the ranks in ascending order.
func (t *RankTable) Ranks() []Rank {
	out := make([]Rank, len(t.ranks))
	copy(out, t.ranks)
	return out
}

// Len returns the number of ranks.
func (t *RankTable) Len() int { return len(t.ranks) }

// At returns the rank at index i of the ascending table.
func (t *RankTable) At(i int) Rank { return t.ranks[i] }
