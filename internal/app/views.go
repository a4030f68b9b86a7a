package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/progress"
)

// MetricProgress is one dashboard card.
type MetricProgress struct {
	ID          model.MetricID    `json:"id"`
	DisplayName string            `json:"displayName"`
	Unit        string            `json:"unit"`
	InputKind   catalog.InputKind `json:"inputKind"`
	Value       float64           `json:"value"`
	Goal        float64           `json:"goal"`
	Percent     float64           `json:"percent"`
	Points      int               `json:"points"`
	GoalMet     bool              `json:"goalMet"`
}

// Dashboard is today's view for one user.
type Dashboard struct {
	Username         string            `json:"username"`
	Day              model.DateKey     `json:"date"`
	Entry            *model.DailyEntry `json:"entry"`
	Goals            model.Goals       `json:"goals"`
	TodayPoints      int               `json:"todayPoints"`
	CumulativePoints int               `json:"cumulativePoints"`
	Standing         progress.Standing `json:"standing"`
	Metrics          []MetricProgress  `json:"metrics"`
}

// ProgressReport is the all-time view for one user.
type ProgressReport struct {
	Username string            `json:"username"`
	Summary  progress.Summary  `json:"summary"`
	Standing progress.Standing `json:"standing"`
}

// Dashboard builds today's view. It does not write.
func (s *Service) Dashboard(ctx context.Context, username string) (Dashboard, error) {
	username, p, err := s.load(ctx, username)
	if err != nil {
		return Dashboard{}, fmt.Errorf("dashboard: %w", err)
	}
	day := s.gateway.Today()
	entry := progress.Today(p.History, day)

	points := s.engine.Breakdown(entry, p.Goals)
	cards := make([]MetricProgress, 0, len(points))
	for _, def := range s.engine.Catalog().Definitions() {
		v := entry.Value(def.ID)
		goal := p.Goals.Goal(def.ID)
		pct := progress.PercentOfGoal(def, v, goal)
		cards = append(cards, MetricProgress{
			ID:          def.ID,
			DisplayName: def.DisplayName,
			Unit:        def.Unit,
			InputKind:   def.InputKind,
			Value:       v,
			Goal:        goal,
			Percent:     pct,
			Points:      points[def.ID],
			GoalMet:     pct >= 100,
		})
	}

	return Dashboard{
		Username:         username,
		Day:              day,
		Entry:            entry,
		Goals:            p.Goals.Clone(),
		TodayPoints:      entry.Points,
		CumulativePoints: p.CumulativePoints,
		Standing:         progress.RankFor(s.ranks, p.CumulativePoints),
		Metrics:          cards,
	}, nil
}

// Progress aggregates the user's whole history.
func (s *Service) Progress(ctx context.Context, username string) (ProgressReport, error) {
	username, p, err := s.load(ctx, username)
	if err != nil {
		return ProgressReport{}, fmt.Errorf("progress: %w", err)
	}
	sum := progress.Aggregate(p.History)
	return ProgressReport{
		Username: username,
		Summary:  sum,
		Standing: progress.RankFor(s.ranks, sum.CumulativePoints),
	}, nil
}

// History returns the newest n days, newest first. n == 0 selects the
// configured default.
func (s *Service) History(ctx context.Context, username string, n int) ([]progress.DayRecord, error) {
	_, p, err := s.load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return progress.RecentHistory(p.History, s.window(n, s.historyDays), progress.Descending), nil
}

// Trend returns the last n days in chronological order. n == 0 selects the
// configured default.
func (s *Service) Trend(ctx context.Context, username string, n int) ([]progress.DayRecord, error) {
	_, p, err := s.load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("trend: %w", err)
	}
	return progress.RecentHistory(p.History, s.window(n, s.trendDays), progress.Ascending), nil
}

// Catalog returns the metric definitions.
func (s *Service) Catalog() []catalog.MetricDefinition {
	return s.engine.Catalog().Definitions()
}

// Ranks returns the rank ladder in ascending order.
func (s *Service) Ranks() []catalog.Rank {
	return s.ranks.Ranks()
}

func (s *Service) window(n, def int) int {
	if n == 0 {
		n = def
	}
	if n > s.maxHistoryLimit {
		n = s.maxHistoryLimit
	}
	return n
}

// load reads a profile for a read-only view under the user's lock.
func (s *Service) load(ctx context.Context, username string) (string, *model.UserProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", nil, ErrInvalidUsername
	}
	unlock := s.lockUser(username)
	defer unlock()

	p, err := s.gateway.Load(ctx, username)
	if err != nil {
		return "", nil, err
	}
	s.touch(username)
	return username, p, nil
}
