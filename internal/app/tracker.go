package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/progress"
	"github.com/okian/arete/pkg/logger"
	"github.com/okian/arete/pkg/metrics"
)

// LogResult is the outcome of logging one metric for today.
type LogResult struct {
	Day              model.DateKey     `json:"date"`
	Metric           model.MetricID    `json:"metric"`
	Value            float64           `json:"value"`
	MetricPoints     int               `json:"metricPoints"`
	Entry            *model.DailyEntry `json:"entry"`
	TodayPoints      int               `json:"todayPoints"`
	CumulativePoints int               `json:"cumulativePoints"`
	Standing         progress.Standing `json:"standing"`
}

// LogMetric records value as today's value for metric and rescores today.
// Invalid numbers are stored as 0 and any positive diet value records the
// check as met.
func (s *Service) LogMetric(ctx context.Context, username string, metric model.MetricID, value float64) (LogResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return LogResult{}, ErrInvalidUsername
	}
	def, ok := s.engine.Catalog().Get(metric)
	if !ok {
		return LogResult{}, fmt.Errorf("%w: %s", ErrUnknownMetric, metric)
	}

	unlock := s.lockUser(username)
	defer unlock()

	p, err := s.gateway.Load(ctx, username)
	if err != nil {
		return LogResult{}, fmt.Errorf("log metric: %w", err)
	}

	day := s.gateway.Today()
	entry, _ := p.EnsureEntry(day)
	entry.SetValue(metric, value)
	total := s.engine.Rescore(entry, p.Goals)
	cumulative := p.RecomputeCumulative()

	if err := s.gateway.Save(ctx, username, p); err != nil {
		return LogResult{}, fmt.Errorf("log metric: %w", err)
	}

	stored := entry.Value(metric)
	pts, _ := s.engine.Points(metric, stored, p.Goals.Goal(metric))

	s.metricLogs.Add(1)
	s.touch(username)
	metrics.RecordMetricLog(string(metric))
	metrics.RecordDailyPoints(total)
	s.logger.Debug(ctx, "metric logged",
		logger.String("username", username),
		logger.String("metric", string(def.ID)),
		logger.Float64("value", stored),
		logger.Int("todayPoints", total),
	)

	return LogResult{
		Day:              day,
		Metric:           metric,
		Value:            stored,
		MetricPoints:     pts,
		Entry:            entry.Clone(),
		TodayPoints:      total,
		CumulativePoints: cumulative,
		Standing:         progress.RankFor(s.ranks, cumulative),
	}, nil
}

// UpdateGoals replaces the user's goals. Missing, non-positive or
// non-finite values fall back to the defaults; unknown ids and diet are
// ignored. Only today's entry is rescored; past days keep the points they
// were logged with.
func (s *Service) UpdateGoals(ctx context.Context, username string, in map[string]float64) (model.Goals, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	goals := model.DefaultGoals()
	for _, id := range model.NumericMetricIDs() {
		v, ok := in[string(id)]
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			continue
		}
		goals[id] = v
	}

	unlock := s.lockUser(username)
	defer unlock()

	p, err := s.gateway.Load(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("update goals: %w", err)
	}
	p.Goals = goals
	entry, _ := p.EnsureEntry(s.gateway.Today())
	total := s.engine.Rescore(entry, p.Goals)
	p.RecomputeCumulative()

	if err := s.gateway.Save(ctx, username, p); err != nil {
		return nil, fmt.Errorf("update goals: %w", err)
	}

	s.goalSets.Add(1)
	s.touch(username)
	metrics.RecordGoalUpdate()
	metrics.RecordDailyPoints(total)
	s.logger.Debug(ctx, "goals updated",
		logger.String("username", username),
		logger.Any("goals", goals),
	)
	return goals.Clone(), nil
}
