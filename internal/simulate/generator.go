package simulate

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"

	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/pkg/logger"
)

const randomFloatDivisor = 1000000

// persona scales the default goals to produce a spread of totals.
type persona struct {
	name     string
	minRatio float64
	maxRatio float64
	dietOdds float64
}

var personas = []persona{
	{name: "couch", minRatio: 0, maxRatio: 0.3, dietOdds: 0.1},
	{name: "casual", minRatio: 0.3, maxRatio: 0.9, dietOdds: 0.5},
	{name: "steady", minRatio: 0.8, maxRatio: 1.1, dietOdds: 0.8},
	{name: "athlete", minRatio: 1, maxRatio: 1.6, dietOdds: 0.95},
}

// getRandomFloat returns a random float64 in [0, 1) using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func pickPersona() persona {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(personas))))
	return personas[n.Int64()]
}

// generatePlans creates one plan per synthetic user.
func generatePlans(ctx context.Context, cfg *Config, stats *Stats) []Plan {
	plans := make([]Plan, cfg.Users)
	goals := model.DefaultGoals()
	for i := range plans {
		plans[i] = generatePlan(pickPersona(), goals)
	}
	stats.UsersGenerated = len(plans)
	logger.Get().Info(ctx, "generated plans", logger.Int("users", len(plans)))
	return plans
}

func generatePlan(p persona, goals model.Goals) Plan {
	values := make(map[model.MetricID]float64, len(model.MetricIDs()))
	for _, id := range model.NumericMetricIDs() {
		ratio := p.minRatio + getRandomFloat()*(p.maxRatio-p.minRatio)
		values[id] = roundTo(goals.Goal(id)*ratio, 10)
	}
	if getRandomFloat() < p.dietOdds {
		values[model.Diet] = 1
	} else {
		values[model.Diet] = 0
	}
	return Plan{
		Username: "sim-" + uuid.NewString()[:8],
		Persona:  p.name,
		Values:   values,
	}
}

// roundTo keeps generated values readable in saved plans.
func roundTo(v float64, scale float64) float64 {
	return float64(int64(v*scale)) / scale
}
