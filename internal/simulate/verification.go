package simulate

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/progress"
	"github.com/okian/arete/internal/domain/scoring"
	"github.com/okian/arete/pkg/logger"
)

// dashboard is the subset of the dashboard response the verifier reads.
type dashboard struct {
	Username         string            `json:"username"`
	TodayPoints      int               `json:"todayPoints"`
	CumulativePoints int               `json:"cumulativePoints"`
	Standing         progress.Standing `json:"standing"`
}

// catalogResponse mirrors GET /catalog.
type catalogResponse struct {
	Metrics []catalog.MetricDefinition `json:"metrics"`
}

// fetchEngine builds a scoring engine from the server's own point weights.
func fetchEngine(ctx context.Context, client *HTTPClient) (*scoring.Engine, error) {
	var cat catalogResponse
	if err := client.do(ctx, http.MethodGet, "/catalog", nil, &cat); err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	weights := make(map[string]float64, len(cat.Metrics))
	for _, def := range cat.Metrics {
		weights[string(def.ID)] = float64(def.PointWeight)
	}
	return scoring.NewEngine(scoring.WithCatalog(catalog.New(catalog.WithPointWeights(weights)))), nil
}

// expectedPoints scores a plan against the default goals.
func expectedPoints(engine *scoring.Engine, plan Plan) int {
	entry := &model.DailyEntry{}
	for id, v := range plan.Values {
		entry.SetValue(id, v)
	}
	return engine.DailyTotal(entry, model.DefaultGoals())
}

// verifyResults compares each user's dashboard with the locally computed total.
func verifyResults(ctx context.Context, cfg *Config, client *HTTPClient, plans []Plan, stats *Stats) error {
	engine, err := fetchEngine(ctx, client)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	byPersona := map[string][]int{}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, plan := range plans {
		g.Go(func() error {
			var d dashboard
			if err := client.do(gctx, http.MethodGet, userPath(plan.Username, "dashboard"), nil, &d); err != nil {
				return fmt.Errorf("dashboard %s: %w", plan.Username, err)
			}
			want := expectedPoints(engine, plan)

			mu.Lock()
			defer mu.Unlock()
			stats.UsersVerified++
			byPersona[plan.Persona] = append(byPersona[plan.Persona], d.TodayPoints)
			if d.TodayPoints != want {
				stats.Mismatches++
				logger.Get().Warn(gctx, "points mismatch",
					logger.String("username", plan.Username),
					logger.Int("want", want),
					logger.Int("got", d.TodayPoints),
				)
			} else if cfg.Verbose {
				logger.Get().Debug(gctx, "points verified",
					logger.String("username", plan.Username),
					logger.Int("points", want),
					logger.String("rank", d.Standing.Name),
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	displayPersonaStats(ctx, byPersona)

	if stats.Mismatches > 0 {
		return fmt.Errorf("%w: %d of %d users", ErrMismatch, stats.Mismatches, stats.UsersVerified)
	}
	logger.Get().Info(ctx, "result verification completed", logger.Int("users", stats.UsersVerified))
	return nil
}

// displayPersonaStats logs the average daily total per persona.
func displayPersonaStats(ctx context.Context, byPersona map[string][]int) {
	names := make([]string, 0, len(byPersona))
	for name := range byPersona {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pts := byPersona[name]
		sum := 0
		for _, p := range pts {
			sum += p
		}
		logger.Get().Info(ctx, "persona totals",
			logger.String("persona", name),
			logger.Int("users", len(pts)),
			logger.Float64("avgPoints", float64(sum)/float64(len(pts))),
		)
	}
}
