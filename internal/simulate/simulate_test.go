package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/arete/internal/adapters/http/api"
	"github.com/okian/arete/internal/adapters/persistence"
	"github.com/okian/arete/internal/adapters/repository"
	service "github.com/okian/arete/internal/app"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/internal/domain/scoring"
	"github.com/okian/arete/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newTestServer() *httptest.Server {
	svc := service.New(persistence.New(repository.NewMemoryStore()))
	r := chi.NewRouter()
	api.NewServer(svc).Register(r)
	return httptest.NewServer(r)
}

func TestGeneratePlan(t *testing.T) {
	Convey("Given each persona", t, func() {
		for _, p := range personas {
			plan := generatePlan(p, model.DefaultGoals())

			So(plan.Username, ShouldStartWith, "sim-")
			So(plan.Persona, ShouldEqual, p.name)
			So(len(plan.Values), ShouldEqual, 5)
			So(plan.Values[model.Diet], ShouldBeIn, []float64{0, 1})
			for _, id := range model.NumericMetricIDs() {
				So(plan.Values[id], ShouldBeGreaterThanOrEqualTo, 0)
			}
		}
	})
}

func TestExpectedPoints(t *testing.T) {
	Convey("Given a plan that meets every goal", t, func() {
		plan := Plan{Values: map[model.MetricID]float64{
			model.Workout: 30, model.Sleep: 8, model.Water: 2, model.Steps: 10000, model.Diet: 1,
		}}
		So(expectedPoints(scoring.NewEngine(), plan), ShouldEqual, 30)
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := newTestServer()
		defer srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When simulating a handful of users", func() {
			out := filepath.Join(t.TempDir(), "plans", "run.json")
			stats, err := Run(ctx, &Config{
				BaseURL:    srv.URL,
				Users:      12,
				Workers:    3,
				Timeout:    5 * time.Second,
				OutputFile: out,
			})

			Convey("Then every log lands and every total matches", func() {
				So(err, ShouldBeNil)
				So(stats.UsersGenerated, ShouldEqual, 12)
				So(stats.LogsSubmitted, ShouldEqual, 60)
				So(stats.LogsFailed, ShouldEqual, 0)
				So(stats.UsersVerified, ShouldEqual, 12)
				So(stats.Mismatches, ShouldEqual, 0)

				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				var plans []Plan
				So(json.Unmarshal(data, &plans), ShouldBeNil)
				So(len(plans), ShouldEqual, 12)
			})
		})

		Convey("When the config is incomplete", func() {
			_, err := Run(ctx, &Config{BaseURL: srv.URL})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given no server", t, func() {
		_, err := Run(context.Background(), &Config{
			BaseURL: "http://127.0.0.1:1",
			Users:   1,
			Workers: 1,
			Timeout: time.Second,
		})
		So(err, ShouldNotBeNil)
	})
}

func TestClientErrors(t *testing.T) {
	Convey("Given a server that rejects everything", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"code":"internal_error"}`, http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := newHTTPClient(srv.URL, time.Second)
		err := c.do(context.Background(), http.MethodGet, "/catalog", nil, nil)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "status 500")
	})
}
