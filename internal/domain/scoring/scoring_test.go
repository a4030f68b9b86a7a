package scoring_test

import (
	"errors"
	"math"
	"testing"

	"github.com/okian/arete/internal/domain/catalog"
	"github.com/okian/arete/internal/domain/model"
	scoring "github.com/okian/arete/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestComputePoints(t *testing.T) {
	Convey("Given the default catalog", t, func() {
		c := catalog.Default()
		workout, _ := c.Get(model.Workout)
		diet, _ := c.Get(model.Diet)

		Convey("When workout goal is 30", func() {
			So(scoring.ComputePoints(workout, 15, 30), ShouldEqual, 5)
			So(scoring.ComputePoints(workout, 30, 30), ShouldEqual, 10)
			So(scoring.ComputePoints(workout, 45, 30), ShouldEqual, 10)
		})

		Convey("When a value meets or exceeds the goal", func() {
			goals := model.DefaultGoals()
			for _, d := range c.Definitions() {
				goal := goals.Goal(d.ID)
				So(scoring.ComputePoints(d, goal, goal), ShouldEqual, d.PointWeight)
				So(scoring.ComputePoints(d, goal*3, goal), ShouldEqual, d.PointWeight)
			}
		})

		Convey("When a numeric value is below the goal", func() {
			goals := model.DefaultGoals()
			for _, d := range c.Definitions() {
				if d.IsBoolean() {
					continue
				}
				goal := goals.Goal(d.ID)
				for _, frac := range []float64{0, 0.1, 0.33, 0.5, 0.99} {
					v := goal * frac
					got := scoring.ComputePoints(d, v, goal)
					So(got, ShouldEqual, int(math.Floor(v/goal*float64(d.PointWeight))))
					So(got, ShouldBeGreaterThanOrEqualTo, 0)
					So(got, ShouldBeLessThan, d.PointWeight)
				}
			}
		})

		Convey("When partial credit is fractional", func() {
			sleep, _ := c.Get(model.Sleep)
			water, _ := c.Get(model.Water)
			So(scoring.ComputePoints(sleep, 7.5, 8), ShouldEqual, 4)
			So(scoring.ComputePoints(water, 1.9, 2), ShouldEqual, 2)
		})

		Convey("When scoring diet", func() {
			So(scoring.ComputePoints(diet, 1, 1), ShouldEqual, 7)
			So(scoring.ComputePoints(diet, 0.2, 100), ShouldEqual, 7)
			So(scoring.ComputePoints(diet, 0, 0), ShouldEqual, 0)
			So(scoring.ComputePoints(diet, 0, 1), ShouldEqual, 0)
		})

		Convey("When the value is invalid", func() {
			So(scoring.ComputePoints(workout, -5, 30), ShouldEqual, 0)
			So(scoring.ComputePoints(workout, math.NaN(), 30), ShouldEqual, 0)
			So(scoring.ComputePoints(diet, -1, 1), ShouldEqual, 0)
		})

		Convey("When the goal is not positive", func() {
			So(scoring.ComputePoints(workout, 5, 0), ShouldEqual, 10)
			So(scoring.ComputePoints(workout, 5, -10), ShouldEqual, 10)
			So(scoring.ComputePoints(workout, 5, math.NaN()), ShouldEqual, 10)
			So(scoring.ComputePoints(workout, 0, 0), ShouldEqual, 0)
		})
	})
}

func TestEngine(t *testing.T) {
	Convey("Given an engine over the default catalog", t, func() {
		engine := scoring.NewEngine()
		goals := model.DefaultGoals()

		Convey("When scoring a known metric", func() {
			pts, err := engine.Points(model.Steps, 5000, 10000)
			So(err, ShouldBeNil)
			So(pts, ShouldEqual, 2)
		})

		Convey("When scoring an unknown metric", func() {
			_, err := engine.Points("yoga", 1, 1)
			So(errors.Is(err, scoring.ErrUnknownMetric), ShouldBeTrue)
		})

		Convey("When totalling a day", func() {
			entry := &model.DailyEntry{Workout: 15, Sleep: 8, Water: 1, Steps: 12000, Diet: 1}

			Convey("Then it equals the sum of per-metric points", func() {
				sum := 0
				for _, id := range engine.Catalog().IDs() {
					p, err := engine.Points(id, entry.Value(id), goals.Goal(id))
					So(err, ShouldBeNil)
					sum += p
				}
				So(engine.DailyTotal(entry, goals), ShouldEqual, sum)
				So(sum, ShouldEqual, 5+5+1+5+7)
			})

			Convey("Then the breakdown matches the total", func() {
				b := engine.Breakdown(entry, goals)
				total := 0
				for _, p := range b {
					total += p
				}
				So(total, ShouldEqual, engine.DailyTotal(entry, goals))
				So(b[model.Diet], ShouldEqual, 7)
			})

			Convey("Then Rescore writes points", func() {
				entry.Points = 999
				So(engine.Rescore(entry, goals), ShouldEqual, 23)
				So(entry.Points, ShouldEqual, 23)
			})
		})

		Convey("When the entry is empty or nil", func() {
			So(engine.DailyTotal(&model.DailyEntry{}, goals), ShouldEqual, 0)
			So(engine.DailyTotal(nil, goals), ShouldEqual, 0)
			So(engine.Rescore(nil, goals), ShouldEqual, 0)
		})

		Convey("When goals lack a metric", func() {
			entry := &model.DailyEntry{Workout: 1}
			So(engine.DailyTotal(entry, model.Goals{}), ShouldEqual, 10)
		})
	})

	Convey("Given an engine with overridden weights", t, func() {
		engine := scoring.NewEngine(scoring.WithCatalog(
			catalog.New(catalog.WithPointWeights(map[string]float64{"workout": 20})),
		))

		Convey("Then the override is used", func() {
			pts, err := engine.Points(model.Workout, 15, 30)
			So(err, ShouldBeNil)
			So(pts, ShouldEqual, 10)
		})
	})
}
