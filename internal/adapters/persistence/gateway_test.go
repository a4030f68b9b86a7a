package persistence_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/okian/arete/internal/adapters/persistence"
	"github.com/okian/arete/internal/adapters/repository"
	"github.com/okian/arete/internal/domain/model"
	"github.com/okian/arete/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var errBackend = errors.New("backend down")

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, error) { return "", errBackend }
func (brokenStore) Set(context.Context, string, string) error   { return errBackend }
func (brokenStore) Delete(context.Context, string) error        { return errBackend }
func (brokenStore) Name() string                                { return "broken" }
func (brokenStore) Close() error                                { return nil }

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestGatewayLoad(t *testing.T) {
	Convey("Given a gateway over an empty memory store", t, func() {
		var logs bytes.Buffer
		So(logger.Init(logger.WithWriter(&logs)), ShouldBeNil)

		ctx := context.Background()
		store := repository.NewMemoryStore()
		g := persistence.New(store, persistence.WithClock(fixedClock(time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC))))

		Convey("When loading an unknown user", func() {
			p, err := g.Load(ctx, "ana")

			Convey("Then a default profile with today's zero entry is returned", func() {
				So(err, ShouldBeNil)
				So(p.Goals, ShouldResemble, model.DefaultGoals())
				So(len(p.History), ShouldEqual, 1)
				So(*p.History["2024-05-03"], ShouldResemble, model.DailyEntry{})
				So(p.CumulativePoints, ShouldEqual, 0)
			})

			Convey("Then nothing is written", func() {
				So(store.Len(), ShouldEqual, 0)
			})
		})

		Convey("When loading twice without saving", func() {
			a, errA := g.Load(ctx, "ana")
			b, errB := g.Load(ctx, "ana")

			Convey("Then both profiles are equal", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a, ShouldResemble, b)
			})
		})

		Convey("When a stored profile has a stale cumulative total", func() {
			raw := `{"goals":{"workout":30,"sleep":8,"water":2,"steps":10000},
				"history":{"2024-05-01":{"workout":30,"points":10},"2024-05-02":{"diet":1,"points":7}},
				"cumulativePoints":5000}`
			So(store.Set(ctx, "areteData_ana", raw), ShouldBeNil)

			p, err := g.Load(ctx, "ana")

			Convey("Then the total is recomputed from history", func() {
				So(err, ShouldBeNil)
				So(p.CumulativePoints, ShouldEqual, 17)
				So(len(p.History), ShouldEqual, 3)
			})
		})

		Convey("When a stored entry has a non-ISO date key", func() {
			raw := `{"goals":{"workout":30,"sleep":8,"water":2,"steps":10000},
				"history":{"2024-05-01":{"points":10},"2024-5-2":{"workout":15,"points":10}},
				"cumulativePoints":20}`
			So(store.Set(ctx, "areteData_ana", raw), ShouldBeNil)

			p, err := g.Load(ctx, "ana")

			Convey("Then the entry is kept and still counted", func() {
				So(err, ShouldBeNil)
				So(p.History, ShouldContainKey, model.DateKey("2024-5-2"))
				So(p.History["2024-5-2"].Workout, ShouldEqual, 15)
				So(p.CumulativePoints, ShouldEqual, 20)
				So(len(p.History), ShouldEqual, 3)
				So(logs.String(), ShouldContainSubstring, "non-ISO date key")
			})

			Convey("Then saving writes the entry back", func() {
				So(g.Save(ctx, "ana", p), ShouldBeNil)
				again, err := g.Load(ctx, "ana")
				So(err, ShouldBeNil)
				So(again.CumulativePoints, ShouldEqual, 20)
				So(again.History, ShouldContainKey, model.DateKey("2024-5-2"))
			})
		})

		Convey("When the stored profile is malformed", func() {
			So(store.Set(ctx, "areteData_ana", "{not json"), ShouldBeNil)

			p, err := g.Load(ctx, "ana")

			Convey("Then defaults are returned and a warning is logged", func() {
				So(err, ShouldBeNil)
				So(p.Goals, ShouldResemble, model.DefaultGoals())
				So(p.CumulativePoints, ShouldEqual, 0)
				So(logs.String(), ShouldContainSubstring, "stored profile unreadable")
			})
		})

		Convey("When the username is blank", func() {
			_, err := g.Load(ctx, "   ")
			So(errors.Is(err, persistence.ErrInvalidUsername), ShouldBeTrue)
		})
	})

	Convey("Given a gateway whose store fails", t, func() {
		So(logger.Init(), ShouldBeNil)
		g := persistence.New(brokenStore{})
		ctx := context.Background()

		Convey("Then load and save surface the error", func() {
			_, err := g.Load(ctx, "ana")
			So(errors.Is(err, errBackend), ShouldBeTrue)
			So(errors.Is(g.Save(ctx, "ana", model.NewProfile()), errBackend), ShouldBeTrue)
			_, err = g.Exists(ctx, "ana")
			So(errors.Is(err, errBackend), ShouldBeTrue)
		})
	})
}

func TestGatewaySave(t *testing.T) {
	Convey("Given a gateway with a custom prefix", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()
		store := repository.NewMemoryStore()
		g := persistence.New(store, persistence.WithPrefix("fit"))

		Convey("When saving a profile", func() {
			p := model.NewProfile()
			p.History["2024-05-01"] = &model.DailyEntry{Workout: 30, Points: 10}
			p.CumulativePoints = 10
			So(g.Save(ctx, " ana ", p), ShouldBeNil)

			Convey("Then it is stored as JSON under the data key", func() {
				raw, err := store.Get(ctx, "fitData_ana")
				So(err, ShouldBeNil)

				var decoded map[string]any
				So(json.Unmarshal([]byte(raw), &decoded), ShouldBeNil)
				So(decoded, ShouldContainKey, "goals")
				So(decoded, ShouldContainKey, "history")
				So(decoded["cumulativePoints"], ShouldEqual, 10)
			})

			Convey("Then Exists reports it", func() {
				ok, err := g.Exists(ctx, "ana")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
			})

			Convey("Then loading returns the saved data", func() {
				loaded, err := g.Load(ctx, "ana")
				So(err, ShouldBeNil)
				So(loaded.History["2024-05-01"].Workout, ShouldEqual, 30)
			})
		})

		Convey("When saving nil", func() {
			So(errors.Is(g.Save(ctx, "ana", nil), persistence.ErrNilProfile), ShouldBeTrue)
		})
	})
}

func TestGatewaySession(t *testing.T) {
	Convey("Given a gateway", t, func() {
		So(logger.Init(), ShouldBeNil)
		ctx := context.Background()
		store := repository.NewMemoryStore()
		g := persistence.New(store)

		Convey("When no session is set", func() {
			_, ok, err := g.ActiveUser(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("When the username is blank", func() {
			_, err := g.SetActiveUser(ctx, " ")
			So(errors.Is(err, persistence.ErrInvalidUsername), ShouldBeTrue)
		})

		Convey("When a session is set and cleared", func() {
			id, err := g.SetActiveUser(ctx, "ana")
			So(err, ShouldBeNil)
			So(id, ShouldNotBeEmpty)
			So(g.Save(ctx, "ana", model.NewProfile()), ShouldBeNil)

			stored, err := g.SessionID(ctx)
			So(err, ShouldBeNil)
			So(stored, ShouldEqual, id)

			u, ok, err := g.ActiveUser(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(u, ShouldEqual, "ana")

			So(g.ClearActiveUser(ctx), ShouldBeNil)

			Convey("Then only the session pointer is gone", func() {
				_, ok, err := g.ActiveUser(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)

				sid, err := g.SessionID(ctx)
				So(err, ShouldBeNil)
				So(sid, ShouldBeEmpty)

				exists, err := g.Exists(ctx, "ana")
				So(err, ShouldBeNil)
				So(exists, ShouldBeTrue)
			})
		})

		Convey("When the session key is blank", func() {
			So(store.Set(ctx, g.SessionKey(), " "), ShouldBeNil)
			_, ok, err := g.ActiveUser(ctx)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestGatewayToday(t *testing.T) {
	Convey("Given a clock just before midnight UTC", t, func() {
		So(logger.Init(), ShouldBeNil)
		ts := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)

		Convey("Then UTC keeps the old day", func() {
			g := persistence.New(repository.NewMemoryStore(), persistence.WithClock(fixedClock(ts)))
			So(g.Today(), ShouldEqual, model.DateKey("2024-12-31"))
		})

		Convey("Then a zone ahead of UTC rolls over", func() {
			g := persistence.New(repository.NewMemoryStore(),
				persistence.WithClock(fixedClock(ts)),
				persistence.WithLocation(time.FixedZone("UTC+1", 3600)),
			)
			So(g.Today(), ShouldEqual, model.DateKey("2025-01-01"))
		})
	})
}
