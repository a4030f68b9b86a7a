package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/okian/arete/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(ctx context.Context, s Store) {
	Convey("When reading a missing key", func() {
		_, err := s.Get(ctx, "areteData_nobody")
		So(errors.Is(err, ErrNotFound), ShouldBeTrue)
	})

	Convey("When writing and reading back", func() {
		So(s.Set(ctx, "areteUsername", "ana"), ShouldBeNil)
		v, err := s.Get(ctx, "areteUsername")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "ana")

		Convey("Then a second write overwrites", func() {
			So(s.Set(ctx, "areteUsername", "ben"), ShouldBeNil)
			v, err := s.Get(ctx, "areteUsername")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "ben")
		})

		Convey("Then delete removes the key", func() {
			So(s.Delete(ctx, "areteUsername"), ShouldBeNil)
			_, err := s.Get(ctx, "areteUsername")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("When deleting a missing key", func() {
		So(s.Delete(ctx, "never-set"), ShouldBeNil)
	})

	Convey("When storing JSON documents", func() {
		doc := `{"goals":{"workout":30},"history":{},"cumulativePoints":0}`
		So(s.Set(ctx, "areteData_ana", doc), ShouldBeNil)
		v, err := s.Get(ctx, "areteData_ana")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, doc)
	})

	Convey("When writing concurrently", func() {
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = s.Set(ctx, "shared", "x")
			}()
		}
		wg.Wait()
		v, err := s.Get(ctx, "shared")
		So(err, ShouldBeNil)
		So(v, ShouldEqual, "x")
	})
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a memory store", t, func() {
		ctx := context.Background()
		s := NewMemoryStore()
		So(s.Name(), ShouldEqual, "memory")

		exerciseStore(ctx, s)

		Convey("When closed", func() {
			So(s.Close(), ShouldBeNil)
			_, err := s.Get(ctx, "k")
			So(errors.Is(err, ErrClosed), ShouldBeTrue)
			So(errors.Is(s.Set(ctx, "k", "v"), ErrClosed), ShouldBeTrue)
		})
	})
}

func TestSQLiteStore(t *testing.T) {
	Convey("Given a sqlite store in a temp dir", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "arete.db")
		s, err := OpenSQLite(ctx, path)
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })
		So(s.Name(), ShouldEqual, "sqlite")

		exerciseStore(ctx, s)

		Convey("When reopening the same file", func() {
			So(s.Set(ctx, "persisted", "yes"), ShouldBeNil)
			So(s.Close(), ShouldBeNil)

			again, err := OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			defer func() { _ = again.Close() }()

			v, err := again.Get(ctx, "persisted")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "yes")
		})
	})

	Convey("Given an invalid table name", t, func() {
		_, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "x.db"), WithTable("kv; DROP"))
		So(errors.Is(err, ErrInvalidTable), ShouldBeTrue)
	})
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("ARETE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ARETE_TEST_POSTGRES_DSN not set")
	}
	Convey("Given a postgres store", t, func() {
		ctx := context.Background()
		s, err := OpenPostgres(ctx, dsn, WithTable("arete_kv_test"), WithPool(4, 2, 0))
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		exerciseStore(ctx, s)
	})
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("ARETE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARETE_TEST_REDIS_ADDR not set")
	}
	Convey("Given a redis store", t, func() {
		ctx := context.Background()
		s, err := OpenRedis(ctx, addr, "", 0, WithNamespace("arete-test"))
		So(err, ShouldBeNil)
		Reset(func() { _ = s.Close() })

		exerciseStore(ctx, s)
	})
}

func TestOpen(t *testing.T) {
	Convey("Given configurations", t, func() {
		ctx := context.Background()

		Convey("When the driver is memory", func() {
			s, err := Open(ctx, config.New())
			So(err, ShouldBeNil)
			So(s.Name(), ShouldEqual, "memory")
		})

		Convey("When the driver is sqlite", func() {
			cfg := config.New()
			cfg.StoreDriver = config.DriverSQLite
			cfg.SQLitePath = filepath.Join(t.TempDir(), "open.db")
			s, err := Open(ctx, cfg)
			So(err, ShouldBeNil)
			So(s.Name(), ShouldEqual, "sqlite")
			So(s.Close(), ShouldBeNil)
		})

		Convey("When the driver is unknown", func() {
			cfg := config.New()
			cfg.StoreDriver = "etcd"
			_, err := Open(ctx, cfg)
			So(errors.Is(err, ErrUnknownDriver), ShouldBeTrue)
		})
	})
}

func TestValidIdentifier(t *testing.T) {
	Convey("Given table names", t, func() {
		So(validIdentifier("arete_kv"), ShouldBeTrue)
		So(validIdentifier("_t1"), ShouldBeTrue)
		So(validIdentifier("1t"), ShouldBeFalse)
		So(validIdentifier(""), ShouldBeFalse)
		So(validIdentifier("a-b"), ShouldBeFalse)
	})
}
