package logger

import (
	"bytes"
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When initialized with defaults", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})

		Convey("When initialized with an unknown format", func() {
			err := Init(WithFormat("xml"))

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging at info with fields", func() {
			Get().Info(ctx, "profile saved", String("user", "ana"), Int("points", 42))

			Convey("Then message and fields are rendered", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "profile saved")
				So(out, ShouldContainSubstring, "user=ana")
				So(out, ShouldContainSubstring, "points=42")
				So(out, ShouldContainSubstring, "source=")
			})
		})

		Convey("When debug is logged at the default level", func() {
			Get().Debug(ctx, "hidden")

			Convey("Then nothing is written", func() {
				So(buf.String(), ShouldNotContainSubstring, "hidden")
			})
		})

		Convey("When the level is lowered to debug", func() {
			So(SetLevelString("DEBUG"), ShouldBeNil)
			Named("app").Debug(ctx, "visible")

			Convey("Then debug lines are written under the group", func() {
				So(buf.String(), ShouldContainSubstring, "visible")
				So(buf.String(), ShouldContainSubstring, "app.source=")
			})
		})

		Convey("When the level string is invalid", func() {
			err := SetLevelString("loud")

			Convey("Then an error is returned", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a json logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithFormat("json")), ShouldBeNil)

		Get().Warn(context.Background(), "recovered", Bool("reset", true))

		So(buf.String(), ShouldContainSubstring, `"msg":"recovered"`)
		So(buf.String(), ShouldContainSubstring, `"reset":true`)
	})
}
