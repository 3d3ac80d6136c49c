package tui

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFraction(t *testing.T) {
	Convey("fraction", t, func() {
		Convey("Should return zero for an unknown duration", func() {
			So(fraction(5000, 0), ShouldEqual, 0)
		})
		Convey("Should compute the position/duration ratio", func() {
			So(fraction(5000, 10000), ShouldEqual, 0.5)
		})
		Convey("Should clamp above one", func() {
			So(fraction(20000, 10000), ShouldEqual, 1)
		})
		Convey("Should clamp below zero", func() {
			So(fraction(-5000, 10000), ShouldEqual, 0)
		})
	})
}

func TestFormatMs(t *testing.T) {
	Convey("formatMs", t, func() {
		Convey("Should format sub-hour durations as mm:ss", func() {
			So(formatMs(65000), ShouldEqual, "01:05")
		})
		Convey("Should format hour-or-longer durations as h:mm:ss", func() {
			So(formatMs(3725000), ShouldEqual, "1:02:05")
		})
		Convey("Should clamp negative durations to zero", func() {
			So(formatMs(-1000), ShouldEqual, "00:00")
		})
	})
}
