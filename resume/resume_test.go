package resume

import (
	"testing"

	"github.com/driftplay/player/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestResume(t *testing.T) {
	Convey("Given a content uri", t, func() {
		const uriTag = "magnet:?xt=urn:btih:deadbeef"

		Convey("When saving a position short of the end", func() {
			err := Save(uriTag, 2, 45_000, 1_440_000)

			Convey("Then the error should be nil", func() {
				So(err, ShouldBeNil)

				Convey("And the position should be retrievable", func() {
					saved, err := Get()
					So(err, ShouldBeNil)
					So(saved[uriTag], ShouldNotBeNil)
					So(saved[uriTag].WindowIndex, ShouldEqual, 2)
					So(saved[uriTag].PositionMs, ShouldEqual, 45_000)
				})
			})
		})

		Convey("When saving a position within the last second of duration", func() {
			err := Save(uriTag, 0, 1_439_500, 1_440_000)

			Convey("Then the record is treated as complete and not persisted", func() {
				So(err, ShouldBeNil)

				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved[uriTag], ShouldBeNil)
			})
		})

		Convey("When removing a saved position", func() {
			So(Save(uriTag, 0, 1_000, 0), ShouldBeNil)
			So(Remove(uriTag), ShouldBeNil)

			Convey("Then it should no longer be present", func() {
				saved, err := Get()
				So(err, ShouldBeNil)
				So(saved[uriTag], ShouldBeNil)
			})
		})
	})
}
