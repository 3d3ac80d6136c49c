package skipmarkers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/driftplay/player/filesystem"
	"github.com/driftplay/player/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestGetSkipTimes(t *testing.T) {
	Convey("GetSkipTimes", t, func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/known-episode":
				w.Write([]byte(`{"found":true,"results":[
					{"interval":{"start_time":10,"end_time":100},"skip_type":"op"},
					{"interval":{"start_time":1300,"end_time":1380},"skip_type":"ed"}
				]}`))
			default:
				w.Write([]byte(`{"found":false,"results":[]}`))
			}
		}))
		defer server.Close()
		viper.Set(key.SkipMarkersBaseURL, server.URL)
		defer viper.Set(key.SkipMarkersBaseURL, "")

		Convey("Should return skip times for a known media key", func() {
			times, err := GetSkipTimes("known-episode")
			So(err, ShouldBeNil)
			So(times, ShouldNotBeNil)
			So(times.HasIntro, ShouldBeTrue)
			So(times.Opening.End, ShouldBeGreaterThan, times.Opening.Start)
			So(times.HasOutro, ShouldBeTrue)
		})

		Convey("Should return nil for a media key with no skip data", func() {
			times, err := GetSkipTimes("unknown-episode")
			So(err, ShouldBeNil)
			So(times, ShouldBeNil)
		})

		Convey("Should return nil without error when no base URL is configured", func() {
			viper.Set(key.SkipMarkersBaseURL, "")
			times, err := GetSkipTimes("known-episode")
			So(err, ShouldBeNil)
			So(times, ShouldBeNil)
		})

		Convey("Should return nil for an empty media key", func() {
			times, err := GetSkipTimes("")
			So(err, ShouldBeNil)
			So(times, ShouldBeNil)
		})
	})
}

func TestSkipTimesStructure(t *testing.T) {
	Convey("SkipTimes", t, func() {
		Convey("Zero value should have HasIntro and HasOutro as false", func() {
			var st SkipTimes
			So(st.HasIntro, ShouldBeFalse)
			So(st.HasOutro, ShouldBeFalse)
			So(st.Opening.Start, ShouldEqual, 0)
			So(st.Ending.End, ShouldEqual, 0)
		})
	})
}
