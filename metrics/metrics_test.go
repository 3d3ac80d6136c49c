package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecordStateTransition(t *testing.T) {
	Convey("RecordStateTransition", t, func() {
		before := testutil.ToFloat64(StateTransitionsTotal.WithLabelValues("IDLE", "BUFFERING"))
		RecordStateTransition("IDLE", "BUFFERING")
		after := testutil.ToFloat64(StateTransitionsTotal.WithLabelValues("IDLE", "BUFFERING"))
		So(after, ShouldEqual, before+1)
	})
}

func TestRecordSeek(t *testing.T) {
	Convey("RecordSeek", t, func() {
		before := testutil.ToFloat64(SeeksTotal)
		RecordSeek()
		after := testutil.ToFloat64(SeeksTotal)
		So(after, ShouldEqual, before+1)
	})
}

func TestRecordPlayerError(t *testing.T) {
	Convey("RecordPlayerError", t, func() {
		before := testutil.ToFloat64(PlayerErrorsTotal.WithLabelValues("source"))
		RecordPlayerError("source")
		after := testutil.ToFloat64(PlayerErrorsTotal.WithLabelValues("source"))
		So(after, ShouldEqual, before+1)
	})
}

func TestSetPlaylistLength(t *testing.T) {
	Convey("SetPlaylistLength", t, func() {
		SetPlaylistLength(7)
		So(testutil.ToFloat64(PlaylistLength), ShouldEqual, 7)
	})
}

func TestSetPendingOperationAcks(t *testing.T) {
	Convey("SetPendingOperationAcks", t, func() {
		SetPendingOperationAcks(3)
		So(testutil.ToFloat64(PendingOperationAcks), ShouldEqual, 3)
	})
}

func TestRecordMessageDelivered(t *testing.T) {
	Convey("RecordMessageDelivered", t, func() {
		before := testutil.ToFloat64(MessagesDeliveredTotal)
		RecordMessageDelivered()
		after := testutil.ToFloat64(MessagesDeliveredTotal)
		So(after, ShouldEqual, before+1)
	})
}
