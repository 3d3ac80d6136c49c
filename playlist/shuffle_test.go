package playlist

import (
	"sort"
	"testing"

	"github.com/driftplay/player/capability"
	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaultShuffleOrder(t *testing.T) {
	Convey("DefaultShuffleOrder", t, func() {
		Convey("Should cover every index exactly once", func() {
			order := NewDefaultShuffleOrder(5)
			seen := make([]int, 0, 5)
			for i := order.FirstIndex(); i != -1; i = order.NextIndex(i, capability.RepeatOff) {
				seen = append(seen, i)
			}
			sort.Ints(seen)
			So(seen, ShouldResemble, []int{0, 1, 2, 3, 4})
		})

		Convey("Length zero should report no first or last index", func() {
			order := NewDefaultShuffleOrder(0)
			So(order.FirstIndex(), ShouldEqual, -1)
			So(order.LastIndex(), ShouldEqual, -1)
		})

		Convey("NextIndex should stop at the end under RepeatOff", func() {
			order := NewDefaultShuffleOrder(3)
			last := order.LastIndex()
			So(order.NextIndex(last, capability.RepeatOff), ShouldEqual, -1)
		})

		Convey("NextIndex should wrap to the first index under RepeatAll", func() {
			order := NewDefaultShuffleOrder(3)
			last := order.LastIndex()
			So(order.NextIndex(last, capability.RepeatAll), ShouldEqual, order.FirstIndex())
		})

		Convey("PreviousIndex should stop before the start under RepeatOff", func() {
			order := NewDefaultShuffleOrder(3)
			first := order.FirstIndex()
			So(order.PreviousIndex(first, capability.RepeatOff), ShouldEqual, -1)
		})

		Convey("PreviousIndex should wrap to the last index under RepeatAll", func() {
			order := NewDefaultShuffleOrder(3)
			first := order.FirstIndex()
			So(order.PreviousIndex(first, capability.RepeatAll), ShouldEqual, order.LastIndex())
		})

		Convey("CloneAndInsert should grow the order's length and append new indices at the end", func() {
			order := NewDefaultShuffleOrder(2)
			grown := order.CloneAndInsert(1, 2)
			So(grown.Length(), ShouldEqual, 4)
			So(grown.LastIndex(), ShouldEqual, 2)
		})

		Convey("CloneAndInsert with count zero should return the receiver unchanged", func() {
			order := NewDefaultShuffleOrder(2)
			same := order.CloneAndInsert(0, 0)
			So(same, ShouldEqual, order)
		})

		Convey("CloneAndRemove should shrink the order and renumber remaining indices", func() {
			order := NewDefaultShuffleOrder(5)
			shrunk := order.CloneAndRemove(1, 3)
			So(shrunk.Length(), ShouldEqual, 3)

			seen := make([]int, 0, 3)
			for i := shrunk.FirstIndex(); i != -1; i = shrunk.NextIndex(i, capability.RepeatOff) {
				seen = append(seen, i)
			}
			sort.Ints(seen)
			So(seen, ShouldResemble, []int{0, 1, 2})
		})
	})
}
