package playlist

import (
	"math/rand"

	"github.com/driftplay/player/capability"
)

// ShuffleOrder re-exports the capability contract so playlist consumers
// don't need to import capability directly for this one type.
type ShuffleOrder = capability.ShuffleOrder

// DefaultShuffleOrder is a Fisher-Yates permutation over [0, length), cloned
// under insertion/removal so its length always tracks the playlist length
// (spec §3 ShuffleOrder invariant).
type DefaultShuffleOrder struct {
	shuffled []int // shuffled[i] = playlist index at shuffled position i
	indexInShuffled []int // inverse permutation
}

// NewDefaultShuffleOrder builds an identity-then-shuffled permutation of the
// given length.
func NewDefaultShuffleOrder(length int) *DefaultShuffleOrder {
	shuffled := make([]int, length)
	for i := range shuffled {
		shuffled[i] = i
	}
	rand.Shuffle(length, func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return newFromShuffled(shuffled)
}

func newFromShuffled(shuffled []int) *DefaultShuffleOrder {
	indexInShuffled := make([]int, len(shuffled))
	for pos, idx := range shuffled {
		indexInShuffled[idx] = pos
	}
	return &DefaultShuffleOrder{shuffled: shuffled, indexInShuffled: indexInShuffled}
}

func (o *DefaultShuffleOrder) Length() int { return len(o.shuffled) }

func (o *DefaultShuffleOrder) FirstIndex() int {
	if len(o.shuffled) == 0 {
		return -1
	}
	return o.shuffled[0]
}

func (o *DefaultShuffleOrder) LastIndex() int {
	if len(o.shuffled) == 0 {
		return -1
	}
	return o.shuffled[len(o.shuffled)-1]
}

func (o *DefaultShuffleOrder) NextIndex(current int, mode capability.RepeatMode) int {
	if len(o.shuffled) == 0 {
		return -1
	}
	pos := o.indexInShuffled[current]
	if pos+1 < len(o.shuffled) {
		return o.shuffled[pos+1]
	}
	if mode == capability.RepeatAll {
		return o.FirstIndex()
	}
	return -1
}

func (o *DefaultShuffleOrder) PreviousIndex(current int, mode capability.RepeatMode) int {
	if len(o.shuffled) == 0 {
		return -1
	}
	pos := o.indexInShuffled[current]
	if pos > 0 {
		return o.shuffled[pos-1]
	}
	if mode == capability.RepeatAll {
		return o.LastIndex()
	}
	return -1
}

// CloneAndInsert returns a new order with count fresh indices inserted at
// playlist position at, appended to the end of the shuffled sequence (newly
// added items play last under shuffle, matching the common convention).
func (o *DefaultShuffleOrder) CloneAndInsert(at, count int) capability.ShuffleOrder {
	if count == 0 {
		return o
	}
	shifted := make([]int, len(o.shuffled))
	for i, idx := range o.shuffled {
		if idx >= at {
			shifted[i] = idx + count
		} else {
			shifted[i] = idx
		}
	}
	for i := 0; i < count; i++ {
		shifted = append(shifted, at+i)
	}
	return newFromShuffled(shifted)
}

// CloneAndRemove returns a new order with the playlist indices in [from, to)
// removed and all remaining indices renumbered downward.
func (o *DefaultShuffleOrder) CloneAndRemove(from, to int) capability.ShuffleOrder {
	out := make([]int, 0, len(o.shuffled))
	for _, idx := range o.shuffled {
		switch {
		case idx >= from && idx < to:
			continue
		case idx >= to:
			out = append(out, idx-(to-from))
		default:
			out = append(out, idx)
		}
	}
	return newFromShuffled(out)
}
