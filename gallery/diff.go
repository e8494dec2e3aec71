package gallery

import (
	"slices"
	"sort"
)

// Insertion places Item at Index of the new list. PreviousIndex is the item's
// index in the old list when the insertion is a move, and -1 otherwise.
type Insertion[T any] struct {
	Index         int
	Item          T
	PreviousIndex int
}

// Update refreshes an item that kept its relative position.
type Update[T any] struct {
	Index         int
	PreviousIndex int
	Item          T
}

// Script turns one ordered list into another. Deletions are old indices,
// Insertions and Updates use new indices; all three are sorted ascending.
type Script[T any] struct {
	Deletions  []int
	Insertions []Insertion[T]
	Updates    []Update[T]
}

// Empty reports whether applying s would change nothing.
func (s Script[T]) Empty() bool {
	return len(s.Deletions) == 0 && len(s.Insertions) == 0 && len(s.Updates) == 0
}

// Merge computes a stable script from prev to next. Keys must be unique
// within each list.
//
// Items present in both lists keep their place when they belong to the
// longest run whose old indices increase along the new order; those become
// updates. Every other shared item is moved: deleted at its old index and
// inserted at its new one with PreviousIndex set.
func Merge[T any, K comparable](prev, next []T, key func(T) K) Script[T] {
	oldIndex := make(map[K]int, len(prev))
	for i, item := range prev {
		oldIndex[key(item)] = i
	}

	// Old indices of shared items, in new-list order.
	var sharedNew, sharedOld []int
	for i, item := range next {
		if j, ok := oldIndex[key(item)]; ok {
			sharedNew = append(sharedNew, i)
			sharedOld = append(sharedOld, j)
		}
	}

	kept := make(map[int]bool, len(sharedOld)) // keyed by new index
	for _, p := range increasingRun(sharedOld) {
		kept[sharedNew[p]] = true
	}

	var s Script[T]
	stays := make([]bool, len(prev))
	for i, item := range next {
		j, shared := oldIndex[key(item)]
		switch {
		case !shared:
			s.Insertions = append(s.Insertions, Insertion[T]{Index: i, Item: item, PreviousIndex: -1})
		case kept[i]:
			stays[j] = true
			s.Updates = append(s.Updates, Update[T]{Index: i, PreviousIndex: j, Item: item})
		default:
			s.Insertions = append(s.Insertions, Insertion[T]{Index: i, Item: item, PreviousIndex: j})
		}
	}
	for j := range prev {
		if !stays[j] {
			s.Deletions = append(s.Deletions, j)
		}
	}
	return s
}

// Apply returns the list obtained by running s against prev. prev is not
// modified.
func (s Script[T]) Apply(prev []T) []T {
	out := slices.Clone(prev)
	for i := len(s.Deletions) - 1; i >= 0; i-- {
		d := s.Deletions[i]
		out = slices.Delete(out, d, d+1)
	}
	for _, ins := range s.Insertions {
		out = slices.Insert(out, ins.Index, ins.Item)
	}
	for _, u := range s.Updates {
		out[u.Index] = u.Item
	}
	return out
}

// increasingRun returns positions in seq forming a longest strictly
// increasing subsequence, in ascending position order.
func increasingRun(seq []int) []int {
	if len(seq) == 0 {
		return nil
	}
	tails := make([]int, 0, len(seq)) // positions of the smallest tail per length
	parent := make([]int, len(seq))
	for i, v := range seq {
		n := sort.Search(len(tails), func(k int) bool { return seq[tails[k]] >= v })
		if n > 0 {
			parent[i] = tails[n-1]
		} else {
			parent[i] = -1
		}
		if n == len(tails) {
			tails = append(tails, i)
		} else {
			tails[n] = i
		}
	}

	run := make([]int, len(tails))
	for i, p := len(tails)-1, tails[len(tails)-1]; i >= 0; i-- {
		run[i] = p
		p = parent[p]
	}
	return run
}
