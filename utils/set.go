package utils

import (
	"cmp"
	"slices"
)

type Set[T comparable] interface {
	Add(T)
	Contains(T) bool
	Remove(T)
	Clear()
	ToSlice() []T
	GetSize() int
}

type MapSet[T comparable] map[T]struct{}

func NewMapSet[T comparable]() MapSet[T] {
	return make(MapSet[T])
}

func NewMapSetFromElems[T comparable](elems ...T) MapSet[T] {
	mapSet := make(MapSet[T], len(elems))
	for _, elem := range elems {
		mapSet.Add(elem)
	}
	return mapSet
}

func (m MapSet[T]) Add(elem T) {
	m[elem] = struct{}{}
}

func (m MapSet[T]) Contains(elem T) bool {
	_, ok := m[elem]
	return ok
}

func (m MapSet[T]) Remove(elem T) {
	delete(m, elem)
}

func (m MapSet[T]) Clear() {
	clear(m)
}

// ToSlice returns the elements in no particular order.
func (m MapSet[T]) ToSlice() []T {
	elems := make([]T, 0, len(m))
	for elem := range m {
		elems = append(elems, elem)
	}
	return elems
}

func (m MapSet[T]) GetSize() int {
	return len(m)
}

// SortedSlice returns the elements of an ordered set in ascending order.
func SortedSlice[T cmp.Ordered](set Set[T]) []T {
	elems := set.ToSlice()
	slices.Sort(elems)
	return elems
}
