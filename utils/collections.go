package utils

import (
	"cmp"
	"slices"

	"golang.org/x/exp/maps"
)

type Pair[A any, B any] struct {
	First  A
	Second B
}

// SortedKeys returns the keys of myMap in ascending order.
func SortedKeys[K cmp.Ordered, V any](myMap map[K]V) []K {
	keys := maps.Keys(myMap)
	slices.Sort(keys)
	return keys
}

// MinBy returns the element with the smallest key. Ties keep the earliest one.
func MinBy[T any, K cmp.Ordered](items []T, key func(T) K) (T, bool) {
	var minItem T
	if len(items) == 0 {
		return minItem, false
	}
	minItem = items[0]
	minKey := key(minItem)
	for _, item := range items[1:] {
		if k := key(item); k < minKey {
			minItem = item
			minKey = k
		}
	}
	return minItem, true
}
