package utils

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelJobExecutorRoutesResultsByTag(t *testing.T) {
	executor := NewSimpleParallelJobExecutor(4)

	var evens, odds []int
	var errs []error
	executor.RegisterConsumer(func(tag string) bool { return tag == "even" }, ConsumerFunc(func(r Result) {
		evens = append(evens, r.Data().(int))
	}))
	executor.RegisterConsumer(func(tag string) bool { return tag == "odd" }, ConsumerFunc(func(r Result) {
		odds = append(odds, r.Data().(int))
	}))
	executor.RegisterErrorHandler(func(err error) { errs = append(errs, err) })
	executor.Start()

	for i := range 10 {
		executor.SubmitJob(func() (Result, error) {
			if i == 7 {
				return Result{}, fmt.Errorf("job %v: %w", i, errFake)
			}
			if i%2 == 0 {
				return NewResult("even", i), nil
			}
			return NewResult("odd", i), nil
		})
	}
	executor.Stop()

	sort.Ints(evens)
	sort.Ints(odds)
	assert.Equal(t, []int{0, 2, 4, 6, 8}, evens)
	assert.Equal(t, []int{1, 3, 5, 9}, odds)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], errFake))
}

func TestMinByKeepsEarliestOnTie(t *testing.T) {
	items := []Pair[string, int]{{"a", 3}, {"b", 1}, {"c", 1}}
	best, ok := MinBy(items, func(p Pair[string, int]) int { return p.Second })
	require.True(t, ok)
	assert.Equal(t, "b", best.First)

	_, ok = MinBy([]int{}, func(i int) int { return i })
	assert.False(t, ok)
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]int{"c": 1, "a": 2, "b": 3}))
}

func TestMapSet(t *testing.T) {
	set := NewMapSetFromElems(1, 2, 3)
	assert.True(t, set.Contains(2))
	set.Remove(2)
	assert.False(t, set.Contains(2))
	assert.Equal(t, 2, set.GetSize())
	set.Clear()
	assert.Zero(t, set.GetSize())
}

func TestSortedSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SortedSlice[string](NewMapSetFromElems("b", "a")))
}
