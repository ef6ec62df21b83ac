package infrastructure

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawsStayWithinBounds(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	uniform := NewUniformDelay(time.Second, 3*time.Second, rnd)
	triangular := NewTriangularDelay(time.Second, 2*time.Second, 5*time.Second, rnd)
	exponential := NewExponentialDelay(time.Second, rnd)

	for range 1000 {
		u := uniform.Draw()
		assert.GreaterOrEqual(t, u, time.Second)
		assert.LessOrEqual(t, u, 3*time.Second)

		tr := triangular.Draw()
		assert.GreaterOrEqual(t, tr, time.Second)
		assert.LessOrEqual(t, tr, 5*time.Second)

		assert.GreaterOrEqual(t, exponential.Draw(), time.Duration(0))
	}
}

func TestDegenerateRangesCollapseToTheMinimum(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	assert.Equal(t, time.Second, NewUniformDelay(time.Second, time.Second, rnd).Draw())
	assert.Equal(t, time.Second, NewTriangularDelay(time.Second, time.Second, time.Second, rnd).Draw())
}

func TestEqualSeedsGiveEqualDraws(t *testing.T) {
	draw := func(seed int64) []time.Duration {
		distribution, err := BuildDelayDistribution(DelayParams{Kind: "exponential", Mean: time.Minute}, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		var draws []time.Duration
		for range 10 {
			draws = append(draws, distribution.Draw())
		}
		return draws
	}
	assert.Equal(t, draw(7), draw(7))
	assert.NotEqual(t, draw(7), draw(8))
}

func TestBuildDelayDistribution(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	constant, err := BuildDelayDistribution(DelayParams{Mean: 3 * time.Second}, rnd)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, constant.Draw())

	for _, kind := range []string{"constant", "uniform", "exponential", "triangular"} {
		_, err = BuildDelayDistribution(DelayParams{Kind: kind, Min: time.Second, Mode: time.Second, Max: time.Second, Mean: time.Second}, rnd)
		assert.NoError(t, err, kind)
	}

	_, err = BuildDelayDistribution(DelayParams{Kind: "poisson"}, rnd)
	assert.Error(t, err)
}

func TestIsRecurring(t *testing.T) {
	assert.True(t, DelayParams{Mean: time.Second}.IsRecurring())
	assert.False(t, DelayParams{}.IsRecurring())
	assert.True(t, DelayParams{Kind: "uniform", Min: time.Second, Max: 2 * time.Second}.IsRecurring())
	assert.False(t, DelayParams{Kind: "uniform", Max: 2 * time.Second}.IsRecurring())
	assert.False(t, DelayParams{Kind: "gamma", Mean: time.Second}.IsRecurring())
}
