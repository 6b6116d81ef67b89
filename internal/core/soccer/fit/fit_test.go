package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/charleschow/exoticprice/internal/core/domain"
)

func TestComputeError_SquaredRelative(t *testing.T) {
	sample := []float64{2.0, 4.0}
	fitted := []float64{2.2, 3.8}
	got := ComputeError(sample, fitted, SquaredRelative)
	assert.InDelta(t, 0.0790569415, got, 1e-6)
}

func TestComputeError_SkipsInfiniteFittedPrice(t *testing.T) {
	sample := []float64{2.0, 4.0}
	fitted := []float64{2.2, math.Inf(1)}
	got := ComputeError(sample, fitted, SquaredRelative)
	assert.InDelta(t, 0.1, got, 1e-9)
}

func TestComputeError_SquaredAbsolute(t *testing.T) {
	sample := []float64{2.0}
	fitted := []float64{2.2}
	got := ComputeError(sample, fitted, SquaredAbsolute)
	assert.InDelta(t, math.Abs(1.0/2.2-1.0/2.0), got, 1e-9)
}

func TestMostBalancedGoals_PicksClosestProbabilityPair(t *testing.T) {
	offers := map[domain.OfferKey]domain.Offer{
		{Type: domain.TotalGoals, Period: domain.FullTime, Line: 2.5}: {
			Key:   domain.OfferKey{Type: domain.TotalGoals, Period: domain.FullTime, Line: 2.5},
			Probs: []float64{0.52, 0.48},
		},
		{Type: domain.TotalGoals, Period: domain.FullTime, Line: 1.5}: {
			Key:   domain.OfferKey{Type: domain.TotalGoals, Period: domain.FullTime, Line: 1.5},
			Probs: []float64{0.8, 0.2},
		},
		{Type: domain.TotalGoals, Period: domain.FirstHalf, Line: 0.5}: {
			Key:   domain.OfferKey{Type: domain.TotalGoals, Period: domain.FirstHalf, Line: 0.5},
			Probs: []float64{0.5, 0.5},
		},
	}

	got, ok := mostBalancedGoals(offers, domain.FullTime)
	assert.True(t, ok)
	assert.Equal(t, 2.5, got.Key.Line)
}

func TestMostBalancedGoals_NotFound(t *testing.T) {
	_, ok := mostBalancedGoals(map[domain.OfferKey]domain.Offer{}, domain.FullTime)
	assert.False(t, ok)
}
