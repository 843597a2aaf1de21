package pricing

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompute_WholeHours(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	q := Compute(500, start, end, 25)

	assert.Equal(t, 1000.00, q.PriceAmount)
	assert.Equal(t, 250.00, q.CommissionAmount)
	assert.Equal(t, 750.00, q.OwnerEarnings)
}

func TestCompute_ProRataPartialHours(t *testing.T) {
	start := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	end := start.Add(2*time.Hour + 30*time.Minute)

	q := Compute(500, start, end, 25)

	assert.Equal(t, 1250.00, q.PriceAmount)
	assert.Equal(t, 312.50, q.CommissionAmount)
	assert.Equal(t, 937.50, q.OwnerEarnings)
}

func TestCompute_ZeroCommission(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	q := Compute(350, start, start.Add(90*time.Minute), 0)

	assert.Equal(t, 525.00, q.PriceAmount)
	assert.Equal(t, 0.00, q.CommissionAmount)
	assert.Equal(t, 525.00, q.OwnerEarnings)
}

func TestCompute_FullCommission(t *testing.T) {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	q := Compute(500, start, start.Add(time.Hour), 100)

	assert.Equal(t, 500.00, q.PriceAmount)
	assert.Equal(t, 500.00, q.CommissionAmount)
	assert.Equal(t, 0.00, q.OwnerEarnings)
}

// The split must add up exactly for arbitrary inputs: owner earnings are
// derived by subtraction, never re-rounded independently.
func TestCompute_SplitAddsUpExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

	for i := 0; i < 2000; i++ {
		rate := float64(rng.Intn(200000)) / 100.0
		minutes := 60 + rng.Intn(16*60)
		commission := float64(rng.Intn(10001)) / 100.0

		q := Compute(rate, base, base.Add(time.Duration(minutes)*time.Minute), commission)

		sum := q.OwnerEarnings + q.CommissionAmount
		assert.InDelta(t, q.PriceAmount, sum, 1e-9,
			"rate=%v minutes=%d commission=%v", rate, minutes, commission)
		assert.GreaterOrEqual(t, q.OwnerEarnings, 0.0)
		assert.GreaterOrEqual(t, q.CommissionAmount, 0.0)

		// Each figure carries at most 2 decimals.
		assert.InDelta(t, q.PriceAmount, math.Round(q.PriceAmount*100)/100, 1e-9)
		assert.InDelta(t, q.CommissionAmount, math.Round(q.CommissionAmount*100)/100, 1e-9)
	}
}
