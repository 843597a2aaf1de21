package pricing

import (
	"math"
	"time"
)

// Quote is the three-way price split stored on a booking at hold time.
// PriceAmount is always exactly OwnerEarnings + CommissionAmount.
type Quote struct {
	PriceAmount      float64 `json:"price_amount"`
	OwnerEarnings    float64 `json:"owner_earnings"`
	CommissionAmount float64 `json:"commission_amount"`
}

// Compute derives the advertiser price from the screen's hourly rate and the
// booking duration (minute precision, partial hours billed pro-rata), then
// splits it into platform commission and owner payout.
//
// Rounding is half-up to 2 decimals and applied once per figure; owner
// earnings are derived by subtraction rather than re-rounded, so the split
// never drifts by a penny.
func Compute(hourlyRate float64, start, end time.Time, commissionPercent float64) Quote {
	minutes := end.Sub(start).Minutes()
	hours := minutes / 60.0

	price := round2(hourlyRate * hours)
	commission := round2(price * commissionPercent / 100.0)

	return Quote{
		PriceAmount:      price,
		OwnerEarnings:    round2(price - commission),
		CommissionAmount: commission,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
