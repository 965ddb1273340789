package generic

import "github.com/shopspring/decimal"

var (
	ratingExcellent = decimal.RequireFromString("4.8")
	ratingGoodLow   = decimal.RequireFromString("4.6")
	ratingGoodHigh  = decimal.RequireFromString("4.7")
)

// RatingScore maps an average 1-5 customer rating to the bonus/penalty score
// shared by every satisfaction metric:
//
//	r > 4.8         -> 120
//	r == 4.8        -> 100
//	4.6 <= r <= 4.7 -> 50
//	r < 4.6         -> 0
//
// The bands apply to the raw average. An average strictly between 4.7 and
// 4.8 has no band of its own and is rounded to one decimal: below 4.75 it
// scores 50, from 4.75 it scores 100.
func RatingScore(avg decimal.Decimal) decimal.Decimal {
	r := avg
	if r.GreaterThan(ratingGoodHigh) && r.LessThan(ratingExcellent) {
		r = r.Round(1)
	}
	switch {
	case r.GreaterThan(ratingExcellent):
		return decimal.NewFromInt(120)
	case r.Equal(ratingExcellent):
		return decimal.NewFromInt(100)
	case r.GreaterThanOrEqual(ratingGoodLow) && r.LessThanOrEqual(ratingGoodHigh):
		return decimal.NewFromInt(50)
	default:
		return decimal.Zero
	}
}

// AverageRating returns the mean of ratings, or false when there are none.
func AverageRating(ratings []float64) (decimal.Decimal, bool) {
	if len(ratings) == 0 {
		return decimal.Zero, false
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromFloat(r))
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))), true
}
