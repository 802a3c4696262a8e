package monitor

import "time"

// WindowAverages computes the average earnings and average landing rate over
// the trailing window of windowDays ending today. Only days that actually
// have recorded data participate: any present DayRecord for earnings, days
// with framesCreated > 0 for landing rate. Missing days are excluded from
// numerator and denominator, never treated as zero. A window with no
// data-bearing days yields zeros.
func WindowAverages(days map[string]DayRecord, today time.Time, windowDays int) (avgEarnings, avgLandingRate float64) {
	var earnSum float64
	var earnN int
	var rateSum float64
	var rateN int
	for i := 0; i < windowDays; i++ {
		rec, ok := days[DayKey(today.AddDate(0, 0, -i))]
		if !ok {
			continue
		}
		earnSum += rec.Earnings
		earnN++
		if rec.FramesCreated > 0 {
			rateSum += rec.LandingRate
			rateN++
		}
	}
	if earnN > 0 {
		avgEarnings = earnSum / float64(earnN)
	}
	if rateN > 0 {
		avgLandingRate = rateSum / float64(rateN)
	}
	return avgEarnings, avgLandingRate
}
