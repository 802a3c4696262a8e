package monitor

// ComputeBucketStats partitions samples by the threshold pair and computes
// the arithmetic mean. Buckets are exclusive and exhaustive:
// x <= good, good < x <= warning, x > warning. Empty input yields the
// zero-valued result, never an error.
func ComputeBucketStats(samples []float64, th Thresholds) BucketStats {
	var st BucketStats
	if len(samples) == 0 {
		return st
	}
	var sum float64
	for _, x := range samples {
		sum += x
		switch {
		case x <= th.Good:
			st.Good++
		case x <= th.Warning:
			st.Warning++
		default:
			st.Critical++
		}
	}
	st.Total = len(samples)
	total := float64(st.Total)
	st.GoodPct = float64(st.Good) / total * 100
	st.WarningPct = float64(st.Warning) / total * 100
	st.CriticalPct = float64(st.Critical) / total * 100
	st.AvgTime = sum / total
	return st
}
