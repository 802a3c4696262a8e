package monitor

import (
	"math"
	"testing"
)

func TestComputeBucketStats_EmptyInput(t *testing.T) {
	st := ComputeBucketStats(nil, Thresholds{Good: 17, Warning: 50})
	if st != (BucketStats{}) {
		t.Fatalf("expected zero-valued stats for empty input, got %+v", st)
	}
}

func TestComputeBucketStats_BoundaryMembership(t *testing.T) {
	// x <= good is good, good < x <= warning is warning, x > warning is critical.
	st := ComputeBucketStats([]float64{17, 17.01, 50, 50.01}, Thresholds{Good: 17, Warning: 50})
	if st.Good != 1 || st.Warning != 2 || st.Critical != 1 {
		t.Fatalf("unexpected buckets: %+v", st)
	}
	if st.Good+st.Warning+st.Critical != st.Total {
		t.Fatalf("buckets must partition the samples: %+v", st)
	}
}

func TestComputeBucketStats_Average(t *testing.T) {
	st := ComputeBucketStats([]float64{10, 20, 30}, Thresholds{Good: 20, Warning: 30})
	if math.Abs(st.AvgTime-20) > 1e-12 {
		t.Fatalf("expected avg 20, got %v", st.AvgTime)
	}
	if math.Abs(st.GoodPct+st.WarningPct+st.CriticalPct-100) > 1e-9 {
		t.Fatalf("percentages should sum to 100, got %+v", st)
	}
}
