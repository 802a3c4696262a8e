package monitor

import (
	"testing"
	"time"
)

func TestLandingRate(t *testing.T) {
	if got := LandingRate(10, 3); got != 30 {
		t.Fatalf("expected 30.0, got %v", got)
	}
	if got := LandingRate(0, 5); got != 0 {
		t.Fatalf("expected 0 for zero frames, got %v", got)
	}
	if got := LandingRate(10, 20); got != 100 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
}

func TestQualifyingRewards_CutoffAndDay(t *testing.T) {
	day := "2026-08-25"
	inDay := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	otherDay := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	txs := []CoinTransaction{
		{Amount: 40, FrameNumber: 1, Timestamp: inDay},
		{Amount: 25, FrameNumber: 2, Timestamp: inDay},
		{Amount: 10, FrameNumber: 3, Timestamp: otherDay},
	}

	got := QualifyingRewards(txs, DefaultRewardCutoff, day)
	if len(got) != 1 || got[0].Amount != 25 {
		t.Fatalf("expected only the 25 QUIL reward to qualify, got %v", got)
	}
	if SumAmounts(got) != 25 {
		t.Fatalf("expected sum 25, got %v", SumAmounts(got))
	}
}

func TestReconcileEarnings_PrefersTransactions(t *testing.T) {
	earnings, source, divergence := ReconcileEarnings(EarningsSignals{
		TransactionSum:  12.5,
		HasTransactions: true,
		BalanceDelta:    12.0,
		HasBalanceDelta: true,
	})
	if source != EarningsFromTransactions || earnings != 12.5 {
		t.Fatalf("expected transaction sum preferred, got %v from %q", earnings, source)
	}
	if divergence != 0.5 {
		t.Fatalf("expected divergence surfaced, got %v", divergence)
	}
}

func TestReconcileEarnings_FallsBackToBalanceDelta(t *testing.T) {
	earnings, source, _ := ReconcileEarnings(EarningsSignals{
		BalanceDelta:    3.25,
		HasBalanceDelta: true,
	})
	if source != EarningsFromBalance || earnings != 3.25 {
		t.Fatalf("expected balance delta fallback, got %v from %q", earnings, source)
	}

	_, source, _ = ReconcileEarnings(EarningsSignals{})
	if source != EarningsNone {
		t.Fatalf("expected no signal, got %q", source)
	}
}

func TestReconcileEarnings_EmptySnapshotStillCountsAsTransactions(t *testing.T) {
	// A snapshot that was obtainable but held no qualifying rewards means the
	// node earned nothing, not that the signal is missing.
	earnings, source, _ := ReconcileEarnings(EarningsSignals{
		HasTransactions: true,
		BalanceDelta:    9.0,
		HasBalanceDelta: true,
	})
	if source != EarningsFromTransactions || earnings != 0 {
		t.Fatalf("expected zero earnings from transactions, got %v from %q", earnings, source)
	}
}
