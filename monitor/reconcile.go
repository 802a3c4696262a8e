package monitor

// DefaultRewardCutoff is the largest transaction amount counted as a mining
// reward; anything above it is a transfer, not earnings.
const DefaultRewardCutoff = 30.0

const (
	EarningsFromTransactions = "transactions"
	EarningsFromBalance      = "balance"
	EarningsNone             = "none"
)

// LandingRate is the percentage of created frames that resulted in a counted
// transaction, clamped to [0, 100]. Frames created, not submitted, is the
// denominator: submission attempts that never land are the loss being
// measured. Zero frames yields zero, not a division error.
func LandingRate(framesCreated, transactions int) float64 {
	if framesCreated <= 0 {
		return 0
	}
	rate := float64(transactions) / float64(framesCreated) * 100
	if rate > 100 {
		rate = 100
	}
	return rate
}

// QualifyingRewards filters a transaction snapshot down to the mining rewards
// for one day: amount at or below the cutoff, timestamp within the day.
func QualifyingRewards(txs []CoinTransaction, cutoff float64, date string) []CoinTransaction {
	var out []CoinTransaction
	for _, tx := range txs {
		if tx.Amount > cutoff {
			continue
		}
		if DayKey(tx.Timestamp) != date {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func SumAmounts(txs []CoinTransaction) float64 {
	var sum float64
	for _, tx := range txs {
		sum += tx.Amount
	}
	return sum
}

// EarningsSignals carries the two independent earnings measurements for one
// day. HasTransactions means a transaction snapshot was obtainable at all,
// even if it contained no qualifying rewards.
type EarningsSignals struct {
	TransactionSum  float64
	HasTransactions bool
	BalanceDelta    float64
	HasBalanceDelta bool
}

// ReconcileEarnings picks the day's earnings figure. The transaction sum is
// preferred when available: it is attributable and auditable per frame. The
// balance delta serves only as a fallback for days with no obtainable
// snapshot. When both signals exist their divergence is returned so callers
// can surface material disagreement; it is never silently resolved.
func ReconcileEarnings(sig EarningsSignals) (earnings float64, source string, divergence float64) {
	switch {
	case sig.HasTransactions:
		earnings = sig.TransactionSum
		source = EarningsFromTransactions
		if sig.HasBalanceDelta {
			divergence = sig.TransactionSum - sig.BalanceDelta
		}
	case sig.HasBalanceDelta:
		earnings = sig.BalanceDelta
		source = EarningsFromBalance
	default:
		source = EarningsNone
	}
	return earnings, source, divergence
}
