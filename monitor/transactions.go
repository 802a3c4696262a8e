package monitor

import (
	"regexp"
	"strconv"
	"time"
)

var (
	amountRe    = regexp.MustCompile(`([\d.]+)\s*QUIL`)
	frameRe     = regexp.MustCompile(`[Ff]rame\s*[:#]?\s*(\d+)`)
	timestampRe = regexp.MustCompile(`Timestamp\s*([\d-]+T[\d:]+Z)`)
)

const coinTimestampLayout = "2006-01-02T15:04:05Z"

// ParseCoinLines extracts transactions from the coin metadata snapshot. A
// line is a transaction only if it carries an amount with the QUIL unit
// suffix, a frame number, and a UTC timestamp; anything else is skipped.
func ParseCoinLines(lines []string) []CoinTransaction {
	var out []CoinTransaction
	for _, line := range lines {
		am := amountRe.FindStringSubmatch(line)
		fm := frameRe.FindStringSubmatch(line)
		tm := timestampRe.FindStringSubmatch(line)
		if am == nil || fm == nil || tm == nil {
			continue
		}
		amount, err := strconv.ParseFloat(am[1], 64)
		if err != nil {
			continue
		}
		frame, err := strconv.ParseUint(fm[1], 10, 64)
		if err != nil {
			continue
		}
		ts, err := time.Parse(coinTimestampLayout, tm[1])
		if err != nil {
			continue
		}
		out = append(out, CoinTransaction{
			Amount:      amount,
			FrameNumber: frame,
			Timestamp:   ts.UTC(),
		})
	}
	return out
}
