package monitor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// WriteDaysCSV writes the recorded day history, newest first, for
// spreadsheet consumers.
func WriteDaysCSV(w io.Writer, days map[string]DayRecord) error {
	dates := make([]string, 0, len(days))
	for d := range days {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	cw := csv.NewWriter(w)
	header := []string{
		"date", "frames_created", "transactions", "landing_rate_pct",
		"earnings", "earnings_source", "transaction_sum", "balance_delta",
		"avg_creation_s", "avg_submission_s", "avg_cpu_s",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, d := range dates {
		rec := days[d]
		delta := ""
		if rec.BalanceDelta != nil {
			delta = fmt.Sprintf("%.6f", *rec.BalanceDelta)
		}
		row := []string{
			rec.Date,
			fmt.Sprintf("%d", rec.FramesCreated),
			fmt.Sprintf("%d", rec.Transactions),
			fmt.Sprintf("%.2f", rec.LandingRate),
			fmt.Sprintf("%.6f", rec.Earnings),
			rec.EarningsSource,
			fmt.Sprintf("%.6f", rec.TransactionSum),
			delta,
			fmt.Sprintf("%.2f", rec.Creation.AvgTime),
			fmt.Sprintf("%.2f", rec.Submission.AvgTime),
			fmt.Sprintf("%.2f", rec.CPU.AvgTime),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the history to path through a temp file and rename, so a
// half-written export never replaces a good one.
func ExportCSV(path string, days map[string]DayRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".quil-history-*.csv")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := WriteDaysCSV(tmp, days); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
