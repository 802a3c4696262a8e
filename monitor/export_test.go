package monitor

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	delta := 9.5
	days := map[string]DayRecord{
		"2026-08-24": {Date: "2026-08-24", FramesCreated: 10, Transactions: 3, LandingRate: 30, Earnings: 9.25, EarningsSource: EarningsFromTransactions, TransactionSum: 9.25, BalanceDelta: &delta},
		"2026-08-25": {Date: "2026-08-25", FramesCreated: 5, Transactions: 5, LandingRate: 100, Earnings: 12, EarningsSource: EarningsFromBalance},
	}

	if err := ExportCSV(path, days); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := csv.NewReader(strings.NewReader(string(b))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	// Newest first.
	if rows[1][0] != "2026-08-25" || rows[2][0] != "2026-08-24" {
		t.Fatalf("expected newest-first ordering, got %v", rows)
	}
	if rows[2][3] != "30.00" || rows[2][7] != "9.500000" {
		t.Fatalf("unexpected row contents: %v", rows[2])
	}

	// No temp files left behind.
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".quil-history-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}
}
