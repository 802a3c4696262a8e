package monitor

import (
	"testing"
	"time"
)

func TestParseCoinLines(t *testing.T) {
	lines := []string{
		"Coin 0x01 25.5 QUIL Frame 100 Timestamp 2026-08-25T10:00:00Z",
		"Coin 0x02 40 QUIL Frame 101 Timestamp 2026-08-25T11:00:00Z",
		"Coin 0x03 12 QUIL Timestamp 2026-08-25T12:00:00Z", // no frame: not a transaction
		"Coin 0x04 8 QUIL Frame 103",                       // no timestamp
		"Total balance 100.5 QUIL",                         // summary line
		"garbage",
	}

	txs := ParseCoinLines(lines)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d: %v", len(txs), txs)
	}
	if txs[0].Amount != 25.5 || txs[0].FrameNumber != 100 {
		t.Fatalf("unexpected first transaction: %+v", txs[0])
	}
	want := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	if !txs[0].Timestamp.Equal(want) {
		t.Fatalf("expected timestamp %s, got %s", want, txs[0].Timestamp)
	}
}

func TestParseNodeInfo(t *testing.T) {
	out := `Peer ID: QmExample
Prover Ring: 2
Active Workers: 1024
Seniority: 5000
Owned balance: 100.5 QUIL
`
	info := ParseNodeInfo(out)
	if info.Ring != 2 || info.ActiveWorkers != 1024 || info.Seniority != 5000 {
		t.Fatalf("unexpected node info: %+v", info)
	}
	if info.OwnedBalance != 100.5 {
		t.Fatalf("expected balance 100.5, got %v", info.OwnedBalance)
	}
}

func TestParseNodeInfo_MissingLabelsReadZero(t *testing.T) {
	info := ParseNodeInfo("nothing useful here")
	if info != (NodeInfo{}) {
		t.Fatalf("expected zero node info, got %+v", info)
	}
}
