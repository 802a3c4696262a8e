package monitor

import "time"

type EventKind string

const (
	EventCreation   EventKind = "creation"
	EventSubmission EventKind = "submission"
)

// RawEvent is one parsed journal line. It is transient: produced by the
// parser, folded into a DayState, then discarded.
type RawEvent struct {
	Kind        EventKind
	FrameNumber uint64
	AgeSeconds  float64
	Timestamp   time.Time
}

// FrameRecord is the correlated view of one frame within a day.
// CPUTime is set only when both ages are known and the difference is positive.
type FrameRecord struct {
	FrameNumber   uint64
	CreationAge   *float64
	SubmissionAge *float64
	CPUTime       *float64
}

// Thresholds is a good/warning boundary pair in seconds. Warning must be
// greater than good.
type Thresholds struct {
	Good    float64 `yaml:"good"`
	Warning float64 `yaml:"warning"`
}

type BucketStats struct {
	Total       int     `json:"total"`
	Good        int     `json:"good"`
	Warning     int     `json:"warning"`
	Critical    int     `json:"critical"`
	GoodPct     float64 `json:"good_pct"`
	WarningPct  float64 `json:"warning_pct"`
	CriticalPct float64 `json:"critical_pct"`
	AvgTime     float64 `json:"avg_time"`
}

// DayRecord is the unit of persistence: one per calendar day.
// Past days are immutable once written; only the current day is recomputed.
type DayRecord struct {
	Date           string
	Creation       BucketStats
	Submission     BucketStats
	CPU            BucketStats
	FramesCreated  int
	Transactions   int
	LandingRate    float64
	Earnings       float64
	EarningsSource string
	TransactionSum float64
	// BalanceDelta is the independent earnings signal derived from balance
	// snapshots. Kept alongside Earnings so divergence can be surfaced.
	BalanceDelta *float64
	// Balance is the end-of-day owned balance snapshot, used to derive the
	// next day's delta.
	Balance *float64
}

// EarningsDivergence reports how far the two earnings signals disagree.
// Only meaningful when both signals were available for the day.
func (d DayRecord) EarningsDivergence() (float64, bool) {
	if d.EarningsSource != EarningsFromTransactions || d.BalanceDelta == nil {
		return 0, false
	}
	return d.TransactionSum - *d.BalanceDelta, true
}

type CoinTransaction struct {
	Amount      float64
	FrameNumber uint64
	Timestamp   time.Time
}

type NodeInfo struct {
	Ring          int
	ActiveWorkers int
	Seniority     int
	OwnedBalance  float64
}

// Checkpoint is the entire durable state: the processing watermark, one
// DayRecord per observed day, and the open correlation state for days still
// in progress (in practice only the current one).
type Checkpoint struct {
	LastProcessed time.Time
	Days          map[string]DayRecord
	States        map[string]*DayState
}

func NewCheckpoint() *Checkpoint {
	return &Checkpoint{
		Days:   make(map[string]DayRecord),
		States: make(map[string]*DayState),
	}
}

// AdvanceWatermark moves the watermark forward. Timestamps at or before the
// current watermark are no-ops; the watermark never rewinds.
func (c *Checkpoint) AdvanceWatermark(ts time.Time) bool {
	if !ts.After(c.LastProcessed) {
		return false
	}
	c.LastProcessed = ts
	return true
}

// RecordDay upserts one day's aggregate. Writing a date strictly before
// today is a no-op when a record already exists, unless force (explicit
// repair of a past day).
func (c *Checkpoint) RecordDay(date string, rec DayRecord, today string, force bool) bool {
	if _, ok := c.Days[date]; ok && date < today && !force {
		return false
	}
	rec.Date = date
	c.Days[date] = rec
	return true
}

// StateFor returns the open correlation state for a day, creating it if
// needed.
func (c *Checkpoint) StateFor(date string) *DayState {
	if s, ok := c.States[date]; ok && s != nil {
		return s
	}
	s := NewDayState()
	c.States[date] = s
	return s
}

// CloseStatesBefore drops open correlation state for finished days. Their
// DayRecords stay; the raw samples are no longer needed once a day is closed.
func (c *Checkpoint) CloseStatesBefore(today string) {
	for d := range c.States {
		if d < today {
			delete(c.States, d)
		}
	}
}

// Prune forgets days strictly older than the retention horizon.
func (c *Checkpoint) Prune(before string) {
	for d := range c.Days {
		if d < before {
			delete(c.Days, d)
		}
	}
	for d := range c.States {
		if d < before {
			delete(c.States, d)
		}
	}
}

// DayKey formats a timestamp as the ISO date used to partition days.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
