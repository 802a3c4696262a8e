package monitor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RunnerConfig struct {
	DBPath        string
	JournalUnit   string
	NodeDir       string
	Debug         bool
	RewardCutoff  float64
	RetentionDays int
	FetchTimeout  time.Duration
	Thresholds    ThresholdsConfig
	NodeName      string
	CSVPath       string
	Telegram      TelegramConfig
	Price         PriceConfig
}

// Runner drives one aggregation pass: fetch, parse, correlate, aggregate,
// reconcile, persist. Collaborators sit behind interfaces so tests can swap
// them out.
type Runner struct {
	cfg       RunnerConfig
	store     *Store
	source    EventSource
	snapshots SnapshotSource
	price     PriceFetcher
	notify    Notifier
	now       func() time.Time
}

type runStats struct {
	LinesFetched int
	EventsParsed int
	LinesDropped int
	Rewards      int
}

// Report is the core's only output surface: today's aggregate plus the
// rolling averages, handed to rendering/alerting/export layers.
type Report struct {
	RunID       string
	GeneratedAt time.Time
	NodeName    string
	Today       DayRecord
	Node        NodeInfo
	NodeInfoOK  bool
	PriceUSD    float64
	DailyAvg    float64
	WeeklyAvg   float64
	MonthlyAvg  float64
	AvgLanding  float64
	// History lists the recorded days among the last 7, newest first.
	History []DayRecord
	// StaleSources names upstream sources that failed this run; the figures
	// they feed are stale or partial, not wrong.
	StaleSources []string
	// Reinitialized reports that the checkpoint db was corrupt and history
	// before this run was lost.
	Reinitialized bool
	Thresholds    ThresholdsConfig
}

func NewRunner(cfg RunnerConfig) (*Runner, error) {
	if strings.TrimSpace(cfg.DBPath) == "" {
		return nil, fmt.Errorf("DBPath is required")
	}
	if strings.TrimSpace(cfg.JournalUnit) == "" {
		cfg.JournalUnit = "ceremonyclient.service"
	}
	if strings.TrimSpace(cfg.NodeDir) == "" {
		cfg.NodeDir = "."
	}
	if cfg.RewardCutoff <= 0 {
		cfg.RewardCutoff = DefaultRewardCutoff
	}
	if cfg.RetentionDays < 0 {
		cfg.RetentionDays = 0
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.Thresholds == (ThresholdsConfig{}) {
		cfg.Thresholds = DefaultThresholds()
	}

	store, err := OpenStore(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	r := &Runner{
		cfg:       cfg,
		store:     store,
		source:    &JournalSource{Unit: cfg.JournalUnit, Timeout: cfg.FetchTimeout},
		snapshots: &BinarySnapshots{Dir: cfg.NodeDir, Timeout: cfg.FetchTimeout},
		now:       time.Now,
	}
	if cfg.Price.Enabled {
		r.price = &CoinGeckoClient{URL: cfg.Price.URL, Timeout: cfg.FetchTimeout}
	}
	if cfg.Telegram.Enabled && strings.TrimSpace(cfg.Telegram.BotToken) != "" {
		r.notify = &TelegramNotifier{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
			Timeout:  cfg.FetchTimeout,
		}
	}
	return r, nil
}

func (r *Runner) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	err := r.store.Close()
	r.store = nil
	return err
}

func (r *Runner) debugf(format string, args ...any) {
	if r == nil || !r.cfg.Debug {
		return
	}
	log.Printf(format, args...)
}

// RunOnce performs one full sequential pass and returns the report. The run
// always completes with whatever partial data it has; only a failure to
// persist the checkpoint fails the run. Aborting before the save persists
// nothing, so partial runs are safe to retry.
func (r *Runner) RunOnce(ctx context.Context) (*Report, error) {
	start := r.now().UTC()
	runID := uuid.NewString()
	stats := &runStats{}
	today := DayKey(start)
	var stale []string

	cp, err := r.store.Load()
	if err != nil {
		return nil, err
	}
	r.debugf("run %s start: today=%s watermark=%s", runID, today, cp.LastProcessed.Format(time.RFC3339))

	// Only events since the last successful run are parsed for today.
	since := StartOfDay(start)
	if cp.LastProcessed.After(since) {
		since = cp.LastProcessed
	}
	until := start

	state := cp.StateFor(today)
	fetchOK := true
	lines, err := r.source.Fetch(ctx, since, until)
	if err != nil {
		fetchOK = false
		stale = append(stale, "events")
		r.debugf("run %s: event fetch failed: %v", runID, err)
	}
	for _, line := range lines {
		stats.LinesFetched++
		ev, ok := ParseEventLine(line)
		if !ok {
			stats.LinesDropped++
			continue
		}
		stats.EventsParsed++
		state.Apply(ev)
	}
	creation, submission, cpuTimes := state.Samples()

	var rewards []CoinTransaction
	txOK := false
	if raw, err := r.snapshots.CoinMetadata(ctx); err != nil {
		stale = append(stale, "transactions")
		r.debugf("run %s: coin snapshot failed: %v", runID, err)
	} else {
		txOK = true
		rewards = QualifyingRewards(ParseCoinLines(splitLines(raw)), r.cfg.RewardCutoff, today)
	}
	stats.Rewards = len(rewards)

	var node NodeInfo
	nodeOK := false
	if raw, err := r.snapshots.NodeInfo(ctx); err != nil {
		stale = append(stale, "node")
		r.debugf("run %s: node snapshot failed: %v", runID, err)
	} else {
		nodeOK = true
		node = ParseNodeInfo(raw)
	}

	sig := EarningsSignals{TransactionSum: SumAmounts(rewards), HasTransactions: txOK}
	var balance *float64
	if nodeOK {
		b := node.OwnedBalance
		balance = &b
		if prev, ok := previousBalance(cp, today); ok {
			sig.BalanceDelta = b - prev
			sig.HasBalanceDelta = true
		}
	}
	earnings, earningsSource, divergence := ReconcileEarnings(sig)
	if sig.HasTransactions && sig.HasBalanceDelta && divergence != 0 {
		r.debugf("run %s: earnings signals diverge by %.6f (tx=%.6f delta=%.6f)",
			runID, divergence, sig.TransactionSum, sig.BalanceDelta)
	}

	rec := DayRecord{
		Date:           today,
		Creation:       ComputeBucketStats(creation, r.cfg.Thresholds.Creation),
		Submission:     ComputeBucketStats(submission, r.cfg.Thresholds.Submission),
		CPU:            ComputeBucketStats(cpuTimes, r.cfg.Thresholds.CPU),
		FramesCreated:  len(creation),
		Transactions:   len(rewards),
		LandingRate:    LandingRate(len(creation), len(rewards)),
		Earnings:       earnings,
		EarningsSource: earningsSource,
		TransactionSum: sig.TransactionSum,
		Balance:        balance,
	}
	if sig.HasBalanceDelta {
		d := sig.BalanceDelta
		rec.BalanceDelta = &d
	}

	cp.RecordDay(today, rec, today, false)
	cp.CloseStatesBefore(today)
	if fetchOK {
		cp.AdvanceWatermark(until)
	}
	var pruneBefore string
	if r.cfg.RetentionDays > 0 {
		pruneBefore = DayKey(start.AddDate(0, 0, -r.cfg.RetentionDays))
		cp.Prune(pruneBefore)
	}

	if err := r.store.Save(cp, today, false); err != nil {
		return nil, fmt.Errorf("persist checkpoint: %w", err)
	}
	if pruneBefore != "" {
		if err := r.store.Prune(pruneBefore); err != nil {
			r.debugf("run %s: prune failed: %v", runID, err)
		}
	}

	daily, avgLanding := WindowAverages(cp.Days, start, 7)
	monthlyDaily, _ := WindowAverages(cp.Days, start, 30)

	rep := &Report{
		RunID:         runID,
		GeneratedAt:   start,
		NodeName:      r.cfg.NodeName,
		Today:         rec,
		Node:          node,
		NodeInfoOK:    nodeOK,
		DailyAvg:      daily,
		WeeklyAvg:     daily * 7,
		MonthlyAvg:    monthlyDaily * 30,
		AvgLanding:    avgLanding,
		History:       lastDays(cp.Days, start, 7),
		StaleSources:  stale,
		Reinitialized: r.store.Reinitialized,
		Thresholds:    r.cfg.Thresholds,
	}

	if r.price != nil {
		if p, err := r.price.Price(ctx); err != nil {
			rep.StaleSources = append(rep.StaleSources, "price")
			r.debugf("run %s: price lookup failed: %v", runID, err)
		} else {
			rep.PriceUSD = p
		}
	}

	if strings.TrimSpace(r.cfg.CSVPath) != "" {
		if err := ExportCSV(r.cfg.CSVPath, cp.Days); err != nil {
			r.debugf("run %s: csv export failed: %v", runID, err)
		}
	}
	if r.notify != nil {
		if err := r.notify.Send(ctx, SummaryText(rep)); err != nil {
			r.debugf("run %s: notify failed: %v", runID, err)
		}
	}

	r.debugf("run %s done: lines=%d parsed=%d dropped=%d rewards=%d elapsed=%s",
		runID, stats.LinesFetched, stats.EventsParsed, stats.LinesDropped, stats.Rewards, time.Since(start))
	return rep, nil
}

// previousBalance finds the most recent recorded day before today that
// carries a balance snapshot.
func previousBalance(cp *Checkpoint, today string) (float64, bool) {
	best := ""
	var bal float64
	for d, rec := range cp.Days {
		if d >= today || rec.Balance == nil {
			continue
		}
		if d > best {
			best = d
			bal = *rec.Balance
		}
	}
	return bal, best != ""
}

func lastDays(days map[string]DayRecord, today time.Time, n int) []DayRecord {
	out := make([]DayRecord, 0, n)
	for i := 0; i < n; i++ {
		if rec, ok := days[DayKey(today.AddDate(0, 0, -i))]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// SummaryText renders the short plain-text summary sent to the notifier.
func SummaryText(rep *Report) string {
	var b strings.Builder
	name := rep.NodeName
	if name == "" {
		name = "node"
	}
	fmt.Fprintf(&b, "%s %s\n", name, rep.Today.Date)
	fmt.Fprintf(&b, "Earnings: %.6f QUIL", rep.Today.Earnings)
	if rep.PriceUSD > 0 {
		fmt.Fprintf(&b, " ($%.2f)", rep.Today.Earnings*rep.PriceUSD)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Landing rate: %.2f%% (%d/%d frames)\n",
		rep.Today.LandingRate, rep.Today.Transactions, rep.Today.FramesCreated)
	fmt.Fprintf(&b, "Daily avg: %.6f QUIL\n", rep.DailyAvg)
	if div, ok := rep.Today.EarningsDivergence(); ok && div != 0 {
		fmt.Fprintf(&b, "Earnings signals diverge by %.6f QUIL\n", div)
	}
	if len(rep.StaleSources) > 0 {
		fmt.Fprintf(&b, "Stale sources: %s\n", strings.Join(rep.StaleSources, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
