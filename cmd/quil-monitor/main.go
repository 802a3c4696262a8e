package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"quil-monitor/monitor"
)

const (
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorRed    = "\033[91m"
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[96m"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var configPath string
	var dbPath string
	var nodeDir string
	var journalUnit string
	var debug bool
	var retentionDays int
	var csvPath string
	var noColor bool
	var once bool
	var pollInterval time.Duration

	flag.StringVar(&configPath, "config", "", "YAML config file path.")
	flag.StringVar(&dbPath, "db", "quil_monitor.db", "Checkpoint database path.")
	flag.StringVar(&nodeDir, "node-dir", ".", "Directory holding the node and qclient release binaries.")
	flag.StringVar(&journalUnit, "journal-unit", "ceremonyclient.service", "systemd unit whose journal carries the frame events.")
	flag.BoolVar(&debug, "debug", false, "Enable debug logs.")
	flag.IntVar(&retentionDays, "retention-days", 30, "Days of history to keep (0 keeps forever).")
	flag.StringVar(&csvPath, "csv", "", "Export day history to this CSV path each run.")
	flag.BoolVar(&noColor, "no-color", false, "Disable ANSI colors.")
	flag.BoolVar(&once, "once", true, "Run once and exit (default true for crontab).")
	flag.DurationVar(&pollInterval, "poll-interval", 5*time.Minute, "Polling interval when running with --once=false.")
	flag.Parse()

	visited := map[string]bool{}
	flag.CommandLine.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})

	// Base config from file (optional)
	fileCfg := &monitor.FileConfig{}
	if configPath != "" {
		cfg, err := monitor.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
		fileCfg = cfg
	}

	// Merge config + CLI overrides
	finalDB := fileCfg.DB
	if finalDB == "" || visited["db"] {
		finalDB = dbPath
	}
	finalNodeDir := fileCfg.NodeDir
	if finalNodeDir == "" || visited["node-dir"] {
		finalNodeDir = nodeDir
	}
	finalUnit := fileCfg.JournalUnit
	if finalUnit == "" || visited["journal-unit"] {
		finalUnit = journalUnit
	}
	finalDebug := fileCfg.Debug
	if visited["debug"] {
		finalDebug = debug
	}
	finalRetention := retentionDays
	if fileCfg.RetentionDays != nil {
		finalRetention = *fileCfg.RetentionDays
	}
	if visited["retention-days"] {
		finalRetention = retentionDays
	}
	finalCSV := fileCfg.CSVPath
	if visited["csv"] {
		finalCSV = csvPath
	}
	var finalCutoff float64
	if fileCfg.RewardCutoff != nil {
		finalCutoff = *fileCfg.RewardCutoff
	}
	finalThresholds := monitor.ThresholdsConfig{}
	if fileCfg.Thresholds != nil {
		finalThresholds = *fileCfg.Thresholds
	}

	runner, err := monitor.NewRunner(monitor.RunnerConfig{
		DBPath:        finalDB,
		JournalUnit:   finalUnit,
		NodeDir:       finalNodeDir,
		Debug:         finalDebug,
		RewardCutoff:  finalCutoff,
		RetentionDays: finalRetention,
		FetchTimeout:  fileCfg.FetchTimeout,
		Thresholds:    finalThresholds,
		NodeName:      fileCfg.Telegram.NodeName,
		CSVPath:       finalCSV,
		Telegram:      fileCfg.Telegram,
		Price:         fileCfg.Price,
	})
	if err != nil {
		log.Fatalf("init runner: %v", err)
	}
	defer runner.Close()

	if once {
		rep, err := runner.RunOnce(context.Background())
		if err != nil {
			log.Fatalf("run once: %v", err)
		}
		printReport(rep, noColor)
		return
	}

	for {
		rep, err := runner.RunOnce(context.Background())
		if err != nil {
			log.Printf("run once error: %v", err)
		} else {
			printReport(rep, noColor)
		}
		time.Sleep(pollInterval)
	}
}

func printReport(rep *monitor.Report, noColor bool) {
	c := func(code string) string {
		if noColor {
			return ""
		}
		return code
	}

	fmt.Printf("\n%s=== QUIL Node Statistics ===%s\n", c(colorBold), c(colorReset))
	fmt.Printf("Time: %s\n", rep.GeneratedAt.Format("2006-01-02 15:04:05"))
	if rep.Reinitialized {
		fmt.Printf("%sNote: checkpoint was corrupt and has been reinitialized; history was lost.%s\n", c(colorYellow), c(colorReset))
	}
	if len(rep.StaleSources) > 0 {
		fmt.Printf("%sStale data (source unavailable): %v%s\n", c(colorYellow), rep.StaleSources, c(colorReset))
	}

	if rep.NodeInfoOK {
		fmt.Printf("\n%sNode Information:%s\n", c(colorCyan), c(colorReset))
		fmt.Printf("Ring: %d\n", rep.Node.Ring)
		fmt.Printf("Active Workers: %d\n", rep.Node.ActiveWorkers)
		fmt.Printf("Seniority: %d\n", rep.Node.Seniority)
		if rep.PriceUSD > 0 {
			fmt.Printf("QUIL Price: $%.4f\n", rep.PriceUSD)
			fmt.Printf("Balance: %.6f QUIL ($%.2f)\n", rep.Node.OwnedBalance, rep.Node.OwnedBalance*rep.PriceUSD)
		} else {
			fmt.Printf("Balance: %.6f QUIL\n", rep.Node.OwnedBalance)
		}
	}

	fmt.Printf("\n%sEarnings Averages:%s\n", c(colorCyan), c(colorReset))
	printQuil("Daily Average:  ", rep.DailyAvg, rep.PriceUSD)
	printQuil("Weekly Average: ", rep.WeeklyAvg, rep.PriceUSD)
	printQuil("Monthly Average:", rep.MonthlyAvg, rep.PriceUSD)

	printQuil("\nToday's Earnings:", rep.Today.Earnings, rep.PriceUSD)
	fmt.Printf("Earnings source: %s\n", rep.Today.EarningsSource)
	if div, ok := rep.Today.EarningsDivergence(); ok && div != 0 {
		fmt.Printf("%sEarnings signals diverge by %.6f QUIL (tx sum %.6f vs balance delta %.6f)%s\n",
			c(colorYellow), div, rep.Today.TransactionSum, *rep.Today.BalanceDelta, c(colorReset))
	}

	fmt.Printf("\n%sCurrent Performance:%s\n", c(colorCyan), c(colorReset))
	fmt.Printf("Landing Rate: %.2f%% (%d/%d frames)\n",
		rep.Today.LandingRate, rep.Today.Transactions, rep.Today.FramesCreated)

	printSection("Creation Stage (Network Latency)", rep.Today.Creation, rep.Thresholds.Creation, noColor)
	printSection("Submission Stage (Total Time)", rep.Today.Submission, rep.Thresholds.Submission, noColor)
	printSection("CPU Processing Time", rep.Today.CPU, rep.Thresholds.CPU, noColor)

	if len(rep.History) > 0 {
		fmt.Printf("\n%sHistory (Last 7 Days):%s\n", c(colorCyan), c(colorReset))
		for _, day := range rep.History {
			if rep.PriceUSD > 0 {
				fmt.Printf("%s: %.6f QUIL ($%.2f)\n", day.Date, day.Earnings, day.Earnings*rep.PriceUSD)
			} else {
				fmt.Printf("%s: %.6f QUIL\n", day.Date, day.Earnings)
			}
		}
	}
}

func printQuil(label string, amount, price float64) {
	if price > 0 {
		fmt.Printf("%s %.6f QUIL ($%.2f)\n", label, amount, amount*price)
	} else {
		fmt.Printf("%s %.6f QUIL\n", label, amount)
	}
}

func printSection(title string, st monitor.BucketStats, th monitor.Thresholds, noColor bool) {
	c := func(code string, pct float64) string {
		if noColor || pct <= 50 {
			return ""
		}
		return code
	}
	reset := func(pct float64) string {
		if noColor || pct <= 50 {
			return ""
		}
		return colorReset
	}

	fmt.Printf("\n%s:\n", title)
	fmt.Printf("  Total Proofs:  %d\n", st.Total)
	fmt.Printf("  Average Time:  %.2fs\n", st.AvgTime)
	fmt.Printf("  0-%.0fs:    %s%d proofs (%.1f%%)%s\n",
		th.Good, c(colorGreen, st.GoodPct), st.Good, st.GoodPct, reset(st.GoodPct))
	fmt.Printf("  %.0f-%.0fs:  %s%d proofs (%.1f%%)%s\n",
		th.Good, th.Warning, c(colorYellow, st.WarningPct), st.Warning, st.WarningPct, reset(st.WarningPct))
	fmt.Printf("  >%.0fs:     %s%d proofs (%.1f%%)%s\n",
		th.Warning, c(colorRed, st.CriticalPct), st.Critical, st.CriticalPct, reset(st.CriticalPct))
}
