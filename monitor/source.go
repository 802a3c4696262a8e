package monitor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EventSource supplies the raw journal lines for a bounded time window.
// A failed fetch means "no new events this run", never a failed run.
type EventSource interface {
	Fetch(ctx context.Context, since, until time.Time) ([]string, error)
}

// SnapshotSource produces the node-info and coin-metadata text snapshots.
type SnapshotSource interface {
	NodeInfo(ctx context.Context) (string, error)
	CoinMetadata(ctx context.Context) (string, error)
}

// JournalSource reads the worker's journal via journalctl.
type JournalSource struct {
	Unit    string
	Timeout time.Duration
}

func (j *JournalSource) Fetch(ctx context.Context, since, until time.Time) ([]string, error) {
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "journalctl",
		"-u", j.Unit,
		"--since", since.UTC().Format("2006-01-02 15:04:05"),
		"--until", until.UTC().Format("2006-01-02 15:04:05"),
		"--utc", "--no-hostname", "--no-pager",
		"-o", "cat")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("journalctl -u %s: %w", j.Unit, err)
	}
	return splitLines(string(out)), nil
}

func splitLines(s string) []string {
	raw := strings.Split(s, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// BinarySnapshots shells out to the newest node and qclient release binaries
// found in the node directory.
type BinarySnapshots struct {
	Dir     string
	Timeout time.Duration
}

func (b *BinarySnapshots) NodeInfo(ctx context.Context) (string, error) {
	bin, err := LatestBinary(b.Dir, "node")
	if err != nil {
		return "", err
	}
	return b.run(ctx, bin, "--node-info")
}

func (b *BinarySnapshots) CoinMetadata(ctx context.Context) (string, error) {
	bin, err := LatestBinary(b.Dir, "qclient")
	if err != nil {
		return "", err
	}
	return b.run(ctx, bin, "token", "coins", "metadata", "--public-rpc")
}

func (b *BinarySnapshots) run(ctx context.Context, bin string, args ...string) (string, error) {
	if b.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.Timeout)
		defer cancel()
	}
	// Release archives are sometimes unpacked without the exec bit.
	if info, err := os.Stat(bin); err == nil && info.Mode()&0o111 == 0 {
		_ = os.Chmod(bin, 0o755)
	}
	out, err := exec.CommandContext(ctx, bin, args...).Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", filepath.Base(bin), strings.Join(args, " "), err)
	}
	return string(out), nil
}

var versionDigitsRe = regexp.MustCompile(`\d+`)

// LatestBinary picks the highest-versioned <prefix>-*-linux-amd64 release in
// dir, comparing the numeric fields of the filename.
func LatestBinary(dir, prefix string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, prefix+"-*-linux-amd64"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no %s binary found in %s", prefix, dir)
	}
	best := matches[0]
	bestV := versionFields(best)
	for _, m := range matches[1:] {
		if v := versionFields(m); compareVersions(v, bestV) > 0 {
			best, bestV = m, v
		}
	}
	return best, nil
}

func versionFields(name string) []int {
	parts := versionDigitsRe.FindAllString(filepath.Base(name), -1)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	return out
}

func compareVersions(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	default:
		return 0
	}
}
