package monitor

import (
	"regexp"
	"strconv"
)

var (
	ringRe      = regexp.MustCompile(`Prover Ring:\s*(\d+)`)
	workersRe   = regexp.MustCompile(`Active Workers:\s*(\d+)`)
	seniorityRe = regexp.MustCompile(`Seniority:\s*(\d+)`)
	balanceRe   = regexp.MustCompile(`Owned balance:\s*([\d.]+)\s*QUIL`)
)

// ParseNodeInfo scrapes the labeled numeric fields out of the --node-info
// snapshot. Missing labels read as zero.
func ParseNodeInfo(out string) NodeInfo {
	return NodeInfo{
		Ring:          matchInt(ringRe, out),
		ActiveWorkers: matchInt(workersRe, out),
		Seniority:     matchInt(seniorityRe, out),
		OwnedBalance:  matchFloat(balanceRe, out),
	}
}

func matchInt(re *regexp.Regexp, s string) int {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

func matchFloat(re *regexp.Regexp, s string) float64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return f
}
