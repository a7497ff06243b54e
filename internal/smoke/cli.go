package smoke

import (
	"io"
	"strings"
)

// ParseHandles splits a comma list, trimming blanks and dropping repeats.
func ParseHandles(list string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, h := range strings.Split(list, ",") {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	return out
}

// Pairs returns adjacent handle pairs: a,b,c yields (a,b) and (b,c).
func Pairs(handles []string) []Pair {
	if len(handles) < 2 {
		return nil
	}
	out := make([]Pair, 0, len(handles)-1)
	for i := 0; i+1 < len(handles); i++ {
		out = append(out, Pair{A: handles[i], B: handles[i+1]})
	}
	return out
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `cpstats smoke test
==================

Calls /api/codeforces/compare twice for every adjacent pair of handles and
checks that the second, cached response matches the first.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -handles string
        Comma separated Codeforces handles, at least two (default "tourist,Petr")
  -timeout duration
        HTTP request timeout (default 60s)
  -workers int
        Pairs checked concurrently (default 2)
  -verbose
        Log every call
  -help
        Show this help message

Examples:
  go run ./cmd/smoke -handles tourist,Petr,jiangly
  go run ./cmd/smoke -url http://localhost:8080 -timeout 2m
`)
}
