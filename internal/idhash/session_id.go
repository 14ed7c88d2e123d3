// Package idhash computes deterministic identifiers from record content.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ComputeSessionID computes a deterministic session_id using SHA256.
// Formula: SHA256(sorted_symbols|start_time|end_time|min_shares|min_value)
// Returns hex-encoded hash (64 characters).
//
// The symbol list is sorted first so the same scan parameters always
// produce the same ID regardless of argument order. The ID depends only
// on the scan parameters, so re-running the same window with the same
// thresholds yields the same ID and the append-only session store rejects
// the duplicate instead of recording the scan twice.
func ComputeSessionID(
	symbols []string,
	startTime, endTime int64,
	minShares int64,
	minValue float64,
) string {
	sorted := append([]string(nil), symbols...)
	sort.Strings(sorted)

	data := fmt.Sprintf("%s|%d|%d|%d|%f",
		strings.Join(sorted, ","),
		startTime,
		endTime,
		minShares,
		minValue,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
