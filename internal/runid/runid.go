// Package runid derives deterministic backtest run identifiers.
package runid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Compute derives a deterministic run_id using SHA256.
// Formula: SHA256(symbols|start|end|capital|strategy|created_at_ms)
// Returns hex-encoded hash truncated to 16 characters, enough to avoid
// collisions across runs while staying readable in console output.
func Compute(symbols []string, start, end time.Time, initialCapital float64, strategyID string, createdAtMs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%.8f|%s|%d",
		strings.Join(symbols, ","),
		start.UTC().Format("2006-01-02"),
		end.UTC().Format("2006-01-02"),
		initialCapital,
		strategyID,
		createdAtMs,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}
