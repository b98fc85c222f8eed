package decision

import (
	"context"
	"time"

	"crypto-backtest-lab/internal/domain"
)

// Script replays a fixed schedule of decisions keyed by date. Days with
// no entry hold everything. Useful for tests and reproducing recorded
// strategy output.
type Script struct {
	days map[string]map[string]domain.Decision
}

// NewScript creates an empty Script.
func NewScript() *Script {
	return &Script{days: make(map[string]map[string]domain.Decision)}
}

// Compile-time interface check.
var _ Source = (*Script)(nil)

// Add schedules a decision for a symbol on a date.
func (s *Script) Add(date time.Time, symbol string, d domain.Decision) *Script {
	key := scriptKey(date)
	if s.days[key] == nil {
		s.days[key] = make(map[string]domain.Decision)
	}
	s.days[key][symbol] = d
	return s
}

// Decide returns the scheduled decisions for the request date, holding
// every symbol without an entry.
func (s *Script) Decide(_ context.Context, req Request) (map[string]domain.Decision, error) {
	decisions := HoldAll(req.Symbols)
	for symbol, d := range s.days[scriptKey(req.Date)] {
		decisions[symbol] = d
	}
	return decisions, nil
}

func scriptKey(date time.Time) string {
	return date.UTC().Format("2006-01-02")
}
