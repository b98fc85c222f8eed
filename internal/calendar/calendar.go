// Package calendar generates the business-day sequence that drives the
// backtest loop.
package calendar

import "time"

// BusinessDays returns every weekday in [start, end] inclusive, in order.
// Times are normalized to midnight UTC. Exchange holidays are not
// modeled; days without prices are skipped by the engine instead.
func BusinessDays(start, end time.Time) []time.Time {
	start = midnightUTC(start)
	end = midnightUTC(end)

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
			continue
		default:
			days = append(days, d)
		}
	}
	return days
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
