package dispatch

import "time"

// WindowAt computes the dispatch window for now in the given zone: the
// current wall-clock minute [from, from+1m). Scheduling granularity is one
// minute, so an event at 09:01:00 belongs to [09:01, 09:02) and never to
// the window before it.
//
// A non-zero lookback widens the window backwards so events whose minute
// passed without a tick (process downtime) are still selected. Lookback
// zero reproduces the strict current-minute behavior.
func WindowAt(now time.Time, loc *time.Location, lookback time.Duration) (from, to time.Time) {
	minute := now.In(loc).Truncate(time.Minute)
	return minute.Add(-lookback), minute.Add(time.Minute)
}
