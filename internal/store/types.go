package store

import "time"

// UsageRecord is the stored last-launch instant for one application.
// There is exactly one record per application; it is overwritten on every
// launch and never historized.
type UsageRecord struct {
	AppID      string
	LastLaunch time.Time
}

// Touch records filesystem activity under an application's data paths,
// observed by the watch daemon. Touches count as use when deciding idleness.
type Touch struct {
	AppID     string
	Source    string // path that changed, or "watch" for a coalesced batch
	Timestamp time.Time
}
