package history

import "time"

const SchemaVersion = 1

// Scan is one persisted index pass: a full scan or a watch-triggered
// incremental pass, with the index totals it produced.
type Scan struct {
	SessionID   string
	Timestamp   time.Time
	Trigger     string // "scan" or "watch"
	Files       int
	Packages    int
	Classifiers int
	Callables   int
	Symbols     int
	Duration    time.Duration
}

// Check is one persisted consistency-check outcome.
type Check struct {
	SessionID string
	Timestamp time.Time
	Mode      string // "strict" or "selfheal"
	Outcome   string // "consistent", "inconsistent" or "healed"
	Changed   int
	Lost      int
	New       int
	Report    string
}
