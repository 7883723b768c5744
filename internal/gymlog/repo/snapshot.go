package repo

import "time"

const SnapshotVersion = 1

// Snapshot is the unit of export, sync and restore.
type Snapshot struct {
	Version    int        `json:"version"`
	ExportedAt time.Time  `json:"exportedAt"`
	Sessions   []Session  `json:"sessions"`
	Exercises  []Exercise `json:"exercises"`
}
