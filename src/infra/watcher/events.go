package watcher

import (
	"time"
)

// ReloadEvent reports the outcome of one config reload.
type ReloadEvent struct {
	Path      string
	Timestamp time.Time
	Err       error
}
