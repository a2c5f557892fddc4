package monitor

import (
	"time"

	"github.com/fastygo/tracker/usecase/tracker"
)

type Status struct {
	Backends  map[string]bool `json:"backends"`
	Stats     tracker.Stats   `json:"stats"`
	LastCheck time.Time       `json:"last_check"`

	// Records holds the entity count of backends that can report one.
	Records map[string]int `json:"records,omitempty"`
}

// Healthy reports whether every probed backend answered its last ping.
func (s Status) Healthy() bool {
	for _, ok := range s.Backends {
		if !ok {
			return false
		}
	}
	return true
}
