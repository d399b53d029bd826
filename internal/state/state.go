package state

import "github.com/QHanh/AutoVideo/internal/config"

// State is the lifecycle state of a task.
type State int

const (
	StatePending State = iota
	StateProcessing
	StateComplete
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateProcessing:
		return "processing"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Store persists task progress and an open-ended result payload.
// Update merges fields into the existing record so partial results from
// earlier stages survive a later failure. Implementations must serialize
// concurrent updates to the same task.
type Store interface {
	Update(taskID string, st State, progress int, fields map[string]any)
	Get(taskID string) (map[string]any, bool)
	List(page, pageSize int) ([]map[string]any, int)
	Delete(taskID string)
}

// New selects the store implementation once at process start.
func New(cfg *config.Config) (Store, error) {
	if cfg.Redis.Enabled {
		return NewRedisStore(cfg.Redis)
	}
	return NewMemoryStore(), nil
}

func clampProgress(p int) int {
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
