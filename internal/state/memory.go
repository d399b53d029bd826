package state

import "sync"

// MemoryStore keeps task records in a mutex-guarded map.
type MemoryStore struct {
	mu    sync.Mutex
	tasks map[string]map[string]any
	order []string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]map[string]any)}
}

func (m *MemoryStore) Update(taskID string, st State, progress int, fields map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tasks[taskID]
	if !ok {
		rec = make(map[string]any)
		m.tasks[taskID] = rec
		m.order = append(m.order, taskID)
	}
	rec["task_id"] = taskID
	rec["state"] = st
	rec["progress"] = clampProgress(progress)
	for k, v := range fields {
		rec[k] = v
	}
}

func (m *MemoryStore) Get(taskID string) (map[string]any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.tasks[taskID]
	if !ok {
		return nil, false
	}
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, true
}

func (m *MemoryStore) List(page, pageSize int) ([]map[string]any, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := len(m.order)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	var out []map[string]any
	for _, id := range m.order[start:end] {
		rec := m.tasks[id]
		cp := make(map[string]any, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, total
}

func (m *MemoryStore) Delete(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[taskID]; !ok {
		return
	}
	delete(m.tasks, taskID)
	for i, id := range m.order {
		if id == taskID {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}
