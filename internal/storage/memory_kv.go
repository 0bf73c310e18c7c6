package storage

// MemoryKV is the in-memory fallback used when the configured backend is
// unavailable. Contents are lost when the process exits.
type MemoryKV struct {
	entries map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string][]byte)}
}

func (m *MemoryKV) Get(key string) ([]byte, bool, error) {
	value, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemoryKV) Set(key string, value []byte) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = stored
	return nil
}

func (m *MemoryKV) Delete(key string) error {
	delete(m.entries, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
