package storage

import (
	"fmt"
	"io/fs"
	"sync"
)

// Memory keeps the snapshot in process.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, fmt.Errorf("memory snapshot: %w", fs.ErrNotExist)
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Store(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append(make([]byte, 0, len(data)), data...)
	return nil
}
