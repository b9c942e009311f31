package repo

import (
	"context"
	"sync"

	"github.com/storefront-poc-v1/server/internal/cart/model"
	errx "github.com/storefront-poc-v1/server/internal/core/error"
)

// MemoryStorage keeps the serialised cart in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	data   []byte
	set    bool
	writes int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Read(_ context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set {
		return nil, errx.ErrNotFound
	}
	out := make([]byte, len(m.data))
	copy(out, m.data)
	return out, nil
}

func (m *MemoryStorage) Write(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = append(m.data[:0], data...)
	m.set = true
	m.writes++
	return nil
}

// Writes returns how many times Write has been called.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

var _ model.StateStorage = (*MemoryStorage)(nil)
