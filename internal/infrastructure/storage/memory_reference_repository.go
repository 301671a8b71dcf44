package storage

import (
	"context"
	"image"
	"sync"

	"vision-inspect/internal/domain/port"
)

// MemoryReferenceRepository хранит эталонные снимки пользователей в памяти
type MemoryReferenceRepository struct {
	mu         sync.RWMutex
	references map[int64]image.Image
}

// NewMemoryReferenceRepository создаёт пустое хранилище эталонов
func NewMemoryReferenceRepository() *MemoryReferenceRepository {
	return &MemoryReferenceRepository{
		references: make(map[int64]image.Image),
	}
}

// Put сохраняет эталон, заменяя предыдущий
func (r *MemoryReferenceRepository) Put(ctx context.Context, userID int64, reference image.Image) error {
	_ = ctx

	r.mu.Lock()
	r.references[userID] = reference
	r.mu.Unlock()

	return nil
}

// Get возвращает эталон пользователя
func (r *MemoryReferenceRepository) Get(ctx context.Context, userID int64) (image.Image, bool, error) {
	_ = ctx

	r.mu.RLock()
	reference, ok := r.references[userID]
	r.mu.RUnlock()

	return reference, ok, nil
}

// Delete удаляет эталон пользователя
func (r *MemoryReferenceRepository) Delete(ctx context.Context, userID int64) error {
	_ = ctx

	r.mu.Lock()
	delete(r.references, userID)
	r.mu.Unlock()

	return nil
}

// Проверка реализации интерфейса
var _ port.ReferenceRepository = (*MemoryReferenceRepository)(nil)
