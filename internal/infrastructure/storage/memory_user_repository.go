package storage

import (
	"context"
	"errors"
	"sync"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/domain/port"
)

// MemoryUserRepository in-memory хранилище пользователей
type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[int64]entity.User
}

// NewMemoryUserRepository создаёт новое in-memory хранилище
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users: make(map[int64]entity.User),
	}
}

// Get возвращает копию пользователя, создаёт нового если не найден
func (r *MemoryUserRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.lookup(userID, chatID)
	return &user, nil
}

// Save сохраняет состояние пользователя
func (r *MemoryUserRepository) Save(ctx context.Context, user *entity.User) error {
	_ = ctx
	if user == nil {
		return errors.New("user is nil")
	}

	r.mu.Lock()
	r.users[user.ID] = *user
	r.mu.Unlock()

	return nil
}

// UpdateState меняет состояние под одной блокировкой
func (r *MemoryUserRepository) UpdateState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.lookup(userID, chatID)
	user.SetState(state)
	r.users[userID] = user
	return &user, nil
}

func (r *MemoryUserRepository) lookup(userID, chatID int64) entity.User {
	if user, exists := r.users[userID]; exists {
		return user
	}
	user := *entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

// Проверка реализации интерфейса
var _ port.UserRepository = (*MemoryUserRepository)(nil)
