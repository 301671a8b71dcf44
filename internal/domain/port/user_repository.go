package port

import (
	"context"

	"vision-inspect/internal/domain/entity"
)

// UserRepository хранилище состояний диалога.
// Возвращаемые пользователи являются копиями: изменения видны только после Save или UpdateState.
type UserRepository interface {
	// Get возвращает пользователя по ID, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Save сохраняет состояние пользователя
	Save(ctx context.Context, user *entity.User) error

	// UpdateState переводит пользователя в состояние state, создавая его при необходимости
	UpdateState(ctx context.Context, userID, chatID int64, state entity.UserState) (*entity.User, error)
}
