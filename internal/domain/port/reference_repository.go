package port

import (
	"context"
	"image"
)

// ReferenceRepository интерфейс хранилища эталонных снимков
type ReferenceRepository interface {
	// Put сохраняет эталон пользователя, заменяя предыдущий
	Put(ctx context.Context, userID int64, reference image.Image) error

	// Get возвращает эталон пользователя; ok == false если эталона нет
	Get(ctx context.Context, userID int64) (reference image.Image, ok bool, err error)

	// Delete удаляет эталон пользователя
	Delete(ctx context.Context, userID int64) error
}
