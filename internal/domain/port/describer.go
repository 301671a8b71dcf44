package port

import (
	"context"

	"vision-inspect/internal/domain/entity"
)

// DefectDescriber интерфейс описателя дефектов
type DefectDescriber interface {
	// Describe генерирует текстовое описание вердикта
	Describe(ctx context.Context, verdict *entity.DefectVerdict) (*entity.Description, error)
}
