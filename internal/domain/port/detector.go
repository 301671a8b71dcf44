package port

import (
	"context"
	"image"

	"vision-inspect/internal/domain/entity"
)

// DefectDetector интерфейс детектора дефектов
type DefectDetector interface {
	// Compare сравнивает снимок с эталоном и возвращает вердикт
	Compare(ctx context.Context, input, reference image.Image) (*entity.DefectVerdict, error)
}
