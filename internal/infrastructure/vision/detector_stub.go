//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"
	"image"

	"github.com/sirupsen/logrus"

	"vision-inspect/internal/domain/entity"
)

// CVDetector заглушка: сборка без тега gocv.
type CVDetector struct{}

// NewCVDetector возвращает ошибку, если сборка без тега gocv.
func NewCVDetector(cfg Config, log logrus.FieldLogger) (*CVDetector, error) {
	_ = cfg
	_ = log
	return nil, errors.New("gocv build tag is not enabled")
}

// Compare возвращает ошибку, если сборка без тега gocv.
func (d *CVDetector) Compare(ctx context.Context, input, reference image.Image) (*entity.DefectVerdict, error) {
	_ = ctx
	_ = input
	_ = reference
	return nil, errors.New("gocv build tag is not enabled")
}
