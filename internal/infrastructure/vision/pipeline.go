// Package vision содержит конвейер сравнения снимка изделия с эталоном:
// нормализация, бинаризация, разница масок и подсветка дефекта.
package vision

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/domain/port"
)

// Config параметры конвейера.
type Config struct {
	Policy    Policy     // стратегия бинаризации
	Tolerance int        // дефект есть, если пикселей разницы больше Tolerance
	Annotate  bool       // строить изображение с подсветкой
	Highlight color.RGBA // цвет подсветки
}

// DefaultConfig возвращает настройки по умолчанию: фиксированный порог 150.
func DefaultConfig() Config {
	return Config{
		Policy:    Fixed{Threshold: DefaultThreshold},
		Tolerance: DefaultTolerance,
		Annotate:  true,
		Highlight: DefaultHighlight,
	}
}

// Validate проверяет настройки.
func (c Config) Validate() error {
	if c.Policy == nil {
		return fmt.Errorf("%w: binarization policy is not set", entity.ErrInvalidConfiguration)
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if c.Tolerance < 0 {
		return fmt.Errorf("%w: tolerance must be non-negative, got %d", entity.ErrInvalidConfiguration, c.Tolerance)
	}
	return nil
}

// CompareImages сравнивает снимок с эталоном и выносит вердикт.
// Оба изображения должны совпадать по размеру; ничего не обрезается и не масштабируется.
func CompareImages(input, reference image.Image, cfg Config) (*entity.DefectVerdict, error) {
	return compare(input, reference, cfg, logrus.StandardLogger())
}

// Pipeline детектор дефектов на чистом Go.
type Pipeline struct {
	cfg Config
	log logrus.FieldLogger
}

// NewPipeline создаёт детектор с проверенными настройками.
func NewPipeline(cfg Config, log logrus.FieldLogger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{cfg: cfg, log: log}, nil
}

// Config возвращает настройки детектора.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Compare реализует port.DefectDetector.
func (p *Pipeline) Compare(ctx context.Context, input, reference image.Image) (*entity.DefectVerdict, error) {
	_ = ctx
	return compare(input, reference, p.cfg, p.log)
}

func compare(input, reference image.Image, cfg Config, log logrus.FieldLogger) (*entity.DefectVerdict, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := checkImage(input, "input"); err != nil {
		return nil, err
	}
	if err := checkImage(reference, "reference"); err != nil {
		return nil, err
	}
	if err := checkSameSize(input, reference, "input and reference"); err != nil {
		return nil, err
	}

	started := time.Now()
	fields := logrus.Fields{
		"policy": cfg.Policy.String(),
		"width":  input.Bounds().Dx(),
		"height": input.Bounds().Dy(),
	}

	// Маски снимка и эталона независимы и строятся параллельно.
	var inputMask, referenceMask *image.Gray
	var g errgroup.Group
	g.Go(func() error {
		m, err := prepareMask(input, cfg.Policy)
		if err != nil {
			return fmt.Errorf("input: %w", err)
		}
		inputMask = m
		return nil
	})
	g.Go(func() error {
		m, err := prepareMask(reference, cfg.Policy)
		if err != nil {
			return fmt.Errorf("reference: %w", err)
		}
		referenceMask = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	diff, err := Diff(inputMask, referenceMask, cfg.Policy.Suppression(), cfg.Tolerance)
	if err != nil {
		return nil, err
	}

	verdict := &entity.DefectVerdict{
		Present:    diff.Present,
		Mask:       diff.Raw,
		DiffPixels: diff.Count,
	}
	if diff.Present {
		verdict.Defects = Regions(diff.Raw, diff.Cleaned)
		if cfg.Annotate {
			annotated, err := Mark(input, diff.Raw, cfg.Highlight)
			if err != nil {
				return nil, err
			}
			verdict.Annotated = annotated
		}
	}

	fields["diff_pixels"] = diff.Count
	fields["present"] = diff.Present
	fields["regions"] = len(verdict.Defects)
	fields["elapsed"] = time.Since(started)
	log.WithFields(fields).Debug("comparison finished")

	return verdict, nil
}

// prepareMask нормализует изображение и строит его бинарную маску.
func prepareMask(img image.Image, policy Policy) (*image.Gray, error) {
	gray, err := Normalize(img)
	if err != nil {
		return nil, err
	}
	return Binarize(gray, policy)
}

// Проверка реализации интерфейса
var _ port.DefectDetector = (*Pipeline)(nil)
