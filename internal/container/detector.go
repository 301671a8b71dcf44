package container

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"vision-inspect/config"
	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/domain/port"
	"vision-inspect/internal/infrastructure/vision"
)

// NewDetector выбирает реализацию детектора по настройкам.
func NewDetector(cfg *config.Config, log logrus.FieldLogger) (port.DefectDetector, error) {
	pc, err := cfg.Pipeline()
	if err != nil {
		return nil, err
	}

	switch cfg.Engine {
	case config.EngineGocv:
		d, err := vision.NewCVDetector(pc, log)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.EngineBild, "":
		p, err := vision.NewPipeline(pc, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", entity.ErrInvalidConfiguration, cfg.Engine)
	}
}
