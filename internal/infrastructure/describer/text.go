package describer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/domain/port"
)

const (
	MsgDefectFound = "Defect found"
	MsgNoDefects   = "No defects found"
)

// TextDescriber описывает вердикт простым текстом.
type TextDescriber struct {
	// MaxRegions ограничивает число перечисленных областей, остальные только считаются.
	MaxRegions int
}

// NewTextDescriber создаёт описатель с перечислением до maxRegions областей.
func NewTextDescriber(maxRegions int) *TextDescriber {
	return &TextDescriber{MaxRegions: maxRegions}
}

// Describe возвращает заголовок вердикта и, при наличии дефекта, список областей.
func (d *TextDescriber) Describe(ctx context.Context, verdict *entity.DefectVerdict) (*entity.Description, error) {
	_ = ctx
	if verdict == nil {
		return nil, errors.New("verdict is nil")
	}
	if !verdict.Present {
		return &entity.Description{Text: MsgNoDefects}, nil
	}

	var b strings.Builder
	b.WriteString(MsgDefectFound)
	for i, area := range verdict.Defects {
		if i >= d.MaxRegions {
			fmt.Fprintf(&b, "\n... and %d more", len(verdict.Defects)-i)
			break
		}
		cx, cy := area.Center()
		fmt.Fprintf(&b, "\n#%d at (%d,%d) size %dx%d, %d px, center (%d,%d)",
			i+1, area.X, area.Y, area.Width, area.Height, area.Area, cx, cy)
	}
	return &entity.Description{Text: b.String()}, nil
}

// Проверка реализации интерфейса
var _ port.DefectDescriber = (*TextDescriber)(nil)
