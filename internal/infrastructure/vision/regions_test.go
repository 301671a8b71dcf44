package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-inspect/internal/domain/entity"
)

func TestRegions(t *testing.T) {
	raw := solidGray(30, 30, 0)
	fillGray(raw, image.Rect(20, 2, 25, 6), 255)
	fillGray(raw, image.Rect(2, 10, 5, 13), 255)
	raw.Pix[28*raw.Stride+28] = 255 // шум, не переживший очистку

	cleaned := Open(raw, Rect3x3())
	areas := Regions(raw, cleaned)

	require.Equal(t, []entity.DefectArea{
		{X: 20, Y: 2, Width: 5, Height: 4, Area: 20},
		{X: 2, Y: 10, Width: 3, Height: 3, Area: 9},
	}, areas)
}

func TestRegions_DiagonalPixelsAreConnected(t *testing.T) {
	raw := solidGray(10, 10, 0)
	raw.Pix[2*raw.Stride+2] = 255
	raw.Pix[3*raw.Stride+3] = 255

	areas := Regions(raw, raw)
	require.Len(t, areas, 1)
	require.Equal(t, 2, areas[0].Area)
}
