package vision

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"

	"vision-inspect/internal/domain/entity"
)

// Веса смешивания: исходник приглушается, контур рисуется поверх.
const (
	originalWeight = 0.4
	overlayWeight  = 1.0
)

// DefaultHighlight цвет подсветки дефекта.
var DefaultHighlight = color.RGBA{R: 255, A: 255}

// ParseHighlight разбирает цвет подсветки в виде "#rrggbb".
func ParseHighlight(hex string) (color.RGBA, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: highlight color %q: %v", entity.ErrInvalidConfiguration, hex, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Mark рисует дефект на копии исходного снимка.
// Пиксели сырой маски зачерняются, расширенная маска окрашивается в highlight
// и накладывается с весами 0.4/1.0. Вне расширенной маски снимок не меняется.
func Mark(original image.Image, rawMask *image.Gray, highlight color.RGBA) (*image.RGBA, error) {
	if err := checkImage(original, "original"); err != nil {
		return nil, err
	}
	if err := checkImage(rawMask, "difference mask"); err != nil {
		return nil, err
	}
	if err := checkSameSize(original, rawMask, "original and mask"); err != nil {
		return nil, err
	}

	out := cloneRGBA(original)
	mask := cloneGray(rawMask)
	outline := Dilate(mask, Rect3x3())

	w, h := out.Rect.Dx(), out.Rect.Dy()
	overlay := [3]float64{float64(highlight.R), float64(highlight.G), float64(highlight.B)}

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				i := y*mask.Stride + x
				if outline.Pix[i] == 0 {
					continue
				}
				pos := y*out.Stride + x*4
				for c := 0; c < 3; c++ {
					var base float64
					if mask.Pix[i] == 0 {
						base = float64(out.Pix[pos+c])
					}
					out.Pix[pos+c] = uint8(math.Min(math.Round(originalWeight*base+overlayWeight*overlay[c]), 255))
				}
				out.Pix[pos+3] = 255
			}
		}
	})
	return out, nil
}
