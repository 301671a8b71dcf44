package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/parallel"

	"vision-inspect/internal/domain/entity"
)

// Веса яркости ITU-R BT.601.
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// medianWindow окно медианного фильтра нормализации.
const medianWindow = 3

// Normalize приводит снимок к каноническому серому виду:
// серое по яркости, медиана 3x3, выравнивание гистограммы.
// Уже серое изображение проходит без преобразования цвета.
func Normalize(img image.Image) (*image.Gray, error) {
	if err := checkImage(img, "image"); err != nil {
		return nil, err
	}

	var gray *image.Gray
	if g, ok := img.(*image.Gray); ok {
		gray = cloneGray(g)
	} else if isSingleChannel(img) {
		gray = grayFromRGBA(cloneRGBA(img))
	} else {
		g, err := ToGray(img)
		if err != nil {
			return nil, err
		}
		gray = g
	}

	filtered, err := Median(gray, medianWindow)
	if err != nil {
		return nil, err
	}
	// Медиана до выравнивания: выбросы не должны искажать гистограмму.
	return Equalize(filtered), nil
}

// ToGray переводит цветное изображение в одноканальное.
func ToGray(img image.Image) (*image.Gray, error) {
	if err := checkImage(img, "image"); err != nil {
		return nil, err
	}
	if isSingleChannel(img) {
		return nil, fmt.Errorf("%w: color conversion of a single-channel image", entity.ErrInvalidImage)
	}
	return grayFromRGBA(effect.GrayscaleWithWeights(cloneRGBA(img), lumaR, lumaG, lumaB)), nil
}

// Median применяет медианный фильтр с квадратным окном window x window.
func Median(gray *image.Gray, window int) (*image.Gray, error) {
	if window <= 0 || window%2 == 0 {
		return nil, fmt.Errorf("%w: median window must be positive odd, got %d", entity.ErrInvalidConfiguration, window)
	}
	if window == 1 {
		return cloneGray(gray), nil
	}
	return grayFromRGBA(effect.Median(cloneGray(gray), float64(window/2))), nil
}

// Equalize выравнивает гистограмму яркости.
// Первый занятый уровень уходит в 0, последний в 255; однотонное изображение не меняется.
func Equalize(gray *image.Gray) *image.Gray {
	src := cloneGray(gray)
	bins := histogram.NewRGBAHistogram(src).R.Bins
	total := len(src.Pix)

	first := 0
	for first < len(bins) && bins[first] == 0 {
		first++
	}
	if first == len(bins) || bins[first] == total {
		return src
	}

	var lut [256]uint8
	scale := 255.0 / float64(total-bins[first])
	sum := 0
	for v := first + 1; v < len(bins); v++ {
		sum += bins[v]
		lut[v] = uint8(math.Min(math.Round(float64(sum)*scale), 255))
	}

	parallel.Line(len(src.Pix), func(start, end int) {
		for i := start; i < end; i++ {
			src.Pix[i] = lut[src.Pix[i]]
		}
	})
	return src
}
