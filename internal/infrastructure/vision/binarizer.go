package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/parallel"

	"vision-inspect/internal/domain/entity"
)

// Значения по умолчанию для политик бинаризации.
const (
	DefaultThreshold = 150
	DefaultBlockSize = 3
	DefaultOffset    = 0
)

// Policy стратегия бинаризации. Каждая стратегия сама выбирает
// морфологическую очистку маски и способ подавления шума разницы.
type Policy interface {
	fmt.Stringer

	// Validate проверяет параметры стратегии.
	Validate() error

	// Suppression возвращает способ очистки маски различий:
	// Fixed чистит медианой, Adaptive открытием.
	Suppression() Suppression

	binarize(gray *image.Gray) *image.Gray
}

// Fixed глобальный порог: пиксель >= Threshold становится передним планом.
// После порога выполняется закрытие, чтобы залить мелкие дыры в сплошных областях.
type Fixed struct {
	Threshold int
}

// Adaptive локальный порог по гауссовому среднему окна BlockSize x BlockSize.
// После порога выполняется открытие, чтобы убрать одиночные крапинки.
type Adaptive struct {
	BlockSize int
	Offset    int
}

func (p Fixed) String() string { return fmt.Sprintf("fixed(%d)", p.Threshold) }

func (p Adaptive) String() string { return fmt.Sprintf("adaptive(%d,%d)", p.BlockSize, p.Offset) }

func (p Fixed) Validate() error {
	if p.Threshold < 0 || p.Threshold > 255 {
		return fmt.Errorf("%w: threshold must be in 0..255, got %d", entity.ErrInvalidConfiguration, p.Threshold)
	}
	return nil
}

func (p Adaptive) Validate() error {
	if p.BlockSize <= 0 || p.BlockSize%2 == 0 {
		return fmt.Errorf("%w: block size must be positive odd, got %d", entity.ErrInvalidConfiguration, p.BlockSize)
	}
	if p.Offset < -255 || p.Offset > 255 {
		return fmt.Errorf("%w: offset must be in -255..255, got %d", entity.ErrInvalidConfiguration, p.Offset)
	}
	return nil
}

// Suppression: после закрытия разницу чистит медиана 3x3.
func (p Fixed) Suppression() Suppression { return SuppressMedian }

// Suppression: адаптивная маска и её разница чистятся одинаково, открытием.
func (p Adaptive) Suppression() Suppression { return SuppressOpening }

func (p Fixed) binarize(gray *image.Gray) *image.Gray {
	return Close(thresholdFixed(gray, uint8(p.Threshold)), Rect3x3())
}

func (p Adaptive) binarize(gray *image.Gray) *image.Gray {
	return Open(thresholdAdaptive(gray, p.BlockSize, p.Offset), Rect3x3())
}

// Binarize превращает нормализованное серое изображение в бинарную маску.
func Binarize(gray *image.Gray, policy Policy) (*image.Gray, error) {
	if policy == nil {
		return nil, fmt.Errorf("%w: binarization policy is not set", entity.ErrInvalidConfiguration)
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if err := checkImage(gray, "gray image"); err != nil {
		return nil, err
	}
	return policy.binarize(cloneGray(gray)), nil
}

func thresholdFixed(gray *image.Gray, level uint8) *image.Gray {
	dst := image.NewGray(gray.Bounds())
	parallel.Line(len(gray.Pix), func(start, end int) {
		for i := start; i < end; i++ {
			if gray.Pix[i] >= level {
				dst.Pix[i] = maskForeground
			} else {
				dst.Pix[i] = maskBackground
			}
		}
	})
	return dst
}

// thresholdAdaptive: передний план там, где src > round(mean) - offset.
func thresholdAdaptive(gray *image.Gray, blockSize, offset int) *image.Gray {
	// +0.5 превращает усечение свёртки в округление
	mean := grayFromRGBA(convolution.Convolve(gray, gaussianKernel(blockSize), &convolution.Options{
		Bias:      0.5,
		KeepAlpha: true,
	}))

	dst := image.NewGray(gray.Bounds())
	parallel.Line(len(gray.Pix), func(start, end int) {
		for i := start; i < end; i++ {
			if int(gray.Pix[i]) > int(mean.Pix[i])-offset {
				dst.Pix[i] = maskForeground
			} else {
				dst.Pix[i] = maskBackground
			}
		}
	})
	return dst
}

// gaussianKernel строит нормированное гауссово ядро size x size.
// Для размеров до 7 коэффициенты табличные,
// для больших sigma = 0.3*((size-1)*0.5-1)+0.8.
func gaussianKernel(size int) convolution.Matrix {
	row := gaussianRow(size)
	k := convolution.NewKernel(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			k.Matrix[y*size+x] = row[x] * row[y]
		}
	}
	return k.Normalized()
}

// adaptiveUnitFill значение маски при окне 1x1: src > src-offset верно только при offset > 0.
func adaptiveUnitFill(offset int) float64 {
	if offset > 0 {
		return float64(maskForeground)
	}
	return float64(maskBackground)
}

var smallGaussianRows = map[int][]float64{
	1: {1},
	3: {1, 2, 1},
	5: {1, 4, 6, 4, 1},
	7: {1, 3.5, 7, 9, 7, 3.5, 1},
}

func gaussianRow(size int) []float64 {
	if row, ok := smallGaussianRows[size]; ok {
		return row
	}
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	row := make([]float64, size)
	c := float64(size-1) / 2
	for i := range row {
		d := float64(i) - c
		row[i] = math.Exp(-d * d / (2 * sigma * sigma))
	}
	return row
}

// Dilate расширяет передний план ядром se.
func Dilate(mask *image.Gray, se StructuringElement) *image.Gray {
	return grayFromRGBA(effect.Dilate(mask, se.radius()))
}

// Erode сужает передний план ядром se.
func Erode(mask *image.Gray, se StructuringElement) *image.Gray {
	return grayFromRGBA(effect.Erode(mask, se.radius()))
}

// Open — эрозия, затем дилатация.
func Open(mask *image.Gray, se StructuringElement) *image.Gray {
	return Dilate(Erode(mask, se), se)
}

// Close — дилатация, затем эрозия.
func Close(mask *image.Gray, se StructuringElement) *image.Gray {
	return Erode(Dilate(mask, se), se)
}
