package vision

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"

	"vision-inspect/internal/domain/entity"
)

// DefaultTolerance допустимое число случайных пикселей разницы.
const DefaultTolerance = 1

// Suppression способ подавления шума в маске различий.
type Suppression int

const (
	SuppressOpening Suppression = iota // повторное открытие ядром 3x3
	SuppressMedian                     // медианный фильтр 3x3
)

func (s Suppression) String() string {
	switch s {
	case SuppressOpening:
		return "opening"
	case SuppressMedian:
		return "median"
	default:
		return fmt.Sprintf("suppression(%d)", int(s))
	}
}

// DiffResult результат сравнения двух бинарных масок.
type DiffResult struct {
	Raw     *image.Gray // XOR масок до очистки
	Cleaned *image.Gray // маска после подавления шума
	Count   int         // ненулевые пиксели очищенной маски
	Present bool        // Count > tolerance
}

// Diff сравнивает маску снимка с маской эталона.
func Diff(inputMask, referenceMask *image.Gray, suppress Suppression, tolerance int) (*DiffResult, error) {
	if tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must be non-negative, got %d", entity.ErrInvalidConfiguration, tolerance)
	}
	if err := checkImage(inputMask, "input mask"); err != nil {
		return nil, err
	}
	if err := checkImage(referenceMask, "reference mask"); err != nil {
		return nil, err
	}
	if err := checkSameSize(inputMask, referenceMask, "masks"); err != nil {
		return nil, err
	}

	in, ref := cloneGray(inputMask), cloneGray(referenceMask)
	if !isBinary(in) || !isBinary(ref) {
		return nil, fmt.Errorf("%w: mask holds values other than 0 and 255", entity.ErrInvalidImage)
	}

	raw := Xor(in, ref)

	var cleaned *image.Gray
	switch suppress {
	case SuppressOpening:
		cleaned = Open(raw, Rect3x3())
	case SuppressMedian:
		m, err := Median(raw, Rect3x3().Size)
		if err != nil {
			return nil, err
		}
		cleaned = m
	default:
		return nil, fmt.Errorf("%w: unknown suppression %s", entity.ErrInvalidConfiguration, suppress)
	}

	count := CountNonZero(cleaned)
	return &DiffResult{
		Raw:     raw,
		Cleaned: cleaned,
		Count:   count,
		Present: Decide(count, tolerance),
	}, nil
}

// Decide правило решения: дефект есть, если пикселей больше допуска.
func Decide(count, tolerance int) bool {
	return count > tolerance
}

// Xor попиксельное исключающее ИЛИ двух масок одинакового размера с началом в (0,0).
func Xor(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Bounds())
	parallel.Line(len(dst.Pix), func(start, end int) {
		for i := start; i < end; i++ {
			dst.Pix[i] = a.Pix[i] ^ b.Pix[i]
		}
	})
	return dst
}
