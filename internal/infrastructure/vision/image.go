package vision

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/parallel"

	"vision-inspect/internal/domain/entity"
)

const (
	maskBackground uint8 = 0
	maskForeground uint8 = 255
)

// StructuringElement квадратное ядро морфологических операций.
type StructuringElement struct {
	Size int // сторона квадрата, нечётная
}

const rectSize = 3

// Rect3x3 общее ядро 3x3 для всех морфологических операций конвейера.
// Возвращается по значению, поэтому изменить его для всех нельзя.
func Rect3x3() StructuringElement {
	return StructuringElement{Size: rectSize}
}

func (s StructuringElement) radius() float64 {
	return float64(s.Size / 2)
}

// checkImage отсекает пустые изображения.
func checkImage(img image.Image, label string) error {
	if img == nil {
		return fmt.Errorf("%w: %s is nil", entity.ErrInvalidImage, label)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return fmt.Errorf("%w: %s has zero dimension (%dx%d)", entity.ErrInvalidImage, label, b.Dx(), b.Dy())
	}
	return nil
}

func checkSameSize(a, b image.Image, what string) error {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return fmt.Errorf("%w: %s %dx%d vs %dx%d",
			entity.ErrDimensionMismatch, what, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	return nil
}

// isSingleChannel сообщает, что изображение уже одноканальное.
func isSingleChannel(img image.Image) bool {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return true
	}
	m := img.ColorModel()
	return m == color.GrayModel || m == color.Gray16Model
}

// grayFromRGBA берёт красный канал RGBA-буфера; bild возвращает серое как R=G=B.
func grayFromRGBA(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			srow := y * src.Stride
			drow := y * dst.Stride
			for x := 0; x < w; x++ {
				dst.Pix[drow+x] = src.Pix[srow+x*4]
			}
		}
	})
	return dst
}

// cloneGray копирует серое изображение с переносом начала координат в (0,0).
func cloneGray(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		copy(dst.Pix[y*dst.Stride:y*dst.Stride+w], src.Pix[off:off+w])
	}
	return dst
}

// cloneRGBA копирует произвольное изображение в RGBA с началом в (0,0).
func cloneRGBA(src image.Image) *image.RGBA {
	rgba := clone.AsRGBA(src)
	if rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	rgba.Rect = rgba.Rect.Sub(rgba.Rect.Min)
	return rgba
}

// CountNonZero считает ненулевые пиксели маски.
func CountNonZero(mask *image.Gray) int {
	b := mask.Bounds()
	n := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := mask.PixOffset(b.Min.X, y)
		for _, v := range mask.Pix[off : off+b.Dx()] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// isBinary проверяет, что маска содержит только 0 и 255.
func isBinary(mask *image.Gray) bool {
	for _, v := range mask.Pix {
		if v != maskBackground && v != maskForeground {
			return false
		}
	}
	return true
}
