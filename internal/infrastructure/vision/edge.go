package vision

import (
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/anthonynsimon/bild/parallel"
)

var (
	sobelX = &convolution.Kernel{Matrix: []float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}, Width: 3, Height: 3}
	sobelY = &convolution.Kernel{Matrix: []float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}, Width: 3, Height: 3}
)

// EdgeMap карта границ: 0.5*|Gx| + 0.5*|Gy| по оператору Собеля, с насыщением до 255.
// В решение о дефекте не входит.
func EdgeMap(gray *image.Gray) *image.Gray {
	src := cloneGray(gray)
	gx := absResponse(src, sobelX)
	gy := absResponse(src, sobelY)

	dst := image.NewGray(src.Bounds())
	parallel.Line(len(dst.Pix), func(start, end int) {
		for i := start; i < end; i++ {
			dst.Pix[i] = uint8((int(gx.Pix[i]) + int(gy.Pix[i]) + 1) / 2)
		}
	})
	return dst
}

// absResponse модуль отклика ядра. Свёртка обрезает отрицательные значения,
// поэтому |g| = max(k*src, (-k)*src).
func absResponse(src *image.Gray, k *convolution.Kernel) *image.Gray {
	neg := convolution.NewKernel(k.Width, k.Height)
	for i, v := range k.Matrix {
		neg.Matrix[i] = -v
	}
	opts := &convolution.Options{KeepAlpha: true}
	pos := grayFromRGBA(convolution.Convolve(src, k, opts))
	inv := grayFromRGBA(convolution.Convolve(src, neg, opts))
	for i := range pos.Pix {
		pos.Pix[i] = max(pos.Pix[i], inv.Pix[i])
	}
	return pos
}
