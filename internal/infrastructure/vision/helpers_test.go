package vision

import (
	"image"
	"image/color"
)

var (
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	black = color.RGBA{A: 255}
)

func solidRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRGBA(img, img.Bounds(), c)
	return img
}

func fillRGBA(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func solidGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func fillGray(img *image.Gray, r image.Rectangle, v uint8) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// texture детерминированный узор, чтобы сравнение не вырождалось в однотонные кадры.
func texture(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8((x*37 + y*91 + (x*y)%53) % 256)
			img.SetRGBA(x, y, color.RGBA{R: v, G: 255 - v, B: uint8((x * 7) % 256), A: 255})
		}
	}
	return img
}

// nonZeroBounds прямоугольник, охватывающий все ненулевые пиксели маски.
func nonZeroBounds(mask *image.Gray) image.Rectangle {
	var r image.Rectangle
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if mask.GrayAt(x, y).Y == 0 {
				continue
			}
			px := image.Rect(x, y, x+1, y+1)
			if r.Empty() {
				r = px
			} else {
				r = r.Union(px)
			}
		}
	}
	return r
}
