package vision

import (
	"image"
	"sort"

	"vision-inspect/internal/domain/entity"
)

// Regions находит 8-связные компоненты сырой маски, которые пережили очистку,
// и возвращает их ограничивающие прямоугольники сверху вниз, слева направо.
func Regions(raw, cleaned *image.Gray) []entity.DefectArea {
	w, h := raw.Rect.Dx(), raw.Rect.Dy()
	visited := make([]bool, w*h)
	var areas []entity.DefectArea
	stack := make([]int, 0, 64)

	for start := 0; start < w*h; start++ {
		if visited[start] || raw.Pix[start] == 0 {
			continue
		}

		minX, minY, maxX, maxY := w, h, -1, -1
		count := 0
		survived := false

		visited[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := p%w, p/w
			count++
			if cleaned.Pix[p] != 0 {
				survived = true
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					n := ny*w + nx
					if !visited[n] && raw.Pix[n] != 0 {
						visited[n] = true
						stack = append(stack, n)
					}
				}
			}
		}

		if !survived {
			continue
		}
		areas = append(areas, entity.DefectArea{
			X:      minX,
			Y:      minY,
			Width:  maxX - minX + 1,
			Height: maxY - minY + 1,
			Area:   count,
		})
	}

	sort.SliceStable(areas, func(i, j int) bool {
		if areas[i].Y != areas[j].Y {
			return areas[i].Y < areas[j].Y
		}
		return areas[i].X < areas[j].X
	})
	return areas
}
