package entity

// DefectArea представляет область с обнаруженным дефектом
type DefectArea struct {
	X      int // координата X левого верхнего угла
	Y      int // координата Y левого верхнего угла
	Width  int // ширина области в пикселях
	Height int // высота области в пикселях
	Area   int // число пикселей дефекта внутри области
}

// Center возвращает координаты центра дефекта
func (d DefectArea) Center() (x, y int) {
	return d.X + d.Width/2, d.Y + d.Height/2
}

// Contains проверяет, попадает ли точка в прямоугольник дефекта
func (d DefectArea) Contains(x, y int) bool {
	return x >= d.X && x < d.X+d.Width && y >= d.Y && y < d.Y+d.Height
}
