package entity

import "image"

// DefectVerdict хранит итог сравнения снимка с эталоном.
type DefectVerdict struct {
	Present    bool         // флаг наличия дефекта
	Mask       *image.Gray  // сырая маска различий (до подавления шума)
	Annotated  *image.RGBA  // снимок с подсветкой дефекта, nil если не запрошен
	DiffPixels int          // число ненулевых пикселей после подавления шума
	Defects    []DefectArea // области расхождения
}

// Width возвращает ширину сравниваемых изображений.
func (v *DefectVerdict) Width() int {
	if v == nil || v.Mask == nil {
		return 0
	}
	return v.Mask.Bounds().Dx()
}

// Height возвращает высоту сравниваемых изображений.
func (v *DefectVerdict) Height() int {
	if v == nil || v.Mask == nil {
		return 0
	}
	return v.Mask.Bounds().Dy()
}

// Description — текстовое описание вердикта.
type Description struct {
	Text string
}
