//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/domain/port"
)

// CVDetector тот же конвейер на OpenCV.
type CVDetector struct {
	cfg Config
	log logrus.FieldLogger
}

// NewCVDetector создаёт детектор на OpenCV.
func NewCVDetector(cfg Config, log logrus.FieldLogger) (*CVDetector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CVDetector{cfg: cfg, log: log}, nil
}

// Compare сравнивает снимок с эталоном средствами OpenCV.
func (d *CVDetector) Compare(ctx context.Context, input, reference image.Image) (*entity.DefectVerdict, error) {
	_ = ctx
	if err := checkImage(input, "input"); err != nil {
		return nil, err
	}
	if err := checkImage(reference, "reference"); err != nil {
		return nil, err
	}
	if err := checkSameSize(input, reference, "input and reference"); err != nil {
		return nil, err
	}

	inputMat, err := gocv.ImageToMatRGB(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	defer inputMat.Close()

	referenceMat, err := gocv.ImageToMatRGB(reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	defer referenceMat.Close()

	strel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(Rect3x3().Size, Rect3x3().Size))
	defer strel.Close()

	inputMask, err := d.mask(inputMat, strel)
	if err != nil {
		return nil, err
	}
	defer inputMask.Close()

	referenceMask, err := d.mask(referenceMat, strel)
	if err != nil {
		return nil, err
	}
	defer referenceMask.Close()

	raw := gocv.NewMat()
	defer raw.Close()
	gocv.BitwiseXor(inputMask, referenceMask, &raw)

	// Убираем одиночные расхождения от шума сенсора.
	cleaned := gocv.NewMat()
	defer cleaned.Close()
	switch d.cfg.Policy.Suppression() {
	case SuppressOpening:
		gocv.MorphologyEx(raw, &cleaned, gocv.MorphOpen, strel)
	case SuppressMedian:
		gocv.MedianBlur(raw, &cleaned, Rect3x3().Size)
	default:
		return nil, fmt.Errorf("%w: unknown suppression", entity.ErrInvalidConfiguration)
	}

	count := gocv.CountNonZero(cleaned)
	rawGray, err := matToGray(raw)
	if err != nil {
		return nil, err
	}

	verdict := &entity.DefectVerdict{
		Present:    Decide(count, d.cfg.Tolerance),
		Mask:       rawGray,
		DiffPixels: count,
	}
	if verdict.Present {
		cleanedGray, err := matToGray(cleaned)
		if err != nil {
			return nil, err
		}
		verdict.Defects = Regions(rawGray, cleanedGray)
		if d.cfg.Annotate {
			annotated, err := d.mark(inputMat, raw, strel)
			if err != nil {
				return nil, err
			}
			verdict.Annotated = annotated
		}
	}

	d.log.WithFields(logrus.Fields{
		"policy":      d.cfg.Policy.String(),
		"diff_pixels": count,
		"present":     verdict.Present,
	}).Debug("opencv comparison finished")

	return verdict, nil
}

// mask: серое -> медиана -> выравнивание -> порог -> морфология.
func (d *CVDetector) mask(src gocv.Mat, strel gocv.Mat) (gocv.Mat, error) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.MedianBlur(gray, &blurred, medianWindow)

	equalized := gocv.NewMat()
	defer equalized.Close()
	gocv.EqualizeHist(blurred, &equalized)

	binary := gocv.NewMat()
	defer binary.Close()

	out := gocv.NewMat()
	switch p := d.cfg.Policy.(type) {
	case Fixed:
		// >= threshold эквивалентно > threshold-1
		gocv.Threshold(equalized, &binary, float32(p.Threshold-1), 255, gocv.ThresholdBinary)
		gocv.MorphologyEx(binary, &out, gocv.MorphClose, strel)
	case Adaptive:
		if p.BlockSize == 1 {
			// окно 1x1: среднее равно самому пикселю, маска постоянна
			equalized.CopyTo(&binary)
			binary.SetTo(gocv.NewScalar(adaptiveUnitFill(p.Offset), 0, 0, 0))
			gocv.MorphologyEx(binary, &out, gocv.MorphOpen, strel)
			break
		}
		gocv.AdaptiveThreshold(equalized, &binary, 255, gocv.AdaptiveThresholdGaussian,
			gocv.ThresholdBinary, p.BlockSize, float32(p.Offset))
		gocv.MorphologyEx(binary, &out, gocv.MorphOpen, strel)
	default:
		out.Close()
		return gocv.NewMat(), fmt.Errorf("%w: policy %s is not supported by opencv detector",
			entity.ErrInvalidConfiguration, d.cfg.Policy)
	}
	return out, nil
}

// mark зачерняет область дефекта и обводит её цветом подсветки.
func (d *CVDetector) mark(original gocv.Mat, raw gocv.Mat, strel gocv.Mat) (*image.RGBA, error) {
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(raw, &inverted)

	blanked := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), original.Rows(), original.Cols(), gocv.MatTypeCV8UC3)
	defer blanked.Close()
	original.CopyToWithMask(&blanked, inverted)

	outline := gocv.NewMat()
	defer outline.Close()
	gocv.Dilate(raw, &outline, strel)

	hl := d.cfg.Highlight
	colored := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), original.Rows(), original.Cols(), gocv.MatTypeCV8UC3)
	defer colored.Close()
	paint := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(float64(hl.B), float64(hl.G), float64(hl.R), 0),
		original.Rows(), original.Cols(), gocv.MatTypeCV8UC3)
	defer paint.Close()
	paint.CopyToWithMask(&colored, outline)

	blended := gocv.NewMat()
	defer blended.Close()
	gocv.AddWeighted(blanked, originalWeight, colored, overlayWeight, 0, &blended)

	// Вне контура оставляем исходник.
	result := original.Clone()
	defer result.Close()
	blended.CopyToWithMask(&result, outline)

	img, err := result.ToImage()
	if err != nil {
		return nil, err
	}
	rgba, ok := img.(*image.RGBA)
	if !ok {
		return nil, errors.New("unexpected annotated image type")
	}
	return rgba, nil
}

func matToGray(m gocv.Mat) (*image.Gray, error) {
	img, err := m.ToImage()
	if err != nil {
		return nil, err
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		return nil, errors.New("unexpected mask image type")
	}
	return gray, nil
}

// Проверка реализации интерфейса
var _ port.DefectDetector = (*CVDetector)(nil)
