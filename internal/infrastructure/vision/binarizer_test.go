package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"vision-inspect/internal/domain/entity"
)

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"fixed default", Fixed{Threshold: DefaultThreshold}, false},
		{"fixed zero", Fixed{Threshold: 0}, false},
		{"fixed too high", Fixed{Threshold: 256}, true},
		{"fixed negative", Fixed{Threshold: -1}, true},
		{"adaptive default", Adaptive{BlockSize: DefaultBlockSize}, false},
		{"adaptive even block", Adaptive{BlockSize: 4}, true},
		{"adaptive zero block", Adaptive{BlockSize: 0}, true},
		{"adaptive negative block", Adaptive{BlockSize: -3}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestBinarize_FixedThresholdIsInclusive(t *testing.T) {
	g := solidGray(9, 9, 149)
	fillGray(g, image.Rect(0, 0, 9, 5), 150)

	mask := thresholdFixed(g, 150)
	require.Equal(t, uint8(255), mask.GrayAt(4, 0).Y)
	require.Equal(t, uint8(255), mask.GrayAt(4, 4).Y)
	require.Equal(t, uint8(0), mask.GrayAt(4, 5).Y)
}

func TestBinarize_FixedClosingFillsHoles(t *testing.T) {
	g := solidGray(20, 20, 255)
	g.Pix[10*g.Stride+10] = 0
	fillGray(g, image.Rect(2, 2, 7, 7), 0)

	mask, err := Binarize(g, Fixed{Threshold: DefaultThreshold})
	require.NoError(t, err)
	require.True(t, isBinary(mask))

	// одиночная дыра залита, крупная область осталась
	require.Equal(t, uint8(255), mask.GrayAt(10, 10).Y)
	require.Equal(t, uint8(0), mask.GrayAt(4, 4).Y)
	require.Equal(t, 20*20-25, CountNonZero(mask))
}

func TestThresholdAdaptive_MarksBrightOutline(t *testing.T) {
	g := solidGray(20, 20, 0)
	fillGray(g, image.Rect(5, 5, 10, 10), 255)

	mask := thresholdAdaptive(g, 3, 0)
	require.Equal(t, 16, CountNonZero(mask))
	require.Equal(t, uint8(255), mask.GrayAt(5, 5).Y)
	require.Equal(t, uint8(255), mask.GrayAt(9, 7).Y)
	require.Equal(t, uint8(0), mask.GrayAt(7, 7).Y)
	require.Equal(t, uint8(0), mask.GrayAt(4, 7).Y)
}

func TestThresholdAdaptive_FlatImageIsBackground(t *testing.T) {
	for _, v := range []uint8{0, 128, 255} {
		mask := thresholdAdaptive(solidGray(8, 8, v), 3, 0)
		require.Zero(t, CountNonZero(mask), "level %d", v)
	}
}

func TestThresholdAdaptive_UnitBlockIsConstant(t *testing.T) {
	g := solidGray(8, 8, 0)
	fillGray(g, image.Rect(2, 2, 6, 6), 200)

	require.Zero(t, CountNonZero(thresholdAdaptive(g, 1, 0)))
	require.Equal(t, 64, CountNonZero(thresholdAdaptive(g, 1, 1)))
	require.Zero(t, CountNonZero(thresholdAdaptive(g, 1, -3)))

	require.Equal(t, float64(255), adaptiveUnitFill(1))
	require.Equal(t, float64(0), adaptiveUnitFill(0))
	require.Equal(t, float64(0), adaptiveUnitFill(-3))
}

func TestBinarize_AdaptiveOpeningStripsThinOutline(t *testing.T) {
	g := solidGray(20, 20, 0)
	fillGray(g, image.Rect(5, 5, 10, 10), 255)

	mask, err := Binarize(g, Adaptive{BlockSize: 3})
	require.NoError(t, err)
	require.Zero(t, CountNonZero(mask))
}

func TestBinarize_RejectsInvalidPolicy(t *testing.T) {
	_, err := Binarize(solidGray(4, 4, 0), Adaptive{BlockSize: 2})
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)

	_, err = Binarize(solidGray(4, 4, 0), nil)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)
}

func TestMorphology(t *testing.T) {
	speck := solidGray(9, 9, 0)
	speck.Pix[4*speck.Stride+4] = 255
	require.Zero(t, CountNonZero(Open(speck, Rect3x3())))
	require.Equal(t, 9, CountNonZero(Dilate(speck, Rect3x3())))

	block := solidGray(9, 9, 0)
	fillGray(block, image.Rect(2, 2, 7, 7), 255)
	require.Equal(t, 25, CountNonZero(Open(block, Rect3x3())))
	require.Equal(t, 9, CountNonZero(Erode(block, Rect3x3())))
}

func TestRect3x3_CannotBeChangedByCallers(t *testing.T) {
	se := Rect3x3()
	se.Size = 5
	require.Equal(t, 3, Rect3x3().Size)
}

func TestSuppressionPairing(t *testing.T) {
	require.Equal(t, SuppressMedian, Fixed{Threshold: DefaultThreshold}.Suppression())
	require.Equal(t, SuppressOpening, Adaptive{BlockSize: DefaultBlockSize}.Suppression())
}

func TestGaussianKernelIsNormalized(t *testing.T) {
	for _, size := range []int{1, 3, 5, 7, 9} {
		k := gaussianKernel(size)
		sum := 0.0
		for y := 0; y < k.MaxY(); y++ {
			for x := 0; x < k.MaxX(); x++ {
				sum += k.At(x, y)
			}
		}
		require.InDelta(t, 1.0, sum, 1e-9, "size %d", size)
	}
}
