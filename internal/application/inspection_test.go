package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/infrastructure/describer"
	"vision-inspect/internal/infrastructure/storage"
	"vision-inspect/internal/infrastructure/vision"
)

func newTestService(t *testing.T) *InspectionService {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	detector, err := vision.NewPipeline(vision.DefaultConfig(), log)
	require.NoError(t, err)

	users := NewUserService(storage.NewMemoryUserRepository())
	return NewInspectionService(users, storage.NewMemoryReferenceRepository(), detector, describer.NewTextDescriber(3), log)
}

func encodePNG(t *testing.T, withSquare bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			c := color.RGBA{R: 255, G: 255, B: 255, A: 255}
			if withSquare && x >= 40 && x < 50 && y >= 40 && y < 50 {
				c = color.RGBA{A: 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInspectionService_AcceptOriginalPhoto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, err := svc.AcceptOriginalPhoto(ctx, 1, 10, encodePNG(t, false))
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingDefectPhoto, user.State)
}

func TestInspectionService_AcceptOriginalPhoto_Garbage(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.AcceptOriginalPhoto(context.Background(), 1, 10, []byte("orig"))
	require.ErrorIs(t, err, entity.ErrInvalidImage)
}

func TestInspectionService_AcceptDefectPhoto(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcceptOriginalPhoto(ctx, 1, 10, encodePNG(t, false))
	require.NoError(t, err)

	user, out, err := svc.AcceptDefectPhoto(ctx, 1, 10, encodePNG(t, true))
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.True(t, out.Verdict.Present)
	require.NotEmpty(t, out.Highlighted)
	require.Contains(t, out.Description.Text, "Defect found")
	require.Contains(t, out.Description.Text, "(40,40) size 10x10")
}

func TestInspectionService_AcceptDefectPhoto_NoDefect(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcceptOriginalPhoto(ctx, 1, 10, encodePNG(t, false))
	require.NoError(t, err)

	_, out, err := svc.AcceptDefectPhoto(ctx, 1, 10, encodePNG(t, false))
	require.NoError(t, err)
	require.False(t, out.Verdict.Present)
	require.Empty(t, out.Highlighted)
	require.Equal(t, "No defects found", out.Description.Text)
}

func TestInspectionService_AcceptDefectPhoto_WithoutReference(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.AcceptDefectPhoto(context.Background(), 1, 10, encodePNG(t, true))
	require.ErrorIs(t, err, entity.ErrReferenceMissing)
}

func TestInspectionService_CancelDropsReference(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AcceptOriginalPhoto(ctx, 1, 10, encodePNG(t, false))
	require.NoError(t, err)

	user, err := svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)

	_, _, err = svc.AcceptDefectPhoto(ctx, 1, 10, encodePNG(t, true))
	require.ErrorIs(t, err, entity.ErrReferenceMissing)
}

func TestInspectionService_BeginCheck(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.BeginCheck(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingOriginalPhoto, user.State)
}

func TestInspectionService_NoDetector(t *testing.T) {
	users := NewUserService(storage.NewMemoryUserRepository())
	svc := NewInspectionService(users, storage.NewMemoryReferenceRepository(), nil, nil, nil)

	img := image.NewGray(image.Rect(0, 0, 4, 4))
	_, err := svc.Compare(context.Background(), img, img)
	require.ErrorIs(t, err, entity.ErrDetectorNotConfigured)
}

func TestInspectionService_DimensionMismatch(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Compare(context.Background(),
		image.NewGray(image.Rect(0, 0, 10, 10)),
		image.NewGray(image.Rect(0, 0, 10, 12)))
	require.ErrorIs(t, err, entity.ErrDimensionMismatch)
}
