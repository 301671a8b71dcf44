package main

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	cli "github.com/urfave/cli/v2"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/infrastructure/imagefile"
)

func writeImage(t *testing.T, dir, name string, withSquare bool) string {
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

	path := filepath.Join(dir, name)
	require.NoError(t, imagefile.Save(img, path))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp(&stdout, &stderr)
	// без этого cli.Exit завершит тестовый процесс
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"inspect"}, args...))
	return stdout.String(), err
}

func TestInspect_DefectFound(t *testing.T) {
	dir := t.TempDir()
	input := writeImage(t, dir, "input.png", true)
	reference := writeImage(t, dir, "reference.png", false)
	output := filepath.Join(dir, "defect.jpg")
	edges := filepath.Join(dir, "edges.png")

	out, err := runApp(t, "-i", input, "-r", reference, "--output", output, "--edges", edges)
	require.NoError(t, err)
	require.Equal(t, "Defect found\n", out)

	require.FileExists(t, output)
	require.FileExists(t, edges)

	saved, err := imagefile.Load(output)
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 100, 100), saved.Bounds())
}

func TestInspect_NoDefects(t *testing.T) {
	dir := t.TempDir()
	reference := writeImage(t, dir, "reference.png", false)
	output := filepath.Join(dir, "defect.jpg")

	out, err := runApp(t, "--input", reference, "--reference", reference, "--output", output)
	require.NoError(t, err)
	require.Equal(t, "No defects found\n", out)

	_, err = os.Stat(output)
	require.True(t, os.IsNotExist(err))
}

func TestInspect_AnnotateDisabled(t *testing.T) {
	dir := t.TempDir()
	input := writeImage(t, dir, "input.png", true)
	reference := writeImage(t, dir, "reference.png", false)
	output := filepath.Join(dir, "defect.jpg")

	out, err := runApp(t, "-i", input, "-r", reference, "--annotate=false", "--output", output)
	require.NoError(t, err)
	require.Equal(t, "Defect found\n", out)

	_, err = os.Stat(output)
	require.True(t, os.IsNotExist(err))
}

func TestInspect_MissingFile(t *testing.T) {
	dir := t.TempDir()
	reference := writeImage(t, dir, "reference.png", false)
	missing := filepath.Join(dir, "missing.png")

	out, err := runApp(t, "-i", missing, "-r", reference)
	requireExitCode(t, err, 1)
	require.Equal(t, "File "+missing+" does not exist!\n", out)
}

func TestInspect_MissingArgsPrintsUsage(t *testing.T) {
	out, err := runApp(t, "-i", "input.png")
	requireExitCode(t, err, 1)
	require.Contains(t, out, "USAGE:")
	require.Contains(t, out, "--reference")
}

func TestInspect_FlagsOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	input := writeImage(t, dir, "input.png", true)
	reference := writeImage(t, dir, "reference.png", false)
	output := filepath.Join(dir, "defect.jpg")

	t.Setenv("INSPECT_POLICY", "otsu")

	_, err := runApp(t, "-i", input, "-r", reference, "--output", output)
	require.ErrorIs(t, err, entity.ErrInvalidConfiguration)

	out, err := runApp(t, "-i", input, "-r", reference, "--policy", "fixed", "--output", output)
	require.NoError(t, err)
	require.Equal(t, "Defect found\n", out)
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	require.Equal(t, code, exit.ExitCode())
}

func TestInspect_InvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	reference := writeImage(t, dir, "reference.png", false)

	_, err := runApp(t, "-i", reference, "-r", reference, "--policy", "adaptive", "--block-size", "4")
	require.Error(t, err)
}
