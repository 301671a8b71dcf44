// Package imagefile читает и пишет снимки на диск и в память.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // регистрация декодера WebP

	"vision-inspect/internal/domain/entity"
)

// JPEGQuality качество JPEG при сохранении подсветки.
const JPEGQuality = 90

// Exists проверяет, что по пути лежит обычный файл.
func Exists(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", entity.ErrFileNotFound, path)
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", entity.ErrFileNotFound, path)
	}
	return nil
}

// Load проверяет наличие файла и декодирует его с учётом EXIF-ориентации.
func Load(path string) (image.Image, error) {
	if err := Exists(path); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Decode декодирует снимок из байтов.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrInvalidImage, err)
	}
	return img, nil
}

// EncodeJPEG кодирует изображение в JPEG.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// Save сохраняет изображение; формат определяется по расширению.
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
