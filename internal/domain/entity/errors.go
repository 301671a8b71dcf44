package entity

import "errors"

// Ошибки конвейера сравнения.
var (
	ErrInvalidImage         = errors.New("invalid image")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrDimensionMismatch    = errors.New("dimension mismatch")
)

// Ошибки внешнего окружения конвейера.
var (
	ErrFileNotFound          = errors.New("file does not exist")
	ErrReferenceMissing      = errors.New("reference photo is not found")
	ErrDetectorNotConfigured = errors.New("detector is not configured")
)
