package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"vision-inspect/internal/domain/entity"
	"vision-inspect/internal/infrastructure/vision"
)

// Переменные окружения.
const (
	EnvTelegramToken = "TELEGRAM_TOKEN"
	EnvEngine        = "INSPECT_ENGINE"
	EnvPolicy        = "INSPECT_POLICY"
	EnvThreshold     = "INSPECT_THRESHOLD"
	EnvBlockSize     = "INSPECT_BLOCK_SIZE"
	EnvOffset        = "INSPECT_OFFSET"
	EnvTolerance     = "INSPECT_TOLERANCE"
	EnvAnnotate      = "INSPECT_ANNOTATE"
	EnvMarkColor     = "INSPECT_MARK_COLOR"
	EnvOutput        = "INSPECT_OUTPUT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogFormat     = "LOG_FORMAT"
)

// Движки сравнения.
const (
	EngineBild = "bild"
	EngineGocv = "gocv"
)

// Политики бинаризации.
const (
	PolicyFixed    = "fixed"
	PolicyAdaptive = "adaptive"
)

type Config struct {
	TelegramToken string

	Engine     string // bild | gocv
	Policy     string // fixed | adaptive
	Threshold  int    // порог для fixed
	BlockSize  int    // окно для adaptive
	Offset     int    // константа для adaptive
	Tolerance  int    // допуск пикселей разницы
	Annotate   bool   // строить подсветку
	MarkColor  string // цвет подсветки #rrggbb
	OutputPath string // куда CLI пишет подсветку

	LogLevel  string
	LogFormat string
}

// Default возвращает настройки по умолчанию.
func Default() *Config {
	return &Config{
		Engine:     EngineBild,
		Policy:     PolicyFixed,
		Threshold:  vision.DefaultThreshold,
		BlockSize:  vision.DefaultBlockSize,
		Offset:     vision.DefaultOffset,
		Tolerance:  vision.DefaultTolerance,
		Annotate:   true,
		MarkColor:  "#ff0000",
		OutputPath: "defect.jpg",
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

func Load() (*Config, error) {
	return LoadWith(os.LookupEnv)
}

// LoadWith загружает .env и собирает настройки через lookup,
// который может подменять часть переменных (например, флагами CLI).
func LoadWith(lookup func(string) (string, bool)) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	return FromEnv(lookup)
}

// FromEnv собирает настройки из источника переменных окружения.
func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", entity.ErrInvalidConfiguration, key, v)
		}
		*dst = n
		return nil
	}

	str(EnvTelegramToken, &cfg.TelegramToken)
	str(EnvEngine, &cfg.Engine)
	str(EnvPolicy, &cfg.Policy)
	str(EnvMarkColor, &cfg.MarkColor)
	str(EnvOutput, &cfg.OutputPath)
	str(EnvLogLevel, &cfg.LogLevel)
	str(EnvLogFormat, &cfg.LogFormat)

	for key, dst := range map[string]*int{
		EnvThreshold: &cfg.Threshold,
		EnvBlockSize: &cfg.BlockSize,
		EnvOffset:    &cfg.Offset,
		EnvTolerance: &cfg.Tolerance,
	} {
		if err := num(key, dst); err != nil {
			return nil, err
		}
	}

	if v, ok := lookup(EnvAnnotate); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: INSPECT_ANNOTATE=%q is not a boolean", entity.ErrInvalidConfiguration, v)
		}
		cfg.Annotate = b
	}

	switch cfg.Engine {
	case EngineBild, EngineGocv:
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", entity.ErrInvalidConfiguration, cfg.Engine)
	}

	if _, err := cfg.Pipeline(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BinarizationPolicy строит стратегию бинаризации по имени.
func (c *Config) BinarizationPolicy() (vision.Policy, error) {
	switch strings.ToLower(c.Policy) {
	case PolicyFixed:
		return vision.Fixed{Threshold: c.Threshold}, nil
	case PolicyAdaptive:
		return vision.Adaptive{BlockSize: c.BlockSize, Offset: c.Offset}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", entity.ErrInvalidConfiguration, c.Policy)
	}
}

// Pipeline переводит настройки в конфигурацию конвейера и проверяет её.
func (c *Config) Pipeline() (vision.Config, error) {
	policy, err := c.BinarizationPolicy()
	if err != nil {
		return vision.Config{}, err
	}
	highlight, err := vision.ParseHighlight(c.MarkColor)
	if err != nil {
		return vision.Config{}, err
	}

	pc := vision.Config{
		Policy:    policy,
		Tolerance: c.Tolerance,
		Annotate:  c.Annotate,
		Highlight: highlight,
	}
	if err := pc.Validate(); err != nil {
		return vision.Config{}, err
	}
	return pc, nil
}
