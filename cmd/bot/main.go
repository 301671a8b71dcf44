package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"vision-inspect/config"
	telegram "vision-inspect/internal/api"
	"vision-inspect/internal/container"
	"vision-inspect/internal/infrastructure/describer"
	"vision-inspect/internal/infrastructure/storage"
	"vision-inspect/internal/logger"
)

// Сколько областей дефекта перечислять в ответе.
const maxDescribedRegions = 5

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logrus.Fatalf("Failed to create logger: %v", err)
	}

	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Создаём хранилища пользователей и эталонов
	userRepo := storage.NewMemoryUserRepository()
	referenceRepo := storage.NewMemoryReferenceRepository()

	detector, err := container.NewDetector(cfg, log)
	if err != nil {
		log.Fatalf("Failed to create detector: %v", err)
	}

	// Собираем сервисы приложения
	appContainer := container.New(userRepo, referenceRepo, detector, describer.NewTextDescriber(maxDescribedRegions), log)

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, log)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithField("engine", cfg.Engine).Info("bot is running")
	if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot error: %v", err)
	}
	log.Info("bot stopped")
}
