package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"vision-inspect/internal/container"
	"vision-inspect/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для поиска дефектов на фотографиях деталей.

📸 Пришлите эталонное фото детали, затем фото проверяемой детали, и я покажу, где они расходятся.

📋 Команды:
/check — начать проверку детали
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте /check
2️⃣ Пришлите фото эталонной детали без дефектов
3️⃣ Пришлите фото проверяемой детали с того же ракурса
4️⃣ Вы получите результат: текст + фото с подсветкой дефектов

💡 Рекомендации:
• Снимайте при одинаковом освещении
• Используйте однотонный фон
• Оба фото должны быть одного размера

📋 Команды:
/check — начать проверку
/cancel — отменить операцию`

	msgAwaitingOriginal = "📸 Отправьте фото эталонной детали без дефектов."
	msgAwaitingDefect   = "📸 Эталон сохранён. Теперь отправьте фото проверяемой детали."
	msgCancelled        = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto        = "📸 Пожалуйста, отправьте /check, чтобы начать проверку."
	msgUnknownCommand   = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing       = "⏳ Обрабатываю изображение..."
	msgDefectFound      = "🔴 Обнаружен дефект."
	msgNoDefects        = "✅ Дефекты не обнаружены."
	msgSizeMismatch     = "⚠️ Размеры фото не совпадают. Снимите деталь с того же ракурса и отправьте /check."
	msgProcessingError  = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	app *container.Container
	log logrus.FieldLogger
}

// NewBot создаёт нового бота
func NewBot(token string, app *container.Container, log logrus.FieldLogger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.WithField("account", api.Self.UserName).Info("authorized on telegram")

	return &Bot{
		api: api,
		app: app,
		log: log,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	user, err := b.app.UserService.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		b.log.WithError(err).Error("get user")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Обработка фото
	if len(msg.Photo) > 0 {
		b.handlePhoto(ctx, msg, user)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var err error

	switch msg.Command() {
	case "start":
		_, err = b.app.InspectionService.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "check":
		_, err = b.app.InspectionService.BeginCheck(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgAwaitingOriginal)

	case "cancel":
		_, err = b.app.InspectionService.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}

	if err != nil {
		b.log.WithError(err).WithField("command", msg.Command()).Error("handle command")
	}
}

// handlePhoto обрабатывает входящее фото в зависимости от шага проверки
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	switch user.State {
	case entity.StateAwaitingOriginalPhoto:
		b.handleOriginalPhoto(ctx, msg)
	case entity.StateAwaitingDefectPhoto:
		b.handleDefectPhoto(ctx, msg)
	default:
		b.sendMessage(msg.Chat.ID, msgSendPhoto)
	}
}

func (b *Bot) handleOriginalPhoto(ctx context.Context, msg *tgbotapi.Message) {
	data, err := b.downloadPhoto(msg)
	if err != nil {
		b.fail(ctx, msg, err, msgProcessingError)
		return
	}

	if _, err := b.app.InspectionService.AcceptOriginalPhoto(ctx, msg.From.ID, msg.Chat.ID, data); err != nil {
		b.fail(ctx, msg, err, msgProcessingError)
		return
	}

	b.sendMessage(msg.Chat.ID, msgAwaitingDefect)
}

func (b *Bot) handleDefectPhoto(ctx context.Context, msg *tgbotapi.Message) {
	if _, err := b.app.UserService.SetState(ctx, msg.From.ID, msg.Chat.ID, entity.StateProcessing); err != nil {
		b.log.WithError(err).Error("set processing state")
	}
	b.sendMessage(msg.Chat.ID, msgProcessing)

	data, err := b.downloadPhoto(msg)
	if err != nil {
		b.fail(ctx, msg, err, msgProcessingError)
		return
	}

	_, out, err := b.app.InspectionService.AcceptDefectPhoto(ctx, msg.From.ID, msg.Chat.ID, data)
	if errors.Is(err, entity.ErrDimensionMismatch) {
		b.fail(ctx, msg, err, msgSizeMismatch)
		return
	}
	if err != nil {
		b.fail(ctx, msg, err, msgProcessingError)
		return
	}

	if !out.Verdict.Present {
		b.sendMessage(msg.Chat.ID, msgNoDefects)
		return
	}

	text := msgDefectFound
	if out.Description != nil {
		text = "🔴 " + out.Description.Text
	}
	b.sendMessage(msg.Chat.ID, text)

	if len(out.Highlighted) > 0 {
		photo := tgbotapi.NewPhoto(msg.Chat.ID, tgbotapi.FileBytes{Name: "defect.jpg", Bytes: out.Highlighted})
		if _, err := b.api.Send(photo); err != nil {
			b.log.WithError(err).Error("send highlighted photo")
		}
	}
}

// fail сообщает об ошибке и возвращает пользователя в главное меню
func (b *Bot) fail(ctx context.Context, msg *tgbotapi.Message, err error, reply string) {
	b.log.WithError(err).WithField("user_id", msg.From.ID).Warn("photo processing failed")
	b.sendMessage(msg.Chat.ID, reply)

	if _, err := b.app.InspectionService.Cancel(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		b.log.WithError(err).Error("reset user")
	}
}

// downloadPhoto скачивает фото с максимальным разрешением
func (b *Bot) downloadPhoto(msg *tgbotapi.Message) ([]byte, error) {
	photo := msg.Photo[len(msg.Photo)-1]
	return b.downloadFile(photo.FileID)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).Error("send message")
	}
}
