package bot

import (
	"context"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/hymnarium/internal/logger"
)

// HandlerFunc handles one update.
type HandlerFunc func(b *Bot, update tgbotapi.Update) error

// Handlers routes updates: commands by name, callbacks by data prefix, and
// every remaining message to the message handlers.
type Handlers struct {
	Commands  map[string]HandlerFunc
	Callbacks map[string]HandlerFunc
	Messages  []HandlerFunc
}

// Bot represents a configurable Telegram bot
type Bot struct {
	Client     *tgbotapi.BotAPI
	updateChan tgbotapi.UpdatesChannel
	name       string
	stopOnce   sync.Once
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan := botClient.GetUpdatesChan(updateConfig)

	return &Bot{
		Client:     botClient,
		updateChan: updateChan,
		name:       name,
	}, nil
}

// Start processes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context, handlers Handlers) {
	logger.Info("bot authorized", "bot", b.name, "account", b.Client.Self.UserName)

	for {
		select {
		case update, ok := <-b.updateChan:
			if !ok {
				return
			}
			go b.processUpdate(update, handlers)
		case <-ctx.Done():
			b.Stop()
			return
		}
	}
}

func (b *Bot) processUpdate(update tgbotapi.Update, handlers Handlers) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("bot handler panicked", "bot", b.name, "panic", r)
		}
	}()

	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := handlers.Commands[update.Message.Command()]; exists {
			if err := handler(b, update); err != nil {
				logger.Error("command handler error", "bot", b.name, "command", update.Message.Command(), "error", err.Error())
			}
			return
		}
	}

	if update.CallbackQuery != nil {
		if handler, exists := handlers.Callbacks[callbackAction(update.CallbackQuery.Data)]; exists {
			if err := handler(b, update); err != nil {
				logger.Error("callback handler error", "bot", b.name, "data", update.CallbackQuery.Data, "error", err.Error())
			}
			return
		}
	}

	for _, handler := range handlers.Messages {
		if err := handler(b, update); err != nil {
			logger.Error("message handler error", "bot", b.name, "error", err.Error())
		}
	}
}

// callbackAction is the part of callback data before the first ':'.
func callbackAction(data string) string {
	action, _, _ := strings.Cut(data, ":")
	return action
}

// Stop halts the update polling
func (b *Bot) Stop() {
	b.stopOnce.Do(b.Client.StopReceivingUpdates)
}

// SendMessage sends plain text. It also serves as the log channel sink.
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithButtons(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.Client.Send(msg)
	return err
}

// AnswerCallback acknowledges a button press so the client stops spinning.
func (b *Bot) AnswerCallback(query *tgbotapi.CallbackQuery) {
	if _, err := b.Client.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		logger.Debug("failed to answer callback", "bot", b.name, "error", err.Error())
	}
}
