package admin

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/hymnarium/internal/bot"
	"github.com/sukalov/hymnarium/internal/logger"
)

// CacheFlusher drops every cached hymn.
type CacheFlusher interface {
	FlushCache(ctx context.Context) error
}

type AdminHandlers struct {
	cache  CacheFlusher
	admins map[string]bool

	mu              sync.Mutex
	flushInProgress bool
}

func NewAdminHandlers(cache CacheFlusher, adminUsernames []string) *AdminHandlers {
	admins := make(map[string]bool)
	for _, username := range adminUsernames {
		admins[username] = true
	}

	return &AdminHandlers{
		cache:  cache,
		admins: admins,
	}
}

func (h *AdminHandlers) IsAdmin(username string) bool {
	return username != "" && h.admins[username]
}

func (h *AdminHandlers) flushCacheHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message

	if !h.IsAdmin(message.From.UserName) {
		return b.SendMessage(message.Chat.ID, "admins only")
	}
	h.setPending(true)
	return b.SendMessageWithButtons(message.Chat.ID, "every cached hymn will be dropped. continue?",
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("flush", "confirm_flush_cache"),
				tgbotapi.NewInlineKeyboardButtonData("cancel", "abort_flush_cache"),
			),
		),
	)
}

func (h *AdminHandlers) confirmHandler(b *bot.Bot, update tgbotapi.Update) error {
	query := update.CallbackQuery
	b.AnswerCallback(query)
	if !h.IsAdmin(query.From.UserName) {
		return b.SendMessage(query.From.ID, "admins only")
	}
	if !h.takePending() {
		return b.SendMessage(query.From.ID, "this button no longer works")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := h.cache.FlushCache(ctx); err != nil {
		logger.Error("cache flush failed", "admin", query.From.UserName, "error", err.Error())
		return b.SendMessage(query.From.ID, "cache flush failed")
	}
	logger.Success("cache flushed", "admin", query.From.UserName)
	return b.SendMessage(query.From.ID, "cache flushed")
}

func (h *AdminHandlers) abortHandler(b *bot.Bot, update tgbotapi.Update) error {
	query := update.CallbackQuery
	b.AnswerCallback(query)
	if h.takePending() {
		return b.SendMessage(query.From.ID, "ok, cancelled")
	}
	return b.SendMessage(query.From.ID, "this button no longer works")
}

func (h *AdminHandlers) setPending(v bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushInProgress = v
}

// takePending reports whether a flush was pending and clears it.
func (h *AdminHandlers) takePending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	pending := h.flushInProgress
	h.flushInProgress = false
	return pending
}

// Register adds the admin commands and callbacks to handlers.
func (h *AdminHandlers) Register(handlers *bot.Handlers) {
	if handlers.Commands == nil {
		handlers.Commands = map[string]bot.HandlerFunc{}
	}
	if handlers.Callbacks == nil {
		handlers.Callbacks = map[string]bot.HandlerFunc{}
	}
	handlers.Commands["flushcache"] = h.flushCacheHandler
	handlers.Callbacks["confirm_flush_cache"] = h.confirmHandler
	handlers.Callbacks["abort_flush_cache"] = h.abortHandler
}
