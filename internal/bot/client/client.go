package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/sukalov/hymnarium/internal/bot"
	"github.com/sukalov/hymnarium/internal/bot/common"
	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
	"github.com/sukalov/hymnarium/internal/state"
	"github.com/sukalov/hymnarium/internal/utils/e"
)

const (
	requestTimeout = 15 * time.Second
	resultsLimit   = 30
)

// HymnReader is the part of the hymnal service the bot reads from.
type HymnReader interface {
	GetHymn(ctx context.Context, number string, edition hymn.Edition) (hymn.Hymn, error)
	Search(ctx context.Context, query string, edition hymn.Edition) ([]hymn.Metadata, error)
	Categories(ctx context.Context, edition hymn.Edition) ([]string, error)
	HymnsByCategory(ctx context.Context, category string, edition hymn.Edition) ([]hymn.Metadata, error)
}

type ClientHandlers struct {
	hymns     HymnReader
	prefs     *state.StateManager
	publicURL string
}

func NewClientHandlers(hymns HymnReader, prefs *state.StateManager, publicURL string) *ClientHandlers {
	return &ClientHandlers{
		hymns:     hymns,
		prefs:     prefs,
		publicURL: publicURL,
	}
}

// Handlers returns the reader commands and callbacks.
func (h *ClientHandlers) Handlers() bot.Handlers {
	return bot.Handlers{
		Commands: map[string]bot.HandlerFunc{
			"start":      h.helpHandler,
			"help":       h.helpHandler,
			"hymn":       h.hymnHandler,
			"search":     h.searchHandler,
			"categories": h.categoriesHandler,
			"category":   h.categoryHandler,
			"edition":    h.editionHandler,
		},
		Callbacks: map[string]bot.HandlerFunc{
			"edition": h.editionCallback,
		},
		Messages: []bot.HandlerFunc{h.numberMessageHandler},
	}
}

func (h *ClientHandlers) helpHandler(b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(update.Message.Chat.ID, common.HelpText)
}

func (h *ClientHandlers) hymnHandler(b *bot.Bot, update tgbotapi.Update) error {
	number := common.CommandArgs(update.Message.Text)
	if number == "" {
		return b.SendMessage(update.Message.Chat.ID, "usage: /hymn <number>")
	}
	return h.sendHymn(b, update.Message.Chat.ID, number)
}

// numberMessageHandler treats a bare number as a /hymn request.
func (h *ClientHandlers) numberMessageHandler(b *bot.Bot, update tgbotapi.Update) error {
	if update.Message == nil || update.Message.IsCommand() {
		return nil
	}
	number := common.CommandArgs(update.Message.Text)
	if number == "" || !isDigits(number) {
		return nil
	}
	return h.sendHymn(b, update.Message.Chat.ID, number)
}

func (h *ClientHandlers) sendHymn(b *bot.Bot, chatID int64, number string) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	edition := h.prefs.Edition(chatID)
	result, err := h.hymns.GetHymn(ctx, number, edition)
	if errors.Is(err, e.ErrNotFound) {
		return b.SendMessage(chatID, fmt.Sprintf("hymn %s not found in the %s", number, common.EditionLabel(edition)))
	}
	if err != nil {
		logger.Error("failed to load hymn for chat", "chat_id", chatID, "number", number, "error", err.Error())
		return b.SendMessage(chatID, "something went wrong, please try again later")
	}

	for _, chunk := range common.SplitMessage(common.FormatHymn(result, h.publicURL), common.MaxMessageLength) {
		if err := b.SendMessage(chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (h *ClientHandlers) searchHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	query := common.CommandArgs(update.Message.Text)
	if query == "" {
		return b.SendMessage(chatID, "usage: /search <words or number>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	results, err := h.hymns.Search(ctx, query, h.prefs.Edition(chatID))
	if err != nil {
		logger.Error("search failed", "chat_id", chatID, "query", query, "error", err.Error())
		return b.SendMessage(chatID, "search failed, please try again later")
	}
	return b.SendMessage(chatID, common.FormatResults(results, resultsLimit))
}

func (h *ClientHandlers) categoriesHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	categories, err := h.hymns.Categories(ctx, h.prefs.Edition(chatID))
	if err != nil {
		logger.Error("failed to list categories", "chat_id", chatID, "error", err.Error())
		return b.SendMessage(chatID, "could not load categories")
	}
	return b.SendMessage(chatID, common.FormatCategories(categories))
}

func (h *ClientHandlers) categoryHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	category := common.CommandArgs(update.Message.Text)
	if category == "" {
		return b.SendMessage(chatID, "usage: /category <name>")
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	results, err := h.hymns.HymnsByCategory(ctx, category, h.prefs.Edition(chatID))
	if err != nil {
		logger.Error("failed to list category", "chat_id", chatID, "category", category, "error", err.Error())
		return b.SendMessage(chatID, "could not load the category")
	}
	return b.SendMessage(chatID, common.FormatResults(results, resultsLimit))
}

func (h *ClientHandlers) editionHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	arg := common.CommandArgs(update.Message.Text)
	if arg == "" {
		current := h.prefs.Edition(chatID)
		return b.SendMessageWithButtons(chatID,
			fmt.Sprintf("you are reading the %s", common.EditionLabel(current)),
			tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("new (1985)", "edition:new"),
					tgbotapi.NewInlineKeyboardButtonData("old (1941)", "edition:old"),
				),
			),
		)
	}
	return h.switchEdition(b, chatID, arg)
}

func (h *ClientHandlers) editionCallback(b *bot.Bot, update tgbotapi.Update) error {
	query := update.CallbackQuery
	b.AnswerCallback(query)
	if query.Message == nil {
		return nil
	}
	_, arg, _ := strings.Cut(query.Data, ":")
	return h.switchEdition(b, query.Message.Chat.ID, arg)
}

func (h *ClientHandlers) switchEdition(b *bot.Bot, chatID int64, arg string) error {
	edition, err := hymn.ParseEdition(arg)
	if err != nil {
		return b.SendMessage(chatID, "unknown edition, use /edition new or /edition old")
	}
	if err := h.prefs.SetEdition(context.Background(), chatID, edition); err != nil {
		logger.Warn("edition kept for this session only", "chat_id", chatID, "error", err.Error())
	}
	return b.SendMessage(chatID, fmt.Sprintf("switched to the %s", common.EditionLabel(edition)))
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
