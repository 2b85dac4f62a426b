package state

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sukalov/hymnarium/internal/hymn"
	"github.com/sukalov/hymnarium/internal/logger"
)

// Backend persists chat preferences between restarts.
type Backend interface {
	LoadEditions(ctx context.Context) (map[string]string, error)
	SaveEdition(ctx context.Context, chatID string, edition string) error
}

// StateManager remembers which hymnal edition each chat reads from.
// Without a backend it keeps preferences in memory only.
type StateManager struct {
	mu       sync.RWMutex
	editions map[int64]hymn.Edition
	fallback hymn.Edition
	backend  Backend
}

func NewStateManager(backend Backend) *StateManager {
	return &StateManager{
		editions: map[int64]hymn.Edition{},
		fallback: hymn.NewVersion,
		backend:  backend,
	}
}

// Init loads persisted preferences. Unknown stored values are skipped.
func (sm *StateManager) Init(ctx context.Context) error {
	if sm.backend == nil {
		return nil
	}
	raw, err := sm.backend.LoadEditions(ctx)
	if err != nil {
		return fmt.Errorf("load chat editions: %w", err)
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	for chat, value := range raw {
		chatID, err := strconv.ParseInt(chat, 10, 64)
		if err != nil {
			continue
		}
		edition, err := hymn.ParseEdition(value)
		if err != nil {
			logger.Warn("skipping stored edition", "chat_id", chat, "value", value)
			continue
		}
		sm.editions[chatID] = edition
	}
	return nil
}

// Edition returns the chat's edition, or the new edition when none was chosen.
func (sm *StateManager) Edition(chatID int64) hymn.Edition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if ed, ok := sm.editions[chatID]; ok {
		return ed
	}
	return sm.fallback
}

// SetEdition records the preference and persists it when a backend is set.
// The in-memory value is kept even if persisting fails.
func (sm *StateManager) SetEdition(ctx context.Context, chatID int64, edition hymn.Edition) error {
	sm.mu.Lock()
	sm.editions[chatID] = edition
	sm.mu.Unlock()

	if sm.backend == nil {
		return nil
	}
	if err := sm.backend.SaveEdition(ctx, strconv.FormatInt(chatID, 10), string(edition)); err != nil {
		logger.Error("error happened while saving chat edition to redis", "chat_id", chatID, "error", err.Error())
		return err
	}
	return nil
}

// Count is the number of chats with an explicit preference.
func (sm *StateManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.editions)
}
