package admin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sukalov/hymnarium/internal/bot"
)

type countingFlusher struct{ calls int }

func (c *countingFlusher) FlushCache(ctx context.Context) error {
	c.calls++
	return nil
}

func TestIsAdmin(t *testing.T) {
	h := NewAdminHandlers(&countingFlusher{}, []string{"organist", "pastor"})
	assert.True(t, h.IsAdmin("organist"))
	assert.False(t, h.IsAdmin("visitor"))
	assert.False(t, h.IsAdmin(""))
}

func TestPendingFlushIsConsumedOnce(t *testing.T) {
	h := NewAdminHandlers(&countingFlusher{}, nil)
	assert.False(t, h.takePending())

	h.setPending(true)
	assert.True(t, h.takePending())
	assert.False(t, h.takePending())
}

func TestRegister(t *testing.T) {
	h := NewAdminHandlers(&countingFlusher{}, nil)
	handlers := bot.Handlers{}
	h.Register(&handlers)

	assert.Contains(t, handlers.Commands, "flushcache")
	assert.Contains(t, handlers.Callbacks, "confirm_flush_cache")
	assert.Contains(t, handlers.Callbacks, "abort_flush_cache")
}
