package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackAction(t *testing.T) {
	assert.Equal(t, "edition", callbackAction("edition:old"))
	assert.Equal(t, "confirm_flush_cache", callbackAction("confirm_flush_cache"))
	assert.Equal(t, "", callbackAction(":x"))
}
