package stealth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypingActionsOneKeyPerRune(t *testing.T) {
	kb := NewKeyboard(50, 150)
	actions, err := kb.TypingActions(context.Background(), "ada@example.com")
	require.NoError(t, err)

	require.Len(t, actions, len("ada@example.com"))
	assert.Equal(t, "a", actions[0].Key)
	assert.Equal(t, "@", actions[3].Key)
	for _, a := range actions {
		assert.Equal(t, ActionTypeKey, a.Type)
	}
}

func TestTypingActionsHandlesUnicode(t *testing.T) {
	kb := NewKeyboard(0, 0)
	actions, err := kb.TypingActions(context.Background(), "Zoë")
	require.NoError(t, err)

	require.Len(t, actions, 3)
	assert.Equal(t, "ë", actions[2].Key)
}

func TestKeyDelayStaysInBounds(t *testing.T) {
	kb := NewKeyboard(50, 150)
	for i := 0; i < 200; i++ {
		d := kb.KeyDelay()
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestKeyboardClampsBadBounds(t *testing.T) {
	kb := NewKeyboard(-10, -20)
	min, max := kb.DelayBounds()
	assert.Equal(t, time.Duration(0), min)
	assert.Equal(t, time.Duration(0), max)
	assert.Equal(t, time.Duration(0), kb.KeyDelay())

	kb = NewKeyboard(100, 50)
	min, max = kb.DelayBounds()
	assert.Equal(t, 100*time.Millisecond, min)
	assert.Equal(t, max, min)
}

func TestTypingActionsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	kb := NewKeyboard(50, 150)
	_, err := kb.TypingActions(ctx, "abc")
	assert.ErrorIs(t, err, context.Canceled)
}
