package stealth

import (
	"context"
	"math/rand"
	"time"
)

// ActionType represents the type of keyboard action
type ActionType int

const (
	ActionTypeKey ActionType = iota
	ActionTypeDelay
)

// KeyAction represents a single keyboard action
type KeyAction struct {
	Type  ActionType
	Key   string        // Key to press (for ActionTypeKey)
	Delay time.Duration // Delay after this action
}

// Keyboard produces typing action sequences that imitate manual entry:
// one keystroke per rune with a randomized delay drawn from a bounded range.
type Keyboard struct {
	rng      *rand.Rand
	delayMin time.Duration
	delayMax time.Duration
}

// NewKeyboard creates a Keyboard with inter-keystroke delay bounds in
// milliseconds.
func NewKeyboard(delayMinMs, delayMaxMs int) *Keyboard {
	if delayMinMs < 0 {
		delayMinMs = 0
	}
	if delayMaxMs < delayMinMs {
		delayMaxMs = delayMinMs
	}
	return &Keyboard{
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		delayMin: time.Duration(delayMinMs) * time.Millisecond,
		delayMax: time.Duration(delayMaxMs) * time.Millisecond,
	}
}

// TypingActions returns the keystroke sequence for text. The browser layer
// executes it against a focused, cleared field.
func (k *Keyboard) TypingActions(ctx context.Context, text string) ([]KeyAction, error) {
	runes := []rune(text)
	actions := make([]KeyAction, 0, len(runes))

	for _, r := range runes {
		select {
		case <-ctx.Done():
			return actions, ctx.Err()
		default:
		}

		actions = append(actions, KeyAction{
			Type:  ActionTypeKey,
			Key:   string(r),
			Delay: k.KeyDelay(),
		})
	}

	return actions, nil
}

// KeyDelay returns one randomized inter-keystroke delay within the bounds.
func (k *Keyboard) KeyDelay() time.Duration {
	if k.delayMax <= k.delayMin {
		return k.delayMin
	}
	spread := k.delayMax - k.delayMin
	return k.delayMin + time.Duration(k.rng.Int63n(int64(spread)+1))
}

// DelayBounds returns the configured delay range.
func (k *Keyboard) DelayBounds() (time.Duration, time.Duration) {
	return k.delayMin, k.delayMax
}
