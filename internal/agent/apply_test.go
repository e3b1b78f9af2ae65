package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/core/coretest"
)

func testSession() *core.SessionRecord {
	return &core.SessionRecord{
		Cookies: []core.Cookie{
			{Name: "sid", Value: "abc", Domain: ".broker.example", Path: "/"},
			{Name: "csrf", Value: "def", Domain: ".broker.example", Path: "/"},
		},
		LocalStorage:   map[string]string{"token": "xyz", "theme": "dark"},
		SessionStorage: map[string]string{"step": "3"},
		UserAgent:      "test-ua",
		FinalDomain:    "broker.example",
	}
}

func TestApplySeedsEverything(t *testing.T) {
	b := coretest.NewFakeBrowser()
	report := NewApplicator(b, zap.NewNop()).Apply(context.Background(), testSession())

	assert.True(t, report.Attempted)
	assert.False(t, report.Degraded())
	assert.Equal(t, 2, report.CookiesApplied)
	assert.Equal(t, 2, report.LocalApplied)
	assert.Equal(t, 1, report.SessionApplied)

	assert.Len(t, b.CookiesSet, 2)
	assert.Equal(t, "xyz", b.StorageSet[core.LocalStorage]["token"])
	assert.Equal(t, "3", b.StorageSet[core.SessionStorage]["step"])
}

func TestApplyEmptySession(t *testing.T) {
	b := coretest.NewFakeBrowser()
	report := NewApplicator(b, zap.NewNop()).Apply(context.Background(), &core.SessionRecord{})

	assert.True(t, report.Attempted)
	assert.False(t, report.Degraded())
	assert.Empty(t, b.CookiesSet)
}

func TestApplyDegradesPerStep(t *testing.T) {
	b := coretest.NewFakeBrowser()
	b.SetCookiesFn = func(cookies []core.Cookie) error {
		return errors.New("invalid cookie fields")
	}

	report := NewApplicator(b, zap.NewNop()).Apply(context.Background(), testSession())

	assert.True(t, report.Attempted)
	assert.True(t, report.Degraded())
	assert.Error(t, report.CookiesErr)
	assert.Zero(t, report.CookiesApplied)
	// Storage still lands despite the cookie failure.
	assert.Equal(t, 2, report.LocalApplied)
	assert.Equal(t, 1, report.SessionApplied)
}

func TestApplyStoragePerItem(t *testing.T) {
	b := coretest.NewFakeBrowser()
	b.SetStorageItemFn = func(area core.StorageArea, key, value string) error {
		if key == "token" {
			return errors.New("quota exceeded")
		}
		return nil
	}

	report := NewApplicator(b, zap.NewNop()).Apply(context.Background(), testSession())

	assert.True(t, report.Degraded())
	assert.Error(t, report.LocalErr)
	// The other localStorage entry still applies.
	assert.Equal(t, 1, report.LocalApplied)
	assert.Equal(t, 1, report.SessionApplied)
}
