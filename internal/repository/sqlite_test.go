package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lead-automation/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSaveAndGetSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := &core.SessionRecord{
		Cookies:      []core.Cookie{{Name: "sid", Value: "abc", Domain: ".broker.example"}},
		LocalStorage: map[string]string{"token": "xyz"},
		UserAgent:    "test-ua",
		FinalDomain:  "broker.example",
		CapturedAt:   1756000000,
	}
	require.NoError(t, repo.SaveSession(ctx, "lead-7", rec))

	got, err := repo.GetSessionByLeadID(ctx, "lead-7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "broker.example", got.FinalDomain)
	assert.Equal(t, "xyz", got.LocalStorage["token"])
	require.Len(t, got.Cookies, 1)
	assert.Equal(t, "sid", got.Cookies[0].Name)
}

func TestGetSessionMissingLead(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetSessionByLeadID(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSaveSessionUpserts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := &core.SessionRecord{
		Cookies:     []core.Cookie{{Name: "sid", Value: "old"}},
		FinalDomain: "first.example",
	}
	require.NoError(t, repo.SaveSession(ctx, "lead-7", first))

	second := &core.SessionRecord{
		Cookies:     []core.Cookie{{Name: "sid", Value: "new"}},
		FinalDomain: "second.example",
	}
	require.NoError(t, repo.SaveSession(ctx, "lead-7", second))

	got, err := repo.GetSessionByLeadID(ctx, "lead-7")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second.example", got.FinalDomain)
	assert.Equal(t, "new", got.Cookies[0].Value)
}

func TestRunHistory(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.LogRun(ctx, &core.RunHistory{
		LeadID: "lead-7", Role: core.RunRoleInject, Outcome: core.RunOutcomeCaptured,
	}))
	require.NoError(t, repo.LogRun(ctx, &core.RunHistory{
		LeadID: "lead-8", Role: core.RunRoleInject, Outcome: core.RunOutcomeFailed, Details: "nav failed",
	}))
	require.NoError(t, repo.LogRun(ctx, &core.RunHistory{
		LeadID: "lead-7", Role: core.RunRoleLaunch, Outcome: core.RunOutcomeLaunched,
	}))

	injects, err := repo.TodayRunCount(ctx, core.RunRoleInject)
	require.NoError(t, err)
	assert.EqualValues(t, 2, injects)

	launches, err := repo.TodayRunCount(ctx, core.RunRoleLaunch)
	require.NoError(t, err)
	assert.EqualValues(t, 1, launches)
}
