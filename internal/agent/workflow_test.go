package agent

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lead-automation/internal/core"
	"lead-automation/internal/core/coretest"
)

func testAgentConfig() *core.Config {
	cfg := &core.Config{
		Timing: core.TimingConfig{ClosePollSeconds: 1},
	}
	cfg.Replay.DefaultWidth = 1280
	cfg.Replay.DefaultHeight = 720
	cfg.Replay.FallbackURL = "https://google.com"
	return cfg
}

func testBundle(session *core.SessionRecord) *core.LaunchBundle {
	return &core.LaunchBundle{
		LeadID: "lead-7",
		LeadInfo: core.LeadRecord{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		},
		SessionData: session,
	}
}

func TestResolveSessionPrefersBundle(t *testing.T) {
	repo := coretest.NewFakeRepository()
	repo.Sessions["lead-7"] = &core.SessionRecord{FinalDomain: "archived.example"}

	session := testSession()
	got := ResolveSession(context.Background(), testBundle(session), repo, zap.NewNop())
	assert.Same(t, session, got)
}

func TestResolveSessionFallsBackToArchive(t *testing.T) {
	repo := coretest.NewFakeRepository()
	repo.Sessions["lead-7"] = &core.SessionRecord{FinalDomain: "archived.example"}

	got := ResolveSession(context.Background(), testBundle(nil), repo, zap.NewNop())
	require.NotNil(t, got)
	assert.Equal(t, "archived.example", got.FinalDomain)
}

func TestResolveSessionWithoutRepo(t *testing.T) {
	assert.Nil(t, ResolveSession(context.Background(), testBundle(nil), nil, zap.NewNop()))

	repo := coretest.NewFakeRepository()
	repo.GetErr = errors.New("database locked")
	assert.Nil(t, ResolveSession(context.Background(), testBundle(nil), repo, zap.NewNop()))
}

// workflowBrowser wires the fake so the session probe succeeds and the
// wait-for-close loop ends after one poll.
func workflowBrowser(probeURL string) *coretest.FakeBrowser {
	b := coretest.NewFakeBrowser()
	calls := 0
	b.CurrentURLFn = func() (string, error) {
		calls++
		if calls == 1 {
			return probeURL, nil
		}
		return "", errors.New("browser has been closed")
	}
	return b
}

func TestWorkflowAppliesAndProbesSession(t *testing.T) {
	b := workflowBrowser("https://www.broker.example/dashboard")
	repo := coretest.NewFakeRepository()
	var out bytes.Buffer

	wf := NewWorkflow(b, repo, testAgentConfig(), zap.NewNop(), &out)
	session := testSession()
	require.NoError(t, wf.Run(context.Background(), testBundle(session), session))

	assert.Len(t, b.CookiesSet, 2)
	assert.Equal(t, []string{"https://broker.example"}, b.Navigations)
	assert.Contains(t, out.String(), "SESSION TEST SUCCESSFUL")
	assert.Contains(t, out.String(), "Ada Lovelace")

	require.Len(t, repo.Runs, 1)
	assert.Equal(t, core.RunRoleLaunch, repo.Runs[0].Role)
	assert.Equal(t, core.RunOutcomeLaunched, repo.Runs[0].Outcome)
}

func TestWorkflowWarnsOnInvalidSession(t *testing.T) {
	b := workflowBrowser("https://auth.other.example/login")
	var out bytes.Buffer

	wf := NewWorkflow(b, nil, testAgentConfig(), zap.NewNop(), &out)
	session := testSession()
	require.NoError(t, wf.Run(context.Background(), testBundle(session), session))

	assert.Contains(t, out.String(), "SESSION TEST WARNING")
}

func TestWorkflowOpensFallbackWithoutSession(t *testing.T) {
	b := workflowBrowser("")
	var out bytes.Buffer

	wf := NewWorkflow(b, nil, testAgentConfig(), zap.NewNop(), &out)
	require.NoError(t, wf.Run(context.Background(), testBundle(nil), nil))

	assert.Equal(t, []string{"https://google.com"}, b.Navigations)
	assert.NotContains(t, out.String(), "SESSION TEST")
}

func TestWorkflowTreatsEmptySessionAsAbsent(t *testing.T) {
	b := workflowBrowser("")
	var out bytes.Buffer

	wf := NewWorkflow(b, nil, testAgentConfig(), zap.NewNop(), &out)
	session := &core.SessionRecord{UserAgent: "ua"}
	require.NoError(t, wf.Run(context.Background(), testBundle(session), session))

	assert.Equal(t, []string{"https://google.com"}, b.Navigations)
}
