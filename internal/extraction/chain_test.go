package extraction

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeimport/internal/errors"
	"resumeimport/internal/types"
)

const sampleResume = "Jane Doe\njane@x.com\n555-123-4567\nEXPERIENCE\nSoftware Engineer\nAcme Corp\n2019 - 2021"

type stubStrategy struct {
	name    string
	profile types.ParsedProfile
	ok      bool
	calls   int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) TryExtract(context.Context, string) (types.ParsedProfile, bool) {
	s.calls++
	return s.profile, s.ok
}

type recordedAttempt struct {
	strategy string
	success  bool
}

type fakeRecorder struct {
	mu       sync.Mutex
	attempts []recordedAttempt
}

func (f *fakeRecorder) RecordStrategyAttempt(_ context.Context, strategy string, success bool, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, recordedAttempt{strategy, success})
}

func TestChainFallsBackToRuleBased(t *testing.T) {
	failing := &stubStrategy{name: "gemini"}
	recorder := &fakeRecorder{}
	var logs bytes.Buffer

	chain := NewChain(NewRuleBased(nil),
		WithStrategies(failing),
		WithRecorder(recorder),
		WithLogger(errors.NewLoggerWithWriter(&logs, slog.LevelDebug)))

	outcome := chain.Extract(context.Background(), sampleResume)

	assert.Equal(t, RuleBasedName, outcome.Strategy)
	assert.Equal(t, 1, outcome.Fallbacks)
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, "Jane Doe", outcome.Profile.PersonalInfo.FullName)
	require.Len(t, outcome.Profile.Experience, 1)

	assert.Equal(t, []recordedAttempt{{"gemini", false}, {RuleBasedName, true}}, recorder.attempts)
	assert.Contains(t, logs.String(), "falling back")
}

func TestChainPrefersFirstSuccess(t *testing.T) {
	aiProfile := types.ParsedProfile{Summary: "from the model"}
	first := &stubStrategy{name: "first", profile: aiProfile, ok: true}
	second := &stubStrategy{name: "second", ok: true}

	outcome := NewChain(nil, WithStrategies(first, second)).Extract(context.Background(), sampleResume)

	assert.Equal(t, "first", outcome.Strategy)
	assert.Equal(t, 0, second.calls)
	assert.Equal(t, "from the model", outcome.Profile.Summary)
	// collections are repaired on profiles coming from optional strategies
	assert.NotNil(t, outcome.Profile.Experience)
	assert.NotNil(t, outcome.Profile.References)
}

func TestChainRuleBasedOnly(t *testing.T) {
	optional := &stubStrategy{name: "gemini", ok: true}
	chain := NewChain(nil, WithStrategies(optional))

	assert.Equal(t, []string{"gemini", RuleBasedName}, chain.Strategies())

	outcome := chain.RuleBasedOnly().Extract(context.Background(), sampleResume)
	assert.Equal(t, RuleBasedName, outcome.Strategy)
	assert.Equal(t, 0, optional.calls)
}

func TestChainSkipsOptionalWhenContextDone(t *testing.T) {
	optional := &stubStrategy{name: "gemini", ok: true}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := NewChain(nil, WithStrategies(optional)).Extract(ctx, sampleResume)
	assert.Equal(t, RuleBasedName, outcome.Strategy)
	assert.Equal(t, 0, optional.calls)
}

func TestChainIgnoresNilStrategies(t *testing.T) {
	chain := NewChain(nil, WithStrategies(nil))
	assert.Equal(t, []string{RuleBasedName}, chain.Strategies())
}
