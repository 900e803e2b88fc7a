package extraction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeimport/internal/types"
)

func TestServiceParse(t *testing.T) {
	svc := NewService(NewChain(nil), nil)

	result := svc.Parse(context.Background(), Request{
		RequestID:      "req-1",
		Source:         "jane.txt",
		Text:           sampleResume,
		JobDescription: "Software engineering role at Acme",
	})

	assert.Equal(t, "req-1", result.RequestID)
	assert.Equal(t, "jane.txt", result.Source)
	assert.Equal(t, RuleBasedName, result.Strategy)
	assert.Equal(t, "Jane Doe", result.Profile.PersonalInfo.FullName)
	// name 15, contact 10, experience 25
	assert.Equal(t, 50, result.Analysis.Score)
	require.NotNil(t, result.Analysis.MatchingScore)
	assert.Contains(t, result.Analysis.MatchKeywords, "software")
}

func TestServiceParseDisableAI(t *testing.T) {
	optional := &stubStrategy{name: "gemini", profile: types.ParsedProfile{Summary: "ai"}, ok: true}
	svc := NewService(NewChain(nil, WithStrategies(optional)), nil)

	assert.Equal(t, "gemini", svc.Parse(context.Background(), Request{Text: sampleResume}).Strategy)
	assert.Equal(t, RuleBasedName, svc.Parse(context.Background(), Request{Text: sampleResume, DisableAI: true}).Strategy)
	assert.Equal(t, 1, optional.calls)
}

func TestServiceParseEmpty(t *testing.T) {
	result := NewService(NewChain(nil), nil).Parse(context.Background(), Request{})

	assert.Equal(t, types.NewParsedProfile(), result.Profile)
	assert.Equal(t, 0, result.Analysis.Score)
	assert.Nil(t, result.Analysis.MatchingScore)
}

func TestServiceScoreAndSegment(t *testing.T) {
	svc := NewService(NewChain(nil), nil)

	analysis := svc.Score(context.Background(), sampleResume, "")
	assert.Equal(t, 50, analysis.Score)

	segments := svc.Segment(sampleResume)
	assert.Equal(t, []string{"Software Engineer", "Acme Corp", "2019 - 2021"}, segments.Buckets[types.SectionExperience])
}

type parseEvent struct {
	strategy  string
	fallbacks int
	score     int
}

type fakeParseRecorder struct {
	events []parseEvent
}

func (f *fakeParseRecorder) RecordParse(_ context.Context, strategy string, fallbacks, score int, _ time.Duration) {
	f.events = append(f.events, parseEvent{strategy, fallbacks, score})
}

func TestServiceParseRecordsOutcome(t *testing.T) {
	failing := &stubStrategy{name: "gemini"}
	recorder := &fakeParseRecorder{}
	svc := NewService(NewChain(nil, WithStrategies(failing)), nil)
	svc.SetRecorder(recorder)

	svc.Parse(context.Background(), Request{Text: sampleResume})

	require.Len(t, recorder.events, 1)
	assert.Equal(t, parseEvent{RuleBasedName, 1, 50}, recorder.events[0])
}
