package quality

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeimport/internal/types"
)

func completeProfile() types.ParsedProfile {
	p := types.NewParsedProfile()
	p.PersonalInfo = types.ContactInfo{FullName: "Jane Doe", Email: "jane@x.com", Phone: "555-123-4567"}
	p.Summary = strings.Repeat("Backend engineer. ", 5)
	p.Experience = []types.ExperienceEntry{{JobTitle: "Software Engineer"}}
	p.Education = []types.EducationEntry{{School: "State University"}}
	p.TechnicalSkills = "Go, Python, PostgreSQL, Kubernetes"
	return p
}

func TestAnalyzeScores(t *testing.T) {
	tests := []struct {
		name        string
		profile     func() types.ParsedProfile
		text        string
		wantScore   int
		wantSuggest []string
	}{
		{
			name:      "empty profile",
			profile:   types.NewParsedProfile,
			text:      "",
			wantScore: 0,
			wantSuggest: []string{
				SuggestName, SuggestContact, SuggestSummary, SuggestExperience,
				SuggestSkills, SuggestEducation, SuggestLength,
			},
		},
		{
			name:        "complete profile",
			profile:     completeProfile,
			text:        strings.Repeat("x", 2000),
			wantScore:   95,
			wantSuggest: []string{},
		},
		{
			name:        "complete profile but short text",
			profile:     completeProfile,
			text:        "short",
			wantScore:   85,
			wantSuggest: []string{SuggestLength},
		},
		{
			name: "missing phone and education",
			profile: func() types.ParsedProfile {
				p := completeProfile()
				p.PersonalInfo.Phone = ""
				p.Education = []types.EducationEntry{}
				return p
			},
			text:        strings.Repeat("x", 1500),
			wantScore:   75,
			wantSuggest: []string{SuggestContact, SuggestEducation},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.profile(), tt.text, "")
			assert.Equal(t, tt.wantScore, got.Score)
			assert.Equal(t, tt.wantSuggest, got.Suggestions)
			assert.Nil(t, got.MatchingScore)
			assert.Equal(t, []string{}, got.MatchKeywords)
		})
	}
}

func TestAnalyzeScoreIsBounded(t *testing.T) {
	var total int
	for _, c := range criteria {
		total += c.weight
	}
	assert.LessOrEqual(t, total, MaxScore)

	got := Analyze(completeProfile(), strings.Repeat("y", 3000), "")
	assert.GreaterOrEqual(t, got.Score, 0)
	assert.LessOrEqual(t, got.Score, MaxScore)
}

func TestAnalyzeATSKeywords(t *testing.T) {
	text := "led agile development of a rapid cloud API; database optimization"
	got := Analyze(types.NewParsedProfile(), text, "")
	assert.Equal(t, []string{"development", "agile", "cloud", "api", "database", "optimization"}, got.ATSKeywords)

	got = Analyze(types.NewParsedProfile(), "rapidly", "")
	assert.Empty(t, got.ATSKeywords)

	got = Analyze(types.NewParsedProfile(), "Built APIs over several databases", "")
	assert.Equal(t, []string{"api", "database"}, got.ATSKeywords)
}

func TestAnalyzeWithJobDescription(t *testing.T) {
	got := Analyze(completeProfile(), "Golang engineer with Kubernetes experience", "Looking for Golang and Kubernetes skills")
	require.NotNil(t, got.MatchingScore)
	assert.Equal(t, []string{"golang", "kubernetes"}, got.MatchKeywords)
	assert.Equal(t, 40, *got.MatchingScore)
}
