package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeimport/internal/types"
)

func TestBuildExperience(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []types.ExperienceEntry
	}{
		{
			name:  "empty bucket",
			lines: nil,
			want:  []types.ExperienceEntry{},
		},
		{
			name:  "title company dates on separate lines",
			lines: []string{"Software Engineer", "Acme Corp", "2019 - 2021", "- Built APIs"},
			want: []types.ExperienceEntry{
				{JobTitle: "Software Engineer", Company: "Acme Corp", StartDate: "2019", EndDate: "2021", Description: "- Built APIs"},
			},
		},
		{
			name: "two roles in order",
			lines: []string{
				"Senior Developer | Globex | Jan 2018 - Dec 2019",
				"- Shipped billing",
				"Worked on payments with the platform group",
				"Lead Engineer - Initech",
				"2020 - Present",
				"- Led migration",
			},
			want: []types.ExperienceEntry{
				{
					JobTitle: "Senior Developer", Company: "Globex", StartDate: "Jan 2018", EndDate: "Dec 2019",
					Description: "- Shipped billing\nWorked on payments with the platform group",
				},
				{JobTitle: "Lead Engineer", Company: "Initech", StartDate: "2020", EndDate: "Present", Description: "- Led migration"},
			},
		},
		{
			name:  "company before title",
			lines: []string{"Acme Corp", "Software Engineer", "2019 - 2021"},
			want: []types.ExperienceEntry{
				{JobTitle: "Software Engineer", Company: "Acme Corp", StartDate: "2019", EndDate: "2021"},
			},
		},
		{
			name:  "title and dates on one line",
			lines: []string{"Data Analyst at Initech 2017 to 2019"},
			want: []types.ExperienceEntry{
				{JobTitle: "Data Analyst", Company: "Initech", StartDate: "2017", EndDate: "2019"},
			},
		},
		{
			name:  "team size line is not a new role",
			lines: []string{"Backend Engineer", "Globex", "Part of a team of 5 engineers"},
			want: []types.ExperienceEntry{
				{JobTitle: "Backend Engineer", Company: "Globex", Description: "Part of a team of 5 engineers"},
			},
		},
		{
			name:  "action line mentioning a role stays in the description",
			lines: []string{"Backend Engineer", "Globex", "Mentored two junior developers"},
			want: []types.ExperienceEntry{
				{JobTitle: "Backend Engineer", Company: "Globex", Description: "Mentored two junior developers"},
			},
		},
		{
			name:  "company named like an ongoing date",
			lines: []string{"Software Engineer", "Current Health", "2020 - Present"},
			want: []types.ExperienceEntry{
				{JobTitle: "Software Engineer", Company: "Current Health", StartDate: "2020", EndDate: "Present"},
			},
		},
		{
			name:  "placeholder only entry is dropped",
			lines: []string{"- random bullet"},
			want:  []types.ExperienceEntry{},
		},
		{
			name:  "placeholder kept when dates are known",
			lines: []string{"2015 - 2016", "- Freelance work for local shops"},
			want: []types.ExperienceEntry{
				{JobTitle: PlaceholderTitle, StartDate: "2015", EndDate: "2016", Description: "- Freelance work for local shops"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildExperience(tt.lines))
		})
	}
}

func TestBuildEducation(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []types.EducationEntry
	}{
		{
			name:  "empty bucket",
			lines: nil,
			want:  []types.EducationEntry{},
		},
		{
			name:  "degree school year",
			lines: []string{"B.Sc Computer Science", "State University", "2019"},
			want:  []types.EducationEntry{{Degree: "B.Sc Computer Science", School: "State University", GradYear: "2019"}},
		},
		{
			name: "two entries with gpa",
			lines: []string{
				"Master of Science in Computer Science",
				"MIT University 2020",
				"Bachelor of Science",
				"State College 2016",
				"GPA: 3.8",
			},
			want: []types.EducationEntry{
				{Degree: "Master of Science in Computer Science", School: "MIT University", GradYear: "2020"},
				{Degree: "Bachelor of Science", School: "State College", GradYear: "2016", GPA: "3.8"},
			},
		},
		{
			name:  "school without degree",
			lines: []string{"Springfield High School (graduated 2012)"},
			want:  []types.EducationEntry{{School: "Springfield High School", GradYear: "2012"}},
		},
		{
			name:  "bare school name after degree",
			lines: []string{"MBA", "Wharton", "2018"},
			want:  []types.EducationEntry{{Degree: "MBA", School: "Wharton", GradYear: "2018"}},
		},
		{
			name:  "second degree before any school",
			lines: []string{"Bachelor of Science in Physics", "Master of Science in Physics", "MIT"},
			want: []types.EducationEntry{
				{Degree: "Bachelor of Science in Physics"},
				{Degree: "Master of Science in Physics", School: "MIT"},
			},
		},
		{
			name:  "repeated degree line stays one entry",
			lines: []string{"MBA", "mba 2018", "Wharton"},
			want:  []types.EducationEntry{{Degree: "MBA", School: "Wharton", GradYear: "2018"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildEducation(tt.lines))
		})
	}
}

func TestBuildProjects(t *testing.T) {
	got := BuildProjects([]string{
		"Resume Parser",
		"- Parses resumes into JSON using regex heuristics",
		"Tech: Go, Cobra",
		"https://github.com/jane/parser",
		"Chat App",
		"Realtime chat for 10k users.",
	})

	require.Len(t, got, 2)
	assert.Equal(t, types.ProjectEntry{
		Name:        "Resume Parser",
		Description: "- Parses resumes into JSON using regex heuristics",
		Tech:        "Go, Cobra",
		Link:        "https://github.com/jane/parser",
	}, got[0])
	assert.Equal(t, "Chat App", got[1].Name)
	assert.Equal(t, "Realtime chat for 10k users.", got[1].Description)
	assert.Equal(t, "Realtime chat for 10k users.", got[1].Achievement)

	assert.Equal(t, []types.ProjectEntry{}, BuildProjects(nil))
}

func TestBuildProjectsDuration(t *testing.T) {
	got := BuildProjects([]string{"Home Lab", "2021 - 2022", "- Built a k8s cluster on Raspberry Pis"})
	require.Len(t, got, 1)
	assert.Equal(t, "2021 - 2022", got[0].Duration)
	assert.Equal(t, "- Built a k8s cluster on Raspberry Pis", got[0].Description)
}

func TestBuildReferences(t *testing.T) {
	got := BuildReferences([]string{
		"John Smith",
		"Engineering Manager",
		"Acme Corp",
		"john@acme.com",
		"555-222-3333",
		"Mary Major",
		"CTO, Initech",
		"mary@initech.io",
	})

	assert.Equal(t, []types.ReferenceEntry{
		{Name: "John Smith", Title: "Engineering Manager", Company: "Acme Corp", Email: "john@acme.com", Phone: "555-222-3333"},
		{Name: "Mary Major", Title: "CTO, Initech", Email: "mary@initech.io"},
	}, got)
}

func TestBuildReferencesOnRequest(t *testing.T) {
	assert.Equal(t, []types.ReferenceEntry{}, BuildReferences([]string{"Available upon request"}))
}
