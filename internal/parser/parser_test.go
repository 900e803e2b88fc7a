package parser

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeimport/internal/types"
)

const structuredResume = "Jane Doe\njane@x.com\n555-123-4567\n\nEXPERIENCE\nSoftware Engineer\nAcme Corp\n2019 - 2021\n- Built APIs\n\nEDUCATION\nB.Sc Computer Science\nState University\n2019"

func TestParseStructuredResume(t *testing.T) {
	profile := Parse(structuredResume)

	assert.Equal(t, "Jane Doe", profile.PersonalInfo.FullName)
	assert.Equal(t, "jane@x.com", profile.PersonalInfo.Email)
	assert.Equal(t, "555-123-4567", profile.PersonalInfo.Phone)
	assert.Empty(t, profile.PersonalInfo.Website)

	require.Len(t, profile.Experience, 1)
	job := profile.Experience[0]
	assert.Equal(t, "Software Engineer", job.JobTitle)
	assert.Equal(t, "Acme Corp", job.Company)
	assert.Equal(t, "2019", job.StartDate)
	assert.Equal(t, "2021", job.EndDate)
	assert.Contains(t, job.Description, "Built APIs")

	require.Len(t, profile.Education, 1)
	edu := profile.Education[0]
	assert.Contains(t, edu.Degree, "B.Sc Computer Science")
	assert.Contains(t, edu.School, "State University")
	assert.Equal(t, "2019", edu.GradYear)

	// contact and name lines before the first heading are not prose
	assert.Empty(t, profile.AdditionalInfo)
	assert.Empty(t, profile.Summary)
}

func TestParseUnstructuredProse(t *testing.T) {
	profile := Parse("Just some plain prose with no structure at all and an email a@b.com")

	assert.Empty(t, profile.Experience)
	assert.Empty(t, profile.Education)
	assert.NotEmpty(t, profile.Summary)
	assert.Equal(t, "a@b.com", profile.PersonalInfo.Email)
	assert.NotEmpty(t, profile.PersonalInfo.FullName)
}

func TestParseEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\n\t\n"} {
		profile := Parse(in)
		assert.Equal(t, types.NewParsedProfile(), profile, "input %q", in)
	}
}

func TestParseNoHeadingsTruncatesSummary(t *testing.T) {
	p := New(Options{SummaryLimit: 20})
	profile := p.Parse(strings.Repeat("word ", 100))
	assert.Equal(t, "word word word word", profile.Summary)
}

func TestParseIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"\x00\x01\x02",
		"@@@@",
		"EXPERIENCE",
		"EXPERIENCE\nEDUCATION\nSKILLS\nPROJECTS\nREFERENCES",
		"- - - -\n* * *\n•••",
		strings.Repeat("Senior Engineer\n", 50),
		"2019 - 2021\n2019 - 2021",
		"\xff\xfe\xfd",
	}

	for _, in := range inputs {
		profile := Parse(in)
		assert.NotNil(t, profile.Experience)
		assert.NotNil(t, profile.Education)
		assert.NotNil(t, profile.Projects)
		assert.NotNil(t, profile.Certifications)
		assert.NotNil(t, profile.Languages)
		assert.NotNil(t, profile.References)
	}
}

func TestParseIsIdempotent(t *testing.T) {
	inputs := []string{structuredResume, fullResume, "", "Just prose a@b.com"}
	for _, in := range inputs {
		assert.Equal(t, Parse(in), Parse(in))
	}
}

func TestParseJSONArraysNeverNull(t *testing.T) {
	data, err := json.Marshal(Parse(""))
	require.NoError(t, err)

	for _, field := range []string{"experience", "education", "projects", "certifications", "languages", "references"} {
		assert.Contains(t, string(data), `"`+field+`":[]`)
	}
	assert.NotContains(t, string(data), "null")
	assert.Contains(t, string(data), `"personalInfo":{"fullName":""`)
}

const fullResume = `# Jane Doe
Austin, TX 78701 | jane@janedoe.dev | (555) 123-4567
linkedin.com/in/janedoe | https://janedoe.dev
Backend engineer building payment platforms for a decade

SUMMARY
Backend engineer with ten years of experience designing reliable services.

WORK EXPERIENCE
Senior Software Engineer | Globex | Jan 2020 - Present
- Led the migration to Go microservices
- Cut p99 latency by 40%
Software Engineer - Initech
2016 - 2019
- Built the billing pipeline

EDUCATION
B.S. Computer Science
University of Texas
2015

TECHNICAL SKILLS
- Go, Python, PostgreSQL
- Soft Skills: Mentoring, Communication

PROJECTS
Resume Parser
- Parses resumes into structured JSON

CERTIFICATIONS
- AWS Certified Solutions Architect

LANGUAGES
English, Spanish

HOBBIES
- Climbing
- Chess

AWARDS
Engineer of the Year 2021

REFERENCES
John Smith
Engineering Manager
john@globex.com`

func TestParseFullResume(t *testing.T) {
	profile := Parse(fullResume)

	info := profile.PersonalInfo
	assert.Equal(t, "Jane Doe", info.FullName)
	assert.Equal(t, "jane@janedoe.dev", info.Email)
	assert.Equal(t, "(555) 123-4567", info.Phone)
	assert.Equal(t, "linkedin.com/in/janedoe", info.LinkedIn)
	assert.Equal(t, "https://janedoe.dev", info.Website)
	assert.Equal(t, "Austin, TX 78701", info.Address)

	assert.Equal(t, "Backend engineer with ten years of experience designing reliable services.", profile.Summary)

	require.Len(t, profile.Experience, 2)
	assert.Equal(t, "Senior Software Engineer", profile.Experience[0].JobTitle)
	assert.Equal(t, "Globex", profile.Experience[0].Company)
	assert.Equal(t, "Jan 2020", profile.Experience[0].StartDate)
	assert.Equal(t, "Present", profile.Experience[0].EndDate)
	assert.Equal(t, "Software Engineer", profile.Experience[1].JobTitle)
	assert.Equal(t, "Initech", profile.Experience[1].Company)
	assert.Equal(t, "2016", profile.Experience[1].StartDate)

	require.Len(t, profile.Education, 1)
	assert.Equal(t, "University of Texas", profile.Education[0].School)
	assert.Equal(t, "2015", profile.Education[0].GradYear)

	assert.Equal(t, "Go, Python, PostgreSQL", profile.TechnicalSkills)
	assert.Equal(t, "Mentoring, Communication", profile.SoftSkills)
	require.Len(t, profile.Projects, 1)
	assert.Equal(t, "Resume Parser", profile.Projects[0].Name)
	assert.Equal(t, []string{"AWS Certified Solutions Architect"}, profile.Certifications)
	assert.Equal(t, []string{"English", "Spanish"}, profile.Languages)
	assert.Equal(t, "Climbing, Chess", profile.Hobbies)
	assert.Equal(t, "Engineer of the Year 2021", profile.Achievements)
	require.Len(t, profile.References, 1)
	assert.Equal(t, "Engineering Manager", profile.References[0].Title)
	assert.Equal(t, "Backend engineer building payment platforms for a decade", profile.AdditionalInfo)
}

func TestParseSectionIsolation(t *testing.T) {
	profile := Parse(fullResume)

	for _, job := range profile.Experience {
		assert.NotContains(t, job.Description, "University")
		assert.NotContains(t, job.Description, "Computer Science")
	}
	for _, edu := range profile.Education {
		assert.NotContains(t, edu.School, "Globex")
		assert.NotContains(t, edu.Degree, "billing")
	}
}

func TestIntroProseBecomesSummary(t *testing.T) {
	profile := Parse("Jane Doe\nSeasoned backend engineer building payment systems\nRemote only\nEXPERIENCE\nEngineer\nAcme")
	assert.Equal(t, "Seasoned backend engineer building payment systems", profile.Summary)
	assert.Equal(t, "Remote only", profile.AdditionalInfo)
}

func TestParseDropsControlCharacters(t *testing.T) {
	profile := Parse("\x00garbage ||| @@@ 1234 ---")
	assert.NotContains(t, profile.PersonalInfo.FullName, "\x00")
	assert.NotContains(t, profile.Summary, "\x00")
}

func TestSegment(t *testing.T) {
	result := New(Options{}).Segment(structuredResume)

	assert.Equal(t, "Jane Doe", result.FullName)
	assert.Equal(t, []string{"Software Engineer", "Acme Corp", "2019 - 2021", "- Built APIs"}, result.Buckets[types.SectionExperience])
	assert.Equal(t, []string{"B.Sc Computer Science", "State University", "2019"}, result.Buckets[types.SectionEducation])
	assert.Empty(t, result.Buckets[types.SectionFallback])
	assert.Len(t, result.Buckets, len(types.AllSections))
}

func TestSegmentLines(t *testing.T) {
	lines := []string{"Jane Doe", "jane@x.com", "Open to relocation", "SKILLS", "Go, SQL"}
	buckets := Segment(lines, "Jane Doe")

	assert.Equal(t, []string{"Open to relocation"}, buckets[types.SectionFallback])
	assert.Equal(t, []string{"Go, SQL"}, buckets[types.SectionSkills])
	assert.Equal(t, []string{}, buckets[types.SectionSummary])
}

func TestSetHeadingsAppliesToLaterCalls(t *testing.T) {
	p := New(Options{})
	text := "Jane Doe\nINTERNSHIPS\nSoftware Engineer Intern\nAcme Corp"

	assert.Empty(t, p.Parse(text).Experience)

	p.SetHeadings(p.Headings().WithAliases(map[types.SectionKey][]string{
		types.SectionExperience: {"internships"},
	}))
	require.Len(t, p.Parse(text).Experience, 1)
}

func TestParserConcurrentUse(t *testing.T) {
	p := New(Options{})
	want := p.Parse(fullResume)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, p.Parse(fullResume))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.SetHeadings(DefaultHeadingTable())
	}()
	wg.Wait()
}

func BenchmarkParse(b *testing.B) {
	for b.Loop() {
		Parse(fullResume)
	}
}
