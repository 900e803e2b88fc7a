package types

// ContactInfo holds the personal details found at the top of a resume
type ContactInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	LinkedIn string `json:"linkedin"`
	Website  string `json:"website"`
}

// ExperienceEntry represents one job in the work history
type ExperienceEntry struct {
	JobTitle    string `json:"jobTitle"`
	Company     string `json:"company"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// EducationEntry represents one academic record
type EducationEntry struct {
	School   string `json:"school"`
	Degree   string `json:"degree"`
	GradYear string `json:"gradYear"`
	GPA      string `json:"gpa"`
}

// ProjectEntry represents one portfolio project
type ProjectEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tech        string `json:"tech"`
	Duration    string `json:"duration"`
	Achievement string `json:"achievement"`
	Link        string `json:"link"`
}

// ReferenceEntry represents one referee
type ReferenceEntry struct {
	Name    string `json:"name"`
	Title   string `json:"title"`
	Company string `json:"company"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// ParsedProfile is the structured result of parsing a resume.
// Slice fields are never nil once produced by NewParsedProfile or EnsureCollections.
type ParsedProfile struct {
	PersonalInfo    ContactInfo       `json:"personalInfo"`
	Summary         string            `json:"summary"`
	Experience      []ExperienceEntry `json:"experience"`
	Education       []EducationEntry  `json:"education"`
	Projects        []ProjectEntry    `json:"projects"`
	TechnicalSkills string            `json:"technicalSkills"`
	SoftSkills      string            `json:"softSkills"`
	Certifications  []string          `json:"certifications"`
	Languages       []string          `json:"languages"`
	Achievements    string            `json:"achievements"`
	Hobbies         string            `json:"hobbies"`
	References      []ReferenceEntry  `json:"references"`
	AdditionalInfo  string            `json:"additionalInfo"`
}

// NewParsedProfile returns an empty profile with every collection allocated.
func NewParsedProfile() ParsedProfile {
	p := ParsedProfile{}
	p.EnsureCollections()
	return p
}

// EnsureCollections replaces nil slices with empty ones so JSON output
// carries [] instead of null.
func (p *ParsedProfile) EnsureCollections() {
	if p.Experience == nil {
		p.Experience = []ExperienceEntry{}
	}
	if p.Education == nil {
		p.Education = []EducationEntry{}
	}
	if p.Projects == nil {
		p.Projects = []ProjectEntry{}
	}
	if p.Certifications == nil {
		p.Certifications = []string{}
	}
	if p.Languages == nil {
		p.Languages = []string{}
	}
	if p.References == nil {
		p.References = []ReferenceEntry{}
	}
}

// SectionKey names a resume section recognized by the segmenter
type SectionKey string

const (
	SectionSummary        SectionKey = "summary"
	SectionExperience     SectionKey = "experience"
	SectionEducation      SectionKey = "education"
	SectionSkills         SectionKey = "skills"
	SectionProjects       SectionKey = "projects"
	SectionCertifications SectionKey = "certifications"
	SectionAchievements   SectionKey = "achievements"
	SectionLanguages      SectionKey = "languages"
	SectionHobbies        SectionKey = "hobbies"
	SectionReferences     SectionKey = "references"
	SectionFallback       SectionKey = "fallback"
)

// AllSections lists every section key in presentation order.
var AllSections = []SectionKey{
	SectionSummary,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionAchievements,
	SectionLanguages,
	SectionHobbies,
	SectionReferences,
	SectionFallback,
}

// Buckets maps each section to the lines assigned to it, in input order
type Buckets map[SectionKey][]string

// QualityAnalysis represents the completeness score of a parsed profile
type QualityAnalysis struct {
	Score         int      `json:"score"`         // 0-100
	Suggestions   []string `json:"suggestions"`   // one per missing or weak category
	ATSKeywords   []string `json:"atsKeywords"`   // common screening keywords present in the text
	MatchingScore *int     `json:"matchingScore"` // only set when a job description was supplied
	MatchKeywords []string `json:"matchKeywords"`
}

// ParseResult is what the parse command and endpoint return
type ParseResult struct {
	RequestID string          `json:"requestId,omitempty"`
	Source    string          `json:"source,omitempty"`
	Strategy  string          `json:"strategy"`
	Profile   ParsedProfile   `json:"profile"`
	Analysis  QualityAnalysis `json:"analysis"`
}

// ParseRequest is the body of POST /parse
type ParseRequest struct {
	Text           string `json:"text"` // may be empty; yields a near-empty profile
	JobDescription string `json:"jobDescription,omitempty"`
	DisableAI      bool   `json:"disableAI,omitempty"`
}

// ScoreRequest is the body of POST /score
type ScoreRequest struct {
	Text           string `json:"text"` // may be empty; yields a near-empty profile
	JobDescription string `json:"jobDescription,omitempty"`
}

// SegmentResult is the debug view of how a document was split into sections
type SegmentResult struct {
	Source   string  `json:"source,omitempty"`
	FullName string  `json:"fullName"`
	Buckets  Buckets `json:"buckets"`
}
