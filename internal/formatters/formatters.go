package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumeimport/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ParseResult", &ParseTextFormatter{})
	registry.RegisterFormatter("markdown", "ParseResult", &ParseMarkdownFormatter{})
	registry.RegisterFormatter("text", "ParseResults", &batchFormatter{format: "text", each: &ParseTextFormatter{}})
	registry.RegisterFormatter("markdown", "ParseResults", &batchFormatter{format: "markdown", each: &ParseMarkdownFormatter{}})
	registry.RegisterFormatter("text", "QualityAnalysis", &QualityTextFormatter{})
	registry.RegisterFormatter("markdown", "QualityAnalysis", &QualityMarkdownFormatter{})
	registry.RegisterFormatter("text", "SegmentResult", &SegmentTextFormatter{})
	registry.RegisterFormatter("markdown", "SegmentResult", &SegmentMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ParseResult:
		return "ParseResult"
	case []types.ParseResult:
		return "ParseResults"
	case types.QualityAnalysis:
		return "QualityAnalysis"
	case types.SegmentResult:
		return "SegmentResult"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ParseTextFormatter renders a parsed profile as plain text
type ParseTextFormatter struct{}

func (ptf *ParseTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseResult)
	if !ok {
		return "", fmt.Errorf("expected ParseResult, got %T", data)
	}

	var output strings.Builder
	p := result.Profile

	output.WriteString("=== PARSED PROFILE ===\n")
	if result.Source != "" {
		fmt.Fprintf(&output, "Source: %s\n", result.Source)
	}
	fmt.Fprintf(&output, "Strategy: %s\n\n", result.Strategy)

	output.WriteString("=== CONTACT ===\n")
	writeTextField(&output, "Name", p.PersonalInfo.FullName)
	writeTextField(&output, "Email", p.PersonalInfo.Email)
	writeTextField(&output, "Phone", p.PersonalInfo.Phone)
	writeTextField(&output, "Address", p.PersonalInfo.Address)
	writeTextField(&output, "LinkedIn", p.PersonalInfo.LinkedIn)
	writeTextField(&output, "Website", p.PersonalInfo.Website)
	output.WriteString("\n")

	if p.Summary != "" {
		output.WriteString("=== SUMMARY ===\n")
		output.WriteString(p.Summary)
		output.WriteString("\n\n")
	}

	if len(p.Experience) > 0 {
		output.WriteString("=== EXPERIENCE ===\n")
		for i, e := range p.Experience {
			fmt.Fprintf(&output, "%d. %s\n", i+1, joinNonEmpty(" at ", e.JobTitle, e.Company))
			if dates := joinNonEmpty(" - ", e.StartDate, e.EndDate); dates != "" {
				fmt.Fprintf(&output, "   %s\n", dates)
			}
			if e.Description != "" {
				fmt.Fprintf(&output, "   %s\n", e.Description)
			}
		}
		output.WriteString("\n")
	}

	if len(p.Education) > 0 {
		output.WriteString("=== EDUCATION ===\n")
		for i, e := range p.Education {
			fmt.Fprintf(&output, "%d. %s\n", i+1, joinNonEmpty(", ", e.Degree, e.School))
			if e.GradYear != "" {
				fmt.Fprintf(&output, "   Graduated: %s\n", e.GradYear)
			}
			if e.GPA != "" {
				fmt.Fprintf(&output, "   GPA: %s\n", e.GPA)
			}
		}
		output.WriteString("\n")
	}

	if len(p.Projects) > 0 {
		output.WriteString("=== PROJECTS ===\n")
		for i, pr := range p.Projects {
			fmt.Fprintf(&output, "%d. %s\n", i+1, pr.Name)
			for _, line := range []string{pr.Description, pr.Tech, pr.Duration, pr.Achievement, pr.Link} {
				if line != "" {
					fmt.Fprintf(&output, "   %s\n", line)
				}
			}
		}
		output.WriteString("\n")
	}

	writeTextBlock(&output, "TECHNICAL SKILLS", p.TechnicalSkills)
	writeTextBlock(&output, "SOFT SKILLS", p.SoftSkills)
	writeTextBlock(&output, "CERTIFICATIONS", strings.Join(p.Certifications, "\n"))
	writeTextBlock(&output, "LANGUAGES", strings.Join(p.Languages, ", "))
	writeTextBlock(&output, "ACHIEVEMENTS", p.Achievements)
	writeTextBlock(&output, "HOBBIES", p.Hobbies)

	if len(p.References) > 0 {
		output.WriteString("=== REFERENCES ===\n")
		for i, r := range p.References {
			fmt.Fprintf(&output, "%d. %s\n", i+1, joinNonEmpty(", ", r.Name, r.Title, r.Company))
			if contact := joinNonEmpty(" / ", r.Phone, r.Email); contact != "" {
				fmt.Fprintf(&output, "   %s\n", contact)
			}
		}
		output.WriteString("\n")
	}

	writeTextBlock(&output, "ADDITIONAL INFORMATION", p.AdditionalInfo)

	quality, _ := (&QualityTextFormatter{}).Format(result.Analysis)
	output.WriteString(quality)

	return output.String(), nil
}

func (ptf *ParseTextFormatter) SupportedType() string {
	return "ParseResult"
}

// ParseMarkdownFormatter renders a parsed profile as markdown
type ParseMarkdownFormatter struct{}

func (pmf *ParseMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ParseResult)
	if !ok {
		return "", fmt.Errorf("expected ParseResult, got %T", data)
	}

	var output strings.Builder
	p := result.Profile

	title := p.PersonalInfo.FullName
	if title == "" {
		title = "Parsed Profile"
	}
	fmt.Fprintf(&output, "# %s\n\n", title)
	if result.Source != "" {
		fmt.Fprintf(&output, "_Source: %s, strategy: %s_\n\n", result.Source, result.Strategy)
	} else {
		fmt.Fprintf(&output, "_Strategy: %s_\n\n", result.Strategy)
	}

	output.WriteString("## Contact\n\n")
	writeMarkdownField(&output, "Email", p.PersonalInfo.Email)
	writeMarkdownField(&output, "Phone", p.PersonalInfo.Phone)
	writeMarkdownField(&output, "Address", p.PersonalInfo.Address)
	writeMarkdownField(&output, "LinkedIn", p.PersonalInfo.LinkedIn)
	writeMarkdownField(&output, "Website", p.PersonalInfo.Website)
	output.WriteString("\n")

	writeMarkdownBlock(&output, "Summary", p.Summary)

	if len(p.Experience) > 0 {
		output.WriteString("## Experience\n\n")
		for _, e := range p.Experience {
			fmt.Fprintf(&output, "### %s\n\n", joinNonEmpty(" at ", e.JobTitle, e.Company))
			if dates := joinNonEmpty(" - ", e.StartDate, e.EndDate); dates != "" {
				fmt.Fprintf(&output, "_%s_\n\n", dates)
			}
			if e.Description != "" {
				output.WriteString(e.Description)
				output.WriteString("\n\n")
			}
		}
	}

	if len(p.Education) > 0 {
		output.WriteString("## Education\n\n")
		for _, e := range p.Education {
			fmt.Fprintf(&output, "- **%s**", joinNonEmpty(", ", e.Degree, e.School))
			if extra := joinNonEmpty(", ", e.GradYear, gpa(e.GPA)); extra != "" {
				fmt.Fprintf(&output, " (%s)", extra)
			}
			output.WriteString("\n")
		}
		output.WriteString("\n")
	}

	if len(p.Projects) > 0 {
		output.WriteString("## Projects\n\n")
		for _, pr := range p.Projects {
			fmt.Fprintf(&output, "### %s\n\n", pr.Name)
			writeMarkdownField(&output, "Description", pr.Description)
			writeMarkdownField(&output, "Tech", pr.Tech)
			writeMarkdownField(&output, "Duration", pr.Duration)
			writeMarkdownField(&output, "Achievement", pr.Achievement)
			writeMarkdownField(&output, "Link", pr.Link)
			output.WriteString("\n")
		}
	}

	writeMarkdownBlock(&output, "Technical Skills", p.TechnicalSkills)
	writeMarkdownBlock(&output, "Soft Skills", p.SoftSkills)
	writeMarkdownList(&output, "Certifications", p.Certifications)
	writeMarkdownList(&output, "Languages", p.Languages)
	writeMarkdownBlock(&output, "Achievements", p.Achievements)
	writeMarkdownBlock(&output, "Hobbies", p.Hobbies)

	if len(p.References) > 0 {
		output.WriteString("## References\n\n")
		for _, r := range p.References {
			fmt.Fprintf(&output, "- %s\n", joinNonEmpty(", ", r.Name, r.Title, r.Company, r.Phone, r.Email))
		}
		output.WriteString("\n")
	}

	writeMarkdownBlock(&output, "Additional Information", p.AdditionalInfo)

	quality, _ := (&QualityMarkdownFormatter{}).Format(result.Analysis)
	output.WriteString(strings.Replace(quality, "# Quality Analysis", "## Quality Analysis", 1))

	return output.String(), nil
}

func (pmf *ParseMarkdownFormatter) SupportedType() string {
	return "ParseResult"
}

// batchFormatter renders several parse results one after another
type batchFormatter struct {
	format string
	each   Formatter
}

func (bf *batchFormatter) Format(data any) (string, error) {
	results, ok := data.([]types.ParseResult)
	if !ok {
		return "", fmt.Errorf("expected []ParseResult, got %T", data)
	}

	separator := "\n" + strings.Repeat("-", 40) + "\n\n"
	if bf.format == "markdown" {
		separator = "\n---\n\n"
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		s, err := bf.each.Format(r)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, separator), nil
}

func (bf *batchFormatter) SupportedType() string {
	return "ParseResults"
}

// QualityTextFormatter handles text formatting for quality analysis
type QualityTextFormatter struct{}

func (qtf *QualityTextFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.QualityAnalysis)
	if !ok {
		return "", fmt.Errorf("expected QualityAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== QUALITY ANALYSIS ===\n")
	fmt.Fprintf(&output, "Score: %d/100\n", analysis.Score)
	if analysis.MatchingScore != nil {
		fmt.Fprintf(&output, "Job match: %d/100\n", *analysis.MatchingScore)
	}
	output.WriteString("\n")

	if len(analysis.Suggestions) > 0 {
		output.WriteString("Suggestions:\n")
		for _, s := range analysis.Suggestions {
			fmt.Fprintf(&output, "  - %s\n", s)
		}
		output.WriteString("\n")
	}

	if len(analysis.ATSKeywords) > 0 {
		fmt.Fprintf(&output, "ATS keywords: %s\n", strings.Join(analysis.ATSKeywords, ", "))
	}
	if len(analysis.MatchKeywords) > 0 {
		fmt.Fprintf(&output, "Matched keywords: %s\n", strings.Join(analysis.MatchKeywords, ", "))
	}

	return output.String(), nil
}

func (qtf *QualityTextFormatter) SupportedType() string {
	return "QualityAnalysis"
}

// QualityMarkdownFormatter handles markdown formatting for quality analysis
type QualityMarkdownFormatter struct{}

func (qmf *QualityMarkdownFormatter) Format(data any) (string, error) {
	analysis, ok := data.(types.QualityAnalysis)
	if !ok {
		return "", fmt.Errorf("expected QualityAnalysis, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Quality Analysis\n\n")
	fmt.Fprintf(&output, "**Score:** %d/100\n\n", analysis.Score)
	if analysis.MatchingScore != nil {
		fmt.Fprintf(&output, "**Job match:** %d/100\n\n", *analysis.MatchingScore)
	}

	if len(analysis.Suggestions) > 0 {
		output.WriteString("### Suggestions\n\n")
		for _, s := range analysis.Suggestions {
			fmt.Fprintf(&output, "- %s\n", s)
		}
		output.WriteString("\n")
	}

	if len(analysis.ATSKeywords) > 0 {
		fmt.Fprintf(&output, "**ATS keywords:** %s\n\n", strings.Join(analysis.ATSKeywords, ", "))
	}
	if len(analysis.MatchKeywords) > 0 {
		fmt.Fprintf(&output, "**Matched keywords:** %s\n\n", strings.Join(analysis.MatchKeywords, ", "))
	}

	return output.String(), nil
}

func (qmf *QualityMarkdownFormatter) SupportedType() string {
	return "QualityAnalysis"
}

// SegmentTextFormatter prints each non-empty section bucket
type SegmentTextFormatter struct{}

func (stf *SegmentTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SegmentResult)
	if !ok {
		return "", fmt.Errorf("expected SegmentResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== SECTIONS ===\n")
	if result.Source != "" {
		fmt.Fprintf(&output, "Source: %s\n", result.Source)
	}
	writeTextField(&output, "Name", result.FullName)
	output.WriteString("\n")

	for _, key := range types.AllSections {
		lines := result.Buckets[key]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&output, "[%s] %d line(s)\n", key, len(lines))
		for _, line := range lines {
			fmt.Fprintf(&output, "  %s\n", line)
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (stf *SegmentTextFormatter) SupportedType() string {
	return "SegmentResult"
}

// SegmentMarkdownFormatter prints each non-empty section bucket as markdown
type SegmentMarkdownFormatter struct{}

func (smf *SegmentMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.SegmentResult)
	if !ok {
		return "", fmt.Errorf("expected SegmentResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Sections\n\n")
	writeMarkdownField(&output, "Source", result.Source)
	writeMarkdownField(&output, "Name", result.FullName)
	output.WriteString("\n")

	for _, key := range types.AllSections {
		lines := result.Buckets[key]
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&output, "## %s\n\n", key)
		for _, line := range lines {
			fmt.Fprintf(&output, "    %s\n", line)
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (smf *SegmentMarkdownFormatter) SupportedType() string {
	return "SegmentResult"
}

func writeTextField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func writeTextBlock(b *strings.Builder, title, body string) {
	if body == "" {
		return
	}
	fmt.Fprintf(b, "=== %s ===\n%s\n\n", title, body)
}

func writeMarkdownField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "- **%s:** %s\n", label, value)
	}
}

func writeMarkdownBlock(b *strings.Builder, title, body string) {
	if body == "" {
		return
	}
	fmt.Fprintf(b, "## %s\n\n%s\n\n", title, body)
}

func writeMarkdownList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func gpa(v string) string {
	if v == "" {
		return ""
	}
	return "GPA " + v
}

// GlobalRegistry is the registry used by the CLI output handler
var GlobalRegistry = NewFormatterRegistry()
