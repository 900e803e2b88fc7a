package ai

// Prompts holds the system instruction and the user prompt template for
// profile extraction. The user template takes the resume text as its only %s.
type Prompts struct {
	System string
	User   string
}

// DefaultPrompts are used when neither config nor a prompt file overrides them.
var DefaultPrompts = Prompts{
	System: `You are a meticulous resume data extractor. You copy facts, you never write them.

- Only output information that appears in the resume text
- Keep names, titles, companies and dates exactly as written
- Leave a field as an empty string, or a list empty, when the resume does not state it
- Do not summarize experience descriptions; copy the bullet text verbatim, one bullet per line`,

	User: `Extract a structured profile from the resume below.

**Field guidance:**

1. **personalInfo**: fullName, email, phone, address (city/region only), linkedin URL, personal website.
2. **summary**: the candidate's own summary or objective paragraph.
3. **experience**: one entry per position, most recent first, with jobTitle, company,
   startDate, endDate ("Present" when ongoing) and description.
4. **education**: school, degree, gradYear, gpa.
5. **projects**: name, description, tech, duration, achievement, link.
6. **technicalSkills** and **softSkills**: comma-separated strings.
7. **certifications** and **languages**: lists of short strings.
8. **achievements** and **hobbies**: plain text.
9. **references**: name, title, company, phone, email.
10. **additionalInfo**: anything relevant that fits none of the above.

**Resume:**
-----
%s
-----`,
}
