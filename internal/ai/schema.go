package ai

import (
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
	"google.golang.org/genai"

	"resumeimport/internal/errors"
)

// profileResponseSchema constrains the model to the ParsedProfile JSON shape.
func profileResponseSchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	strList := func() *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: str()}
	}
	object := func(fields ...string) *genai.Schema {
		props := make(map[string]*genai.Schema, len(fields))
		for _, f := range fields {
			props[f] = str()
		}
		return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: fields}
	}
	list := func(item *genai.Schema) *genai.Schema {
		return &genai.Schema{Type: genai.TypeArray, Items: item}
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"personalInfo":    object("fullName", "email", "phone", "address", "linkedin", "website"),
			"summary":         str(),
			"experience":      list(object("jobTitle", "company", "startDate", "endDate", "description")),
			"education":       list(object("school", "degree", "gradYear", "gpa")),
			"projects":        list(object("name", "description", "tech", "duration", "achievement", "link")),
			"technicalSkills": str(),
			"softSkills":      str(),
			"certifications":  strList(),
			"languages":       strList(),
			"achievements":    str(),
			"hobbies":         str(),
			"references":      list(object("name", "title", "company", "phone", "email")),
			"additionalInfo":  str(),
		},
		Required: []string{"personalInfo", "experience", "education"},
	}
}

// profileJSONSchema re-checks the model output before it is decoded. The
// response schema is a request hint; this is the contract.
const profileJSONSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["personalInfo", "experience", "education"],
  "definitions": {
    "strings": {"type": "array", "items": {"type": "string"}}
  },
  "properties": {
    "personalInfo": {
      "type": "object",
      "required": ["fullName"],
      "properties": {
        "fullName": {"type": "string"},
        "email":    {"type": "string"},
        "phone":    {"type": "string"},
        "address":  {"type": "string"},
        "linkedin": {"type": "string"},
        "website":  {"type": "string"}
      }
    },
    "summary": {"type": "string"},
    "experience": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["jobTitle"],
        "properties": {
          "jobTitle":    {"type": "string"},
          "company":     {"type": "string"},
          "startDate":   {"type": "string"},
          "endDate":     {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "education": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "school":   {"type": "string"},
          "degree":   {"type": "string"},
          "gradYear": {"type": "string"},
          "gpa":      {"type": "string"}
        }
      }
    },
    "projects": {
      "type": "array",
      "items": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
    },
    "technicalSkills": {"type": "string"},
    "softSkills":      {"type": "string"},
    "certifications":  {"$ref": "#/definitions/strings"},
    "languages":       {"$ref": "#/definitions/strings"},
    "achievements":    {"type": "string"},
    "hobbies":         {"type": "string"},
    "references": {
      "type": "array",
      "items": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}}}
    },
    "additionalInfo": {"type": "string"}
  }
}`

var compiledProfileSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(profileJSONSchema))
})

// validateProfileJSON returns a SCHEMA_VIOLATION error listing every
// violation, or nil when the document conforms.
func validateProfileJSON(document string) error {
	schema, err := compiledProfileSchema()
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSchemaViolation, "profile schema does not compile", err)
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		return errors.NewAIError(errors.ErrCodeAIResponse, "AI response is not valid JSON", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, v := range result.Errors() {
		violations = append(violations, v.String())
	}
	return errors.NewAIError(errors.ErrCodeSchemaViolation, "AI response does not match the profile schema", nil).
		WithContext("violations", strings.Join(violations, "; "))
}
