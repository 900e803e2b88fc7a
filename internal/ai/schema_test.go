package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	appErrors "resumeimport/internal/errors"
)

func TestValidateProfileJSON(t *testing.T) {
	tests := []struct {
		name     string
		document string
		code     string
	}{
		{name: "valid", document: validProfileJSON},
		{
			name:     "minimal",
			document: `{"personalInfo": {"fullName": ""}, "experience": [], "education": []}`,
		},
		{
			name:     "experience entry without title",
			document: `{"personalInfo": {"fullName": "A"}, "experience": [{"company": "X"}], "education": []}`,
			code:     appErrors.ErrCodeSchemaViolation,
		},
		{
			name:     "certifications not strings",
			document: `{"personalInfo": {"fullName": "A"}, "experience": [], "education": [], "certifications": [1, 2]}`,
			code:     appErrors.ErrCodeSchemaViolation,
		},
		{
			name:     "truncated json",
			document: `{"personalInfo": {"fullName": "A"`,
			code:     appErrors.ErrCodeAIResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateProfileJSON(tt.document)
			if tt.code == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestSchemaViolationListsProblems(t *testing.T) {
	err := validateProfileJSON(`{"summary": 3}`)
	appErr, ok := appErrors.As(err)
	require.True(t, ok)

	violations, _ := appErr.Context["violations"].(string)
	assert.Contains(t, violations, "personalInfo")
	assert.Contains(t, violations, "summary")
}

func TestProfileResponseSchemaShape(t *testing.T) {
	schema := profileResponseSchema()

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"personalInfo", "experience", "education"}, schema.Required)
	assert.Equal(t, genai.TypeArray, schema.Properties["experience"].Type)
	assert.Contains(t, schema.Properties["experience"].Items.Properties, "jobTitle")
	assert.Equal(t, genai.TypeString, schema.Properties["languages"].Items.Type)
}
