package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeimport/internal/ai"
	"resumeimport/internal/config"
	"resumeimport/internal/errors"
	"resumeimport/internal/types"
)

const cliResume = "Jane Doe\njane@x.com\n555-123-4567\nEXPERIENCE\nSoftware Engineer\nAcme Corp\n2019 - 2021"

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgFile := writeTemp(t, dir, "config.yaml", "app:\n  logLevel: error\n")

	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), append([]string{"--config", cfgFile}, args...), &stdout, &stderr)
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	var stdout bytes.Buffer
	require.NoError(t, Execute(context.Background(), []string{"version"}, &stdout, &bytes.Buffer{}))
	assert.Contains(t, stdout.String(), "resumeimport version dev")
}

func TestParseCommandSingleFile(t *testing.T) {
	dir := t.TempDir()
	resume := writeTemp(t, dir, "jane.txt", cliResume)

	out, err := run(t, "parse", "--format", "json", resume)
	require.NoError(t, err)

	var result types.ParseResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, resume, result.Source)
	assert.Equal(t, "rule-based", result.Strategy)
	assert.Equal(t, "Jane Doe", result.Profile.PersonalInfo.FullName)
	assert.Nil(t, result.Analysis.MatchingScore)
}

func TestParseCommandBatchWithJobDescription(t *testing.T) {
	dir := t.TempDir()
	first := writeTemp(t, dir, "jane.txt", cliResume)
	second := writeTemp(t, dir, "john.html", "<h1>John Smith</h1><p>john@x.com</p>")
	jd := writeTemp(t, dir, "job.txt", "Software engineering position at Acme")

	out, err := run(t, "parse", "--format", "json", "--concurrency", "2", "-j", jd, first, second)
	require.NoError(t, err)

	var results []types.ParseResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	assert.Equal(t, "Jane Doe", results[0].Profile.PersonalInfo.FullName)
	assert.Equal(t, "John Smith", results[1].Profile.PersonalInfo.FullName)
	assert.NotNil(t, results[0].Analysis.MatchingScore)
}

func TestParseCommandErrors(t *testing.T) {
	dir := t.TempDir()
	resume := writeTemp(t, dir, "jane.txt", cliResume)

	_, err := run(t, "parse", "--format", "xml", resume)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat), "got %v", err)

	_, err = run(t, "parse", "--concurrency", "0", resume)
	assert.Error(t, err)

	_, err = run(t, "parse", writeTemp(t, dir, "scan.pdf", "%PDF"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnsupportedInput), "got %v", err)

	_, err = run(t, "parse")
	assert.Error(t, err, "at least one file is required")
}

func TestScoreCommand(t *testing.T) {
	dir := t.TempDir()
	resume := writeTemp(t, dir, "jane.txt", cliResume)
	outFile := filepath.Join(dir, "score.md")

	_, err := run(t, "score", "--format", "markdown", "-o", outFile, resume)
	require.NoError(t, err)

	written, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(written), "**Score:** 50/100")
}

func TestSectionsCommand(t *testing.T) {
	dir := t.TempDir()
	resume := writeTemp(t, dir, "jane.txt", cliResume)

	out, err := run(t, "sections", resume)
	require.NoError(t, err)
	assert.Contains(t, out, "[experience] 3 line(s)")
}

func TestServeOptionsApply(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Port = "8080"
	cfg.Server.Host = "localhost"

	(&serveOptions{port: "9090", certFile: "c.pem", keyFile: "k.pem"}).apply(cfg)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, config.TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"}, cfg.Server.TLS)
}

func TestBuildComponentsWithoutAI(t *testing.T) {
	cfg := &config.Config{}
	cfg.AI.Enabled = true

	rt, err := buildComponents(cfg, nil, nil, false)
	require.NoError(t, err)
	assert.Nil(t, rt.ai)
	assert.Equal(t, []string{"rule-based"}, rt.service.Chain().Strategies())
	assert.NoError(t, rt.Close())
}

func TestBuildComponentsBadHeadingsFile(t *testing.T) {
	cfg := &config.Config{}
	cfg.Parser.HeadingsFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := buildComponents(cfg, nil, nil, false)
	assert.Error(t, err)
}

func TestAITrackerWithoutObservability(t *testing.T) {
	track := aiTracker(nil)

	var seen *ai.TokenUsage
	err := track(context.Background(), "extract_profile", func(context.Context) (*ai.TokenUsage, error) {
		seen = &ai.TokenUsage{TotalTokens: 3}
		return seen, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), seen.TotalTokens)
}
