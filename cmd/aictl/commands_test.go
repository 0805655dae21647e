package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"aictl"}, args...))
	return out.String(), err
}

func TestKindsListsEverySlug(t *testing.T) {
	out, err := runCLI(t, "kinds")
	require.NoError(t, err)
	for _, slug := range []string{"salary-estimate", "interview-questions", "resume-optimization", "outreach-template", "negotiation-strategy"} {
		assert.Contains(t, out, slug)
	}
}

func TestRenderPrintsPrompts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "req.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"jobTitle":"Data Engineer","location":"Lisbon"}`), 0o600))

	out, err := runCLI(t, "render", "--kind", "salary-estimate", "--input", path)
	require.NoError(t, err)
	assert.Contains(t, out, "=== system ===")
	assert.Contains(t, out, "Data Engineer")
	assert.Contains(t, out, "Lisbon")
}

func TestRenderReadsStdinAndReportsValidation(t *testing.T) {
	stdin = strings.NewReader(`{"location":"Lisbon"}`)
	t.Cleanup(func() { stdin = os.Stdin })

	_, err := runCLI(t, "render", "--kind", "salary_estimate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jobTitle")
}

func TestRenderRejectsUnknownKind(t *testing.T) {
	_, err := runCLI(t, "render", "--kind", "horoscope", "--input", "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "horoscope")
}

func TestRenderRejectsNullInputWithResume(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "req.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0o600))

	_, err := runCLI(t, "render", "--kind", "salary-estimate", "--input", path, "--resume", filepath.Join(dir, "cv.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input must be a JSON object")
}
