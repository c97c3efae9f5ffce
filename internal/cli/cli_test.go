package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"profilelens/internal/common"
	"profilelens/internal/config"
	"profilelens/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{App: config.AppConfig{
		DefaultFormat:    "json",
		SupportedFormats: []string{"json", "text", "markdown"},
		MaxFileSize:      1024 * 1024,
		Concurrency:      2,
	}}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		reportConfig = common.CommandConfig{}
	})

	err := Execute(context.Background(), cfg, errors.Discard())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, testConfig(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "profilelens version dev")
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "result.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"score":64,"summary":"Data engineer","keywords":["Go","Spark"],"strengths":[],"improvements":["Add education details"],"suggestions":[]}`), 0600))
	output := filepath.Join(dir, "report.md")

	_, err := run(t, testConfig(), "report", input, "--format", "markdown", "-o", output)
	require.NoError(t, err)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(content), "# LinkedIn Profile Analysis Report")
	assert.Contains(t, string(content), "_Generated on: ")
	assert.Contains(t, string(content), "## Profile Score: 64%")
	assert.Contains(t, string(content), "## Areas for Improvement\n\n- Add education details")
}

func TestReportCommandRejectsUnsupportedFormat(t *testing.T) {
	_, err := run(t, testConfig(), "report", "result.json", "--format", "pdf")
	assert.Error(t, err)
}

func TestReportCommandRejectsInvalidResult(t *testing.T) {
	input := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(input, []byte(`{"score":101}`), 0600))

	_, err := run(t, testConfig(), "report", input, "--format", "json", "-o", filepath.Join(t.TempDir(), "out.json"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
}
