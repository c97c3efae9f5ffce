package formatters

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"profilelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() types.AnalysisResult {
	return types.AnalysisResult{
		Score:        84,
		Summary:      "Engineering leader with platform experience.",
		Keywords:     types.NewKeywordSet("go", "leadership"),
		Strengths:    []string{"Strong leadership and management experience"},
		Improvements: []string{"Add mentoring or teaching experience"},
		Suggestions:  []string{"Consider adding relevant professional certifications"},
	}
}

func TestFormatterRegistry(t *testing.T) {
	registry := NewFormatterRegistry()
	result := sampleResult()

	tests := []struct {
		name     string
		data     any
		format   string
		contains []string
		wantErr  bool
	}{
		{
			name:     "json result",
			data:     result,
			format:   "json",
			contains: []string{`"score": 84`, `"keywords": [`, `"leadership"`},
		},
		{
			name:   "text result",
			data:   result,
			format: "text",
			contains: []string{
				"=== LINKEDIN PROFILE ANALYSIS REPORT ===",
				"Profile Score: 84%",
				"Key Strengths:\n  - Strong leadership and management experience",
				"Areas for Improvement:\n  - Add mentoring or teaching experience",
				"Suggested Keywords:\n  - go\n  - leadership",
			},
		},
		{
			name:   "markdown pointer",
			data:   &result,
			format: "markdown",
			contains: []string{
				"# LinkedIn Profile Analysis Report",
				"## Profile Score: 84%",
				"## Summary\n\nEngineering leader with platform experience.",
				"`go`, `leadership`",
				"## Detailed Suggestions\n\n- Consider adding relevant professional certifications",
			},
		},
		{
			name:    "unknown format",
			data:    result,
			format:  "pdf",
			wantErr: true,
		},
		{
			name:    "text for unsupported type",
			data:    map[string]string{"a": "b"},
			format:  "text",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
		})
	}
}

func TestSectionOrder(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleResult(), "markdown")
	require.NoError(t, err)

	order := []string{"## Profile Score", "## Summary", "## Key Strengths", "## Areas for Improvement", "## Suggested Keywords", "## Detailed Suggestions"}
	last := -1
	for _, heading := range order {
		idx := strings.Index(out, heading)
		require.GreaterOrEqual(t, idx, 0, heading)
		assert.Greater(t, idx, last, heading)
		last = idx
	}
}

func TestReportIncludesGenerationTime(t *testing.T) {
	rep := types.AnalysisReport{
		GeneratedAt: time.Date(2025, time.March, 5, 14, 30, 0, 0, time.UTC),
		Analysis:    sampleResult(),
	}
	registry := NewFormatterRegistry()

	text, err := registry.Format(rep, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Generated on: March 05, 2025 14:30")

	md, err := registry.Format(&rep, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "_Generated on: March 05, 2025 14:30_")

	raw, err := registry.Format(rep, "json")
	require.NoError(t, err)
	var decoded types.AnalysisReport
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, 84, decoded.Analysis.Score)
	assert.True(t, decoded.Analysis.Keywords.Contains("go"))
}

func TestEmptyListsRender(t *testing.T) {
	out, err := NewFormatterRegistry().Format(types.AnalysisResult{Summary: "x"}, "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Key Strengths:\n  (none)")
	assert.NotContains(t, out, "Generated on")
}

func TestFileExtensionAndContentType(t *testing.T) {
	assert.Equal(t, "md", FileExtension("markdown"))
	assert.Equal(t, "txt", FileExtension("text"))
	assert.Equal(t, "json", FileExtension("json"))
	assert.Equal(t, "application/json", ContentType("json"))
	assert.True(t, strings.HasPrefix(ContentType("markdown"), "text/markdown"))
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}
