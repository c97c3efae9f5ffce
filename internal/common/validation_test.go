package common

import (
	"testing"

	"profilelens/internal/errors"
	"profilelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOutputFormat(t *testing.T) {
	reportFormats := []string{"json", "text", "markdown"}

	tests := []struct {
		name      string
		format    string
		supported []string
		wantErr   string
	}{
		{name: "markdown report", format: "markdown", supported: reportFormats},
		{name: "json report", format: "json", supported: reportFormats},
		{name: "pdf is not rendered", format: "pdf", supported: reportFormats,
			wantErr: "unsupported output format 'pdf'. Supported formats: [json text markdown]"},
		{name: "format names are case sensitive", format: "Markdown", supported: reportFormats,
			wantErr: "unsupported output format 'Markdown'"},
		{name: "empty format", format: "", supported: reportFormats,
			wantErr: "unsupported output format ''"},
		{name: "nothing configured accepts anything", format: "pdf"},
		{name: "restricted to text", format: "json", supported: []string{"text"},
			wantErr: "Supported formats: [text]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOutputFormat(tt.format, tt.supported)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAnalysisResult(t *testing.T) {
	tests := []struct {
		name    string
		score   int
		wantErr bool
	}{
		{name: "zero", score: 0},
		{name: "hundred", score: 100},
		{name: "negative", score: -1, wantErr: true},
		{name: "above range", score: 101, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAnalysisResult(types.AnalysisResult{Score: tt.score})
			if tt.wantErr {
				assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidRequest))
				return
			}
			assert.NoError(t, err)
		})
	}
}
