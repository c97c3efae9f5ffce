package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"profilelens/internal/types"
)

// ReportTitle heads every rendered report
const ReportTitle = "LinkedIn Profile Analysis Report"

// generatedLayout matches the date line of the printed report, e.g. "March 05, 2025 14:30"
const generatedLayout = "January 02, 2006 15:04"

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
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalysisReport", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisReport", &AnalysisMarkdownFormatter{})

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
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// FileExtension maps a format to the extension used for downloads
func FileExtension(format string) string {
	switch format {
	case "markdown":
		return "md"
	case "text":
		return "txt"
	default:
		return format
	}
}

// ContentType maps a format to its HTTP media type
func ContentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult, *types.AnalysisResult:
		return "AnalysisResult"
	case types.AnalysisReport, *types.AnalysisReport:
		return "AnalysisReport"
	default:
		return "any"
	}
}

// report normalizes the accepted input types into a report; a bare result has
// no generation time
func report(data any) (types.AnalysisReport, error) {
	switch v := data.(type) {
	case types.AnalysisResult:
		return types.AnalysisReport{Analysis: v}, nil
	case *types.AnalysisResult:
		if v == nil {
			return types.AnalysisReport{}, fmt.Errorf("nil AnalysisResult")
		}
		return types.AnalysisReport{Analysis: *v}, nil
	case types.AnalysisReport:
		return v, nil
	case *types.AnalysisReport:
		if v == nil {
			return types.AnalysisReport{}, fmt.Errorf("nil AnalysisReport")
		}
		return *v, nil
	default:
		return types.AnalysisReport{}, fmt.Errorf("expected AnalysisResult or AnalysisReport, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// AnalysisTextFormatter renders an analysis as plain text
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	rep, err := report(data)
	if err != nil {
		return "", err
	}
	result := rep.Analysis

	var output strings.Builder

	output.WriteString("=== " + strings.ToUpper(ReportTitle) + " ===\n")
	if !rep.GeneratedAt.IsZero() {
		output.WriteString("Generated on: " + rep.GeneratedAt.Format(generatedLayout) + "\n")
	}
	output.WriteString("\n")

	output.WriteString(fmt.Sprintf("Profile Score: %d%%\n\n", result.Score))

	output.WriteString("Summary:\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	writeTextList(&output, "Key Strengths", result.Strengths)
	writeTextList(&output, "Areas for Improvement", result.Improvements)
	writeTextList(&output, "Suggested Keywords", result.Keywords.Slice())
	writeTextList(&output, "Detailed Suggestions", result.Suggestions)

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

func writeTextList(output *strings.Builder, title string, items []string) {
	output.WriteString(title + ":\n")
	if len(items) == 0 {
		output.WriteString("  (none)\n\n")
		return
	}
	for _, item := range items {
		output.WriteString("  - " + item + "\n")
	}
	output.WriteString("\n")
}

// AnalysisMarkdownFormatter renders an analysis as markdown
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	rep, err := report(data)
	if err != nil {
		return "", err
	}
	result := rep.Analysis

	var output strings.Builder

	output.WriteString("# " + ReportTitle + "\n\n")
	if !rep.GeneratedAt.IsZero() {
		output.WriteString("_Generated on: " + rep.GeneratedAt.Format(generatedLayout) + "_\n\n")
	}

	output.WriteString(fmt.Sprintf("## Profile Score: %d%%\n\n", result.Score))

	output.WriteString("## Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	writeMarkdownList(&output, "Key Strengths", result.Strengths)
	writeMarkdownList(&output, "Areas for Improvement", result.Improvements)

	output.WriteString("## Suggested Keywords\n\n")
	if result.Keywords.Len() == 0 {
		output.WriteString("_None_\n\n")
	} else {
		keywords := result.Keywords.Slice()
		for i, k := range keywords {
			keywords[i] = "`" + k + "`"
		}
		output.WriteString(strings.Join(keywords, ", "))
		output.WriteString("\n\n")
	}

	writeMarkdownList(&output, "Detailed Suggestions", result.Suggestions)

	return strings.TrimRight(output.String(), "\n") + "\n", nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

func writeMarkdownList(output *strings.Builder, title string, items []string) {
	output.WriteString("## " + title + "\n\n")
	if len(items) == 0 {
		output.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		output.WriteString("- " + item + "\n")
	}
	output.WriteString("\n")
}
