package cli

import (
	"fmt"
	"time"

	"profilelens/internal/common"
	"profilelens/internal/types"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [analysis-result-file]",
	Short: "Render a stored analysis result as a report",
	Long: `Render an analysis result saved with "analyze --format json" as a report
stamped with the current time. Markdown and text reports follow the section order
Profile Score, Summary, Key Strengths, Areas for Improvement, Suggested Keywords
and Detailed Suggestions.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if reportConfig.OutputFormat == "" {
			reportConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(reportConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runReport,
}

var reportConfig common.CommandConfig

func init() {
	reportCmd.Flags().StringVarP(&reportConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	reportCmd.Flags().StringVar(&reportConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	result, err := common.NewFileProcessor(cfg.App.MaxFileSize, logger).LoadAnalysisResult(args[0])
	if err != nil {
		return fmt.Errorf("failed to load analysis result: %w", err)
	}

	report := types.AnalysisReport{GeneratedAt: time.Now(), Analysis: result}
	return common.NewOutputHandler(logger).HandleOutput(report, reportConfig)
}
