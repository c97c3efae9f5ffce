package cli

import (
	"fmt"
	"os"

	"profilelens/internal/common"
	"profilelens/internal/pipeline"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [profile-file...]",
	Short: "Analyze one or more profiles",
	Long: `Analyze LinkedIn-style profiles stored as JSON or YAML files with the fields
headline, summary, experience, skills and education.

The analysis includes:
- A 0-100 profile score
- A generated summary
- Suggested keywords
- Strengths, areas for improvement and detailed suggestions

Several files are analyzed concurrently. Use --interactive to type a profile in.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if analyzeInteractive {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		// Apply default format if not specified
		if analyzeConfig.OutputFormat == "" {
			analyzeConfig.OutputFormat = cfg.App.DefaultFormat
		}
		if analyzeConcurrency <= 0 {
			analyzeConcurrency = cfg.App.Concurrency
		}
		// Validate format against supported formats
		return common.ValidateOutputFormat(analyzeConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runAnalyze,
}

var (
	analyzeConfig      common.CommandConfig
	analyzeConcurrency int
	analyzeInteractive bool
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	analyzeCmd.Flags().StringVar(&analyzeConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")
	analyzeCmd.Flags().IntVarP(&analyzeConcurrency, "concurrency", "c", 0, "Profiles analyzed at once (default from config)")
	analyzeCmd.Flags().BoolVarP(&analyzeInteractive, "interactive", "i", false, "Prompt for the profile fields instead of reading files")

	_ = analyzeCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return getConfigFromContext(cmd.Context()).App.SupportedFormats, cobra.ShellCompDirectiveNoFileComp
	})
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	om, shutdown, err := startObservability(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer shutdown()

	orchestrator, _, err := pipeline.NewFromConfig(ctx, cfg.Inference, om.GetMetrics(), logger)
	if err != nil {
		return fmt.Errorf("failed to create analysis pipeline: %w", err)
	}

	outputHandler := common.NewOutputHandler(logger)

	if analyzeInteractive {
		profile, err := common.PromptProfile(os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		result, err := orchestrator.AnalyzeProfile(ctx, profile)
		if err != nil {
			return fmt.Errorf("failed to analyze profile: %w", err)
		}
		return outputHandler.HandleOutput(result, analyzeConfig)
	}

	logger.Info("Starting profile analysis",
		"files", len(args),
		"output_format", analyzeConfig.OutputFormat,
		"concurrency", analyzeConcurrency)

	fileProcessor := common.NewFileProcessor(cfg.App.MaxFileSize, logger)
	err = common.RunAnalyzeCommand(ctx, logger, orchestrator, fileProcessor, outputHandler,
		analyzeConfig, args, analyzeConcurrency)
	if err != nil {
		return fmt.Errorf("failed to analyze profiles: %w", err)
	}

	logger.Info("Profile analysis completed successfully")
	return nil
}
