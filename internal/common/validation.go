package common

import (
	"fmt"
	"slices"

	"profilelens/internal/errors"
	"profilelens/internal/types"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateAnalysisResult checks a result received from outside the pipeline,
// such as the body of a report request
func ValidateAnalysisResult(result types.AnalysisResult) error {
	if err := validate.Struct(result); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Invalid analysis result", err)
	}
	return nil
}
