package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"profilelens/internal/errors"
	"profilelens/internal/types"
	"profilelens/internal/utils"

	"gopkg.in/yaml.v3"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	maxFileSize int64
	logger      *errors.Logger
}

// NewFileProcessor creates a new file processor. maxFileSize <= 0 disables
// the size check.
func NewFileProcessor(maxFileSize int64, logger *errors.Logger) *FileProcessor {
	return &FileProcessor{maxFileSize: maxFileSize, logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return content, nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadFile validates an input file and returns its content
func (fp *FileProcessor) ValidateAndReadFile(filename string) ([]byte, error) {
	if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
		return nil, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if !utils.IsProfileFile(filename) {
		fp.logger.Warn("File extension is not .json, .yaml or .yml, decoding as JSON",
			"filename", filename)
	}

	return fp.ReadFile(filename)
}

// LoadProfile reads a profile from a JSON or YAML file
func (fp *FileProcessor) LoadProfile(filename string) (types.ProfileInput, error) {
	content, err := fp.ValidateAndReadFile(filename)
	if err != nil {
		return types.ProfileInput{}, err
	}

	profile, err := DecodeProfile(content, utils.IsYAMLFile(filename))
	if err != nil {
		return types.ProfileInput{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Cannot parse profile %s", filename), err)
	}
	return profile, nil
}

// LoadAnalysisResult reads a stored analysis result in JSON
func (fp *FileProcessor) LoadAnalysisResult(filename string) (types.AnalysisResult, error) {
	content, err := fp.ValidateAndReadFile(filename)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(content, &result); err != nil {
		return types.AnalysisResult{}, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Cannot parse analysis result %s", filename), err)
	}
	if err := ValidateAnalysisResult(result); err != nil {
		return types.AnalysisResult{}, err
	}
	return result, nil
}

// DecodeProfile parses a profile document. Unknown JSON fields are rejected
// so that misspelled section names are not silently dropped.
func DecodeProfile(content []byte, isYAML bool) (types.ProfileInput, error) {
	var profile types.ProfileInput

	if isYAML {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&profile); err != nil {
			if err == io.EOF {
				return profile, nil
			}
			return types.ProfileInput{}, err
		}
		return profile, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&profile); err != nil {
		return types.ProfileInput{}, err
	}
	return profile, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
