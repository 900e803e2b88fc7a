package common

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resumeimport/internal/errors"
	"resumeimport/internal/utils"
)

// binaryExtensions need an upstream decoder and are rejected outright.
var binaryExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".odt": true, ".rtf": true,
	".png": true, ".jpg": true, ".jpeg": true,
}

// Document is one input file turned into resume text.
type Document struct {
	Source string
	Text   string
}

// FileProcessor handles common file operations
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
}

// NewFileProcessor creates a file processor that rejects inputs larger
// than maxSize bytes. Zero means no limit.
func NewFileProcessor(logger *errors.Logger, maxSize int64) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger, maxSize: maxSize}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	if utils.IsHTMLFile(filename) {
		text, err := utils.ReadDocumentText(file)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeDocumentDecode,
				fmt.Sprintf("Cannot convert HTML document: %s", filename), err)
		}
		return text, nil
	}

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ReadDocument validates filename and returns its resume text. HTML is
// flattened to lines; text formats are returned verbatim.
func (fp *FileProcessor) ReadDocument(filename string) (Document, error) {
	if binaryExtensions[utils.GetFileExtension(filename)] {
		return Document{}, errors.NewValidationError(errors.ErrCodeUnsupportedInput,
			fmt.Sprintf("%s must be converted to text before parsing", filename), nil).
			WithContext("extension", utils.GetFileExtension(filename))
	}

	if err := utils.ValidateInputFile(filename, fp.maxSize); err != nil {
		var tooLarge *utils.FileTooLargeError
		if stderrors.As(err, &tooLarge) {
			return Document{}, errors.NewValidationError(errors.ErrCodeFileTooLarge,
				fmt.Sprintf("Invalid file %s", filename), err)
		}
		return Document{}, errors.NewValidationError("INVALID_INPUT_FILE",
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if !utils.IsSupportedInput(filename) {
		fp.logger.Warn("File may not be a text file", "filename", filename)
	}

	text, err := fp.ReadFile(filename)
	if err != nil {
		return Document{}, err
	}
	if strings.TrimSpace(text) == "" {
		fp.logger.Warn("Input file is empty", "filename", filename)
	}

	return Document{Source: filename, Text: text}, nil
}

// ValidateAndReadFiles validates and reads multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]Document, error) {
	docs := make([]Document, len(filenames))

	for i, filename := range filenames {
		doc, err := fp.ReadDocument(filename)
		if err != nil {
			return nil, err
		}
		docs[i] = doc
	}

	return docs, nil
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
