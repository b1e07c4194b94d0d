package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidSource is returned when the dataset file cannot be used
	ErrInvalidSource = errors.New("invalid dataset source")
	// ErrOutputNotWritable is returned when an export target cannot be written
	ErrOutputNotWritable = errors.New("output not writable")
)

// sourceExtensions lists the dataset file types the loader understands
var sourceExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
}

// FileValidator checks dataset sources and export targets before any work
// is done on them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSource checks that path is a readable, non-empty .csv or .xlsx file
func (v *FileValidator) ValidateSource(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Dataset source does not exist",
			slog.String("file", path))
		return fmt.Errorf("%w: %s does not exist", ErrInvalidSource, path)
	}
	if err != nil {
		return fmt.Errorf("%w: stat %s: %w", ErrInvalidSource, path, err)
	}
	if info.IsDir() {
		v.logger.Error("Dataset source is a directory",
			slog.String("path", path))
		return fmt.Errorf("%w: %s is a directory", ErrInvalidSource, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !sourceExtensions[ext] {
		v.logger.Error("Dataset source has an unsupported extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return fmt.Errorf("%w: %s is not a .csv or .xlsx file", ErrInvalidSource, path)
	}

	// Office lock files
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return fmt.Errorf("%w: %s is a temporary spreadsheet", ErrInvalidSource, path)
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidSource, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("Dataset source is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s is not readable: %w", ErrInvalidSource, path, err)
	}
	file.Close()

	v.logger.Debug("Dataset source validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile ensures the parent directory of path exists or can be
// created and accepts new files, and that path itself is not a directory
func (v *FileValidator) ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrOutputNotWritable, path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: create %s: %w", ErrOutputNotWritable, dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s: %w", ErrOutputNotWritable, dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output file validated",
		slog.String("file", path))
	return nil
}
