package requirements

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// LoaderConfig configures requirement-set loading.
type LoaderConfig struct {
	// Extensions lists the file extensions to load
	Extensions []string

	// MaxFileSize is the maximum size of a single file in bytes
	MaxFileSize int64

	// SkipHidden skips dot files and directories
	SkipHidden bool

	// Strict reports unsupported rules as problems
	Strict bool

	// SchemaValidation checks each rule against its wire schema
	SchemaValidation bool
}

// DefaultLoaderConfig returns the default loader configuration.
func DefaultLoaderConfig() *LoaderConfig {
	return &LoaderConfig{
		Extensions:  []string{".yaml", ".yml", ".json"},
		MaxFileSize: 1024 * 1024, // 1MB
		SkipHidden:  true,
	}
}

// Loader reads requirement sets from the file system.
type Loader struct {
	config *LoaderConfig
	logger *slog.Logger
}

// NewLoader creates a loader. A nil config uses DefaultLoaderConfig.
func NewLoader(config *LoaderConfig, logger *slog.Logger) *Loader {
	if config == nil {
		config = DefaultLoaderConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		config: config,
		logger: logger.With("component", "requirements.loader"),
	}
}

// LoadFile loads a requirement set with the default loader.
func LoadFile(path string) (*Set, error) {
	return NewLoader(nil, nil).LoadFile(path)
}

// LoadFile loads one requirement-set file.
func (l *Loader) LoadFile(path string) (*Set, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{FilePath: path, Message: "file not found", Cause: err}
		}
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > l.config.MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), l.config.MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	set, err := decodeSet(data, path, l.config)
	if err != nil {
		return nil, err
	}

	for _, p := range set.Problems {
		l.logger.Warn("Requirement quarantined",
			"set", set.ID,
			"requirement", p.NodeID,
			"path", p.Err.Path,
			"error", p.Err.Message,
		)
	}

	return set, nil
}

// LoadDir loads every requirement-set file under dir, sorted by path. Files
// that fail are collected in an *ErrorList; the sets that loaded are still
// returned.
func (l *Loader) LoadDir(dir string) ([]*Set, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to access directory", Cause: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{FilePath: dir, Message: "not a directory"}
	}

	files, err := l.collectFiles(dir)
	if err != nil {
		return nil, err
	}

	var sets []*Set
	errList := &ErrorList{}
	for _, path := range files {
		set, err := l.LoadFile(path)
		if err != nil {
			l.logger.Error("Failed to load requirement set", "path", path, "error", err)
			errList.Add(err)
			continue
		}
		sets = append(sets, set)
	}

	l.logger.Debug("Loaded requirement sets", "dir", dir, "count", len(sets), "failed", len(errList.Errors))
	return sets, errList.ToError()
}

func (l *Loader) collectFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if l.config.SkipHidden && strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !l.hasValidExtension(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}

	sort.Strings(files)
	return files, nil
}

func (l *Loader) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range l.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}
