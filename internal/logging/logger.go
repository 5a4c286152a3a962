// Package logging layers category-scoped loggers on top of zap, the way
// the teacher's cmd/nerd wires a zap.Logger for CLI output and a
// secondary category-based file logger for per-subsystem telemetry. Here
// the categories are this repository's actors.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category scopes a log line to one actor or subsystem.
type Category string

const (
	CategoryWatch      Category = "watch"
	CategoryClassify   Category = "classify"
	CategoryCompile    Category = "compile"
	CategoryVDOM       Category = "vdom"
	CategoryCache      Category = "cache"
	CategoryAddress    Category = "address"
	CategoryWS         Category = "ws"
	CategoryIterative  Category = "iterative"
)

// NewLogger builds the root zap.Logger, mirroring cmd/nerd/main.go's
// PersistentPreRunE: production config by default, debug level under
// --verbose.
func NewLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// For returns a child logger scoped to category, so every log line from
// internal/watch carries category=watch without each call site repeating
// zap.String("category", ...). A nil base yields a nil logger.
func For(base *zap.Logger, category Category) *zap.Logger {
	if base == nil {
		return nil
	}
	return base.With(zap.String("category", string(category)))
}

// categoryFiles layers a secondary per-category file logger under the
// main zap logger, matching the teacher's internal/logging file-per-
// category convention, gated the same way by a debug flag rather than
// always writing to disk.
type categoryFiles struct {
	mu      sync.Mutex
	dir     string
	enabled bool
	files   map[Category]*os.File
}

var global *categoryFiles

// Initialize opens the category log directory under workspace, mirroring
// logging.Initialize(ws) in the teacher's PersistentPreRunE. Call
// CloseAll on shutdown.
func Initialize(workspace string, enabled bool) error {
	dir := filepath.Join(workspace, ".tola", "logs")
	if enabled {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	global = &categoryFiles{dir: dir, enabled: enabled, files: make(map[Category]*os.File)}
	return nil
}

// WriteCategoryLine appends a raw line to <category>.log, used for
// telemetry that shouldn't clutter the terminal zap logger (e.g. every
// debounce flush).
func WriteCategoryLine(category Category, line string) {
	if global == nil || !global.enabled {
		return
	}
	global.mu.Lock()
	defer global.mu.Unlock()

	f, ok := global.files[category]
	if !ok {
		var err error
		f, err = os.OpenFile(filepath.Join(global.dir, string(category)+".log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		global.files[category] = f
	}
	fmt.Fprintln(f, line)
}

// CloseAll closes every open category log file, mirroring
// logging.CloseAll() in the teacher's PersistentPostRun.
func CloseAll() {
	if global == nil {
		return
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	for _, f := range global.files {
		_ = f.Close()
	}
	global.files = make(map[Category]*os.File)
}
