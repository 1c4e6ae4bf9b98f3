// Package logging provides the leveled operator log: colored level tags on
// stderr and plain lines in an optional rotating log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"imgcrush/internal/config"
)

const (
	timeLayout   = "2006-01-02 15:04:05"
	successLevel = "success"
)

// Logger writes leveled lines to a console writer and an optional file sink.
// It is safe for concurrent use by workers.
type Logger struct {
	zl      zerolog.Logger
	console *consoleFilter
	file    *lumberjack.Logger
}

// Level colors follow the tui palette; tui imports processor, which logs,
// so the values are repeated here rather than imported.
var levelStyles = map[string]lipgloss.Style{
	"INFO":    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#88C0D0")),
	"SUCCESS": lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A3BE8C")),
	"WARN":    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EBCB8B")),
	"ERROR":   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#BF616A")),
	"DEBUG":   lipgloss.NewStyle().Foreground(lipgloss.Color("#7A8291")),
}

// NewLogger builds a Logger writing to stderr, colored according to
// cfg.Color, with a file sink at cfg.LogFile when set.
func NewLogger(cfg *config.Config) (*Logger, error) {
	var color bool
	switch cfg.Color {
	case config.ColorAlways:
		color = true
	case config.ColorNever:
		color = false
	default:
		color = isTerminal(os.Stderr) && os.Getenv("NO_COLOR") == "" && strings.ToLower(os.Getenv("TERM")) != "dumb"
	}

	var file *lumberjack.Logger
	if cfg.LogFile != "" {
		if err := checkWritable(cfg.LogFile); err != nil {
			return nil, err
		}
		file = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
	}
	return newLogger(os.Stderr, color, cfg.Verbose, file), nil
}

// New returns an uncolored Logger writing to w with no file sink.
func New(w io.Writer, verbose bool) *Logger {
	return newLogger(w, false, verbose, nil)
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false)
}

func newLogger(out io.Writer, color, verbose bool, file *lumberjack.Logger) *Logger {
	console := &consoleFilter{w: consoleWriter(zerolog.SyncWriter(out), color)}

	var w zerolog.LevelWriter = console
	if file != nil {
		w = zerolog.MultiLevelWriter(console, consoleWriter(file, false))
	}

	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return &Logger{
		zl:      zerolog.New(w).Level(level).With().Timestamp().Logger(),
		console: console,
		file:    file,
	}
}

// consoleWriter renders events as "ts - LEVEL - message", or with a styled
// level tag when color is set.
func consoleWriter(out io.Writer, color bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    !color,
		TimeFormat: timeLayout,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatLevel: func(i interface{}) string {
			level := strings.ToUpper(fmt.Sprint(i))
			if color {
				return levelStyles[level].Render(level)
			}
			return "- " + level + " -"
		},
	}
}

// consoleFilter drops everything below WARN while quiet. It only wraps the
// console; the file sink sees every event.
type consoleFilter struct {
	w     io.Writer
	quiet atomic.Bool
}

func (f *consoleFilter) Write(p []byte) (int, error) {
	return f.w.Write(p)
}

func (f *consoleFilter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	// Success events carry no zerolog level.
	if f.quiet.Load() && (level < zerolog.WarnLevel || level == zerolog.NoLevel) {
		return len(p), nil
	}
	return f.w.Write(p)
}

func checkWritable(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// SetQuiet limits the console to WARN and ERROR while q is true. The file
// sink still receives every line.
func (l *Logger) SetQuiet(q bool) {
	l.console.quiet.Store(q)
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Success logs at SUCCESS level.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Log().Str(zerolog.LevelFieldName, successLevel).Msgf(format, args...)
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Error logs at ERROR level.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Debug logs at DEBUG level only when the logger is verbose.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}
