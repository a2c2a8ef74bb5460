package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats.
const (
	FormatAuto    = "auto"
	FormatConsole = "console"
	FormatJSON    = "json"
)

const logFileName = "reelfinder.log"

// Logger is a zerolog logger that may also own a rotating log file.
type Logger struct {
	zerolog.Logger
	file *lumberjack.Logger
}

// Config holds logger configuration.
type Config struct {
	Level string
	// Format is FormatAuto (human-readable on a terminal, JSON otherwise),
	// FormatConsole or FormatJSON. Empty means FormatAuto.
	Format string
	// Path is a directory; when set, JSON logs are also written to a
	// rotating file inside it.
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool

	// Output replaces stdout.
	Output io.Writer
}

// IsDevBuild reports whether the binary was built by "go run".
func IsDevBuild() bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}
	return strings.Contains(exe, "go-build")
}

// New builds a logger from cfg. Dev builds log at debug or lower.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	level := parseLevel(cfg.Level)
	if IsDevBuild() && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	writer := streamWriter(cfg.Format, out)
	file := openLogFile(cfg)
	if file != nil {
		// zerolog writes JSON; only the stream side is reformatted.
		writer = io.MultiWriter(writer, file)
	}

	return &Logger{
		Logger: zerolog.New(writer).Level(level).With().Timestamp().Logger(),
		file:   file,
	}
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithComponent returns a child logger tagged with component. The child does
// not own the log file.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With().Str("component", component).Logger()}
}

func streamWriter(format string, out io.Writer) io.Writer {
	terminal := isTerminal(out)

	human := false
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatJSON:
	case FormatConsole:
		human = true
	default:
		human = terminal
	}
	if !human {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !terminal}
}

// openLogFile returns nil when no path is set or the directory cannot be
// created; logging then continues on the stream alone.
func openLogFile(cfg Config) *lumberjack.Logger {
	if cfg.Path == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(cfg.Path, logFileName),
		MaxSize:    orDefault(cfg.MaxSizeMB, 10),
		MaxBackups: orDefault(cfg.MaxBackups, 5),
		MaxAge:     orDefault(cfg.MaxAgeDays, 30),
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// parseLevel maps a config level to zerolog, accepting "warning" for warn.
// Unknown levels fall back to info.
func parseLevel(level string) zerolog.Level {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "warning" {
		level = "warn"
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" || parsed == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return parsed
}
