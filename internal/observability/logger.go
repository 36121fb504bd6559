package observability

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger: структурный логгер с вызовами вида Info(msg, "key", value, ...)
type Logger struct {
	entry  *logrus.Entry
	closer io.Closer
}

type Options struct {
	LogPath    string
	LogLevel   string
	Format     string // "json" или "text"
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// NewLogger пишет в stdout и, если задан LogPath, в ротируемый файл
func NewLogger(opts Options) (*Logger, error) {
	base := logrus.New()

	level := logrus.InfoLevel
	if opts.LogLevel != "" {
		parsed, err := logrus.ParseLevel(opts.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
		}
		level = parsed
	}
	base.SetLevel(level)

	if opts.Format == "json" {
		base.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05"})
	} else {
		base.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	l := &Logger{}
	if opts.LogPath == "" {
		base.SetOutput(os.Stdout)
	} else {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.LogPath,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
			Compress:   opts.Compress,
		}
		base.SetOutput(io.MultiWriter(os.Stdout, rotator))
		l.closer = rotator
	}

	l.entry = logrus.NewEntry(base)
	return l, nil
}

// NewNopLogger для тестов: всё уходит в io.Discard
func NewNopLogger() *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	return &Logger{entry: logrus.NewEntry(base)}
}

// With возвращает логгер с постоянными полями
func (l *Logger) With(fields ...interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(toFields(fields)), closer: l.closer}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Debug(msg)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Info(msg)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Warn(msg)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.entry.WithFields(toFields(fields)).Error(msg)
}

// Close закрывает файл ротации, если он открыт
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

func toFields(kv []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if i+1 >= len(kv) {
			fields[key] = "(missing)"
			break
		}
		fields[key] = kv[i+1]
	}
	return fields
}
