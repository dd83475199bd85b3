package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	mu      sync.Mutex
	logDir  = "logs"
	level   = logrus.InfoLevel
	loggers = make(map[string]*logrus.Logger)
)

// Setup configures the default logger and the directory used by Component.
// Call it once at startup, before any component logger is created.
func Setup(dir string, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	logDir = dir
	level = logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}

	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	for _, l := range loggers {
		l.SetLevel(level)
	}
}

// Component returns the named logger. Each component appends to its own
// timestamped log file under the log directory and mirrors to stdout, so
// searcher, analyzer and server activity stay separately greppable.
// Loggers are shared across calls with the same name.
func Component(name string) *logrus.Logger {
	mu.Lock()
	defer mu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		DisableColors:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	l.SetOutput(componentWriter(name))

	loggers[name] = l
	return l
}

// componentWriter opens the append-only log file for a component. File
// problems degrade to stdout-only logging rather than failing startup.
func componentWriter(name string) io.Writer {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		logrus.WithError(err).Warnf("Could not create log directory %s", logDir)
		return os.Stdout
	}

	path := filepath.Join(logDir, name+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logrus.WithError(err).Warnf("Could not open log file %s", path)
		return os.Stdout
	}

	return io.MultiWriter(os.Stdout, f)
}
