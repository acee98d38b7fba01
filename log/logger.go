package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/op/go-logging"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levelNames = [...]string{"debug", "info", "notice", "warning", "error"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Parse a level from its name.
func ParseLevel(name string) (Level, error) {
	for index, levelName := range levelNames {
		if strings.EqualFold(name, levelName) {
			return Level(index), nil
		}
	}
	return Error, fmt.Errorf("log: unknown level '%s'; supported levels: %s", name, strings.Join(levelNames[:], ", "))
}

// The logger format
var format = logging.MustStringFormatter(
	`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
)

// The internal leveled logger backend plus the verbosity settings that
// must survive a sink change.
var (
	leveledBackend logging.LeveledBackend
	currentLevel   = Notice
	moduleLevels   = map[string]Level{}
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// Create a new named logger.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// Override the backend output sink. Verbosity settings are preserved.
func SetSink(sink io.Writer) {
	backend := logging.NewLogBackend(sink, "", 0)
	backendWithFormatter := logging.NewBackendFormatter(backend, format)
	leveledBackend = logging.AddModuleLevel(backendWithFormatter)
	logging.SetBackend(leveledBackend)

	leveledBackend.SetLevel(backendLevel(currentLevel), "")
	for module, level := range moduleLevels {
		leveledBackend.SetLevel(backendLevel(level), module)
	}
}

// Set the verbosity of all loggers without a module override.
func SetLevel(level Level) {
	currentLevel = level
	leveledBackend.SetLevel(backendLevel(level), "")
}

// Set the verbosity of the loggers created with the given name.
func SetModuleLevel(module string, level Level) {
	moduleLevels[module] = level
	leveledBackend.SetLevel(backendLevel(level), module)
}

func backendLevel(level Level) logging.Level {
	switch level {
	case Debug:
		return logging.DEBUG
	case Info:
		return logging.INFO
	case Notice:
		return logging.NOTICE
	case Warning:
		return logging.WARNING
	}
	return logging.ERROR
}

func init() {
	SetSink(os.Stdout)
}
