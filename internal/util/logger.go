package util

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var ErrLogNotInitialized = errors.New("log object is not initialized yet")

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

// TrackerLogger buffers log events through a channel so handlers never
// block on file writes.
type TrackerLogger struct {
	logBuffer   chan leveledEntry
	handle      *os.File
	wg          *sync.WaitGroup
	initialized bool
	zapLogger   *zap.Logger
	level       int
}

type leveledEntry struct {
	level int
	msg   string
}

func (t *TrackerLogger) Init(folder, logFileName string, level int) error {
	if err := CheckAndCreateFolder(folder); err != nil {
		return err
	}

	var err error
	t.handle, err = os.OpenFile(folder+string(os.PathSeparator)+logFileName,
		os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	t.level = level
	t.wg = new(sync.WaitGroup)
	t.logBuffer = make(chan leveledEntry, LOG_BUFFER_SIZE)
	t.zapInit()

	t.wg.Add(1)
	go t.writer()

	t.initialized = true
	return nil
}

func (t *TrackerLogger) zapInit() {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.AddSync(t.handle),
		zapLevel(t.level),
	)
	t.zapLogger = zap.New(core)
}

func zapLevel(level int) zapcore.Level {
	switch level {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (t *TrackerLogger) writer() {
	for entry := range t.logBuffer {
		switch entry.level {
		case LOG_LEVEL_ERROR:
			t.zapLogger.Error(entry.msg)
		case LOG_LEVEL_WARN:
			t.zapLogger.Warn(entry.msg)
		case LOG_LEVEL_DEBUG:
			t.zapLogger.Debug(entry.msg)
		default:
			t.zapLogger.Info(entry.msg)
		}
	}
	t.wg.Done()
}

// LogEvent accepts an optional leading level constant followed by the
// message parts. Without a level it logs at INFO.
func (t *TrackerLogger) LogEvent(v ...interface{}) error {
	if !t.initialized {
		return ErrLogNotInitialized
	}
	if len(v) == 0 {
		return nil
	}

	level := LOG_LEVEL_INFO
	if lvl, ok := v[0].(int); ok && lvl >= LOG_LEVEL_ERROR && lvl <= LOG_LEVEL_DEBUG {
		level = lvl
		v = v[1:]
	}

	msg := fmt.Sprintln(v...)
	t.logBuffer <- leveledEntry{level: level, msg: msg[:len(msg)-1]}
	return nil
}

func (t *TrackerLogger) DeInit() {
	if !t.initialized {
		return
	}
	t.initialized = false
	close(t.logBuffer)
	t.wg.Wait()
	t.zapLogger.Sync()
	t.handle.Close()
}

func CheckAndCreateFolder(folderWithPath string) error {
	_, err := os.Stat(folderWithPath)
	if os.IsNotExist(err) {
		return os.MkdirAll(folderWithPath, 0755)
	}
	return err
}
