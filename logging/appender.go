package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// DefaultTimeFormatStr is the default time format string for log appenders.
const DefaultTimeFormatStr = "2006-01-02T15:04:05.000Z0700"

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender will create human readable lines from log events and write them to the desired
// output sync. E.g: stdout or a file.
type ConsoleAppender struct {
	mu     sync.Mutex
	writer io.Writer
}

// NewStdoutAppender creates a new appender that writes to stdout.
func NewStdoutAppender() *ConsoleAppender {
	return &ConsoleAppender{writer: os.Stdout}
}

// NewWriterAppender creates a new appender that writes to the input writer.
func NewWriterAppender(writer io.Writer) *ConsoleAppender {
	return &ConsoleAppender{writer: writer}
}

// NewFileAppender creates a new appender that writes to the given file, rotating it once it grows
// past `maxSizeMB` megabytes. At most `maxBackups` rotated files are kept.
func NewFileAppender(filename string, maxSizeMB, maxBackups int) *ConsoleAppender {
	return &ConsoleAppender{writer: &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}}
}

// Write outputs the log entry to the underlying stream.
func (appender *ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	line, err := formatEntry(entry, fields)

	appender.mu.Lock()
	defer appender.mu.Unlock()
	if _, writeErr := fmt.Fprintln(appender.writer, line); writeErr != nil {
		return writeErr
	}
	return err
}

// Sync flushes file backed outputs. Writers without a `Sync` method are unbuffered.
func (appender *ConsoleAppender) Sync() error {
	if syncer, ok := appender.writer.(interface{ Sync() error }); ok {
		return syncer.Sync()
	}
	return nil
}

// Close releases any file handle held by the appender.
func (appender *ConsoleAppender) Close() error {
	if closer, ok := appender.writer.(io.Closer); ok && appender.writer != os.Stdout {
		return closer.Close()
	}
	return nil
}

// formatEntry renders a tab separated line: time, level, logger name, caller, message and, when
// present, the fields as a json object.
func formatEntry(entry zapcore.Entry, fields []zapcore.Field) (string, error) {
	const maxLength = 10
	toPrint := make([]string, 0, maxLength)
	toPrint = append(toPrint, entry.Time.Format(DefaultTimeFormatStr))

	toPrint = append(toPrint, strings.ToUpper(entry.Level.String()))
	if entry.LoggerName != "" {
		toPrint = append(toPrint, entry.LoggerName)
	}
	if entry.Caller.Defined {
		toPrint = append(toPrint, callerToString(&entry.Caller))
	}
	toPrint = append(toPrint, entry.Message)
	if len(fields) == 0 {
		return strings.Join(toPrint, "\t"), nil
	}

	// Use zap's json encoder which will encode our slice of fields in-order. As opposed to the
	// random iteration order of a map. Call it with an empty Entry object such that only the fields
	// become "map-ified".
	jsonEncoder := zapcore.NewJSONEncoder(zapcore.EncoderConfig{SkipLineEnding: true})
	buf, err := jsonEncoder.EncodeEntry(zapcore.Entry{}, fields)
	if err != nil {
		return strings.Join(toPrint, "\t"), err
	}
	toPrint = append(toPrint, string(buf.Bytes()))
	return strings.Join(toPrint, "\t"), nil
}

// callerToString returns e.g: "logging/impl_test.go:36".
func callerToString(caller *zapcore.EntryCaller) string {
	// The file returned by `runtime.Caller` is a full path and always contains '/' to separate
	// directories. Including on windows. We only want to keep the `<package>/<file>` part of the
	// path. We use a stateful lambda to count back two '/' runes.
	cnt := 0
	idx := strings.LastIndexFunc(caller.File, func(rn rune) bool {
		if rn == '/' {
			cnt++
		}

		if cnt == 2 {
			return true
		}

		return false
	})

	// If idx >= 0, then we add 1 to trim the leading '/'.
	// If idx == -1 (not found), we add 1 to return the entire file.
	return fmt.Sprintf("%s:%d", caller.File[idx+1:], caller.Line)
}
