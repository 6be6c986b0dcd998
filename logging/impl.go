package logging

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// appenderSet is shared by a logger and all of its subloggers, so an appender added to the root
// after subloggers were handed out still receives their entries.
type appenderSet struct {
	mu        sync.RWMutex
	appenders []Appender
}

func (set *appenderSet) add(appender Appender) {
	set.mu.Lock()
	defer set.mu.Unlock()
	set.appenders = append(set.appenders, appender)
}

func (set *appenderSet) snapshot() []Appender {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return set.appenders
}

type impl struct {
	name  string
	level AtomicLevel
	// loc is the zone timestamps are written in; nil keeps the local zone.
	loc *time.Location

	outputs *appenderSet
}

type logEntry struct {
	zapcore.Entry
	fields []zapcore.Field
}

func newImpl(name string, level Level, loc *time.Location, appenders ...Appender) *impl {
	return &impl{
		name:    name,
		level:   NewAtomicLevelAt(level),
		loc:     loc,
		outputs: &appenderSet{appenders: appenders},
	}
}

func (imp *impl) AddAppender(appender Appender) {
	imp.outputs.add(appender)
}

func (imp *impl) SetLevel(level Level) {
	imp.level.Set(level)
}

func (imp *impl) GetLevel() Level {
	return imp.level.Get()
}

// Sublogger starts at the parent's current level and writes to the parent's appenders.
func (imp *impl) Sublogger(subname string) Logger {
	name := subname
	if imp.name != "" {
		name = imp.name + "." + subname
	}
	return &impl{
		name:    name,
		level:   NewAtomicLevelAt(imp.level.Get()),
		loc:     imp.loc,
		outputs: imp.outputs,
	}
}

func (imp *impl) Sync() error {
	var err error
	for _, appender := range imp.outputs.snapshot() {
		err = multierr.Combine(err, appender.Sync())
	}
	return err
}

// newEntry returns nil when level is filtered out. It must be called exactly two frames below the
// public logging method so the recorded caller is the user's code.
func (imp *impl) newEntry(level Level) *logEntry {
	if level < imp.level.Get() {
		return nil
	}
	entry := &logEntry{}
	entry.Time = time.Now()
	if imp.loc != nil {
		entry.Time = entry.Time.In(imp.loc)
	}
	entry.Level = level.AsZap()
	entry.LoggerName = imp.name
	entry.Caller = getCaller()
	return entry
}

func (imp *impl) write(entry *logEntry) {
	for _, appender := range imp.outputs.snapshot() {
		if err := appender.Write(entry.Entry, entry.fields); err != nil {
			fmt.Fprint(os.Stderr, err)
		}
	}
}

func (imp *impl) print(level Level, args []interface{}) {
	if entry := imp.newEntry(level); entry != nil {
		entry.Message = fmt.Sprint(args...)
		imp.write(entry)
	}
}

func (imp *impl) printf(level Level, template string, args []interface{}) {
	if entry := imp.newEntry(level); entry != nil {
		entry.Message = fmt.Sprintf(template, args...)
		imp.write(entry)
	}
}

// printw pairs up keysAndValues as fields. Keys are stringified; values are encoded by zap.
func (imp *impl) printw(level Level, msg string, keysAndValues []interface{}) {
	entry := imp.newEntry(level)
	if entry == nil {
		return
	}
	entry.Message = msg
	entry.fields = make([]zapcore.Field, 0, (len(keysAndValues)+1)/2)
	for i := 0; i < len(keysAndValues); i += 2 {
		key := fmt.Sprint(keysAndValues[i])
		if i+1 < len(keysAndValues) {
			entry.fields = append(entry.fields, zap.Any(key, keysAndValues[i+1]))
			continue
		}
		entry.fields = append(entry.fields, zap.Any(key, errors.New("unpaired log key")))
	}
	imp.write(entry)
}

func (imp *impl) Debug(args ...interface{}) { imp.print(DEBUG, args) }

func (imp *impl) Debugf(template string, args ...interface{}) { imp.printf(DEBUG, template, args) }

func (imp *impl) Debugw(msg string, keysAndValues ...interface{}) {
	imp.printw(DEBUG, msg, keysAndValues)
}

func (imp *impl) Info(args ...interface{}) { imp.print(INFO, args) }

func (imp *impl) Infof(template string, args ...interface{}) { imp.printf(INFO, template, args) }

func (imp *impl) Infow(msg string, keysAndValues ...interface{}) {
	imp.printw(INFO, msg, keysAndValues)
}

func (imp *impl) Warn(args ...interface{}) { imp.print(WARN, args) }

func (imp *impl) Warnf(template string, args ...interface{}) { imp.printf(WARN, template, args) }

func (imp *impl) Warnw(msg string, keysAndValues ...interface{}) {
	imp.printw(WARN, msg, keysAndValues)
}

func (imp *impl) Error(args ...interface{}) { imp.print(ERROR, args) }

func (imp *impl) Errorf(template string, args ...interface{}) { imp.printf(ERROR, template, args) }

func (imp *impl) Errorw(msg string, keysAndValues ...interface{}) {
	imp.printw(ERROR, msg, keysAndValues)
}

// The Fatal methods log at ERROR, which no level filters out, then exit.
func (imp *impl) Fatal(args ...interface{}) {
	imp.print(ERROR, args)
	os.Exit(1)
}

func (imp *impl) Fatalf(template string, args ...interface{}) {
	imp.printf(ERROR, template, args)
	os.Exit(1)
}

func (imp *impl) Fatalw(msg string, keysAndValues ...interface{}) {
	imp.printw(ERROR, msg, keysAndValues)
	os.Exit(1)
}

// getCaller skips itself, newEntry, the print helper and the public method.
func getCaller() zapcore.EntryCaller {
	const skipToLogCaller = 4
	var caller zapcore.EntryCaller
	var ok bool
	caller.PC, caller.File, caller.Line, ok = runtime.Caller(skipToLogCaller)
	if !ok {
		return caller
	}
	caller.Defined = true
	if fn := runtime.FuncForPC(caller.PC); fn != nil {
		caller.Function = fn.Name()
	}
	return caller
}
