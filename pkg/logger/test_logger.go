package logger

import (
	"sync"

	"github.com/rs/zerolog"
)

// TestLogger is a logger implementation for testing that captures all log messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	fields   map[string]interface{}
	zerolog  *zerolog.Logger
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	nopLogger := zerolog.Nop()
	return &TestLogger{
		messages: make([]LogMessage, 0),
		fields:   make(map[string]interface{}),
		zerolog:  &nopLogger,
	}
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}

	l.messages = append(l.messages, LogMessage{
		Level:   level,
		Message: msg,
		Fields:  merged,
	})
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// WithField adds a single field to the logger context
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields adds multiple fields to the logger context. Messages logged on
// the returned logger are recorded on the parent so tests can inspect them
// from the root instance.
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &boundTestLogger{parent: l, fields: merged}
}

// WithError adds an error field to the logger context
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// GetZerolog returns a no-op zerolog instance
func (l *TestLogger) GetZerolog() *zerolog.Logger {
	return l.zerolog
}

// Messages returns a copy of all captured messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]LogMessage, len(l.messages))
	copy(out, l.messages)
	return out
}

// HasMessage reports whether a message with the given level and text was logged
func (l *TestLogger) HasMessage(level, msg string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, m := range l.messages {
		if m.Level == level && m.Message == msg {
			return true
		}
	}
	return false
}

// boundTestLogger is a TestLogger view carrying bound fields; messages are
// recorded on the parent so tests can inspect them from the root logger.
type boundTestLogger struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (b *boundTestLogger) logWith(level, msg string, fields map[string]interface{}) {
	merged := make(map[string]interface{}, len(b.fields)+len(fields))
	for k, v := range b.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	b.parent.log(level, msg, merged)
}

func (b *boundTestLogger) Debug(msg string) { b.logWith("DEBUG", msg, nil) }
func (b *boundTestLogger) Info(msg string)  { b.logWith("INFO", msg, nil) }
func (b *boundTestLogger) Warn(msg string)  { b.logWith("WARN", msg, nil) }
func (b *boundTestLogger) Error(msg string) { b.logWith("ERROR", msg, nil) }
func (b *boundTestLogger) Fatal(msg string) { b.logWith("FATAL", msg, nil) }

func (b *boundTestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	b.logWith("DEBUG", msg, fields)
}

func (b *boundTestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	b.logWith("INFO", msg, fields)
}

func (b *boundTestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	b.logWith("WARN", msg, fields)
}

func (b *boundTestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	b.logWith("ERROR", msg, fields)
}

func (b *boundTestLogger) WithField(key string, value interface{}) Logger {
	return b.WithFields(map[string]interface{}{key: value})
}

func (b *boundTestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(b.fields)+len(fields))
	for k, v := range b.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &boundTestLogger{parent: b.parent, fields: merged}
}

func (b *boundTestLogger) WithError(err error) Logger {
	if err == nil {
		return b
	}
	return b.WithField("error", err.Error())
}

func (b *boundTestLogger) GetZerolog() *zerolog.Logger {
	return b.parent.zerolog
}
