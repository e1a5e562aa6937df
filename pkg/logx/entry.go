package logx

import "fmt"

// Entry accumulates fields before emitting a single log line.
type Entry struct {
	logger *Logger
	fields Fields
	err    error
}

func newEntry(l *Logger) *Entry {
	return &Entry{logger: l, fields: make(Fields)}
}

// WithField adds one field. Chainable.
func (e *Entry) WithField(key string, value any) *Entry {
	e.fields[key] = value
	return e
}

// WithFields merges fields into the entry. Chainable.
func (e *Entry) WithFields(fields Fields) *Entry {
	for k, v := range fields {
		e.fields[k] = v
	}
	return e
}

// WithError records err and mirrors it into the "error" field. Chainable.
func (e *Entry) WithError(err error) *Entry {
	e.err = err
	if err != nil {
		e.fields["error"] = err.Error()
	}
	return e
}

func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields, e.err) }
func (e *Entry) Info(msg string)  { e.logger.log(LevelInfo, msg, e.fields, e.err) }
func (e *Entry) Warn(msg string)  { e.logger.log(LevelWarn, msg, e.fields, e.err) }
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields, e.err) }

func (e *Entry) Debugf(format string, args ...any) { e.Debug(fmt.Sprintf(format, args...)) }
func (e *Entry) Infof(format string, args ...any)  { e.Info(fmt.Sprintf(format, args...)) }
func (e *Entry) Warnf(format string, args ...any)  { e.Warn(fmt.Sprintf(format, args...)) }
func (e *Entry) Errorf(format string, args ...any) { e.Error(fmt.Sprintf(format, args...)) }
