package logx

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Record is one log event handed to a Formatter.
type Record struct {
	Time   time.Time
	Level  Level
	Msg    string
	Fields Fields
	Err    error
}

// Formatter renders a Record into a single line.
type Formatter interface {
	Format(r Record) string
}

// ConsoleFormatter renders human-readable lines, optionally colored.
type ConsoleFormatter struct {
	Colors bool
}

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorBlue   = "\033[34m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
)

func (f *ConsoleFormatter) levelTag(l Level) string {
	tag := fmt.Sprintf("%-5s", l.String())
	if !f.Colors {
		return tag
	}
	switch l {
	case LevelDebug:
		return colorGray + tag + colorReset
	case LevelInfo:
		return colorBlue + tag + colorReset
	case LevelWarn:
		return colorYellow + tag + colorReset
	default:
		return colorRed + tag + colorReset
	}
}

func (f *ConsoleFormatter) Format(r Record) string {
	var b strings.Builder
	b.WriteString(r.Time.Format("2006-01-02 15:04:05"))
	b.WriteString(" ")
	b.WriteString(f.levelTag(r.Level))
	b.WriteString(" ")
	b.WriteString(r.Msg)

	if len(r.Fields) > 0 {
		keys := make([]string, 0, len(r.Fields))
		for k := range r.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, r.Fields[k])
		}
	}
	return b.String()
}

// JSONFormatter renders one JSON object per line, suitable for log shippers.
type JSONFormatter struct{}

func (f *JSONFormatter) Format(r Record) string {
	payload := make(map[string]any, len(r.Fields)+3)
	for k, v := range r.Fields {
		payload[k] = v
	}
	payload["time"] = r.Time.Format(time.RFC3339Nano)
	payload["level"] = r.Level.String()
	payload["message"] = r.Msg
	if r.Err != nil {
		payload["error"] = r.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// Fields with unmarshalable values fall back to the message only.
		data, _ = json.Marshal(map[string]any{
			"time":    r.Time.Format(time.RFC3339Nano),
			"level":   r.Level.String(),
			"message": r.Msg,
		})
	}
	return string(data)
}
