package monitor

import (
	"strconv"
	"strings"
	"time"

	"github.com/watchfire-io/jobwatch/internal/api"
)

// Source tells where a record came from.
type Source string

const (
	SourceStream    Source = "stream"
	SourcePoll      Source = "poll"
	SourceLocal     Source = "local"
	SourceHeartbeat Source = "heartbeat"
)

// LogRecord is one line of the session log.
type LogRecord struct {
	Timestamp    time.Time // server time when parseable, else capture time
	RawTimestamp string    // as delivered; part of the dedup key
	Level        Level
	Message      string
	Source       Source
	RenderedAt   time.Time // set when appended to the view
}

// Key identifies a logical log event across channels.
type Key struct {
	Timestamp string
	Message   string
}

// Key returns the dedup key of r.
func (r LogRecord) Key() Key {
	return Key{Timestamp: r.RawTimestamp, Message: r.Message}
}

// ServerRecord converts a wire log entry into a record.
func ServerRecord(e api.LogEntry, src Source, now time.Time) LogRecord {
	raw := string(e.Timestamp)
	return LogRecord{
		Timestamp:    ParseTimestamp(raw, now),
		RawTimestamp: raw,
		Level:        InferLevel(e.Level, e.Message),
		Message:      e.Message,
		Source:       src,
	}
}

// LocalRecord builds a client-side record stamped with now.
func LocalRecord(level Level, message string, now time.Time) LogRecord {
	return LogRecord{
		Timestamp: now,
		Level:     level,
		Message:   message,
		Source:    SourceLocal,
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05,999",
}

// ParseTimestamp parses the formats the server emits: RFC 3339, naive ISO
// 8601 (read as local time) and Unix seconds or milliseconds. It returns
// fallback when raw is empty or unparseable.
func ParseTimestamp(raw string, fallback time.Time) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f > 0 {
		if f > 1e12 {
			return time.UnixMilli(int64(f))
		}
		sec := int64(f)
		return time.Unix(sec, int64((f-float64(sec))*1e9))
	}
	return fallback
}

// FormatElapsed renders a duration as "Xm Ys".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return strconv.Itoa(total/60) + "m " + strconv.Itoa(total%60) + "s"
}

// String renders r as a single log line.
func (r LogRecord) String() string {
	return "[" + r.Timestamp.Local().Format("15:04:05") + "] " + strings.ToUpper(string(r.Level)) + " " + r.Message
}
