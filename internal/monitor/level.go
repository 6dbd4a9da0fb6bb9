package monitor

import "strings"

// Level is the severity of a log record.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
	LevelDebug   Level = "debug"
)

// InferLevel picks a level from an explicit server field, or from keywords in
// the message when the field is empty. The keyword match is best effort and
// misclassifies messages such as "sem erros".
func InferLevel(explicit, message string) Level {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return normalizeLevel(explicit)
	}

	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "erro"), strings.Contains(msg, "error"):
		return LevelError
	case strings.Contains(msg, "warning"), strings.Contains(msg, "aviso"):
		return LevelWarning
	}
	return LevelInfo
}

func normalizeLevel(s string) Level {
	switch strings.ToLower(s) {
	case "info", "information", "notice":
		return LevelInfo
	case "warning", "warn", "aviso":
		return LevelWarning
	case "error", "erro", "critical", "fatal", "exception":
		return LevelError
	case "success", "sucesso", "ok":
		return LevelSuccess
	case "debug", "trace":
		return LevelDebug
	}
	return LevelInfo
}
