package models

// LogEntry represents metadata for a saved monitoring transcript.
type LogEntry struct {
	LogID     string `yaml:"log_id"`
	JobID     string `yaml:"job_id"`
	ProcessID string `yaml:"process_id"`
	Operadora string `yaml:"operadora,omitempty"`
	StartedAt string `yaml:"started_at"`
	EndedAt   string `yaml:"ended_at"`
	Status    string `yaml:"status"`
	Lines     int    `yaml:"lines"`
}
