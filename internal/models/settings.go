package models

import "time"

// ServerConfig holds connection settings for the job API.
type ServerConfig struct {
	BaseURL        string        `yaml:"base_url"`
	CSRFToken      string        `yaml:"csrf_token"`
	CSRFTokenFile  string        `yaml:"csrf_token_file"` // watched for changes when set
	SessionCookie  string        `yaml:"session_cookie"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// MonitorConfig holds live monitoring settings.
type MonitorConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	PollTimeout       time.Duration `yaml:"poll_timeout"`
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	RecentWindow      time.Duration `yaml:"recent_window"`
	Autoscroll        bool          `yaml:"autoscroll"`
	SaveTranscripts   bool          `yaml:"save_transcripts"`
}

// SubmitConfig holds defaults for job submission and server-side waiting.
type SubmitConfig struct {
	Tipo         string        `yaml:"tipo"` // "rpa" | "sat"
	MaxWait      time.Duration `yaml:"max_wait"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LoggingConfig holds diagnostic log settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug" | "info" | "warn" | "error"
	File  string `yaml:"file,omitempty"`
}

// Settings represents global application settings.
// This corresponds to ~/.jobwatch/settings.yaml.
type Settings struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Monitor MonitorConfig `yaml:"monitor"`
	Submit  SubmitConfig  `yaml:"submit"`
	Logging LoggingConfig `yaml:"logging"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Server: ServerConfig{
			BaseURL:        "http://localhost:5000",
			RequestTimeout: 30 * time.Second,
		},
		Monitor: MonitorConfig{
			PollInterval:      2 * time.Second,
			PollTimeout:       10 * time.Second,
			HeartbeatInterval: 15 * time.Second,
			RecentWindow:      5 * time.Second,
			Autoscroll:        true,
			SaveTranscripts:   true,
		},
		Submit: SubmitConfig{
			Tipo:         "rpa",
			MaxWait:      300 * time.Second,
			PollInterval: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills zero values left by a partial settings file.
func (s *Settings) ApplyDefaults() {
	d := NewSettings()
	if s.Version == 0 {
		s.Version = d.Version
	}
	if s.Server.BaseURL == "" {
		s.Server.BaseURL = d.Server.BaseURL
	}
	if s.Server.RequestTimeout <= 0 {
		s.Server.RequestTimeout = d.Server.RequestTimeout
	}
	if s.Monitor.PollInterval <= 0 {
		s.Monitor.PollInterval = d.Monitor.PollInterval
	}
	if s.Monitor.PollTimeout <= 0 {
		s.Monitor.PollTimeout = d.Monitor.PollTimeout
	}
	if s.Monitor.HeartbeatInterval <= 0 {
		s.Monitor.HeartbeatInterval = d.Monitor.HeartbeatInterval
	}
	if s.Monitor.RecentWindow <= 0 {
		s.Monitor.RecentWindow = d.Monitor.RecentWindow
	}
	if s.Submit.Tipo == "" {
		s.Submit.Tipo = d.Submit.Tipo
	}
	if s.Submit.MaxWait <= 0 {
		s.Submit.MaxWait = d.Submit.MaxWait
	}
	if s.Submit.PollInterval <= 0 {
		s.Submit.PollInterval = d.Submit.PollInterval
	}
	if s.Logging.Level == "" {
		s.Logging.Level = d.Logging.Level
	}
}
