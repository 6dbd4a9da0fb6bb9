package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/watchfire-io/jobwatch/internal/models"
)

// Transcript describes a finished monitoring session to persist.
type Transcript struct {
	JobID     string
	ProcessID string
	Operadora string
	Status    string
	StartedAt time.Time
	Lines     []string
}

// WriteLog writes a session transcript to disk with YAML header + log lines.
func WriteLog(t Transcript) (*models.LogEntry, error) {
	dir, err := TranscriptDir(t.ProcessID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create transcript dir: %w", err)
	}

	endedAt := time.Now().UTC()
	logID := fmt.Sprintf("%s-%s", sanitizeName(t.JobID), t.StartedAt.UTC().Format("2006-01-02T15-04-05"))

	entry := &models.LogEntry{
		LogID:     logID,
		JobID:     t.JobID,
		ProcessID: t.ProcessID,
		Operadora: t.Operadora,
		StartedAt: t.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:   endedAt.Format(time.RFC3339),
		Status:    t.Status,
		Lines:     len(t.Lines),
	}

	f, err := os.Create(filepath.Join(dir, logID+".log"))
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "job_id: %s\n", entry.JobID)
	fmt.Fprintf(w, "process_id: %s\n", entry.ProcessID)
	if entry.Operadora != "" {
		fmt.Fprintf(w, "operadora: %s\n", entry.Operadora)
	}
	fmt.Fprintf(w, "started_at: %s\n", entry.StartedAt)
	fmt.Fprintf(w, "ended_at: %s\n", entry.EndedAt)
	fmt.Fprintf(w, "status: %s\n", entry.Status)
	fmt.Fprintf(w, "lines: %d\n", entry.Lines)
	fmt.Fprintln(w, "---")

	for _, line := range t.Lines {
		fmt.Fprintln(w, line)
	}

	return entry, w.Flush()
}

// ListLogs returns transcript metadata (newest first). An empty processID lists
// transcripts of every processo.
func ListLogs(processID string) ([]*models.LogEntry, error) {
	root, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	var dirs []string
	if processID != "" {
		dirs = []string{filepath.Join(root, sanitizeName(processID))}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}

	var logs []*models.LogEntry
	for _, dir := range dirs {
		dirEntries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, e := range dirEntries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
				continue
			}
			entry, err := parseLogHeader(filepath.Join(dir, e.Name()))
			if err != nil {
				continue
			}
			logs = append(logs, entry)
		}
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].StartedAt > logs[j].StartedAt
	})

	return logs, nil
}

// ReadLog reads a specific transcript and returns metadata + content.
func ReadLog(processID, logID string) (*models.LogEntry, string, error) {
	dir, err := TranscriptDir(processID)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(filepath.Join(dir, sanitizeName(logID)+".log"))
	if err != nil {
		return nil, "", fmt.Errorf("log not found: %w", err)
	}

	entry, body := parseLogContent(string(data))
	if entry == nil {
		return nil, "", fmt.Errorf("invalid log format")
	}
	if entry.LogID == "" {
		entry.LogID = logID
	}
	return entry, body, nil
}

func parseLogHeader(path string) (*models.LogEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	entry := &models.LogEntry{}
	inHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			break
		}
		if inHeader {
			parseLogHeaderLine(entry, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	entry.LogID = strings.TrimSuffix(filepath.Base(path), ".log")
	return entry, nil
}

func parseLogContent(content string) (*models.LogEntry, string) {
	lines := strings.Split(content, "\n")
	entry := &models.LogEntry{}
	headerEnd := -1
	inHeader := false

	for i, line := range lines {
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			headerEnd = i
			break
		}
		if inHeader {
			parseLogHeaderLine(entry, line)
		}
	}

	if headerEnd < 0 {
		return nil, ""
	}

	return entry, strings.Join(lines[headerEnd+1:], "\n")
}

func parseLogHeaderLine(entry *models.LogEntry, line string) {
	key, val, ok := strings.Cut(line, ": ")
	if !ok {
		return
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "job_id":
		entry.JobID = val
	case "process_id":
		entry.ProcessID = val
	case "operadora":
		entry.Operadora = val
	case "started_at":
		entry.StartedAt = val
	case "ended_at":
		entry.EndedAt = val
	case "status":
		entry.Status = val
	case "lines":
		fmt.Sscanf(val, "%d", &entry.Lines)
	}
}
