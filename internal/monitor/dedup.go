package monitor

import "time"

const (
	// DefaultRecentWindow is how long an identical message stays suppressed in the view.
	DefaultRecentWindow = 5 * time.Second

	// recentScan is how many trailing records the recency guard inspects.
	recentScan = 10
)

// Store holds the dedup key set and the displayed record sequence of one session.
// It is not safe for concurrent use; the controller owns it.
type Store struct {
	seen    map[Key]struct{}
	entries []LogRecord
	history []LogRecord // every appended record, survives Clear
	window  time.Duration
}

// NewStore creates an empty store. A non-positive window uses DefaultRecentWindow.
func NewStore(window time.Duration) *Store {
	if window <= 0 {
		window = DefaultRecentWindow
	}
	return &Store{
		seen:   make(map[Key]struct{}),
		window: window,
	}
}

// Add records the key of r. It returns false if the key was already seen.
func (s *Store) Add(r LogRecord) bool {
	k := r.Key()
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	return true
}

// Append adds r to the display sequence stamped with now, unless one of the
// last few displayed records carries the same message and was rendered within
// the recent window. It returns whether r was appended.
func (s *Store) Append(r LogRecord, now time.Time) bool {
	start := len(s.entries) - recentScan
	if start < 0 {
		start = 0
	}
	for i := len(s.entries) - 1; i >= start; i-- {
		prev := s.entries[i]
		if prev.Message == r.Message && now.Sub(prev.RenderedAt) < s.window {
			return false
		}
	}
	r.RenderedAt = now
	s.entries = append(s.entries, r)
	s.history = append(s.history, r)
	return true
}

// Clear empties the display. Known keys stay suppressed.
func (s *Store) Clear() {
	s.entries = nil
}

// Entries returns a copy of the displayed records in arrival order.
func (s *Store) Entries() []LogRecord {
	out := make([]LogRecord, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of displayed records.
func (s *Store) Len() int {
	return len(s.entries)
}

// Last returns the most recently displayed record.
func (s *Store) Last() (LogRecord, bool) {
	if len(s.entries) == 0 {
		return LogRecord{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// History returns every record appended during the session, including cleared ones.
func (s *Store) History() []LogRecord {
	out := make([]LogRecord, len(s.history))
	copy(out, s.history)
	return out
}
