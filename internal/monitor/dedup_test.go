package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func rec(ts, msg string) LogRecord {
	return LogRecord{RawTimestamp: ts, Message: msg, Level: LevelInfo}
}

func TestStoreAdd(t *testing.T) {
	s := NewStore(0)
	assert.True(t, s.Add(rec("t1", "a")))
	assert.False(t, s.Add(rec("t1", "a")))
	assert.True(t, s.Add(rec("t2", "a")))
	assert.True(t, s.Add(rec("t1", "b")))
	assert.False(t, s.Add(rec("t1", "b")))
	assert.Equal(t, 0, s.Len(), "Add does not render")
}

func TestStoreRecencyGuard(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(5 * time.Second)

	assert.True(t, s.Append(rec("t1", "same"), now))
	assert.False(t, s.Append(rec("t2", "same"), now.Add(4*time.Second)))
	assert.True(t, s.Append(rec("t3", "same"), now.Add(5*time.Second)))

	last, ok := s.Last()
	assert.True(t, ok)
	assert.Equal(t, now.Add(5*time.Second), last.RenderedAt)
}

func TestStoreRecencyGuardScansLastTen(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)

	s.Append(rec("", "old"), now)
	for i := 0; i < 10; i++ {
		s.Append(rec("", string(rune('a'+i))), now)
	}
	assert.True(t, s.Append(rec("", "old"), now), "beyond the scanned tail")
}

func TestStoreClearKeepsHistoryAndKeys(t *testing.T) {
	now := time.Now()
	s := NewStore(0)
	r := rec("t1", "a")
	s.Add(r)
	s.Append(r, now)

	s.Clear()
	assert.Equal(t, 0, s.Len())
	_, ok := s.Last()
	assert.False(t, ok)
	assert.False(t, s.Add(r))
	assert.Len(t, s.History(), 1)
}

// Every distinct (timestamp, message) pair is rendered exactly once, whatever
// the delivery order and repetition.
func TestStoreRendersEachKeyOnceProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stamps := rapid.SampledFrom([]string{"", "t1", "t2", "t3"})
		msgs := rapid.SampledFrom([]string{"a", "b", "c", "d"})
		n := rapid.IntRange(0, 60).Draw(t, "n")

		s := NewStore(5 * time.Second)
		now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		distinct := map[Key]bool{}
		for i := 0; i < n; i++ {
			r := rec(stamps.Draw(t, "ts"), msgs.Draw(t, "msg"))
			distinct[r.Key()] = true
			if s.Add(r) {
				s.Append(r, now)
			}
			now = now.Add(time.Duration(rapid.IntRange(5, 30).Draw(t, "gap")) * time.Second)
		}

		rendered := map[Key]int{}
		for _, e := range s.Entries() {
			rendered[e.Key()]++
		}
		if len(rendered) != len(distinct) {
			t.Fatalf("rendered %d keys, want %d", len(rendered), len(distinct))
		}
		for k, c := range rendered {
			if c != 1 {
				t.Fatalf("key %v rendered %d times", k, c)
			}
		}
	})
}
