package chat

import (
	"container/list"
	"time"

	"github.com/jwebster45206/mystery-engine/pkg/textmatch"
)

// DefaultCapacity is how many entries a Log keeps before evicting.
const DefaultCapacity = 50

// Speaker names used for lines that do not come from an NPC.
const (
	SpeakerInvestigator = "investigator"
	SpeakerSystem       = "system"
)

// Entry is one line of dialogue as it was shown to the player.
type Entry struct {
	Speaker   string    `json:"speaker"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Log is a chronological, capacity-bounded conversation history. New
// entries go to the tail; the head is evicted once capacity is exceeded.
// It is not safe for concurrent use.
type Log struct {
	entries  *list.List
	capacity int
	now      func() time.Time
}

// NewLog returns an empty log. A capacity <= 0 uses DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		entries:  list.New(),
		capacity: capacity,
		now:      time.Now,
	}
}

// SetClock replaces the timestamp source.
func (l *Log) SetClock(now func() time.Time) {
	l.now = now
}

// Append records a line and evicts the oldest one if the log is over capacity.
func (l *Log) Append(speaker, message string) Entry {
	e := Entry{Speaker: speaker, Message: message, Timestamp: l.now()}
	l.entries.PushBack(e)
	if l.entries.Len() > l.capacity {
		l.entries.Remove(l.entries.Front())
	}
	return e
}

// Len is the number of entries held.
func (l *Log) Len() int {
	return l.entries.Len()
}

// Capacity is the maximum number of entries held.
func (l *Log) Capacity() int {
	return l.capacity
}

// Entries returns every entry, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, 0, l.entries.Len())
	for el := l.entries.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(Entry))
	}
	return out
}

// Last returns up to n of the most recent entries, oldest first.
func (l *Log) Last(n int) []Entry {
	if n <= 0 {
		return []Entry{}
	}
	n = min(n, l.entries.Len())
	out := make([]Entry, n)
	el := l.entries.Back()
	for i := n - 1; i >= 0; i-- {
		out[i] = el.Value.(Entry)
		el = el.Prev()
	}
	return out
}

// FindByKeywords returns, oldest first, every entry whose message contains
// any of the keywords, ignoring case. No keywords means no matches.
func (l *Log) FindByKeywords(keywords ...string) []Entry {
	matches := []Entry{}
	if len(keywords) == 0 {
		return matches
	}
	for el := l.entries.Front(); el != nil; el = el.Next() {
		e := el.Value.(Entry)
		if textmatch.ContainsAny(e.Message, keywords) {
			matches = append(matches, e)
		}
	}
	return matches
}
