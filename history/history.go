// Package history keeps the bounded, navigable log of executed commands
// for one session.
package history

// DefaultDisplayLimit is how many entries the history command shows.
const DefaultDisplayLimit = 50

// DefaultRetention is how many entries are kept in memory for
// arrow-key navigation before the oldest are evicted.
const DefaultRetention = 200

type Entry struct {
	Seq  int
	Line string
}

// Ring retains the most recent entries in execution order. The cursor
// starts past-the-end (no selection); Up moves toward older entries and
// pins at the oldest, Down past the newest clears the selection.
type Ring struct {
	retention int
	entries   []Entry
	cursor    int
	seq       int
}

func New(retention int) *Ring {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ring{
		retention: retention,
	}
}

// Record appends a line, evicting the oldest entry when past the
// retention cap, and resets the cursor.
func (r *Ring) Record(line string) {
	r.seq++
	r.entries = append(r.entries, Entry{Seq: r.seq, Line: line})
	if len(r.entries) > r.retention {
		r.entries = r.entries[len(r.entries)-r.retention:]
	}
	r.ResetCursor()
}

func (r *Ring) Len() int {
	return len(r.entries)
}

// ResetCursor moves the cursor past-the-end, deselecting any entry.
func (r *Ring) ResetCursor() {
	r.cursor = len(r.entries)
}

// Up moves the cursor one step toward the oldest entry and returns the
// selected line. At the oldest entry it stays put and returns the same
// line again. Returns false if the history is empty.
func (r *Ring) Up() (string, bool) {
	if len(r.entries) == 0 {
		return "", false
	}
	if r.cursor > 0 {
		r.cursor--
	}
	return r.entries[r.cursor].Line, true
}

// Down moves the cursor one step toward the newest entry. Moving past
// the newest entry returns false, meaning "clear the input line", and
// resets the cursor to unselected.
func (r *Ring) Down() (string, bool) {
	if r.cursor >= len(r.entries) {
		return "", false
	}
	r.cursor++
	if r.cursor >= len(r.entries) {
		r.ResetCursor()
		return "", false
	}
	return r.entries[r.cursor].Line, true
}

// List returns the most recent limit entries, oldest first. An empty
// history returns nil so callers can report it distinctly.
func (r *Ring) List(limit int) []Entry {
	if len(r.entries) == 0 {
		return nil
	}
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]Entry, limit)
	copy(out, r.entries[len(r.entries)-limit:])
	return out
}
