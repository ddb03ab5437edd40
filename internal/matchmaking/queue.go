// internal/matchmaking/queue.go
// In-memory waiting queue. Not safe for concurrent use on its own;
// the matchmaking service serializes every access under its lock.

package matchmaking

type Queue struct {
	entries map[string]*QueueEntry
	order   []string // userIDs in insertion order, joinedAt ascending
}

func NewQueue() *Queue {
	return &Queue{
		entries: make(map[string]*QueueEntry),
	}
}

// Add upserts an entry keyed by userID. Re-adding an existing user
// overwrites the entry but keeps its place in line.
func (q *Queue) Add(entry *QueueEntry) {
	if entry.Status == "" {
		entry.Status = StatusWaiting
	}
	if _, exists := q.entries[entry.UserID]; !exists {
		q.order = append(q.order, entry.UserID)
	}
	q.entries[entry.UserID] = entry
}

// Remove deletes an entry; no-op when absent
func (q *Queue) Remove(userID string) {
	if _, exists := q.entries[userID]; !exists {
		return
	}
	delete(q.entries, userID)
	for i, id := range q.order {
		if id == userID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
}

// Contains reports whether the user has a queue entry
func (q *Queue) Contains(userID string) bool {
	_, exists := q.entries[userID]
	return exists
}

// Get returns the entry for a user, if any
func (q *Queue) Get(userID string) (*QueueEntry, bool) {
	entry, exists := q.entries[userID]
	return entry, exists
}

// Snapshot returns the waiting entries ordered by joinedAt ascending
func (q *Queue) Snapshot() []*QueueEntry {
	waiting := make([]*QueueEntry, 0, len(q.order))
	for _, id := range q.order {
		if entry := q.entries[id]; entry != nil && entry.Status == StatusWaiting {
			waiting = append(waiting, entry)
		}
	}
	return waiting
}

// Len returns the total number of entries, pending ones included
func (q *Queue) Len() int {
	return len(q.entries)
}

// Stats returns a user's position among waiting entries
func (q *Queue) Stats(userID string) QueueStats {
	waiting := q.Snapshot()
	stats := QueueStats{Total: len(waiting), EstimatedWait: "unknown"}

	for i, entry := range waiting {
		if entry.UserID == userID {
			stats.Position = i + 1
			break
		}
	}

	switch {
	case stats.Position == 0:
	case stats.Position == 1:
		stats.EstimatedWait = "< 1 min"
	case stats.Position <= 3:
		stats.EstimatedWait = "1-2 mins"
	case stats.Position <= 5:
		stats.EstimatedWait = "2-5 mins"
	default:
		stats.EstimatedWait = "> 5 mins"
	}

	return stats
}
