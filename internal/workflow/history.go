package workflow

import "time"

// HistoryEntry records a single status transition. Entries are immutable once
// appended; insertion order is chronological order and is the sole source of
// truth for what happened when.
type HistoryEntry struct {
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorID    string    `json:"actor_id"`
	Comments   string    `json:"comments,omitempty"`
	At         time.Time `json:"at"`
}

// AppendHistory is the only mutator of a document's history. There is no
// update, delete, or reorder operation.
func AppendHistory(doc *Document, entry HistoryEntry) {
	doc.History = append(doc.History, entry)
}
