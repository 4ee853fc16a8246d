// Package item defines the task and note model persisted by taskbook.
package item

import "time"

// Kind discriminates the two item variants in persisted JSON.
type Kind string

const (
	KindTask Kind = "task"
	KindNote Kind = "note"
)

// Priority determines how urgently a task is rendered and sorted.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

// Valid reports whether p is one of the three defined levels.
func (p Priority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

// DefaultBoard is the board every item belongs to unless tagged otherwise.
// It is considered a valid board even when no item currently references it.
const DefaultBoard = "My Board"

// DateLayout is the creation-date format stored on every item.
const DateLayout = "Mon Jan 02 2006"

// Meta holds the fields shared by tasks and notes.
type Meta struct {
	ID          int      `json:"id"`
	Kind        Kind     `json:"kind"`
	Description string   `json:"description"`
	Boards      []string `json:"boards"`
	Date        string   `json:"date"` // immutable once created
	Starred     bool     `json:"starred"`
}

// Common returns the shared metadata. The method is promoted into Task and
// Note, which is what makes them (and only them) satisfy Item.
func (m *Meta) Common() *Meta { return m }

// ToggleStar flips the starred flag.
func (m *Meta) ToggleStar() { m.Starred = !m.Starred }

// Item is either a *Task or a *Note.
type Item interface {
	Common() *Meta
}

// Task is a completable work item.
type Task struct {
	Meta
	Priority   Priority `json:"priority"`
	Complete   bool     `json:"complete"`
	InProgress bool     `json:"in_progress"`
}

// Note is a plain jotting with no completion state.
type Note struct {
	Meta
}

// NewTask builds a task, applying defaults: empty boards fall back to
// DefaultBoard, a zero priority to PriorityLow, and the creation date is
// stamped from the wall clock.
func NewTask(id int, description string, boards []string, priority Priority) *Task {
	if priority == 0 {
		priority = PriorityLow
	}
	return &Task{
		Meta:     newMeta(id, KindTask, description, boards),
		Priority: priority,
	}
}

// NewNote builds a note with the same board and date defaults as NewTask.
func NewNote(id int, description string, boards []string) *Note {
	return &Note{Meta: newMeta(id, KindNote, description, boards)}
}

func newMeta(id int, kind Kind, description string, boards []string) Meta {
	if len(boards) == 0 {
		boards = []string{DefaultBoard}
	}
	return Meta{
		ID:          id,
		Kind:        kind,
		Description: description,
		Boards:      append([]string(nil), boards...),
		Date:        time.Now().Format(DateLayout),
	}
}

// Check toggles completion. A checked task never stays in progress.
func (t *Task) Check() {
	t.Complete = !t.Complete
	t.InProgress = false
}

// Begin toggles the in-progress flag. A started task is never complete.
func (t *Task) Begin() {
	t.InProgress = !t.InProgress
	t.Complete = false
}

// Clone returns a deep copy of it, safe to hand out with query results
// without aliasing the original's board slice.
func Clone(it Item) Item {
	switch v := it.(type) {
	case *Task:
		c := *v
		c.Boards = append([]string(nil), v.Boards...)
		return &c
	case *Note:
		c := *v
		c.Boards = append([]string(nil), v.Boards...)
		return &c
	}
	return nil
}
