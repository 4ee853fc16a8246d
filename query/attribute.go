// Package query implements the pure filter, group, and search pipeline over
// collection snapshots. Nothing here mutates its input: results are fresh
// collections or groupings of deep-copied items.
package query

import "github.com/zcong1993/taskbook/item"

// Attribute is a filterable property of an item.
type Attribute string

const (
	AttrStarred    Attribute = "starred"
	AttrComplete   Attribute = "complete"
	AttrInProgress Attribute = "in-progress"
	AttrPending    Attribute = "pending" // a task that is not complete
	AttrTask       Attribute = "task"
	AttrNote       Attribute = "note"
)

// vocabulary maps every accepted user token to its attribute.
var vocabulary = map[string]Attribute{
	"star":    AttrStarred,
	"starred": AttrStarred,

	"done":     AttrComplete,
	"checked":  AttrComplete,
	"complete": AttrComplete,

	"progress": AttrInProgress,
	"started":  AttrInProgress,
	"begun":    AttrInProgress,

	"pending":    AttrPending,
	"unchecked":  AttrPending,
	"incomplete": AttrPending,

	"todo":  AttrTask,
	"task":  AttrTask,
	"tasks": AttrTask,

	"note":  AttrNote,
	"notes": AttrNote,
}

// ParseAttribute maps a user token to its attribute. ok is false for tokens
// outside the vocabulary; callers treat those as no-ops.
func ParseAttribute(token string) (Attribute, bool) {
	attr, ok := vocabulary[token]
	return attr, ok
}

// matches reports whether a single item satisfies the attribute.
func (a Attribute) matches(it item.Item) bool {
	task, isTask := it.(*item.Task)
	switch a {
	case AttrStarred:
		return it.Common().Starred
	case AttrComplete:
		return isTask && task.Complete
	case AttrInProgress:
		return isTask && task.InProgress
	case AttrPending:
		return isTask && !task.Complete
	case AttrTask:
		return isTask
	case AttrNote:
		return !isTask
	}
	return true
}

// Filter returns a new collection of deep copies of the items matching every
// attribute. Attributes compose as AND; since each one only narrows, their
// order does not matter.
func Filter(c item.Collection, attrs ...Attribute) item.Collection {
	out := make(item.Collection)
	for id, it := range c {
		if matchesAll(it, attrs) {
			out[id] = item.Clone(it)
		}
	}
	return out
}

func matchesAll(it item.Item, attrs []Attribute) bool {
	for _, a := range attrs {
		if !a.matches(it) {
			return false
		}
	}
	return true
}
