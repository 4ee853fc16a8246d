package item

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Collection maps ids to items and is persisted as one JSON document: an
// object keyed by decimal id strings. The active book and the archive are
// two independent collections, each with its own id namespace.
type Collection map[int]Item

// NextID returns the id a newly created item should receive: one past the
// highest id present, or 1 for an empty collection. It must be computed
// against a freshly loaded snapshot; there is no reservation, so two
// allocations from stale snapshots can collide.
func (c Collection) NextID() int {
	next := 1
	for id := range c {
		if id >= next {
			next = id + 1
		}
	}
	return next
}

// IDs returns every id in ascending order.
func (c Collection) IDs() []int {
	ids := make([]int, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Boards returns every board referenced by the collection, DefaultBoard
// first, then in first-appearance order scanning items by ascending id.
func (c Collection) Boards() []string {
	boards := []string{DefaultBoard}
	seen := map[string]struct{}{DefaultBoard: {}}
	for _, id := range c.IDs() {
		for _, b := range c[id].Common().Boards {
			if _, ok := seen[b]; ok {
				continue
			}
			seen[b] = struct{}{}
			boards = append(boards, b)
		}
	}
	return boards
}

// Clone returns a deep copy of the collection.
func (c Collection) Clone() Collection {
	out := make(Collection, len(c))
	for id, it := range c {
		out[id] = Clone(it)
	}
	return out
}

// UnmarshalJSON decodes the id-keyed object form, dispatching each record on
// its kind discriminator. The object key is authoritative for the id.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Collection, len(raw))
	for key, msg := range raw {
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("collection: bad id key %q: %w", key, err)
		}
		if id < 1 {
			return fmt.Errorf("collection: bad id key %q: ids start at 1", key)
		}
		it, err := Decode(msg)
		if err != nil {
			return fmt.Errorf("collection: item %d: %w", id, err)
		}
		it.Common().ID = id
		out[id] = it
	}
	*c = out
	return nil
}

// Decode unmarshals a single item record, dispatching on its kind field.
// The sqlite backend decodes row payloads through the same path.
func Decode(data []byte) (Item, error) {
	var probe struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}
	switch probe.Kind {
	case KindTask:
		var t Task
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return &t, nil
	case KindNote:
		var n Note
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		return &n, nil
	default:
		return nil, fmt.Errorf("unknown item kind %q", probe.Kind)
	}
}
