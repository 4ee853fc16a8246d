// Package book orchestrates taskbook commands. Every operation follows the
// same cycle: parse its tokens, validate referenced ids, load a snapshot
// from the store, apply one deterministic transformation, save the snapshot
// back, and return a structured result for presentation. Validation
// failures abort before anything is written.
package book

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zcong1993/taskbook/item"
	"github.com/zcong1993/taskbook/query"
	"github.com/zcong1993/taskbook/storage"
)

// Book runs commands against one store. It never exits the process and
// never prints; both are the caller's business.
type Book struct {
	store  storage.Store
	logger *slog.Logger
}

// New returns a Book backed by store.
func New(store storage.Store, logger *slog.Logger) *Book {
	if logger == nil {
		logger = slog.Default()
	}
	return &Book{store: store, logger: logger}
}

// CreateTask parses tokens into a task, assigns it the next free id and
// persists it. The created task is returned for presentation.
func (b *Book) CreateTask(ctx context.Context, tokens []string) (*item.Task, error) {
	in, err := parseCreate(tokens)
	if err != nil {
		return nil, err
	}
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	id := c.NextID()
	t := item.NewTask(id, in.description, in.boards, in.priority)
	c[id] = t
	if err := b.store.Save(ctx, c); err != nil {
		return nil, err
	}
	b.logger.Debug("created task", "id", id, "boards", t.Boards)
	return t, nil
}

// CreateNote parses tokens into a note, assigns it the next free id and
// persists it. Notes share the task create parse, so the first priority
// token is consumed too; the parsed value is dropped, notes carry none.
func (b *Book) CreateNote(ctx context.Context, tokens []string) (*item.Note, error) {
	in, err := parseCreate(tokens)
	if err != nil {
		return nil, err
	}
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	id := c.NextID()
	n := item.NewNote(id, in.description, in.boards)
	c[id] = n
	if err := b.store.Save(ctx, c); err != nil {
		return nil, err
	}
	b.logger.Debug("created note", "id", id, "boards", n.Boards)
	return n, nil
}

// Check toggles completion on the given tasks. Checking forces a task out
// of progress. Ids naming notes are skipped; notes have no completion
// state.
func (b *Book) Check(ctx context.Context, tokens []string) (ToggleResult, error) {
	return b.toggleTasks(ctx, tokens, func(t *item.Task) bool {
		t.Check()
		return t.Complete
	})
}

// Begin toggles the in-progress flag on the given tasks. Starting forces a
// task out of completion. Ids naming notes are skipped.
func (b *Book) Begin(ctx context.Context, tokens []string) (ToggleResult, error) {
	return b.toggleTasks(ctx, tokens, func(t *item.Task) bool {
		t.Begin()
		return t.InProgress
	})
}

func (b *Book) toggleTasks(ctx context.Context, tokens []string, flip func(*item.Task) bool) (ToggleResult, error) {
	var res ToggleResult
	ids, err := parseIDs(tokens)
	if err != nil {
		return res, err
	}
	c, err := b.store.Load(ctx)
	if err != nil {
		return res, err
	}
	if err := validateIDs(ids, c); err != nil {
		return res, err
	}
	for _, id := range ids {
		t, ok := c[id].(*item.Task)
		if !ok {
			continue
		}
		if flip(t) {
			res.BecameTrue = append(res.BecameTrue, id)
		} else {
			res.BecameFalse = append(res.BecameFalse, id)
		}
	}
	if err := b.store.Save(ctx, c); err != nil {
		return ToggleResult{}, err
	}
	return res, nil
}

// Star toggles the star on the given items, tasks and notes alike.
func (b *Book) Star(ctx context.Context, tokens []string) (ToggleResult, error) {
	var res ToggleResult
	ids, err := parseIDs(tokens)
	if err != nil {
		return res, err
	}
	c, err := b.store.Load(ctx)
	if err != nil {
		return res, err
	}
	if err := validateIDs(ids, c); err != nil {
		return res, err
	}
	for _, id := range ids {
		m := c[id].Common()
		m.ToggleStar()
		if m.Starred {
			res.BecameTrue = append(res.BecameTrue, id)
		} else {
			res.BecameFalse = append(res.BecameFalse, id)
		}
	}
	if err := b.store.Save(ctx, c); err != nil {
		return ToggleResult{}, err
	}
	return res, nil
}

// Move replaces the target item's boards with the payload boards. Payload
// words are bare board names; "myboard" addresses the default board.
func (b *Book) Move(ctx context.Context, tokens []string) (item.Item, error) {
	id, payload, err := parseTarget(tokens)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, ErrMissingBoards
	}
	var (
		boards []string
		seen   = map[string]bool{}
	)
	for _, word := range payload {
		board := normalizeBoard(word)
		if seen[board] {
			continue
		}
		seen[board] = true
		boards = append(boards, board)
	}
	return b.mutateItem(ctx, id, func(it item.Item) error {
		it.Common().Boards = boards
		return nil
	})
}

// EditDescription replaces the target item's description with the
// space-joined payload.
func (b *Book) EditDescription(ctx context.Context, tokens []string) (item.Item, error) {
	id, payload, err := parseTarget(tokens)
	if err != nil {
		return nil, err
	}
	desc := strings.Join(payload, " ")
	if desc == "" {
		return nil, ErrMissingDescription
	}
	return b.mutateItem(ctx, id, func(it item.Item) error {
		it.Common().Description = desc
		return nil
	})
}

// UpdatePriority sets the target task's priority. The payload must be a
// single 1, 2 or 3; targeting a note is an error.
func (b *Book) UpdatePriority(ctx context.Context, tokens []string) (item.Item, error) {
	id, payload, err := parseTarget(tokens)
	if err != nil {
		return nil, err
	}
	if len(payload) != 1 {
		return nil, ErrInvalidPriority
	}
	priority := item.Priority(0)
	switch payload[0] {
	case "1":
		priority = item.PriorityLow
	case "2":
		priority = item.PriorityMedium
	case "3":
		priority = item.PriorityHigh
	default:
		return nil, ErrInvalidPriority
	}
	return b.mutateItem(ctx, id, func(it item.Item) error {
		t, ok := it.(*item.Task)
		if !ok {
			return fmt.Errorf("%w: item %d is a note", ErrNotTask, id)
		}
		t.Priority = priority
		return nil
	})
}

// mutateItem runs one read-modify-write cycle around a single-item edit.
func (b *Book) mutateItem(ctx context.Context, id int, edit func(item.Item) error) (item.Item, error) {
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateIDs([]int{id}, c); err != nil {
		return nil, err
	}
	if err := edit(c[id]); err != nil {
		return nil, err
	}
	if err := b.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c[id], nil
}

// Delete moves the given active items into the archive, each under a
// freshly allocated archive id. There is no hard delete; the archive is
// the only destination.
func (b *Book) Delete(ctx context.Context, tokens []string) ([]int, error) {
	ids, err := parseIDs(tokens)
	if err != nil {
		return nil, err
	}
	return b.deleteIDs(ctx, ids)
}

func (b *Book) deleteIDs(ctx context.Context, ids []int) ([]int, error) {
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateIDs(ids, c); err != nil {
		return nil, err
	}
	a, err := b.store.LoadArchive(ctx)
	if err != nil {
		return nil, err
	}
	moveItems(c, a, ids)
	// Archive first: a failure after this point can duplicate an item
	// across the two files but never lose it.
	if err := b.store.SaveArchive(ctx, a); err != nil {
		return nil, err
	}
	if err := b.store.Save(ctx, c); err != nil {
		return nil, err
	}
	b.logger.Debug("archived items", "ids", ids)
	return ids, nil
}

// Restore moves the given archived items back into the active collection,
// each under a freshly allocated active id.
func (b *Book) Restore(ctx context.Context, tokens []string) ([]int, error) {
	ids, err := parseIDs(tokens)
	if err != nil {
		return nil, err
	}
	a, err := b.store.LoadArchive(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateIDs(ids, a); err != nil {
		return nil, err
	}
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	moveItems(a, c, ids)
	if err := b.store.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := b.store.SaveArchive(ctx, a); err != nil {
		return nil, err
	}
	b.logger.Debug("restored items", "ids", ids)
	return ids, nil
}

// moveItems moves ids from src to dst, allocating a fresh id in dst for
// each. Allocation runs per item so later moves see earlier ones.
func moveItems(src, dst item.Collection, ids []int) {
	for _, id := range ids {
		it := src[id]
		delete(src, id)
		nid := dst.NextID()
		it.Common().ID = nid
		dst[nid] = it
	}
}

// Clear archives every complete task. Nothing complete is a successful
// no-op, not an error; the empty selection is the command's own, not user
// input.
func (b *Book) Clear(ctx context.Context) ([]int, error) {
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	var ids []int
	for _, id := range c.IDs() {
		if t, ok := c[id].(*item.Task); ok && t.Complete {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return b.deleteIDs(ctx, ids)
}

// Find searches active descriptions for the terms and groups the hits by
// board.
func (b *Book) Find(ctx context.Context, terms []string) (query.Grouping, error) {
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.GroupByBoard(query.Search(c, terms), nil), nil
}

// List renders the active collection as a board view. Tokens naming a
// stored board (or "myboard") select boards; tokens in the attribute
// vocabulary filter; anything else is ignored.
func (b *Book) List(ctx context.Context, tokens []string) (query.Grouping, error) {
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	known := map[string]bool{}
	for _, board := range c.Boards() {
		known[board] = true
	}
	var (
		boards []string
		attrs  []query.Attribute
	)
	for _, tok := range tokens {
		switch {
		case known["@"+tok]:
			boards = append(boards, "@"+tok)
		case strings.EqualFold(tok, "myboard"):
			boards = append(boards, item.DefaultBoard)
		default:
			if a, ok := query.ParseAttribute(tok); ok {
				attrs = append(attrs, a)
			}
		}
	}
	return query.GroupByBoard(query.Filter(c, attrs...), boards), nil
}

// Timeline groups the active collection by creation date.
func (b *Book) Timeline(ctx context.Context) (query.Grouping, error) {
	c, err := b.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return query.GroupByDate(c), nil
}

// ArchiveTimeline groups the archive by creation date for the archive view.
func (b *Book) ArchiveTimeline(ctx context.Context) (query.Grouping, error) {
	a, err := b.store.LoadArchive(ctx)
	if err != nil {
		return nil, err
	}
	return query.GroupByDate(a), nil
}

// Stats aggregates the active collection.
func (b *Book) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	c, err := b.store.Load(ctx)
	if err != nil {
		return st, err
	}
	for _, it := range c {
		switch v := it.(type) {
		case *item.Note:
			st.Notes++
		case *item.Task:
			switch {
			case v.Complete:
				st.Complete++
			case v.InProgress:
				st.InProgress++
			default:
				st.Pending++
			}
		}
	}
	if total := st.Total(); total > 0 {
		st.Percent = st.Complete * 100 / total
	}
	return st, nil
}

// Descriptions returns the newline-joined descriptions of the given active
// items, in the order the ids were given. It feeds the clipboard copy
// command.
func (b *Book) Descriptions(ctx context.Context, tokens []string) (string, error) {
	ids, err := parseIDs(tokens)
	if err != nil {
		return "", err
	}
	c, err := b.store.Load(ctx)
	if err != nil {
		return "", err
	}
	if err := validateIDs(ids, c); err != nil {
		return "", err
	}
	descs := make([]string, 0, len(ids))
	for _, id := range ids {
		descs = append(descs, c[id].Common().Description)
	}
	return strings.Join(descs, "\n"), nil
}
