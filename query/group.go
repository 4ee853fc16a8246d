package query

import "github.com/zcong1993/taskbook/item"

// Group is one presentation bucket: a board or date label plus its items in
// ascending id order.
type Group struct {
	Label string
	Items []item.Item
}

// Grouping is an ordered list of groups.
type Grouping []Group

// GroupByBoard partitions the collection into one bucket per board name; an
// item on N boards appears in N buckets. A nil or empty board list is derived
// from the collection itself, DefaultBoard first. Boards without items
// produce no group.
func GroupByBoard(c item.Collection, boards []string) Grouping {
	if len(boards) == 0 {
		boards = c.Boards()
	}
	ids := c.IDs()

	var g Grouping
	for _, board := range boards {
		var items []item.Item
		for _, id := range ids {
			if onBoard(c[id], board) {
				items = append(items, item.Clone(c[id]))
			}
		}
		if len(items) > 0 {
			g = append(g, Group{Label: board, Items: items})
		}
	}
	return g
}

// GroupByDate partitions the collection by creation-date equality. Dates are
// ordered by first appearance scanning items by ascending id, so newer dates
// come after older ones within one book.
func GroupByDate(c item.Collection) Grouping {
	index := make(map[string]int)
	var g Grouping
	for _, id := range c.IDs() {
		it := c[id]
		date := it.Common().Date
		pos, ok := index[date]
		if !ok {
			pos = len(g)
			index[date] = pos
			g = append(g, Group{Label: date})
		}
		g[pos].Items = append(g[pos].Items, item.Clone(it))
	}
	return g
}

func onBoard(it item.Item, board string) bool {
	for _, b := range it.Common().Boards {
		if b == board {
			return true
		}
	}
	return false
}
