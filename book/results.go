package book

// ToggleResult partitions the task ids a toggle touched by the state they
// ended up in. Check fills it with completed/uncompleted, Begin with
// started/paused, Star with starred/unstarred ids.
type ToggleResult struct {
	BecameTrue  []int
	BecameFalse []int
}

// Stats aggregates the active collection for the stats view. Percent is the
// floored share of complete tasks among all tasks, 0 when there are none.
type Stats struct {
	Complete   int
	InProgress int
	Pending    int
	Notes      int
	Percent    int
}

// Total returns the number of tasks counted, notes excluded.
func (s Stats) Total() int { return s.Complete + s.InProgress + s.Pending }
