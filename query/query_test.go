package query

import (
	"reflect"
	"testing"

	"github.com/zcong1993/taskbook/item"
)

// fixture builds a small mixed collection:
//
//	1: task  @coding           complete
//	2: task  @coding @review   in progress, starred
//	3: task  (My Board)        pending
//	4: note  @ideas            starred
func fixture() item.Collection {
	t1 := item.NewTask(1, "fix the build", []string{"@coding"}, item.PriorityHigh)
	t1.Check()
	t2 := item.NewTask(2, "review the PR", []string{"@coding", "@review"}, item.PriorityMedium)
	t2.Begin()
	t2.ToggleStar()
	t3 := item.NewTask(3, "buy milk", nil, item.PriorityLow)
	n4 := item.NewNote(4, "milk expands when frozen", []string{"@ideas"})
	n4.ToggleStar()

	return item.Collection{1: t1, 2: t2, 3: t3, 4: n4}
}

func TestParseAttribute_Vocabulary(t *testing.T) {
	cases := map[string]Attribute{
		"star": AttrStarred, "starred": AttrStarred,
		"done": AttrComplete, "checked": AttrComplete, "complete": AttrComplete,
		"progress": AttrInProgress, "started": AttrInProgress, "begun": AttrInProgress,
		"pending": AttrPending, "unchecked": AttrPending, "incomplete": AttrPending,
		"todo": AttrTask, "task": AttrTask, "tasks": AttrTask,
		"note": AttrNote, "notes": AttrNote,
	}
	for token, want := range cases {
		got, ok := ParseAttribute(token)
		if !ok || got != want {
			t.Errorf("ParseAttribute(%q) = %q, %v; want %q, true", token, got, ok, want)
		}
	}
	if _, ok := ParseAttribute("urgent"); ok {
		t.Error("ParseAttribute accepted a token outside the vocabulary")
	}
}

func TestFilter_SingleAttributes(t *testing.T) {
	c := fixture()
	tests := []struct {
		attr Attribute
		want []int
	}{
		{AttrStarred, []int{2, 4}},
		{AttrComplete, []int{1}},
		{AttrInProgress, []int{2}},
		{AttrPending, []int{2, 3}},
		{AttrTask, []int{1, 2, 3}},
		{AttrNote, []int{4}},
	}
	for _, tt := range tests {
		got := Filter(c, tt.attr).IDs()
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Filter(%s) = %v, want %v", tt.attr, got, tt.want)
		}
	}
}

func TestFilter_ANDComposition(t *testing.T) {
	c := fixture()

	// complete AND in-progress is empty for every possible task.
	if got := Filter(c, AttrComplete, AttrInProgress); len(got) != 0 {
		t.Errorf("complete+progress = %v, want empty", got.IDs())
	}

	// Order independence.
	a := Filter(c, AttrStarred, AttrTask).IDs()
	b := Filter(c, AttrTask, AttrStarred).IDs()
	if !reflect.DeepEqual(a, b) || !reflect.DeepEqual(a, []int{2}) {
		t.Errorf("starred+task = %v / %v, want [2] both ways", a, b)
	}
}

func TestFilter_DoesNotAliasInput(t *testing.T) {
	c := fixture()
	got := Filter(c, AttrPending)
	got[3].(*item.Task).Check()
	got[3].Common().Boards[0] = "@hijacked"

	if c[3].(*item.Task).Complete {
		t.Error("mutating a filter result changed the snapshot's Complete flag")
	}
	if c[3].Common().Boards[0] != item.DefaultBoard {
		t.Error("mutating a filter result changed the snapshot's boards")
	}
}

func TestGroupByBoard_Derived(t *testing.T) {
	g := GroupByBoard(fixture(), nil)

	labels := make([]string, len(g))
	for i, grp := range g {
		labels[i] = grp.Label
	}
	want := []string{item.DefaultBoard, "@coding", "@review", "@ideas"}
	if !reflect.DeepEqual(labels, want) {
		t.Fatalf("labels = %v, want %v", labels, want)
	}

	// Item 2 lives on two boards and must appear in both buckets.
	if ids := groupIDs(g[1]); !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("@coding ids = %v, want [1 2]", ids)
	}
	if ids := groupIDs(g[2]); !reflect.DeepEqual(ids, []int{2}) {
		t.Errorf("@review ids = %v, want [2]", ids)
	}
}

func TestGroupByBoard_ExplicitSkipsEmpty(t *testing.T) {
	g := GroupByBoard(fixture(), []string{"@review", "@empty"})
	if len(g) != 1 || g[0].Label != "@review" {
		t.Fatalf("groups = %+v, want only @review", g)
	}
}

func TestGroupByDate(t *testing.T) {
	c := fixture()
	c[1].Common().Date = "Mon Aug 24 2026"
	c[2].Common().Date = "Tue Aug 25 2026"
	c[3].Common().Date = "Mon Aug 24 2026"
	c[4].Common().Date = "Tue Aug 25 2026"

	g := GroupByDate(c)
	if len(g) != 2 {
		t.Fatalf("groups = %d, want 2", len(g))
	}
	if g[0].Label != "Mon Aug 24 2026" || !reflect.DeepEqual(groupIDs(g[0]), []int{1, 3}) {
		t.Errorf("first group = %q %v, want Mon Aug 24 2026 [1 3]", g[0].Label, groupIDs(g[0]))
	}
	if g[1].Label != "Tue Aug 25 2026" || !reflect.DeepEqual(groupIDs(g[1]), []int{2, 4}) {
		t.Errorf("second group = %q %v, want Tue Aug 25 2026 [2 4]", g[1].Label, groupIDs(g[1]))
	}
}

func TestSearch(t *testing.T) {
	c := fixture()

	if got := Search(c, []string{"MILK"}).IDs(); !reflect.DeepEqual(got, []int{3, 4}) {
		t.Errorf("MILK = %v, want [3 4]", got)
	}
	// Any-term match.
	if got := Search(c, []string{"build", "frozen"}).IDs(); !reflect.DeepEqual(got, []int{1, 4}) {
		t.Errorf("build|frozen = %v, want [1 4]", got)
	}
	if got := Search(c, []string{"nothing-here"}); len(got) != 0 {
		t.Errorf("miss = %v, want empty", got.IDs())
	}
	if got := Search(c, nil); len(got) != 0 {
		t.Errorf("no terms = %v, want empty", got.IDs())
	}
}

func groupIDs(g Group) []int {
	ids := make([]int, len(g.Items))
	for i, it := range g.Items {
		ids[i] = it.Common().ID
	}
	return ids
}
