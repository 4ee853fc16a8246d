package item

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCollection_NextID(t *testing.T) {
	if got := (Collection{}).NextID(); got != 1 {
		t.Errorf("empty NextID = %d, want 1", got)
	}

	c := Collection{
		1: NewTask(1, "a", nil, 0),
		7: NewNote(7, "b", nil),
		3: NewTask(3, "c", nil, 0),
	}
	if got := c.NextID(); got != 8 {
		t.Errorf("NextID = %d, want 8", got)
	}
}

func TestCollection_IDs_Ascending(t *testing.T) {
	c := Collection{
		5: NewNote(5, "e", nil),
		1: NewTask(1, "a", nil, 0),
		3: NewTask(3, "c", nil, 0),
	}
	want := []int{1, 3, 5}
	if got := c.IDs(); !reflect.DeepEqual(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}
}

func TestCollection_Boards(t *testing.T) {
	c := Collection{
		2: NewTask(2, "b", []string{"@coding", "@review"}, 0),
		1: NewTask(1, "a", []string{"@coding"}, 0),
		3: NewNote(3, "c", nil),
	}
	want := []string{DefaultBoard, "@coding", "@review"}
	if got := c.Boards(); !reflect.DeepEqual(got, want) {
		t.Errorf("Boards = %v, want %v", got, want)
	}
}

func TestCollection_JSONRoundTrip(t *testing.T) {
	c := Collection{
		1: NewTask(1, "refactor storage", []string{"@coding"}, PriorityHigh),
		2: NewNote(2, "call dentist", nil),
	}
	task := c[1].(*Task)
	task.Check()
	c[2].Common().ToggleStar()

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var got Collection
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	gotTask, ok := got[1].(*Task)
	if !ok {
		t.Fatalf("item 1 decoded as %T, want *Task", got[1])
	}
	if !gotTask.Complete || gotTask.Priority != PriorityHigh {
		t.Errorf("task = complete=%v priority=%d, want complete=true priority=3",
			gotTask.Complete, gotTask.Priority)
	}
	if !reflect.DeepEqual(gotTask.Boards, []string{"@coding"}) {
		t.Errorf("task boards = %v, want [@coding]", gotTask.Boards)
	}

	gotNote, ok := got[2].(*Note)
	if !ok {
		t.Fatalf("item 2 decoded as %T, want *Note", got[2])
	}
	if !gotNote.Starred || gotNote.Description != "call dentist" {
		t.Errorf("note = starred=%v desc=%q, want starred=true desc=%q",
			gotNote.Starred, gotNote.Description, "call dentist")
	}
}

func TestCollection_UnmarshalKeyAuthoritative(t *testing.T) {
	// The object key wins over a stale embedded id.
	raw := `{"4":{"id":9,"kind":"note","description":"n","boards":["My Board"],"date":"Mon Aug 24 2026","starred":false}}`
	var c Collection
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := c[4]; !ok {
		t.Fatalf("item keyed 4 missing, got keys %v", c.IDs())
	}
	if got := c[4].Common().ID; got != 4 {
		t.Errorf("ID = %d, want 4", got)
	}
}

func TestDecode_UnknownKind(t *testing.T) {
	if _, err := Decode([]byte(`{"kind":"reminder"}`)); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestCollection_UnmarshalBadKey(t *testing.T) {
	for _, raw := range []string{
		`{"x1":{"kind":"note"}}`,
		`{"0":{"kind":"note"}}`,
		`{"-1":{"kind":"note"}}`,
	} {
		var c Collection
		if err := json.Unmarshal([]byte(raw), &c); err == nil {
			t.Errorf("Unmarshal(%s): expected error for bad id key", raw)
		}
	}
}
