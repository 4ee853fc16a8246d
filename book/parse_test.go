package book

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zcong1993/taskbook/item"
)

func TestParseCreate(t *testing.T) {
	cases := []struct {
		name     string
		tokens   []string
		desc     string
		boards   []string
		priority item.Priority
	}{
		{
			name:     "plain words",
			tokens:   []string{"buy", "milk"},
			desc:     "buy milk",
			priority: item.PriorityLow,
		},
		{
			name:     "boards and priority",
			tokens:   []string{"buy", "milk", "@shopping", "p:2"},
			desc:     "buy milk",
			boards:   []string{"@shopping"},
			priority: item.PriorityMedium,
		},
		{
			name:     "first priority wins",
			tokens:   []string{"p:3", "ship", "p:1", "it"},
			desc:     "ship p:1 it",
			priority: item.PriorityHigh,
		},
		{
			name:     "bare at sign is a word",
			tokens:   []string{"email", "@", "bob"},
			desc:     "email @ bob",
			priority: item.PriorityLow,
		},
		{
			name:     "malformed priority is a word",
			tokens:   []string{"p:4", "fix", "roof"},
			desc:     "p:4 fix roof",
			priority: item.PriorityLow,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in, err := parseCreate(tc.tokens)
			if err != nil {
				t.Fatalf("parseCreate(%v): %v", tc.tokens, err)
			}
			if in.description != tc.desc {
				t.Errorf("description = %q, want %q", in.description, tc.desc)
			}
			if !reflect.DeepEqual(in.boards, tc.boards) {
				t.Errorf("boards = %v, want %v", in.boards, tc.boards)
			}
			if in.priority != tc.priority {
				t.Errorf("priority = %d, want %d", in.priority, tc.priority)
			}
		})
	}
}

func TestParseCreate_MissingDescription(t *testing.T) {
	for _, tokens := range [][]string{nil, {}, {"@shopping"}, {"@shopping", "p:2"}} {
		if _, err := parseCreate(tokens); !errors.Is(err, ErrMissingDescription) {
			t.Errorf("parseCreate(%v): err = %v, want ErrMissingDescription", tokens, err)
		}
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"3", "@1", "3", "2", "@2"})
	if err != nil {
		t.Fatalf("parseIDs: %v", err)
	}
	if want := []int{3, 1, 2}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v (deduplicated, first-seen order)", ids, want)
	}
}

func TestParseIDs_Errors(t *testing.T) {
	if _, err := parseIDs(nil); !errors.Is(err, ErrMissingID) {
		t.Errorf("empty list: err = %v, want ErrMissingID", err)
	}
	for _, tok := range []string{"abc", "@", "0", "-2", "1.5"} {
		if _, err := parseIDs([]string{tok}); !errors.Is(err, ErrInvalidID) {
			t.Errorf("parseIDs(%q): err = %v, want ErrInvalidID", tok, err)
		}
	}
}

func TestParseTarget(t *testing.T) {
	id, payload, err := parseTarget([]string{"@3", "new", "words"})
	if err != nil {
		t.Fatalf("parseTarget: %v", err)
	}
	if id != 3 {
		t.Errorf("id = %d, want 3", id)
	}
	if want := []string{"new", "words"}; !reflect.DeepEqual(payload, want) {
		t.Errorf("payload = %v, want %v", payload, want)
	}

	if _, _, err := parseTarget([]string{"words", "only"}); !errors.Is(err, ErrMissingID) {
		t.Errorf("no target: err = %v, want ErrMissingID", err)
	}
	if _, _, err := parseTarget([]string{"@1", "@2", "x"}); !errors.Is(err, ErrTooManyTargets) {
		t.Errorf("two targets: err = %v, want ErrTooManyTargets", err)
	}
}

func TestNormalizeBoard(t *testing.T) {
	cases := map[string]string{
		"shopping": "@shopping",
		"@coding":  "@coding",
		"myboard":  item.DefaultBoard,
		"MyBoard":  item.DefaultBoard,
		"myboards": "@myboards",
	}
	for in, want := range cases {
		if got := normalizeBoard(in); got != want {
			t.Errorf("normalizeBoard(%q) = %q, want %q", in, got, want)
		}
	}
}
