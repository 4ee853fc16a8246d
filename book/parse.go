package book

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zcong1993/taskbook/item"
)

// createInput is the structured form of a create command's free tokens.
type createInput struct {
	description string
	boards      []string
	priority    item.Priority
}

// parseCreate splits create tokens into boards, priority and description.
// Tokens starting with "@" (and longer than the bare prefix) are board tags
// and keep the prefix in storage. The first p:1|p:2|p:3 token sets the
// priority; any later one is an ordinary description word. Everything else,
// space-joined, becomes the description.
func parseCreate(tokens []string) (createInput, error) {
	var (
		in    createInput
		words []string
	)
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(tok, "@") && len(tok) > 1:
			in.boards = append(in.boards, tok)
		case in.priority == 0 && isPriorityToken(tok):
			in.priority = item.Priority(tok[2] - '0')
		default:
			words = append(words, tok)
		}
	}
	in.description = strings.Join(words, " ")
	if in.description == "" {
		return createInput{}, ErrMissingDescription
	}
	if in.priority == 0 {
		in.priority = item.PriorityLow
	}
	return in, nil
}

func isPriorityToken(tok string) bool {
	return tok == "p:1" || tok == "p:2" || tok == "p:3"
}

// parseTarget extracts the single @id token a targeted command operates on
// and returns the remaining tokens as the payload.
func parseTarget(tokens []string) (int, []string, error) {
	var (
		id      int
		targets int
		payload []string
	)
	for _, tok := range tokens {
		if n, ok := parseIDToken(tok); ok {
			targets++
			id = n
			continue
		}
		payload = append(payload, tok)
	}
	switch {
	case targets == 0:
		return 0, nil, ErrMissingID
	case targets > 1:
		return 0, nil, ErrTooManyTargets
	}
	return id, payload, nil
}

// parseIDToken recognizes the @id form, e.g. "@3".
func parseIDToken(tok string) (int, bool) {
	if !strings.HasPrefix(tok, "@") {
		return 0, false
	}
	n, err := strconv.Atoi(tok[1:])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// parseIDs reads a batch id list. Both bare integers and @-prefixed ones are
// accepted; duplicates collapse silently, preserving first-seen order.
func parseIDs(tokens []string) ([]int, error) {
	var (
		ids  []int
		seen = map[int]bool{}
	)
	for _, tok := range tokens {
		n, err := strconv.Atoi(strings.TrimPrefix(tok, "@"))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q is not an item id", ErrInvalidID, tok)
		}
		if seen[n] {
			continue
		}
		seen[n] = true
		ids = append(ids, n)
	}
	if len(ids) == 0 {
		return nil, ErrMissingID
	}
	return ids, nil
}

// validateIDs checks every id against the collection. The first absent id
// aborts with an InvalidIDError naming it.
func validateIDs(ids []int, c item.Collection) error {
	for _, id := range ids {
		if _, ok := c[id]; !ok {
			return &InvalidIDError{ID: id}
		}
	}
	return nil
}

// normalizeBoard maps a payload word to a stored board name. Bare words gain
// the "@" prefix; the literal "myboard" addresses the default board.
func normalizeBoard(word string) string {
	if strings.EqualFold(word, "myboard") {
		return item.DefaultBoard
	}
	if strings.HasPrefix(word, "@") {
		return word
	}
	return "@" + word
}
