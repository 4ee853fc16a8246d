package query

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/zcong1993/taskbook/item"
)

// Search returns deep copies of the items whose description contains at
// least one of the terms. Matching is a substring test under Unicode case
// folding, so "Milk" finds "milk" and "MILK" alike.
func Search(c item.Collection, terms []string) item.Collection {
	folder := cases.Fold()
	folded := make([]string, 0, len(terms))
	for _, t := range terms {
		if t == "" {
			continue
		}
		folded = append(folded, folder.String(t))
	}

	out := make(item.Collection)
	if len(folded) == 0 {
		return out
	}
	for id, it := range c {
		desc := folder.String(it.Common().Description)
		for _, term := range folded {
			if strings.Contains(desc, term) {
				out[id] = item.Clone(it)
				break
			}
		}
	}
	return out
}
