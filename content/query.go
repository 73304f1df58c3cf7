package content

import "sort"

// Query returns the items of category c. Blog posts come back newest first
// and courses by sort key; everything else keeps its input order.
// The input slice is not modified.
func Query(items []Item, c Category) []Item {
	var r []Item
	for i := range items {
		if items[i].Category == c {
			r = append(r, items[i])
		}
	}
	switch c {
	case Blog:
		SortByDate(r)
	case Course:
		SortBySortKey(r)
	}
	return r
}

// Published trims out drafts.
func Published(items []Item) []Item {
	var r []Item
	for i := range items {
		if items[i].Published {
			r = append(r, items[i])
		}
	}
	return r
}

// SortByDate sorts items by date in reverse order. Items with the same date
// keep their relative order.
func SortByDate(items []Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[j].Date.Before(items[i].Date) })
}

// SortBySortKey sorts items with a sort key in ascending order, followed by
// the items without one in their original order.
func SortBySortKey(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].SortKey, items[j].SortKey
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return *a < *b
	})
}
