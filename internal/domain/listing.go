package domain

import "sort"

// Filter selects todos by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// SortKey orders a todo listing.
type SortKey string

const (
	SortCreatedAt SortKey = "createdAt" // newest first
	SortDueDate   SortKey = "dueDate"   // soonest first, undated last
	SortPriority  SortKey = "priority"  // high before low
)

// ParseFilter maps a query value onto a Filter, defaulting to all.
func ParseFilter(s string) Filter {
	switch Filter(s) {
	case FilterActive:
		return FilterActive
	case FilterCompleted:
		return FilterCompleted
	}
	return FilterAll
}

// ParseSortKey maps a query value onto a SortKey, defaulting to createdAt.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortDueDate:
		return SortDueDate
	case SortPriority:
		return SortPriority
	}
	return SortCreatedAt
}

// ApplyListing filters and sorts todos without mutating the input slice.
func ApplyListing(todos []Todo, filter Filter, key SortKey) []Todo {
	out := make([]Todo, 0, len(todos))
	for _, t := range todos {
		switch filter {
		case FilterActive:
			if t.Completed {
				continue
			}
		case FilterCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}

	switch key {
	case SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].DueDate, out[j].DueDate
			if a == nil {
				return false
			}
			if b == nil {
				return true
			}
			return a.Before(*b)
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	}

	return out
}
