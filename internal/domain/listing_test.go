package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFilterDefaults(t *testing.T) {
	require.Equal(t, FilterActive, ParseFilter("active"))
	require.Equal(t, FilterCompleted, ParseFilter("completed"))
	require.Equal(t, FilterAll, ParseFilter(""))
	require.Equal(t, FilterAll, ParseFilter("bogus"))
}

func TestParseSortKeyDefaults(t *testing.T) {
	require.Equal(t, SortDueDate, ParseSortKey("dueDate"))
	require.Equal(t, SortPriority, ParseSortKey("priority"))
	require.Equal(t, SortCreatedAt, ParseSortKey(""))
	require.Equal(t, SortCreatedAt, ParseSortKey("bogus"))
}

func TestApplyListingActivePriority(t *testing.T) {
	todos := []Todo{
		{ID: "a", Priority: PriorityHigh, Completed: false},
		{ID: "b", Priority: PriorityLow, Completed: true},
		{ID: "c", Priority: PriorityMedium, Completed: false},
	}

	out := ApplyListing(todos, FilterActive, SortPriority)

	require.Len(t, out, 2)
	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "c", out[1].ID)
}

func TestApplyListingDueDateUndatedLast(t *testing.T) {
	soon := time.Now().Add(time.Hour)
	later := time.Now().Add(48 * time.Hour)
	todos := []Todo{
		{ID: "undated"},
		{ID: "later", DueDate: &later},
		{ID: "soon", DueDate: &soon},
	}

	out := ApplyListing(todos, FilterAll, SortDueDate)

	require.Equal(t, []string{"soon", "later", "undated"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestApplyListingCreatedAtNewestFirst(t *testing.T) {
	now := time.Now()
	todos := []Todo{
		{ID: "old", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "new", CreatedAt: now},
		{ID: "mid", CreatedAt: now.Add(-time.Hour)},
	}

	out := ApplyListing(todos, FilterAll, SortCreatedAt)

	require.Equal(t, []string{"new", "mid", "old"}, []string{out[0].ID, out[1].ID, out[2].ID})
}

func TestApplyListingDoesNotMutateInput(t *testing.T) {
	todos := []Todo{
		{ID: "b", Priority: PriorityLow},
		{ID: "a", Priority: PriorityHigh},
	}

	_ = ApplyListing(todos, FilterAll, SortPriority)

	require.Equal(t, "b", todos[0].ID)
	require.Equal(t, "a", todos[1].ID)
}
