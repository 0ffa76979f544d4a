package taskdoc

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genChecklistItem generates a valid checklist item. Plans carry a PLAN:
// marker that never appears in labels or descriptions.
func genChecklistItem() *rapid.Generator[ChecklistItem] {
	return rapid.Custom(func(t *rapid.T) ChecklistItem {
		return ChecklistItem{
			Task:                rapid.StringMatching(`[a-z][a-z ]{0,11}`).Draw(t, "task"),
			DetailedDescription: rapid.StringMatching(`[a-z][a-z ]{0,23}`).Draw(t, "description"),
			ContextAndPlan:      "PLAN:" + rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "plan"),
			Done:                rapid.Bool().Draw(t, "done"),
		}
	})
}

func genChecklist(minLen int) *rapid.Generator[[]ChecklistItem] {
	return rapid.SliceOfN(genChecklistItem(), minLen, 12)
}

// seedChecklist stores a document holding checklist.
func seedChecklist(t require.TestingT, store DocumentStore, checklist []ChecklistItem) {
	doc := NewDocument(time.Now())
	doc.TaskDescription = "goal"
	doc.Checklist = append(doc.Checklist, checklist...)
	require.NoError(t, store.Save(context.Background(), doc))
}

// TestProgressConsistentAfterSaveRapid verifies that progress always
// matches the checklist after a save, whatever progress the caller set.
func TestProgressConsistentAfterSaveRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checklist := genChecklist(0).Draw(t, "checklist")
		bogus := Progress{
			Completed:  rapid.IntRange(-5, 50).Draw(t, "completed"),
			Total:      rapid.IntRange(-5, 50).Draw(t, "total"),
			Percentage: rapid.IntRange(-5, 500).Draw(t, "percentage"),
		}

		store := NewMemoryStore()
		doc := NewDocument(time.Now())
		doc.Checklist = checklist
		doc.Metadata.Progress = bogus
		require.NoError(t, store.Save(context.Background(), doc))

		got := store.Load(context.Background()).Document.Metadata.Progress

		completed := 0
		for _, item := range checklist {
			if item.Done {
				completed++
			}
		}
		want := Progress{Completed: completed, Total: len(checklist)}
		if want.Total > 0 {
			want.Percentage = int(math.Round(100 * float64(completed) / float64(want.Total)))
		}
		require.Equal(t, want, got)
	})
}

// TestReorderRoundTripRapid verifies that moving an item from i to j and
// back from j to i restores the original order.
func TestReorderRoundTripRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checklist := genChecklist(2).Draw(t, "checklist")
		n := len(checklist)
		i := rapid.IntRange(0, n-1).Draw(t, "i")
		j := rapid.IntRange(0, n-1).Filter(func(j int) bool { return j != i }).Draw(t, "j")

		store := NewMemoryStore()
		seedChecklist(t, store, checklist)
		e := NewEngine(store)
		ctx := context.Background()

		final, err := e.ReorderChecklistItem(ctx, i, j)
		require.NoError(t, err)
		require.Equal(t, j, final)
		require.Equal(t, checklist[i], e.Document(ctx).Checklist[j])

		_, err = e.ReorderChecklistItem(ctx, j, i)
		require.NoError(t, err)
		require.Equal(t, checklist, e.Document(ctx).Checklist)
	})
}

// TestReorderPreservesItemsRapid verifies that any valid reorder is a
// permutation that moves exactly one item.
func TestReorderPreservesItemsRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checklist := genChecklist(1).Draw(t, "checklist")
		n := len(checklist)
		from := rapid.IntRange(0, n-1).Draw(t, "from")
		to := rapid.IntRange(0, n).Draw(t, "to")

		store := NewMemoryStore()
		seedChecklist(t, store, checklist)
		e := NewEngine(store)

		final, err := e.ReorderChecklistItem(context.Background(), from, to)
		require.NoError(t, err)
		require.Equal(t, min(to, n-1), final)

		got := e.Document(context.Background()).Checklist
		require.Len(t, got, n)
		require.Equal(t, checklist[from], got[final])

		rest := append(append([]ChecklistItem{}, checklist[:from]...), checklist[from+1:]...)
		gotRest := append(append([]ChecklistItem{}, got[:final]...), got[final+1:]...)
		require.Equal(t, rest, gotRest)
	})
}

// TestCurrentTaskIndexRapid verifies that the current task is always the
// first item not done, or NoCurrentTask.
func TestCurrentTaskIndexRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checklist := genChecklist(0).Draw(t, "checklist")

		store := NewMemoryStore()
		seedChecklist(t, store, checklist)
		view := NewEngine(store).CurrentTaskDetails(context.Background())

		want := NoCurrentTask
		for i := len(checklist) - 1; i >= 0; i-- {
			if !checklist[i].Done {
				want = i
			}
		}
		require.Equal(t, want, view.CurrentTaskIndex)

		if want == NoCurrentTask {
			require.Nil(t, view.CurrentTask)
		} else {
			require.NotNil(t, view.CurrentTask)
			require.Equal(t, checklist[want], *view.CurrentTask)
		}
	})
}

// TestContextAndPlanOnlyOnCurrentRapid verifies that only the current item
// exposes its context and plan, in the view and in its JSON form, and that
// the summary never does.
func TestContextAndPlanOnlyOnCurrentRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checklist := genChecklist(0).Draw(t, "checklist")
		withDescriptions := rapid.Bool().Draw(t, "with_descriptions")

		store := NewMemoryStore()
		seedChecklist(t, store, checklist)
		e := NewEngine(store)
		ctx := context.Background()

		view := e.CurrentTaskDetails(ctx)
		require.Len(t, view.Checklist, len(checklist))
		for i, item := range view.Checklist {
			require.Equal(t, i, item.Index)
			if i == view.CurrentTaskIndex {
				require.True(t, item.IsCurrent)
				require.NotNil(t, item.ContextAndPlan)
				require.Equal(t, checklist[i].ContextAndPlan, *item.ContextAndPlan)
			} else {
				require.False(t, item.IsCurrent)
				require.Nil(t, item.ContextAndPlan)
			}
		}

		text, err := marshalText(view)
		require.NoError(t, err)
		wantPlans := 0
		if view.CurrentTask != nil {
			// Once on the checklist entry and once on current_task.
			wantPlans = 2
		}
		require.Equal(t, wantPlans, strings.Count(text, "PLAN:"))

		summary := e.ChecklistSummary(ctx, SummaryOptions{IncludeDescriptions: withDescriptions})
		require.NotContains(t, summary, "PLAN:")
	})
}

// TestFailedOperationsLeaveDocumentUnchangedRapid verifies that operations
// rejected for bad indices never rewrite the stored document.
func TestFailedOperationsLeaveDocumentUnchangedRapid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		checklist := genChecklist(0).Draw(t, "checklist")
		n := len(checklist)
		bad := rapid.OneOf(
			rapid.IntRange(-10, -1),
			rapid.IntRange(n, n+10),
		).Draw(t, "bad_index")

		store := NewMemoryStore()
		seedChecklist(t, store, checklist)
		e := NewEngine(store)
		ctx := context.Background()
		before := string(store.Raw())

		ops := map[string]func() error{
			"update": func() error {
				_, err := e.UpdateChecklistItem(ctx, bad, ChecklistItemPatch{Done: boolPtr(true)})
				return err
			},
			"done": func() error {
				_, err := e.MarkTaskDone(ctx, bad)
				return err
			},
			"undone": func() error {
				_, err := e.MarkTaskUndone(ctx, bad)
				return err
			},
			"remove": func() error {
				_, err := e.RemoveChecklistItem(ctx, bad)
				return err
			},
			"reorder": func() error {
				_, err := e.ReorderChecklistItem(ctx, bad, 0)
				return err
			},
		}
		for name, op := range ops {
			err := op()
			require.Error(t, err, name)
			require.True(t, IsInvalidParams(err), name)
			require.Equal(t, before, string(store.Raw()), name)
		}
	})
}
