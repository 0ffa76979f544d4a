package taskdoc

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// testClock is a manually advanced clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestEngine returns an engine over a fresh MemoryStore sharing one
// clock.
func newTestEngine(t *testing.T) (*Engine, *MemoryStore, *testClock) {
	t.Helper()
	clock := newTestClock()
	store := NewMemoryStore(WithStoreClock(clock.Now))
	return NewEngine(store, WithClock(clock.Now)), store, clock
}

// items builds done=false checklist items labelled by the given tasks.
func items(tasks ...string) []NewChecklistItem {
	out := make([]NewChecklistItem, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, NewChecklistItem{
			Task:                task,
			DetailedDescription: "do " + task,
			ContextAndPlan:      "plan for " + task,
		})
	}
	return out
}

// taskLabels returns the task labels of the stored checklist in order.
func taskLabels(t *testing.T, e *Engine) []string {
	t.Helper()
	doc := e.Document(t.Context())
	labels := make([]string, 0, len(doc.Checklist))
	for _, item := range doc.Checklist {
		labels = append(labels, item.Task)
	}
	return labels
}

// seed initializes the engine with a checklist of the given tasks.
func seed(t *testing.T, e *Engine, tasks ...string) {
	t.Helper()
	_, err := e.Initialize(t.Context(), InitializeParams{
		TaskDescription: "Build X",
		Checklist:       items(tasks...),
	})
	require.NoError(t, err)
}

func intPtr(i int) *int { return &i }

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func priorityPtr(p Priority) *Priority { return &p }
