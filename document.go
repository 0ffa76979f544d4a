// Package taskdoc manages a single persisted task document: an overarching
// goal, an ordered checklist of steps, free-form notes, reference resources
// and metadata. The document is exposed to agents as a set of MCP tools.
package taskdoc

import (
	"math"
	"time"
)

// NoCurrentTask is the current task index reported when every checklist
// item is done or the checklist is empty.
const NoCurrentTask = -1

// TaskDocument is the single persisted aggregate.
//
// Exactly one document exists per storage location. It is created implicitly
// on first read (as an empty document) or explicitly via Initialize, and is
// reset by Clear.
type TaskDocument struct {
	// TaskDescription is the overarching goal.
	TaskDescription string `json:"task_description"`

	// ContextForAllTasks is shared context that applies to every
	// checklist item.
	ContextForAllTasks string `json:"context_for_all_tasks,omitempty"`

	// Checklist holds the steps in intended execution order.
	Checklist []ChecklistItem `json:"checklist"`

	// Notes are append-only observations recorded while working.
	Notes []Note `json:"notes"`

	// Resources are append-only references (docs, URLs, files).
	Resources []Resource `json:"resources"`

	// Metadata holds timestamps, derived progress and planning hints.
	Metadata Metadata `json:"metadata"`
}

// ChecklistItem is one step of the decomposed task.
type ChecklistItem struct {
	// Task is a short label for the step. Required.
	Task string `json:"task"`

	// DetailedDescription explains what the step involves. Required.
	DetailedDescription string `json:"detailed_description"`

	// ContextAndPlan carries background, file pointers and an execution
	// plan specific to this step.
	ContextAndPlan string `json:"context_and_plan,omitempty"`

	// Done marks the step as completed.
	Done bool `json:"done"`
}

// Note is a timestamped observation.
type Note struct {
	Timestamp time.Time `json:"timestamp"`
	Content   string    `json:"content"`
}

// Resource is a named reference.
type Resource struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// Priority is the planning priority of the whole task.
type Priority string

const (
	// PriorityHigh marks urgent work.
	PriorityHigh Priority = "high"

	// PriorityMedium is the usual priority.
	PriorityMedium Priority = "medium"

	// PriorityLow marks work that can wait.
	PriorityLow Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Metadata describes the document as a whole.
type Metadata struct {
	// CreatedAt is set once when the document is created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed on every save.
	UpdatedAt time.Time `json:"updated_at"`

	// Progress is derived from the checklist on every save and is never
	// taken from callers.
	Progress Progress `json:"progress"`

	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`

	// Priority is optional; empty means unset.
	Priority Priority `json:"priority,omitempty"`

	// EstimatedCompletionTime is free-form: an ISO timestamp or a human
	// duration such as "2 days".
	EstimatedCompletionTime string `json:"estimated_completion_time,omitempty"`
}

// Progress summarises checklist completion.
type Progress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// NewDocument returns an empty document created at now.
func NewDocument(now time.Time) *TaskDocument {
	return &TaskDocument{
		Checklist: []ChecklistItem{},
		Notes:     []Note{},
		Resources: []Resource{},
		Metadata: Metadata{
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// ComputeProgress derives progress from a checklist.
func ComputeProgress(items []ChecklistItem) Progress {
	p := Progress{Total: len(items)}
	for _, item := range items {
		if item.Done {
			p.Completed++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
	}
	return p
}

// CurrentTaskIndex returns the index of the first item that is not done, or
// NoCurrentTask if there is none.
func CurrentTaskIndex(items []ChecklistItem) int {
	for i, item := range items {
		if !item.Done {
			return i
		}
	}
	return NoCurrentTask
}

// Touch refreshes the derived fields: UpdatedAt becomes now and Progress is
// recomputed from the checklist. Stores call this on every save.
func (d *TaskDocument) Touch(now time.Time) {
	d.normalize()
	d.Metadata.UpdatedAt = now
	d.Metadata.Progress = ComputeProgress(d.Checklist)
}

// normalize replaces nil collections with empty ones so that the persisted
// form always carries arrays, and documents written by older versions with
// missing fields behave like empty ones.
func (d *TaskDocument) normalize() {
	if d.Checklist == nil {
		d.Checklist = []ChecklistItem{}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	if d.Resources == nil {
		d.Resources = []Resource{}
	}
}

// Clone returns a deep copy of the document.
func (d *TaskDocument) Clone() *TaskDocument {
	c := *d
	c.Checklist = append([]ChecklistItem{}, d.Checklist...)
	c.Notes = append([]Note{}, d.Notes...)
	c.Resources = append([]Resource{}, d.Resources...)
	if d.Metadata.Tags != nil {
		c.Metadata.Tags = append([]string{}, d.Metadata.Tags...)
	}
	return &c
}

// insertItem inserts item at index i, shifting later items right.
func insertItem(items []ChecklistItem, i int, item ChecklistItem) []ChecklistItem {
	items = append(items, ChecklistItem{})
	copy(items[i+1:], items[i:])
	items[i] = item
	return items
}

// removeItem removes the item at index i, shifting later items left.
func removeItem(items []ChecklistItem, i int) ([]ChecklistItem, ChecklistItem) {
	removed := items[i]
	return append(items[:i], items[i+1:]...), removed
}

// moveItem removes the item at from and re-inserts it at to in the
// shortened list. to is clamped to the end of the shortened list. The final
// index of the moved item is returned.
func moveItem(items []ChecklistItem, from, to int) ([]ChecklistItem, int) {
	items, item := removeItem(items, from)
	if to > len(items) {
		to = len(items)
	}
	return insertItem(items, to, item), to
}
