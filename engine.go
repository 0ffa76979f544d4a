package taskdoc

import (
	"context"
	"fmt"
	"time"

	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog"
)

// Engine applies operations to the task document.
//
// Every call re-loads the document from the store, so changes written by
// other processes are always observed. Mutations validate their input
// first and then work on a copy of the loaded document; a failed call
// leaves the stored document untouched.
//
// Example:
//
//	store, _ := taskdoc.NewFileStore("")
//	engine := taskdoc.NewEngine(store)
//	engine.Initialize(ctx, taskdoc.InitializeParams{TaskDescription: "Ship v2"})
//	engine.AddChecklistItem(ctx, taskdoc.NewChecklistItem{
//		Task:                "Write migration",
//		DetailedDescription: "Add the v2 columns",
//	})
type Engine struct {
	store DocumentStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewEngine creates an engine backed by store.
func NewEngine(store DocumentStore, opts ...EngineOption) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying DocumentStore.
func (e *Engine) Store() DocumentStore {
	return e.store
}

// InitializeParams describes a fresh document.
type InitializeParams struct {
	// TaskDescription is the overarching goal. Required.
	TaskDescription string

	// Context is shared context for every checklist item.
	Context string

	// Checklist is the initial checklist. Positions are ignored.
	Checklist []NewChecklistItem

	// Metadata carries the optional tags, priority and estimate.
	Metadata MetadataPatch
}

// Validate checks the description, every initial item and the priority.
func (p InitializeParams) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if err := required(p.TaskDescription); err != nil {
		errs = errs.Append("task_description", err)
	}
	for i, item := range p.Checklist {
		if err := required(item.Task); err != nil {
			errs = errs.Append(fmt.Sprintf("checklist[%d].task", i), err)
		}
		if err := required(item.DetailedDescription); err != nil {
			errs = errs.Append(fmt.Sprintf("checklist[%d].detailed_description", i), err)
		}
	}
	if p.Metadata.Priority != nil && *p.Metadata.Priority != "" {
		if err := knownPriority(string(*p.Metadata.Priority)); err != nil {
			errs = errs.Append("metadata.priority", err)
		}
	}
	return invalidParams(errs.ToError())
}

// Initialize replaces the whole document. Notes and resources are reset
// and the creation time is set to now.
func (e *Engine) Initialize(ctx context.Context, params InitializeParams) (*TaskDocument, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	doc := NewDocument(e.now())
	doc.TaskDescription = params.TaskDescription
	doc.ContextForAllTasks = params.Context
	for _, item := range params.Checklist {
		doc.Checklist = append(doc.Checklist, item.item())
	}
	doc.Metadata = params.Metadata.Apply(doc.Metadata)

	if err := e.save(ctx, "initialize", doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateTaskDescription replaces the overarching goal.
func (e *Engine) UpdateTaskDescription(ctx context.Context, description string) error {
	if err := requireField("task_description", description); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "update_task_description", func(doc *TaskDocument) error {
		doc.TaskDescription = description
		return nil
	})
	return err
}

// UpdateContext replaces the shared context for all checklist items.
func (e *Engine) UpdateContext(ctx context.Context, shared string) error {
	if err := requireField("context", shared); err != nil {
		return err
	}

	_, err := e.mutate(ctx, "update_context", func(doc *TaskDocument) error {
		doc.ContextForAllTasks = shared
		return nil
	})
	return err
}

// AddChecklistItem inserts an item and returns its index. A position in
// [0, len(checklist)] inserts there; anything else appends.
func (e *Engine) AddChecklistItem(ctx context.Context, item NewChecklistItem) (int, error) {
	if err := item.Validate(); err != nil {
		return 0, err
	}

	var index int
	_, err := e.mutate(ctx, "add_checklist_item", func(doc *TaskDocument) error {
		index = len(doc.Checklist)
		if item.Position != nil && *item.Position >= 0 && *item.Position <= len(doc.Checklist) {
			index = *item.Position
		}
		doc.Checklist = insertItem(doc.Checklist, index, item.item())
		return nil
	})
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateChecklistItem applies a partial update to the item at index and
// returns the updated item.
func (e *Engine) UpdateChecklistItem(ctx context.Context, index int,
	patch ChecklistItemPatch) (ChecklistItem, error) {

	if err := patch.Validate(); err != nil {
		return ChecklistItem{}, err
	}

	var updated ChecklistItem
	_, err := e.mutate(ctx, "update_checklist_item", func(doc *TaskDocument) error {
		if err := checkIndex("index", index, len(doc.Checklist)); err != nil {
			return err
		}
		updated = patch.Apply(doc.Checklist[index])
		doc.Checklist[index] = updated
		return nil
	})
	if err != nil {
		return ChecklistItem{}, err
	}
	return updated, nil
}

// MarkTaskDone marks the item at index as done.
func (e *Engine) MarkTaskDone(ctx context.Context, index int) (ChecklistItem, error) {
	return e.setDone(ctx, "mark_task_done", index, true)
}

// MarkTaskUndone marks the item at index as not done.
func (e *Engine) MarkTaskUndone(ctx context.Context, index int) (ChecklistItem, error) {
	return e.setDone(ctx, "mark_task_undone", index, false)
}

func (e *Engine) setDone(ctx context.Context, op string, index int, done bool) (ChecklistItem, error) {
	var item ChecklistItem
	_, err := e.mutate(ctx, op, func(doc *TaskDocument) error {
		if err := checkIndex("index", index, len(doc.Checklist)); err != nil {
			return err
		}
		doc.Checklist[index].Done = done
		item = doc.Checklist[index]
		return nil
	})
	if err != nil {
		return ChecklistItem{}, err
	}
	return item, nil
}

// RemoveChecklistItem removes the item at index and returns it. Later items
// shift left.
func (e *Engine) RemoveChecklistItem(ctx context.Context, index int) (ChecklistItem, error) {
	var removed ChecklistItem
	_, err := e.mutate(ctx, "remove_checklist_item", func(doc *TaskDocument) error {
		if err := checkIndex("index", index, len(doc.Checklist)); err != nil {
			return err
		}
		doc.Checklist, removed = removeItem(doc.Checklist, index)
		return nil
	})
	if err != nil {
		return ChecklistItem{}, err
	}
	return removed, nil
}

// ReorderChecklistItem moves the item at from to position to and returns
// its final index.
//
// from must address an existing item. to is checked against the list before
// the move and may equal its length. The item is removed first and then
// inserted at to in the shortened list, clamped to its end, so moving an
// item forward lands it one slot later than a plain "insert before to".
func (e *Engine) ReorderChecklistItem(ctx context.Context, from, to int) (int, error) {
	var final int
	_, err := e.mutate(ctx, "reorder_checklist_item", func(doc *TaskDocument) error {
		n := len(doc.Checklist)
		if err := checkIndex("from_index", from, n); err != nil {
			return err
		}
		if to < 0 || to > n {
			return &ErrIndexOutOfRange{Field: "to_index", Index: to, Len: n, Inclusive: true}
		}
		doc.Checklist, final = moveItem(doc.Checklist, from, to)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return final, nil
}

// AddNote appends a note stamped with the current time.
func (e *Engine) AddNote(ctx context.Context, content string) (Note, error) {
	if err := requireField("content", content); err != nil {
		return Note{}, err
	}

	note := Note{Timestamp: e.now(), Content: content}
	_, err := e.mutate(ctx, "add_note", func(doc *TaskDocument) error {
		doc.Notes = append(doc.Notes, note)
		return nil
	})
	if err != nil {
		return Note{}, err
	}
	return note, nil
}

// AddResource appends a resource.
func (e *Engine) AddResource(ctx context.Context, res NewResource) (Resource, error) {
	if err := res.Validate(); err != nil {
		return Resource{}, err
	}

	resource := Resource{
		Name:        res.Name,
		URL:         res.URL,
		Description: res.Description,
	}
	_, err := e.mutate(ctx, "add_resource", func(doc *TaskDocument) error {
		doc.Resources = append(doc.Resources, resource)
		return nil
	})
	if err != nil {
		return Resource{}, err
	}
	return resource, nil
}

// UpdateMetadata applies a partial metadata update and returns the
// resulting metadata. An empty patch saves nothing.
func (e *Engine) UpdateMetadata(ctx context.Context, patch MetadataPatch) (Metadata, error) {
	if err := patch.Validate(); err != nil {
		return Metadata{}, err
	}

	if patch.Empty() {
		return e.load(ctx).Metadata, nil
	}

	doc, err := e.mutate(ctx, "update_metadata", func(doc *TaskDocument) error {
		doc.Metadata = patch.Apply(doc.Metadata)
		return nil
	})
	if err != nil {
		return Metadata{}, err
	}
	return doc.Metadata, nil
}

// Clear resets the store to an empty document.
func (e *Engine) Clear(ctx context.Context) error {
	return e.save(ctx, "clear", NewDocument(e.now()))
}

// ChecklistSummary renders the checklist as Markdown.
func (e *Engine) ChecklistSummary(ctx context.Context, opts SummaryOptions) string {
	return RenderSummary(e.load(ctx), opts)
}

// CurrentTaskDetails returns the view of the document focused on the
// first item that is not done.
func (e *Engine) CurrentTaskDetails(ctx context.Context) CurrentTaskView {
	return NewCurrentTaskView(e.load(ctx))
}

// Document returns the stored document as-is.
func (e *Engine) Document(ctx context.Context) *TaskDocument {
	return e.load(ctx)
}

// load reads the document, logging degraded outcomes. Corrupt or unreadable
// content is replaced by an empty document.
func (e *Engine) load(ctx context.Context) *TaskDocument {
	res := e.store.Load(ctx)
	if res.Outcome.Degraded() {
		e.log.Warn().
			Err(res.Cause).
			Str("outcome", res.Outcome.String()).
			Msg("stored document discarded, using empty document")
	} else {
		e.log.Trace().Str("outcome", res.Outcome.String()).Msg("document loaded")
	}
	return res.Document
}

// mutate loads the document, applies fn to a copy and saves the copy. If fn
// fails nothing is saved.
func (e *Engine) mutate(ctx context.Context, op string,
	fn func(doc *TaskDocument) error) (*TaskDocument, error) {

	doc := e.load(ctx).Clone()
	if err := fn(doc); err != nil {
		return nil, err
	}
	if err := e.save(ctx, op, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (e *Engine) save(ctx context.Context, op string, doc *TaskDocument) error {
	if err := e.store.Save(ctx, doc); err != nil {
		e.log.Error().Err(err).Str("op", op).Msg("failed to save document")
		return err
	}
	e.log.Debug().
		Str("op", op).
		Int("items", len(doc.Checklist)).
		Int("completed", doc.Metadata.Progress.Completed).
		Msg("document saved")
	return nil
}

// checkIndex reports whether index addresses an existing item.
func checkIndex(field string, index, n int) error {
	if index < 0 || index >= n {
		return &ErrIndexOutOfRange{Field: field, Index: index, Len: n}
	}
	return nil
}
