package taskdoc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hay-kot/criterio"
)

// NewChecklistItem describes an item to insert into the checklist.
type NewChecklistItem struct {
	Task                string
	DetailedDescription string
	ContextAndPlan      string
	Done                bool

	// Position is the insertion index. Nil, or a value outside
	// [0, len(checklist)], appends the item at the end.
	Position *int
}

// Validate checks the required fields.
func (n NewChecklistItem) Validate() error {
	return invalidParams(criterio.ValidateStruct(
		criterio.Run("task", n.Task, required),
		criterio.Run("detailed_description", n.DetailedDescription, required),
	))
}

// item returns the checklist item n describes.
func (n NewChecklistItem) item() ChecklistItem {
	return ChecklistItem{
		Task:                n.Task,
		DetailedDescription: n.DetailedDescription,
		ContextAndPlan:      n.ContextAndPlan,
		Done:                n.Done,
	}
}

// ChecklistItemPatch is a partial update of a checklist item. Nil fields
// retain the current value.
type ChecklistItemPatch struct {
	Task                *string
	DetailedDescription *string
	ContextAndPlan      *string
	Done                *bool
}

// Validate rejects patches that would blank a required field.
func (p ChecklistItemPatch) Validate() error {
	var errs criterio.FieldErrorsBuilder
	if p.Task != nil {
		if err := required(*p.Task); err != nil {
			errs = errs.Append("task", err)
		}
	}
	if p.DetailedDescription != nil {
		if err := required(*p.DetailedDescription); err != nil {
			errs = errs.Append("detailed_description", err)
		}
	}
	return invalidParams(errs.ToError())
}

// Apply returns item with the provided fields overridden.
func (p ChecklistItemPatch) Apply(item ChecklistItem) ChecklistItem {
	if p.Task != nil {
		item.Task = *p.Task
	}
	if p.DetailedDescription != nil {
		item.DetailedDescription = *p.DetailedDescription
	}
	if p.ContextAndPlan != nil {
		item.ContextAndPlan = *p.ContextAndPlan
	}
	if p.Done != nil {
		item.Done = *p.Done
	}
	return item
}

// MetadataPatch is a partial update of the document metadata. Timestamps
// and progress are not part of the patch: they are always derived.
type MetadataPatch struct {
	Tags                    []string
	Priority                *Priority
	EstimatedCompletionTime *string
}

// Empty reports whether the patch changes nothing.
func (p MetadataPatch) Empty() bool {
	return p.Tags == nil && p.Priority == nil && p.EstimatedCompletionTime == nil
}

// Validate rejects unknown priorities. An empty priority clears it.
func (p MetadataPatch) Validate() error {
	if p.Priority == nil || *p.Priority == "" {
		return nil
	}
	return invalidParams(criterio.ValidateStruct(
		criterio.Run("priority", string(*p.Priority), knownPriority),
	))
}

// Apply returns md with the provided fields overridden.
func (p MetadataPatch) Apply(md Metadata) Metadata {
	if p.Tags != nil {
		md.Tags = append([]string{}, p.Tags...)
	}
	if p.Priority != nil {
		md.Priority = *p.Priority
	}
	if p.EstimatedCompletionTime != nil {
		md.EstimatedCompletionTime = *p.EstimatedCompletionTime
	}
	return md
}

// NewResource describes a resource to append.
type NewResource struct {
	Name        string
	URL         string
	Description string
}

// Validate checks the required fields.
func (r NewResource) Validate() error {
	return invalidParams(criterio.ValidateStruct(
		criterio.Run("name", r.Name, required),
		criterio.Run("url", r.URL, required),
	))
}

// requireField fails with ErrInvalidParams when value is blank.
func requireField(field, value string) error {
	return invalidParams(criterio.ValidateStruct(criterio.Run(field, value, required)))
}

func required(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("is required")
	}
	return nil
}

func knownPriority(value string) error {
	if !Priority(value).Valid() {
		return fmt.Errorf("must be one of high, medium, low (got %q)", value)
	}
	return nil
}
