package taskdoc

// Tool input types for the MCP tools registered by NewServer. The json and
// jsonschema tags define each tool's input schema; fields without omitempty
// are required.

// ChecklistItemInput is one initial checklist item of initialize_task.
type ChecklistItemInput struct {
	Task                string `json:"task" jsonschema:"Short label for the step"`
	DetailedDescription string `json:"detailed_description" jsonschema:"What the step involves"`
	ContextAndPlan      string `json:"context_and_plan,omitempty" jsonschema:"Background and execution plan for this step"`
	Done                bool   `json:"done,omitempty" jsonschema:"Whether the step is already done"`
}

// MetadataInput carries the caller-settable metadata fields.
type MetadataInput struct {
	Tags                    []string `json:"tags,omitempty" jsonschema:"Free-form labels"`
	Priority                *string  `json:"priority,omitempty" jsonschema:"One of high, medium or low"`
	EstimatedCompletionTime *string  `json:"estimated_completion_time,omitempty" jsonschema:"ISO timestamp or human duration such as 2 days"`
}

// patch converts the input to a MetadataPatch.
func (m MetadataInput) patch() MetadataPatch {
	p := MetadataPatch{
		Tags:                    m.Tags,
		EstimatedCompletionTime: m.EstimatedCompletionTime,
	}
	if m.Priority != nil {
		priority := Priority(*m.Priority)
		p.Priority = &priority
	}
	return p
}

// InitializeTaskInput is the input for initialize_task.
type InitializeTaskInput struct {
	TaskDescription    string               `json:"task_description" jsonschema:"The overarching goal"`
	ContextForAllTasks string               `json:"context_for_all_tasks,omitempty" jsonschema:"Context shared by every checklist item"`
	Checklist          []ChecklistItemInput `json:"checklist,omitempty" jsonschema:"Initial checklist items in execution order"`
	Metadata           *MetadataInput       `json:"metadata,omitempty" jsonschema:"Optional tags, priority and completion estimate"`
}

// params converts the input to InitializeParams.
func (in InitializeTaskInput) params() InitializeParams {
	p := InitializeParams{
		TaskDescription: in.TaskDescription,
		Context:         in.ContextForAllTasks,
	}
	for _, item := range in.Checklist {
		p.Checklist = append(p.Checklist, NewChecklistItem{
			Task:                item.Task,
			DetailedDescription: item.DetailedDescription,
			ContextAndPlan:      item.ContextAndPlan,
			Done:                item.Done,
		})
	}
	if in.Metadata != nil {
		p.Metadata = in.Metadata.patch()
	}
	return p
}

// UpdateTaskDescriptionInput is the input for update_task_description.
type UpdateTaskDescriptionInput struct {
	TaskDescription string `json:"task_description" jsonschema:"The new overarching goal"`
}

// UpdateContextInput is the input for update_context.
type UpdateContextInput struct {
	Context string `json:"context" jsonschema:"Context shared by every checklist item"`
}

// AddChecklistItemInput is the input for add_checklist_item.
type AddChecklistItemInput struct {
	Task                string `json:"task" jsonschema:"Short label for the step"`
	DetailedDescription string `json:"detailed_description" jsonschema:"What the step involves"`
	ContextAndPlan      string `json:"context_and_plan,omitempty" jsonschema:"Background and execution plan for this step"`
	Done                bool   `json:"done,omitempty" jsonschema:"Whether the step is already done"`
	Position            *int   `json:"position,omitempty" jsonschema:"Insertion index; appends when omitted or out of range"`
}

// UpdateChecklistItemInput is the input for update_checklist_item. Omitted
// fields keep their current value.
type UpdateChecklistItemInput struct {
	Index               int     `json:"index" jsonschema:"Index of the item to update"`
	Task                *string `json:"task,omitempty" jsonschema:"New label"`
	DetailedDescription *string `json:"detailed_description,omitempty" jsonschema:"New description"`
	ContextAndPlan      *string `json:"context_and_plan,omitempty" jsonschema:"New context and plan"`
	Done                *bool   `json:"done,omitempty" jsonschema:"New completion state"`
}

// IndexInput is the input for tools addressing one checklist item.
type IndexInput struct {
	Index int `json:"index" jsonschema:"Index of the checklist item"`
}

// ReorderChecklistItemInput is the input for reorder_checklist_item.
type ReorderChecklistItemInput struct {
	FromIndex int `json:"from_index" jsonschema:"Index of the item to move"`
	ToIndex   int `json:"to_index" jsonschema:"Target index, at most the checklist length"`
}

// AddNoteInput is the input for add_note.
type AddNoteInput struct {
	Content string `json:"content" jsonschema:"The note text"`
}

// AddResourceInput is the input for add_resource.
type AddResourceInput struct {
	Name        string `json:"name" jsonschema:"Resource name"`
	URL         string `json:"url" jsonschema:"URL or file path"`
	Description string `json:"description,omitempty" jsonschema:"What the resource is for"`
}

// ChecklistSummaryInput is the input for get_checklist_summary.
type ChecklistSummaryInput struct {
	IncludeDescriptions bool `json:"include_descriptions,omitempty" jsonschema:"Include each item's detailed description"`
}

// EmptyInput is the input for tools without arguments.
type EmptyInput struct{}
