package taskdoc

// SummaryOptions controls RenderSummary.
type SummaryOptions struct {
	IncludeDescriptions bool // Print each item's detailed description
}

// CurrentTaskView is the document as seen while working on the current
// task. Only the current item carries its context and plan.
type CurrentTaskView struct {
	UltimateGoal       string            `json:"ultimate_goal"`         // The document's task description
	ContextForAllTasks string            `json:"context_for_all_tasks"` // Shared context
	CurrentTaskIndex   int               `json:"current_task_index"`    // NoCurrentTask when all done
	CurrentTask        *ChecklistItem    `json:"current_task"`          // Nil when all done
	Checklist          []CurrentTaskItem `json:"checklist"`             // Every item, in order
	Metadata           Metadata          `json:"metadata"`              // Including progress
	Notes              []Note            `json:"notes"`                 // All notes
	Resources          []Resource        `json:"resources"`             // All resources
}

// CurrentTaskItem is one checklist entry of a CurrentTaskView.
type CurrentTaskItem struct {
	Index               int     `json:"index"`                      // Position in the checklist
	IsCurrent           bool    `json:"is_current"`                 // First item not done
	Task                string  `json:"task"`                       // Short label
	DetailedDescription string  `json:"detailed_description"`       // What the step involves
	ContextAndPlan      *string `json:"context_and_plan,omitempty"` // Set on the current item only
	Done                bool    `json:"done"`                       // Completion flag
}

// NewCurrentTaskView builds the current-task view of doc.
func NewCurrentTaskView(doc *TaskDocument) CurrentTaskView {
	current := CurrentTaskIndex(doc.Checklist)

	view := CurrentTaskView{
		UltimateGoal:       doc.TaskDescription,
		ContextForAllTasks: doc.ContextForAllTasks,
		CurrentTaskIndex:   current,
		Checklist:          make([]CurrentTaskItem, 0, len(doc.Checklist)),
		Metadata:           doc.Metadata,
		Notes:              append([]Note{}, doc.Notes...),
		Resources:          append([]Resource{}, doc.Resources...),
	}
	view.Metadata.Progress = ComputeProgress(doc.Checklist)

	for i, item := range doc.Checklist {
		entry := CurrentTaskItem{
			Index:               i,
			IsCurrent:           i == current,
			Task:                item.Task,
			DetailedDescription: item.DetailedDescription,
			Done:                item.Done,
		}
		if entry.IsCurrent {
			plan := item.ContextAndPlan
			entry.ContextAndPlan = &plan

			full := item
			view.CurrentTask = &full
		}
		view.Checklist = append(view.Checklist, entry)
	}
	return view
}
