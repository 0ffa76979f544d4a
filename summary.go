package taskdoc

import (
	"fmt"
	"strings"
)

// RenderSummary renders the document as compact Markdown: title, shared
// context, progress and one line per checklist item. Per-item context and
// plans are never included.
func RenderSummary(doc *TaskDocument, opts SummaryOptions) string {
	var b strings.Builder

	b.WriteString(strings.TrimRight("# Task: "+doc.TaskDescription, " "))
	b.WriteString("\n\n")

	if strings.TrimSpace(doc.ContextForAllTasks) != "" {
		b.WriteString("## Context\n")
		b.WriteString(doc.ContextForAllTasks)
		b.WriteString("\n\n")
	}

	p := ComputeProgress(doc.Checklist)
	fmt.Fprintf(&b, "## Progress: %d/%d (%d%%)\n\n", p.Completed, p.Total, p.Percentage)

	b.WriteString("## Checklist\n")
	if len(doc.Checklist) == 0 {
		b.WriteString("_No checklist items._\n")
		return b.String()
	}

	for i, item := range doc.Checklist {
		box := " "
		if item.Done {
			box = "x"
		}
		fmt.Fprintf(&b, "- [%s] %d. %s\n", box, i, item.Task)

		if opts.IncludeDescriptions && item.DetailedDescription != "" {
			for _, line := range strings.Split(item.DetailedDescription, "\n") {
				b.WriteString(strings.TrimRight("  "+line, " "))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}
