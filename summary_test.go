package taskdoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func summaryDoc() *TaskDocument {
	doc := NewDocument(time.Now())
	doc.TaskDescription = "Ship the importer"
	doc.ContextForAllTasks = "Repo lives in ./importer"
	doc.Checklist = []ChecklistItem{
		{
			Task:                "Parse CSV",
			DetailedDescription: "Handle quoted fields\nand BOMs",
			ContextAndPlan:      "use encoding/csv",
			Done:                true,
		},
		{
			Task:                "Write rows",
			DetailedDescription: "Batch inserts",
			ContextAndPlan:      "secret plan",
		},
	}
	return doc
}

func TestRenderSummary(t *testing.T) {
	want := "# Task: Ship the importer\n" +
		"\n" +
		"## Context\n" +
		"Repo lives in ./importer\n" +
		"\n" +
		"## Progress: 1/2 (50%)\n" +
		"\n" +
		"## Checklist\n" +
		"- [x] 0. Parse CSV\n" +
		"- [ ] 1. Write rows\n"

	assert.Equal(t, want, RenderSummary(summaryDoc(), SummaryOptions{}))
}

func TestRenderSummaryWithDescriptions(t *testing.T) {
	want := "# Task: Ship the importer\n" +
		"\n" +
		"## Context\n" +
		"Repo lives in ./importer\n" +
		"\n" +
		"## Progress: 1/2 (50%)\n" +
		"\n" +
		"## Checklist\n" +
		"- [x] 0. Parse CSV\n" +
		"  Handle quoted fields\n" +
		"  and BOMs\n" +
		"- [ ] 1. Write rows\n" +
		"  Batch inserts\n"

	got := RenderSummary(summaryDoc(), SummaryOptions{IncludeDescriptions: true})
	assert.Equal(t, want, got)
	assert.NotContains(t, got, "secret plan")
	assert.NotContains(t, got, "encoding/csv")
}

func TestRenderSummaryWithoutContext(t *testing.T) {
	doc := summaryDoc()
	doc.ContextForAllTasks = ""

	got := RenderSummary(doc, SummaryOptions{})
	assert.NotContains(t, got, "## Context")
	assert.Contains(t, got, "# Task: Ship the importer\n\n## Progress: 1/2 (50%)\n")
}

func TestRenderSummaryEmpty(t *testing.T) {
	want := "# Task:\n\n## Progress: 0/0 (0%)\n\n## Checklist\n_No checklist items._\n"
	assert.Equal(t, want, RenderSummary(NewDocument(time.Now()), SummaryOptions{IncludeDescriptions: true}))
}
