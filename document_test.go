package taskdoc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name string
		done []bool
		want Progress
	}{
		{"empty", nil, Progress{}},
		{"none done", []bool{false, false}, Progress{Completed: 0, Total: 2, Percentage: 0}},
		{"one of three", []bool{true, false, false}, Progress{Completed: 1, Total: 3, Percentage: 33}},
		{"two of three", []bool{true, true, false}, Progress{Completed: 2, Total: 3, Percentage: 67}},
		{"half rounds up", []bool{true, false, false, false, false, false, false, false}, Progress{Completed: 1, Total: 8, Percentage: 13}},
		{"all done", []bool{true, true}, Progress{Completed: 2, Total: 2, Percentage: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checklist := make([]ChecklistItem, len(tt.done))
			for i, done := range tt.done {
				checklist[i].Done = done
			}
			if got := ComputeProgress(checklist); got != tt.want {
				t.Errorf("ComputeProgress() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCurrentTaskIndex(t *testing.T) {
	tests := []struct {
		name string
		done []bool
		want int
	}{
		{"empty", nil, NoCurrentTask},
		{"first open", []bool{false, true}, 0},
		{"skips done", []bool{true, true, false, false}, 2},
		{"gap before done", []bool{true, false, true}, 1},
		{"all done", []bool{true, true}, NoCurrentTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checklist := make([]ChecklistItem, len(tt.done))
			for i, done := range tt.done {
				checklist[i].Done = done
			}
			if got := CurrentTaskIndex(checklist); got != tt.want {
				t.Errorf("CurrentTaskIndex() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := NewDocument(time.Now())
	doc.Checklist = []ChecklistItem{{Task: "a", DetailedDescription: "do a"}}
	doc.Notes = []Note{{Content: "n"}}
	doc.Resources = []Resource{{Name: "r"}}
	doc.Metadata.Tags = []string{"t"}

	c := doc.Clone()
	c.Checklist[0].Done = true
	c.Notes[0].Content = "changed"
	c.Resources[0].Name = "changed"
	c.Metadata.Tags[0] = "changed"
	c.Checklist = append(c.Checklist, ChecklistItem{Task: "b"})

	assert.False(t, doc.Checklist[0].Done)
	assert.Len(t, doc.Checklist, 1)
	assert.Equal(t, "n", doc.Notes[0].Content)
	assert.Equal(t, "r", doc.Resources[0].Name)
	assert.Equal(t, []string{"t"}, doc.Metadata.Tags)
}

func TestTouch(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := &TaskDocument{
		Checklist: []ChecklistItem{{Done: true}, {}},
		Metadata:  Metadata{CreatedAt: created},
	}

	now := created.Add(time.Hour)
	doc.Touch(now)

	assert.Equal(t, Progress{Completed: 1, Total: 2, Percentage: 50}, doc.Metadata.Progress)
	assert.True(t, doc.Metadata.UpdatedAt.Equal(now))
	assert.True(t, doc.Metadata.CreatedAt.Equal(created))
	assert.NotNil(t, doc.Notes)
	assert.NotNil(t, doc.Resources)
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityHigh, PriorityMedium, PriorityLow} {
		assert.True(t, p.Valid(), p)
	}
	for _, p := range []Priority{"", "urgent", "HIGH"} {
		assert.False(t, p.Valid(), p)
	}
}
