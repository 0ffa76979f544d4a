package taskdoc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{
			err:  &ErrInvalidParams{Field: "task", Reason: "is required"},
			want: "task: is required",
		},
		{
			err:  &ErrInvalidParams{Reason: "bad"},
			want: "bad",
		},
		{
			err:  &ErrIndexOutOfRange{Field: "index", Index: 5, Len: 3},
			want: "index 5 is out of range [0, 3)",
		},
		{
			err:  &ErrIndexOutOfRange{Field: "to_index", Index: 9, Len: 3, Inclusive: true},
			want: "to_index 9 is out of range [0, 3]",
		},
		{
			err:  &ErrStorage{Op: "save", Path: "/tmp/task.json", Cause: errors.New("disk full")},
			want: "storage save /tmp/task.json failed: disk full",
		},
		{
			err:  &ErrStorage{Op: "save", Cause: errors.New("disk full")},
			want: "storage save failed: disk full",
		},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorClassification(t *testing.T) {
	cause := errors.New("disk full")
	storage := fmt.Errorf("wrapped: %w", &ErrStorage{Op: "save", Cause: cause})

	assert.True(t, IsStorageError(storage))
	assert.False(t, IsInvalidParams(storage))
	assert.ErrorIs(t, storage, cause)

	assert.True(t, IsInvalidParams(&ErrInvalidParams{Field: "x"}))
	assert.True(t, IsInvalidParams(fmt.Errorf("wrapped: %w", &ErrIndexOutOfRange{})))
	assert.False(t, IsStorageError(&ErrInvalidParams{}))
	assert.False(t, IsInvalidParams(errors.New("other")))
}
