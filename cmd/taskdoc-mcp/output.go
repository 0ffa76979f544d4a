package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// maxReadableWidth caps the word wrap width of rendered Markdown.
const maxReadableWidth = 100

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// renderMarkdown renders markdown with glamour when stdout is a terminal.
// Returns the original text when stdout is not a terminal or rendering
// fails.
func renderMarkdown(markdown string) string {
	if !isTerminal() {
		return markdown
	}

	wrapWidth := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		wrapWidth = w
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
