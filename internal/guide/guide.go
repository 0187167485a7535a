// Package guide produces the onboarding checklist shown on the help screen.
package guide

import (
	"fmt"
	"strings"
)

// Step is one actionable recommendation in the workflow.
type Step struct {
	Title       string
	Description string
}

// Metadata carries just enough backend state to personalize the steps.
type Metadata struct {
	DocCount int
	HasData  bool
}

// Build returns the getting-started checklist, adjusted to whether the
// backend already holds indexed documents.
func Build(meta Metadata) []Step {
	corpus := "your documents"
	if meta.DocCount == 1 {
		corpus = "your document"
	} else if meta.DocCount > 1 {
		corpus = fmt.Sprintf("your %d documents", meta.DocCount)
	}

	steps := []Step{}
	if !meta.HasData {
		steps = append(steps, Step{
			Title:       "Upload a document",
			Description: "Press Ctrl+U and enter the path to a PDF or office file. Indexing runs on the backend; the progress bar tracks it and the catalog refreshes when it finishes.",
		})
	}
	steps = append(steps,
		Step{
			Title:       "Ask a question",
			Description: fmt.Sprintf("Type into the composer and press Enter. The answer cites the passages of %s it was grounded on, with page numbers where known.", corpus),
		},
		Step{
			Title:       "Narrow the scope",
			Description: "Open the documents panel with Ctrl+D and toggle entries with Space. A scoped session keeps its selection; new sessions start unscoped.",
		},
		Step{
			Title:       "Follow a citation",
			Description: "Ctrl+O opens the first citation of the latest answer in the built-in viewer, landing on the cited page. From the documents panel, Enter opens the highlighted document.",
		},
		Step{
			Title:       "Keep conversations apart",
			Description: "Ctrl+N starts a fresh session, Ctrl+S lists existing ones. Sessions survive restarts; the one you used last is reopened.",
		},
	)
	return steps
}

// Render formats the steps as numbered plain text for a pager.
func Render(steps []Step) string {
	var b strings.Builder
	for i, step := range steps {
		fmt.Fprintf(&b, "%d. %s\n   %s\n", i+1, step.Title, step.Description)
		if i < len(steps)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}
