package docview

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	paragraphSplit   = regexp.MustCompile(`\n{2,}`)
	whitespaceSanity = regexp.MustCompile(`\s+`)
)

// repeatThreshold is how often a short line must recur before it is treated
// as a running header or footer.
const repeatThreshold = 3

// Condense cleans extracted PDF text for the terminal viewer: newlines are
// normalized, repeated paragraphs are emitted once, and short lines that
// recur across pages (running headers, footers, page numbers) are dropped.
func Condense(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	repeats := countShortLines(content)
	paragraphs := paragraphSplit.Split(content, -1)
	seen := map[string]bool{}
	kept := make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		trimmed := strings.TrimSpace(paragraph)
		if trimmed == "" {
			continue
		}
		if isRunningFurniture(trimmed, repeats) {
			continue
		}
		hash := hashParagraph(canonicalParagraph(trimmed))
		if seen[hash] {
			continue
		}
		seen[hash] = true
		kept = append(kept, trimmed)
	}
	return strings.Join(kept, "\n\n")
}

func countShortLines(content string) map[string]int {
	counts := map[string]int{}
	for _, line := range strings.Split(content, "\n") {
		canonical := canonicalParagraph(line)
		if canonical == "" || len(canonical) > 80 {
			continue
		}
		counts[canonical]++
	}
	return counts
}

// isRunningFurniture reports whether a paragraph is page furniture rather
// than body text: a bare page number, or a short line seen on many pages.
func isRunningFurniture(paragraph string, repeats map[string]int) bool {
	canonical := canonicalParagraph(paragraph)
	if isPageNumber(canonical) {
		return true
	}
	if strings.Contains(paragraph, "\n") {
		return false
	}
	return repeats[canonical] >= repeatThreshold
}

func isPageNumber(line string) bool {
	if line == "" || len(line) > 8 {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func canonicalParagraph(text string) string {
	text = strings.TrimSpace(text)
	return whitespaceSanity.ReplaceAllString(text, " ")
}

func hashParagraph(text string) string {
	sum := sha1.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
