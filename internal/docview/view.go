package docview

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var extraneousWhitespace = regexp.MustCompile(`[ \t]+`)

// Document is an opened cited document ready for terminal display.
type Document struct {
	Path  string
	Pages int
}

// Open inspects a cached document.
func Open(path string) (Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()
	return Document{Path: path, Pages: reader.NumPage()}, nil
}

// ExtractText returns the whole document as plain text.
func ExtractText(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf text: %w", err)
	}
	var builder strings.Builder
	if _, err := io.Copy(&builder, content); err != nil {
		return "", err
	}
	return Condense(tidyText(builder.String())), nil
}

// ExtractPageText returns the text of one 1-based page so the viewer can land
// on the cited evidence. Out-of-range pages fall back to the whole document.
func ExtractPageText(path string, page int) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	if page < 1 || page > reader.NumPage() {
		return ExtractText(path)
	}
	p := reader.Page(page)
	if p.V.IsNull() {
		return ExtractText(path)
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract page %d: %w", page, err)
	}
	return tidyText(text), nil
}

func tidyText(text string) string {
	text = extraneousWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
