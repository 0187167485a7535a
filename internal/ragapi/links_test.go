package ragapi

import (
	"strings"
	"testing"
)

func TestEncodeObjectPathKeepsSlashesStructural(t *testing.T) {
	got := EncodeObjectPath("uploaded/분기 보고서.pdf")
	if !strings.Contains(got, "/") {
		t.Fatalf("slash lost: %q", got)
	}
	if strings.Contains(got, " ") {
		t.Fatalf("segment not escaped: %q", got)
	}
	if !strings.HasPrefix(got, "uploaded/") {
		t.Fatalf("plain segment should pass through: %q", got)
	}
}

func TestViewURL(t *testing.T) {
	c := New("http://backend:8000/llama", nil)
	page := 4
	got := c.ViewURL("uploaded/report.pdf", "report.pdf", "uploaded/originals/report.docx", &page)
	if !strings.HasPrefix(got, "http://backend:8000/llama/view/uploaded/report.pdf?") {
		t.Fatalf("unexpected view url: %q", got)
	}
	if !strings.Contains(got, "name=report.pdf") {
		t.Fatalf("name parameter missing: %q", got)
	}
	if !strings.Contains(got, "orig=") {
		t.Fatalf("orig parameter missing: %q", got)
	}
	if !strings.HasSuffix(got, "#page=4") {
		t.Fatalf("page fragment missing: %q", got)
	}
}

func TestViewURLWithoutOptions(t *testing.T) {
	c := New("http://backend:8000", nil)
	got := c.ViewURL("uploaded/report.pdf", "", "", nil)
	if got != "http://backend:8000/view/uploaded/report.pdf" {
		t.Fatalf("bare view url should have no query or fragment, got %q", got)
	}
}

func TestViewURLSanitizesDisplayName(t *testing.T) {
	c := New("http://backend:8000", nil)
	got := c.ViewURL("uploaded/q.pdf", "Q1/Q2:summary?.docx", "", nil)
	if !strings.Contains(got, "name=Q1_Q2_summary_.pdf") {
		t.Fatalf("display name not sanitized: %q", got)
	}
}

func TestDownloadURL(t *testing.T) {
	c := New("http://backend:8000", nil)
	got := c.DownloadURL("uploaded/report.pdf", "Q1 report.pdf")
	if got != "http://backend:8000/download/uploaded/report.pdf?name=Q1+report.pdf" {
		t.Fatalf("unexpected download url: %q", got)
	}
}
