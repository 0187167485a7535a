package filename

import "testing"

func TestRemoveExtension(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"single pdf", "report.pdf", "report"},
		{"stacked pdf", "report.pdf.pdf", "report"},
		{"office doc", "slides.pptx", "slides"},
		{"unknown extension kept", "release.v2", "release.v2"},
		{"dot in title preserved", "budget 3.5 plan.pdf", "budget 3.5 plan"},
		{"hidden file untouched", ".gitignore", ".gitignore"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RemoveExtension(tc.in); got != tc.want {
				t.Fatalf("RemoveExtension(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSafePDFName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty falls back", "", "document.pdf"},
		{"duplicate extension collapses", "report.pdf.pdf", "report.pdf"},
		{"illegal characters replaced", `Q1/Q2:summary?.docx`, "Q1_Q2_summary_.pdf"},
		{"plain title", "annual review", "annual review.pdf"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SafePDFName(tc.in); got != tc.want {
				t.Fatalf("SafePDFName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestBasenameNoExt(t *testing.T) {
	if got := BasenameNoExt("uploaded/abc/report.pdf"); got != "report" {
		t.Fatalf("BasenameNoExt = %q, want %q", got, "report")
	}
	if got := BasenameNoExt("report.docx"); got != "report" {
		t.Fatalf("BasenameNoExt without path = %q, want %q", got, "report")
	}
}

func TestStripDedupPrefix(t *testing.T) {
	hashed := "0123456789abcdef0123456789abcdef_report.pdf"
	if got := StripDedupPrefix(hashed); got != "report.pdf" {
		t.Fatalf("StripDedupPrefix = %q, want %q", got, "report.pdf")
	}
	if got := StripDedupPrefix("report.pdf"); got != "report.pdf" {
		t.Fatalf("StripDedupPrefix should leave unprefixed names alone, got %q", got)
	}
}

func TestDisplayTitle(t *testing.T) {
	if got := DisplayTitle("", "Untitled"); got != "Untitled" {
		t.Fatalf("empty title should use fallback, got %q", got)
	}
	if got := DisplayTitle("notes.pdf", "Untitled"); got != "notes" {
		t.Fatalf("DisplayTitle = %q, want %q", got, "notes")
	}
}
