package ragapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAskReadsAliasedFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"output":"the answer","evidence":[{"doc_id":"d1","chunk":"evidence text"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	answer, sources, err := client.Ask(context.Background(), "why?", 3)
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if answer != "the answer" {
		t.Fatalf("answer alias not honored: %q", answer)
	}
	if len(sources) != 1 || sources[0].DocID != "d1" || sources[0].Snippet != "evidence text" {
		t.Fatalf("sources not normalized: %#v", sources)
	}
}

func TestAskSurfacesBackendErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if _, _, err := client.Ask(context.Background(), "why?", 3); err == nil {
		t.Fatal("expected error for 503 response")
	} else if !strings.Contains(err.Error(), "index unavailable") {
		t.Fatalf("error should carry body text, got %v", err)
	}
}

func TestListDocsFallsBackAcrossRoutes(t *testing.T) {
	var hits []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits = append(hits, r.URL.Path)
		switch r.URL.Path {
		case "/rag/docs", "/docs":
			http.Error(w, "not here", http.StatusNotFound)
		case "/files":
			switch r.URL.Query().Get("prefix") {
			case "uploaded/":
				w.Write([]byte(`{"files":[
					"uploaded/0123456789abcdef0123456789abcdef_report.pdf",
					"uploaded/report.pdf.sha256",
					"uploaded/report.meta",
					"uploaded/originals/0123456789abcdef0123456789abcdef_report.docx",
					"uploaded/notes.txt"
				]}`))
			case "uploaded/originals/":
				w.Write([]byte(`{"files":["uploaded/originals/0123456789abcdef0123456789abcdef_report.docx"]}`))
			default:
				t.Fatalf("unexpected prefix %q", r.URL.Query().Get("prefix"))
			}
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(server.URL, nil)
	docs, err := client.ListDocs(context.Background())
	if err != nil {
		t.Fatalf("fallback chain failed: %v", err)
	}
	if len(hits) < 3 || hits[0] != "/rag/docs" || hits[1] != "/docs" {
		t.Fatalf("providers not attempted in order: %v", hits)
	}
	if len(docs) != 1 {
		t.Fatalf("expected the one visible pdf, got %#v", docs)
	}
	doc := docs[0]
	if doc.DocID != "0123456789abcdef0123456789abcdef_report" {
		t.Fatalf("doc_id should be basename without extension, got %q", doc.DocID)
	}
	if doc.Title != "report.pdf" {
		t.Fatalf("title should drop the dedup prefix, got %q", doc.Title)
	}
	if doc.OriginalKey == "" || doc.OriginalName != "report.docx" {
		t.Fatalf("original not matched: %#v", doc)
	}
}

func TestListDocsPrimaryRouteWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rag/docs" {
			t.Fatalf("secondary provider should not run, got %q", r.URL.Path)
		}
		w.Write([]byte(`{"docs":[{"doc_id":"d1","object_key":"uploaded/d1.pdf","title":"Doc One"}]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	docs, err := client.ListDocs(context.Background())
	if err != nil {
		t.Fatalf("primary route failed: %v", err)
	}
	if len(docs) != 1 || docs[0].DocID != "d1" || docs[0].Title != "Doc One" {
		t.Fatalf("unexpected docs: %#v", docs)
	}
}

func TestGetStatusDerivesFromDocsOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/status":
			http.Error(w, "nope", http.StatusInternalServerError)
		case "/rag/docs":
			w.Write([]byte(`{"docs":[{"doc_id":"d1","object_key":"uploaded/d1.pdf"}]}`))
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := New(server.URL, nil)
	status := client.GetStatus(context.Background())
	if !status.HasData || status.DocCount != 1 {
		t.Fatalf("status not derived from docs: %#v", status)
	}
}

func TestUploadSendsMultipartFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fixture"), 0o644); err != nil {
		t.Fatal(err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/upload" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("mode"); got != "replace" {
			t.Fatalf("mode not forwarded, got %q", got)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file missing: %v", err)
		}
		defer file.Close()
		if header.Filename != "paper.pdf" {
			t.Fatalf("unexpected filename %q", header.Filename)
		}
		w.Write([]byte(`{"filename":"paper.pdf","minio_object":"uploaded/paper.pdf","indexed":"pending","job_id":"job-1"}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	result, err := client.Upload(context.Background(), path, UploadReplace)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.JobID != "job-1" || result.ObjectKey != "uploaded/paper.pdf" {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestGetJobProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/job/job-1" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"indexing","progress":0.5}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	progress, err := client.GetJobProgress(context.Background(), "job-1")
	if err != nil {
		t.Fatalf("job progress failed: %v", err)
	}
	if progress.Status != "indexing" || progress.Progress != 0.5 {
		t.Fatalf("unexpected progress: %#v", progress)
	}
}
