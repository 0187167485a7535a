package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyunsol/docchat/internal/docindex"
	"github.com/hyunsol/docchat/internal/ragapi"
)

type fakeAsker struct {
	answer  string
	sources []ragapi.SourceMeta
	err     error
	gotTopK int
}

func (f *fakeAsker) Ask(ctx context.Context, question string, topK int) (string, []ragapi.SourceMeta, error) {
	f.gotTopK = topK
	return f.answer, f.sources, f.err
}

func (f *fakeAsker) ViewURL(objectKey, name, origKey string, page *int) string {
	u := "/view/" + ragapi.EncodeObjectPath(objectKey) + "?name=" + name
	if origKey != "" {
		u += "&orig=" + ragapi.EncodeObjectPath(origKey)
	}
	if page != nil {
		u += "#page=4"
	}
	return u
}

type fakeResolver struct {
	entries map[string]docindex.Entry
	err     error
}

func (f *fakeResolver) Ensure(ctx context.Context) (map[string]docindex.Entry, error) {
	return f.entries, f.err
}

func TestAskResolvesKnownDocIDs(t *testing.T) {
	page := 4
	api := &fakeAsker{
		answer: "because",
		sources: []ragapi.SourceMeta{
			{ID: "1", DocID: "d1", Page: &page},
			{ID: "2", DocID: "ghost"},
			{ID: "3"},
		},
	}
	index := &fakeResolver{entries: map[string]docindex.Entry{
		"d1": {PDFKey: "uploaded/d1.pdf", OriginalKey: "uploaded/originals/d1.docx", Title: "Doc One"},
	}}

	turn, err := New(api, index, 0).Ask(context.Background(), nil, "why?")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if turn.Answer != "because" {
		t.Fatalf("answer = %q", turn.Answer)
	}
	if api.gotTopK != 3 {
		t.Fatalf("default top_k should be 3, got %d", api.gotTopK)
	}

	resolved := turn.Sources[0]
	if resolved.URL == "" {
		t.Fatal("known doc_id should resolve a url")
	}
	if !strings.Contains(resolved.URL, "uploaded/d1.pdf") {
		t.Fatalf("url should carry the pdf key: %q", resolved.URL)
	}
	if !strings.Contains(resolved.URL, "orig=uploaded/originals/d1.docx") {
		t.Fatalf("url should carry the original key: %q", resolved.URL)
	}
	if !strings.Contains(resolved.URL, "#page=4") {
		t.Fatalf("url should carry the page: %q", resolved.URL)
	}
	if !strings.Contains(resolved.URL, "name=Doc One") {
		t.Fatalf("index title should name the view: %q", resolved.URL)
	}

	if turn.Sources[1].URL != "" {
		t.Fatal("unknown doc_id must stay unresolved, not error")
	}
	if turn.Sources[2].URL != "" {
		t.Fatal("source without doc_id must pass through untouched")
	}
}

func TestAskTitleFallbackChain(t *testing.T) {
	api := &fakeAsker{sources: []ragapi.SourceMeta{{ID: "1", DocID: "d2"}}}
	index := &fakeResolver{entries: map[string]docindex.Entry{
		"d2": {PDFKey: "uploaded/d2.pdf"},
	}}

	turn, err := New(api, index, 0).Ask(context.Background(), nil, "q")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(turn.Sources[0].URL, "name=d2.pdf") {
		t.Fatalf("expected <doc_id>.pdf fallback name, got %q", turn.Sources[0].URL)
	}
}

func TestAskPrefersSourceTitle(t *testing.T) {
	api := &fakeAsker{sources: []ragapi.SourceMeta{{ID: "1", DocID: "d1", Title: "Section 2"}}}
	index := &fakeResolver{entries: map[string]docindex.Entry{
		"d1": {PDFKey: "uploaded/d1.pdf", Title: "Doc One"},
	}}

	turn, err := New(api, index, 0).Ask(context.Background(), nil, "q")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(turn.Sources[0].URL, "name=Section 2") {
		t.Fatalf("explicit source title should win, got %q", turn.Sources[0].URL)
	}
}

func TestAskRequestFailureIsFatal(t *testing.T) {
	api := &fakeAsker{err: errors.New("backend error: 502 Bad Gateway (upstream down)")}
	if _, err := New(api, &fakeResolver{}, 0).Ask(context.Background(), nil, "q"); err == nil {
		t.Fatal("request failure must surface")
	}
}

func TestAskIndexFailureLeavesSourcesUnresolved(t *testing.T) {
	api := &fakeAsker{answer: "a", sources: []ragapi.SourceMeta{{ID: "1", DocID: "d1"}}}
	index := &fakeResolver{err: errors.New("listing failed")}

	turn, err := New(api, index, 0).Ask(context.Background(), nil, "q")
	if err != nil {
		t.Fatalf("index failure should not fail the turn: %v", err)
	}
	if turn.Sources[0].URL != "" {
		t.Fatal("sources must stay unresolved when the index is unavailable")
	}
}
