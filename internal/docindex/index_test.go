package docindex

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyunsol/docchat/internal/ragapi"
)

type fakeLister struct {
	mu    sync.Mutex
	calls int32
	docs  []ragapi.DocItem
	err   error
	block chan struct{}
}

func (f *fakeLister) ListDocs(ctx context.Context) ([]ragapi.DocItem, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs, f.err
}

func (f *fakeLister) callCount() int32 {
	return atomic.LoadInt32(&f.calls)
}

func sampleDocs() []ragapi.DocItem {
	return []ragapi.DocItem{
		{DocID: "d1", Title: "Doc One", PDFKey: "uploaded/d1.pdf", OriginalKey: "uploaded/originals/d1.docx", OriginalName: "d1.docx"},
		{DocID: "d2", Title: "Doc Two", PDFKey: "uploaded/d2.pdf"},
	}
}

func TestEnsureCachesWithinTTL(t *testing.T) {
	lister := &fakeLister{docs: sampleDocs()}
	idx := New(lister, time.Minute)

	first, err := idx.Ensure(context.Background())
	if err != nil {
		t.Fatalf("first ensure failed: %v", err)
	}
	second, err := idx.Ensure(context.Background())
	if err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
	if lister.callCount() != 1 {
		t.Fatalf("expected a single fetch, got %d", lister.callCount())
	}
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("unexpected entry counts: %d, %d", len(first), len(second))
	}
}

func TestRefreshForceBypassesTTL(t *testing.T) {
	lister := &fakeLister{docs: sampleDocs()}
	idx := New(lister, time.Hour)

	if _, err := idx.Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := idx.Refresh(context.Background(), true); err != nil {
		t.Fatal(err)
	}
	if lister.callCount() != 2 {
		t.Fatalf("force refresh should re-fetch, got %d calls", lister.callCount())
	}
}

func TestConcurrentEnsureSingleFlight(t *testing.T) {
	lister := &fakeLister{docs: sampleDocs(), block: make(chan struct{})}
	idx := New(lister, time.Minute)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = idx.Ensure(context.Background())
		}(i)
	}

	// Let the goroutines pile up behind the in-flight fetch before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(lister.block)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d failed: %v", i, err)
		}
	}
	if got := lister.callCount(); got != 1 {
		t.Fatalf("expected one underlying fetch, got %d", got)
	}
}

func TestResolveObjectKey(t *testing.T) {
	idx := New(&fakeLister{docs: sampleDocs()}, time.Minute)

	key, ok := idx.ResolveObjectKey(context.Background(), "d1")
	if !ok || key != "uploaded/d1.pdf" {
		t.Fatalf("resolve d1 = %q, %v", key, ok)
	}
	if _, ok := idx.ResolveObjectKey(context.Background(), "missing"); ok {
		t.Fatal("unknown doc_id should miss, not error")
	}
	if _, ok := idx.ResolveObjectKey(context.Background(), ""); ok {
		t.Fatal("empty doc_id should miss")
	}
}

func TestResolveOriginal(t *testing.T) {
	idx := New(&fakeLister{docs: sampleDocs()}, time.Minute)

	key, name, ok := idx.ResolveOriginal(context.Background(), "d1")
	if !ok || key != "uploaded/originals/d1.docx" || name != "d1.docx" {
		t.Fatalf("resolve original = %q, %q, %v", key, name, ok)
	}
	if _, _, ok := idx.ResolveOriginal(context.Background(), "d2"); ok {
		t.Fatal("doc without original should miss")
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	lister := &fakeLister{docs: sampleDocs()}
	idx := New(lister, time.Hour)

	if _, err := idx.Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}
	idx.Invalidate()
	if _, err := idx.Ensure(context.Background()); err != nil {
		t.Fatal(err)
	}
	if lister.callCount() != 2 {
		t.Fatalf("invalidate should drop the cache, got %d calls", lister.callCount())
	}
}

func TestEnsureSurfacesFetchError(t *testing.T) {
	lister := &fakeLister{err: errors.New("listing failed")}
	idx := New(lister, time.Minute)

	if _, err := idx.Ensure(context.Background()); err == nil {
		t.Fatal("expected fetch error to surface")
	}
	// A failed fetch must not poison the cache.
	lister.mu.Lock()
	lister.err = nil
	lister.docs = sampleDocs()
	lister.mu.Unlock()
	entries, err := idx.Ensure(context.Background())
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected entries after retry, got %d", len(entries))
	}
}
