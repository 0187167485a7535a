// Package docindex maintains the doc_id → storage-key lookup used to turn
// citations into dereferenceable links. The backend catalog is fetched lazily,
// cached with a TTL, and shared across concurrent callers.
package docindex

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hyunsol/docchat/internal/ragapi"
)

const defaultTTL = 5 * time.Minute

// Entry holds the storage keys the index resolved for one document.
type Entry struct {
	PDFKey       string
	OriginalKey  string
	OriginalName string
	Title        string
}

// Lister is the slice of the backend client the index needs.
type Lister interface {
	ListDocs(ctx context.Context) ([]ragapi.DocItem, error)
}

// Index caches the document catalog. The cache moves through three states:
// empty, fetching, and populated(data, fetchedAt); Ensure drives the
// transitions and singleflight collapses concurrent fetches into one.
type Index struct {
	lister Lister
	ttl    time.Duration
	group  singleflight.Group

	mu        sync.Mutex
	entries   map[string]Entry
	docs      []ragapi.DocItem
	fetchedAt time.Time
}

// New builds an index over the given lister. A zero ttl means the default
// five minutes.
func New(lister Lister, ttl time.Duration) *Index {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Index{lister: lister, ttl: ttl}
}

// Ensure returns the doc_id → Entry mapping, fetching it on first use or
// after the TTL has lapsed. Callers arriving during an in-flight fetch share
// its result instead of triggering another.
func (idx *Index) Ensure(ctx context.Context) (map[string]Entry, error) {
	return idx.fetch(ctx, false)
}

// Refresh re-fetches the catalog. With force set the TTL is ignored; an
// in-flight fetch is still joined rather than duplicated.
func (idx *Index) Refresh(ctx context.Context, force bool) (map[string]Entry, error) {
	return idx.fetch(ctx, force)
}

// Docs returns the cached catalog in backend order, fetching if needed.
func (idx *Index) Docs(ctx context.Context) ([]ragapi.DocItem, error) {
	if _, err := idx.fetch(ctx, false); err != nil {
		return nil, err
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.docs, nil
}

// ResolveObjectKey maps a doc_id to its rendered PDF key. A miss is a valid
// result, not an error: the citation simply stays unresolved.
func (idx *Index) ResolveObjectKey(ctx context.Context, docID string) (string, bool) {
	if docID == "" {
		return "", false
	}
	entries, err := idx.Ensure(ctx)
	if err != nil {
		return "", false
	}
	entry, ok := entries[docID]
	if !ok {
		return "", false
	}
	return entry.PDFKey, true
}

// ResolveOriginal maps a doc_id to its retained pre-conversion file, when one
// exists.
func (idx *Index) ResolveOriginal(ctx context.Context, docID string) (key, name string, ok bool) {
	if docID == "" {
		return "", "", false
	}
	entries, err := idx.Ensure(ctx)
	if err != nil {
		return "", "", false
	}
	entry, found := entries[docID]
	if !found || entry.OriginalKey == "" {
		return "", "", false
	}
	return entry.OriginalKey, entry.OriginalName, true
}

// Invalidate drops the cached catalog so the next access re-fetches.
func (idx *Index) Invalidate() {
	idx.mu.Lock()
	idx.entries = nil
	idx.docs = nil
	idx.fetchedAt = time.Time{}
	idx.mu.Unlock()
}

func (idx *Index) fetch(ctx context.Context, force bool) (map[string]Entry, error) {
	if !force {
		idx.mu.Lock()
		if idx.entries != nil && time.Since(idx.fetchedAt) < idx.ttl {
			entries := idx.entries
			idx.mu.Unlock()
			return entries, nil
		}
		idx.mu.Unlock()
	}

	// One key for every caller: force only decides whether the caller is
	// willing to reuse the cache, never which fetch it joins.
	result, err, _ := idx.group.Do("docs", func() (any, error) {
		docs, err := idx.lister.ListDocs(ctx)
		if err != nil {
			return nil, err
		}
		entries := make(map[string]Entry, len(docs))
		for _, doc := range docs {
			entries[doc.DocID] = Entry{
				PDFKey:       doc.PDFKey,
				OriginalKey:  doc.OriginalKey,
				OriginalName: doc.OriginalName,
				Title:        doc.Title,
			}
		}
		idx.mu.Lock()
		idx.entries = entries
		idx.docs = docs
		idx.fetchedAt = time.Now()
		idx.mu.Unlock()
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(map[string]Entry), nil
}
