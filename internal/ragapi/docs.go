package ragapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hyunsol/docchat/internal/filename"
)

// DocItem is one indexed document as the client sees it: the rendered PDF key
// plus, when the upload kept one, the pre-conversion original.
type DocItem struct {
	DocID         string `json:"doc_id"`
	Title         string `json:"title,omitempty"`
	PDFKey        string `json:"object_key"`
	OriginalKey   string `json:"original_key,omitempty"`
	OriginalName  string `json:"original_name,omitempty"`
	IsPDFOriginal bool   `json:"is_pdf_original,omitempty"`
	UploadedAt    string `json:"uploaded_at,omitempty"`
}

const (
	uploadedPrefix  = "uploaded/"
	originalsPrefix = "uploaded/originals/"
)

// ListDocs fetches the document catalog. Older backends route it differently
// and the oldest have no catalog at all, so the providers run in order and the
// first success wins.
func (c *Client) ListDocs(ctx context.Context) ([]DocItem, error) {
	providers := []struct {
		name string
		fn   func(context.Context) ([]DocItem, error)
	}{
		{"rag/docs", func(ctx context.Context) ([]DocItem, error) { return c.fetchCatalog(ctx, "/rag/docs") }},
		{"docs", func(ctx context.Context) ([]DocItem, error) { return c.fetchCatalog(ctx, "/docs") }},
		{"files", c.docsFromKeys},
	}

	var errs []error
	for _, provider := range providers {
		docs, err := provider.fn(ctx)
		if err == nil {
			return docs, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", provider.name, err))
	}
	return nil, fmt.Errorf("listing documents: %w", errors.Join(errs...))
}

func (c *Client) fetchCatalog(ctx context.Context, route string) ([]DocItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+route, nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Docs []DocItem `json:"docs"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	docs := data.Docs
	for i := range docs {
		if docs[i].DocID == "" {
			docs[i].DocID = filename.BasenameNoExt(docs[i].PDFKey)
		}
		if docs[i].Title == "" {
			docs[i].Title = prettyKeyTitle(docs[i].PDFKey)
		}
	}
	return docs, nil
}

// docsFromKeys reconstructs the catalog from a raw storage listing: visible
// PDFs under uploaded/, matched against retained originals by basename. Hash
// and meta sidecars never surface as documents.
func (c *Client) docsFromKeys(ctx context.Context) ([]DocItem, error) {
	keys, err := c.ListFiles(ctx, uploadedPrefix)
	if err != nil {
		return nil, err
	}

	originals, err := c.ListFiles(ctx, originalsPrefix)
	if err != nil {
		originals = nil
	}
	origByBase := make(map[string]string, len(originals))
	for _, key := range originals {
		if base := filename.BasenameNoExt(key); base != "" {
			origByBase[base] = key
		}
	}

	docs := make([]DocItem, 0, len(keys))
	for _, key := range keys {
		if !visiblePDFKey(key) {
			continue
		}
		docID := filename.BasenameNoExt(key)
		item := DocItem{
			DocID:  docID,
			Title:  prettyKeyTitle(key),
			PDFKey: key,
		}
		if origKey, ok := origByBase[docID]; ok {
			item.OriginalKey = origKey
			item.OriginalName = filename.StripDedupPrefix(lastSegment(origKey))
		} else {
			item.IsPDFOriginal = true
		}
		docs = append(docs, item)
	}
	return docs, nil
}

// visiblePDFKey filters internal bookkeeping keys out of the raw listing.
func visiblePDFKey(key string) bool {
	if strings.HasPrefix(key, originalsPrefix) {
		return false
	}
	lower := strings.ToLower(key)
	if strings.HasSuffix(lower, ".meta") || strings.HasSuffix(lower, ".sha256") || strings.HasSuffix(lower, ".hash") {
		return false
	}
	return strings.HasSuffix(lower, ".pdf")
}

func prettyKeyTitle(key string) string {
	return filename.StripDedupPrefix(lastSegment(key))
}

func lastSegment(key string) string {
	if idx := strings.LastIndex(key, "/"); idx >= 0 {
		return key[idx+1:]
	}
	return key
}
