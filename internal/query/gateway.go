// Package query turns a user question into a fully resolved chat turn:
// backend answer plus sources carrying dereferenceable citation links.
package query

import (
	"context"

	"github.com/hyunsol/docchat/internal/docindex"
	"github.com/hyunsol/docchat/internal/ragapi"
)

const defaultTopK = 3

// Asker is the slice of the backend client the gateway needs.
type Asker interface {
	Ask(ctx context.Context, question string, topK int) (string, []ragapi.SourceMeta, error)
	ViewURL(objectKey, name, origKey string, page *int) string
}

// Resolver looks citations up in the document index.
type Resolver interface {
	Ensure(ctx context.Context) (map[string]docindex.Entry, error)
}

// HistoryEntry is one prior exchange, kept for interface parity with the
// backend contract; the current backend answers each question statelessly.
type HistoryEntry struct {
	Role    string
	Content string
}

// Turn is one resolved question/answer exchange.
type Turn struct {
	Answer  string
	Sources []ragapi.SourceMeta
}

// Gateway wires the backend, the normalizer, and the document index together.
type Gateway struct {
	api   Asker
	index Resolver
	topK  int
}

// New builds a gateway. A topK of zero means the default of 3.
func New(api Asker, index Resolver, topK int) *Gateway {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Gateway{api: api, index: index, topK: topK}
}

// Ask sends the question and attaches a view URL to every source whose doc_id
// resolves against the index. Sources that do not resolve pass through with
// the URL unset; only a failed request is an error.
func (g *Gateway) Ask(ctx context.Context, history []HistoryEntry, question string) (Turn, error) {
	_ = history

	answer, sources, err := g.api.Ask(ctx, question, g.topK)
	if err != nil {
		return Turn{}, err
	}

	entries, indexErr := g.index.Ensure(ctx)
	if indexErr != nil {
		// Citations stay unresolved; the answer is still usable.
		return Turn{Answer: answer, Sources: sources}, nil
	}

	for i, s := range sources {
		if s.URL != "" || s.DocID == "" {
			continue
		}
		entry, ok := entries[s.DocID]
		if !ok {
			continue
		}
		name := s.Title
		if name == "" {
			name = entry.Title
		}
		if name == "" {
			name = s.DocID + ".pdf"
		}
		sources[i].URL = g.api.ViewURL(entry.PDFKey, name, entry.OriginalKey, s.Page)
	}
	return Turn{Answer: answer, Sources: sources}, nil
}
