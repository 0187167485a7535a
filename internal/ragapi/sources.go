package ragapi

import (
	"fmt"
	"strconv"
	"strings"
)

// SourceMeta is the canonical form of one retrieved evidence excerpt. The
// backend has shipped several shapes for these records; NormalizeSources folds
// them all into this one.
type SourceMeta struct {
	ID         string            `json:"id"`
	Title      string            `json:"title,omitempty"`
	DocID      string            `json:"doc_id,omitempty"`
	Page       *int              `json:"page,omitempty"`
	Score      *float64          `json:"score,omitempty"`
	ChunkIndex *int              `json:"chunk_index,omitempty"`
	Snippet    string            `json:"snippet,omitempty"`
	URL        string            `json:"url,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// metaPreamble marks the diagnostic line some backend versions prepend to
// chunk text.
const metaPreamble = "META:"

// NormalizeSources converts raw citation records into SourceMeta values. It
// never fails: malformed entries degrade to partial records. Output order and
// length match the input; ranking stays the backend's business.
func NormalizeSources(raw []map[string]any) []SourceMeta {
	out := make([]SourceMeta, 0, len(raw))
	for i, rec := range raw {
		meta := nestedMap(rec, "metadata")

		text := firstString(rec, "snippet", "chunk", "text", "content")
		if text == "" {
			text = firstString(meta, "text")
		}
		text = stripPreamble(text)

		id := firstString(rec, "id")
		if id == "" {
			if n, ok := firstNumber(rec, "id"); ok {
				id = strconv.FormatFloat(n, 'f', -1, 64)
			} else {
				id = strconv.Itoa(i + 1)
			}
		}

		title := firstString(rec, "title", "section")
		if title == "" {
			title = firstString(meta, "title", "section")
		}
		docID := firstString(rec, "doc_id")
		if docID == "" {
			docID = firstString(meta, "doc_id")
		}

		s := SourceMeta{
			ID:      id,
			Title:   title,
			DocID:   docID,
			Snippet: text,
			URL:     firstString(rec, "url", "link", "source_url"),
		}
		if page, ok := firstInt(rec, "page", "page_num"); ok {
			s.Page = &page
		} else if page, ok := firstInt(meta, "page"); ok {
			s.Page = &page
		}
		if score, ok := firstNumber(rec, "score", "relevance", "similarity"); ok {
			s.Score = &score
		}
		if idx, ok := firstInt(rec, "chunk_index", "idx", "index"); ok {
			s.ChunkIndex = &idx
		}
		s.Metadata = stringifyMetadata(meta)
		if s.Metadata["section"] == "" {
			if section := firstString(rec, "section", "title"); section != "" {
				if s.Metadata == nil {
					s.Metadata = map[string]string{}
				}
				s.Metadata["section"] = section
			}
		}
		out = append(out, s)
	}
	return out
}

func stripPreamble(text string) string {
	if !strings.HasPrefix(text, metaPreamble) {
		return text
	}
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[idx+1:]
	}
	return text
}

// firstString returns the first non-empty string value among the given keys.
func firstString(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := rec[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// firstNumber returns the first numeric value among the given keys. JSON
// decoding into any yields float64 for every number; string-typed digits are
// accepted too since older backends quoted them.
func firstNumber(rec map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := rec[key].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

func firstInt(rec map[string]any, keys ...string) (int, bool) {
	n, ok := firstNumber(rec, keys...)
	if !ok {
		return 0, false
	}
	return int(n), true
}

func nestedMap(rec map[string]any, key string) map[string]any {
	if m, ok := rec[key].(map[string]any); ok {
		return m
	}
	return nil
}

func stringifyMetadata(meta map[string]any) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for key, value := range meta {
		switch v := value.(type) {
		case string:
			out[key] = v
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		case nil:
			// skip
		default:
			out[key] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
