package ragapi

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hyunsol/docchat/internal/filename"
)

// EncodeObjectPath escapes each segment of a storage key independently so the
// slashes stay structural in the resulting URL path.
func EncodeObjectPath(key string) string {
	segments := strings.Split(key, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// ViewURL builds a proxied view link for a storage key. The optional display
// name and original-file key travel as query parameters; the page lands in the
// fragment because it is a viewer-side scroll target, not a server parameter.
func (c *Client) ViewURL(objectKey, name, origKey string, page *int) string {
	var b strings.Builder
	b.WriteString(c.base)
	b.WriteString("/view/")
	b.WriteString(EncodeObjectPath(objectKey))

	q := url.Values{}
	if name != "" {
		q.Set("name", filename.SafePDFName(name))
	}
	if origKey != "" {
		q.Set("orig", EncodeObjectPath(origKey))
	}
	if enc := q.Encode(); enc != "" {
		b.WriteByte('?')
		b.WriteString(enc)
	}
	if page != nil {
		fmt.Fprintf(&b, "#page=%d", *page)
	}
	return b.String()
}

// DownloadURL builds a proxied download link for a storage key.
func (c *Client) DownloadURL(objectKey, name string) string {
	u := c.base + "/download/" + EncodeObjectPath(objectKey)
	if name != "" {
		u += "?name=" + url.QueryEscape(filename.SafePDFName(name))
	}
	return u
}
