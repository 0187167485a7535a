package ragapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultHTTPTimeout = 30 * time.Second

// UploadMode selects how the backend treats a re-uploaded filename.
type UploadMode string

const (
	UploadSkip    UploadMode = "skip"
	UploadVersion UploadMode = "version"
	UploadReplace UploadMode = "replace"
)

// UploadResult is the backend's answer to a document upload.
type UploadResult struct {
	Filename  string `json:"filename"`
	ObjectKey string `json:"minio_object"`
	Indexed   string `json:"indexed"`
	JobID     string `json:"job_id"`
}

// JobProgress reports how far an indexing job has come.
type JobProgress struct {
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// Status summarizes whether the backend holds any indexed documents.
type Status struct {
	HasData  bool `json:"has_data"`
	DocCount int  `json:"doc_count"`
}

// Client talks to the question-answering backend. It never handles storage
// credentials; documents are streamed through the backend's view and download
// proxies.
type Client struct {
	base   string
	client *http.Client
}

// New returns a Client rooted at baseURL. A nil httpClient gets a default
// with a 30s timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		base:   strings.TrimRight(baseURL, "/"),
		client: httpClient,
	}
}

// Upload submits one file as multipart form data. The indexing happens
// asynchronously; poll the returned job id for progress.
func (c *Client) Upload(ctx context.Context, path string, mode UploadMode) (UploadResult, error) {
	if mode == "" {
		mode = UploadVersion
	}
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return UploadResult{}, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, err
	}
	if err := writer.Close(); err != nil {
		return UploadResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/upload?mode="+url.QueryEscape(string(mode)), &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result UploadResult
	if err := c.do(req, &result); err != nil {
		return UploadResult{}, err
	}
	return result, nil
}

// GetJobProgress polls one indexing job.
func (c *Client) GetJobProgress(ctx context.Context, jobID string) (JobProgress, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/job/"+url.PathEscape(jobID), nil)
	if err != nil {
		return JobProgress{}, err
	}
	var progress JobProgress
	if err := c.do(req, &progress); err != nil {
		return JobProgress{}, err
	}
	return progress, nil
}

// Ask sends a question and returns the answer plus normalized sources. The
// answer and source list are read through ordered field aliases because the
// backend has renamed both across versions.
func (c *Client) Ask(ctx context.Context, question string, topK int) (string, []SourceMeta, error) {
	payload := map[string]any{
		"question": question,
		"top_k":    topK,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/ask", bytes.NewReader(buf))
	if err != nil {
		return "", nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var data map[string]any
	if err := c.do(req, &data); err != nil {
		return "", nil, err
	}

	answer := firstString(data, "answer", "output", "result")
	raw := firstRecordList(data, "sources", "evidence", "contexts")
	return answer, NormalizeSources(raw), nil
}

// ListFiles lists raw storage keys under a prefix.
func (c *Client) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/files?prefix="+url.QueryEscape(prefix), nil)
	if err != nil {
		return nil, err
	}
	var data struct {
		Files []string `json:"files"`
	}
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return data.Files, nil
}

// GetStatus asks the backend whether any documents are indexed, deriving the
// answer from the document listing when the status endpoint is unavailable.
func (c *Client) GetStatus(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/status", nil)
	if err == nil {
		var status Status
		if err := c.do(req, &status); err == nil {
			return status
		}
	}
	docs, err := c.ListDocs(ctx)
	if err != nil {
		return Status{}
	}
	return Status{HasData: len(docs) > 0, DocCount: len(docs)}
}

// do executes the request and decodes a JSON body into out. A non-2xx status
// becomes an error carrying the response body text.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend error: %s (%s)", resp.Status, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}

func firstRecordList(data map[string]any, keys ...string) []map[string]any {
	for _, key := range keys {
		list, ok := data[key].([]any)
		if !ok || len(list) == 0 {
			continue
		}
		records := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if rec, ok := item.(map[string]any); ok {
				records = append(records, rec)
			}
		}
		if len(records) > 0 {
			return records
		}
	}
	return nil
}
