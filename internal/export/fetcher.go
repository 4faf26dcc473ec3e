package export

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ── Record Fetcher ──────────────────────────────────────────
// One GET against the dataset export endpoint. No headers, no retries,
// no client timeout: the caller's context is the only deadline.

// Target identifies the dataset an export is read from.
type Target struct {
	ProjectID  string
	APIVersion string
	Dataset    string
	// BaseURL replaces https://{ProjectID}.api.sanity.io when set.
	BaseURL string
}

// ExportURL builds the export endpoint URL for one content type.
// The components are used as given.
func ExportURL(t Target, contentName string) string {
	base := t.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io", t.ProjectID)
	}
	base = strings.TrimRight(base, "/")
	return fmt.Sprintf("%s/v%s/data/export/%s/?types=%s", base, t.APIVersion, t.Dataset, contentName)
}

// Fetcher retrieves the raw export payload.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is the Fetcher used against the real endpoint.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher using client, or http.DefaultClient when nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{client: client}
}

// Fetch performs the GET and returns the body. Transport errors and
// non-2xx responses are reported as *NetworkError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	return data, nil
}
