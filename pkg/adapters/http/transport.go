package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Jembe/jembe-sub000/pkg/domain"
)

// HeaderJembe marks requests issued by the client so producers answer with
// component records instead of a full page.
const HeaderJembe = "X-Jembe"

// Transport implements ports.Transport and ports.Uploader over HTTP.
type Transport struct {
	url       string
	uploadURL string
	client    *http.Client
	header    http.Header
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) TransportOption {
	return func(t *Transport) {
		t.client = c
	}
}

// WithUploadURL sets the upload endpoint (default: url + "/jmb:upload").
func WithUploadURL(u string) TransportOption {
	return func(t *Transport) {
		t.uploadURL = u
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) TransportOption {
	return func(t *Transport) {
		t.header.Add(key, value)
	}
}

// NewTransport creates a transport posting to url.
func NewTransport(url string, opts ...TransportOption) *Transport {
	t := &Transport{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.uploadURL == "" {
		t.uploadURL = strings.TrimRight(url, "/") + "/jmb:upload"
	}
	return t
}

// Send posts the request as JSON.
func (t *Transport) Send(ctx context.Context, req *domain.Request) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.TransportError{Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return t.do(httpReq)
}

// Upload posts the files as multipart form data, one part per upload id, and
// decodes the id → descriptor map.
func (t *Transport) Upload(ctx context.Context, uploads []domain.Upload) (map[string]domain.StoredFile, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, u := range uploads {
		part, err := mw.CreateFormFile(u.ID, u.File.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to add %s: %w", u.ID, err)
		}
		if u.File.Body == nil {
			continue
		}
		if _, err := io.Copy(part, u.File.Body); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", u.File.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.uploadURL, &buf)
	if err != nil {
		return nil, &domain.TransportError{Cause: err}
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	body, err := t.do(httpReq)
	if err != nil {
		return nil, err
	}

	stored := make(map[string]domain.StoredFile)
	if err := json.Unmarshal(body, &stored); err != nil {
		return nil, fmt.Errorf("%w: upload response: %w", domain.ErrMalformedResponse, err)
	}
	return stored, nil
}

// Fetch GETs a full page, as a browser would on first load.
func (t *Transport) Fetch(ctx context.Context, url string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &domain.TransportError{Cause: err}
	}
	body, err := t.do(httpReq)
	return string(body), err
}

func (t *Transport) do(req *http.Request) ([]byte, error) {
	for k, vs := range t.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Method != http.MethodGet {
		req.Header.Set(HeaderJembe, "true")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &domain.TransportError{Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.TransportError{StatusCode: resp.StatusCode, Cause: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.TransportError{
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("%s %s: %s", req.Method, req.URL, snippet(body)),
		}
	}
	return body, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
