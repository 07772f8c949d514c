// Package api is the REST client for the BUDDY backend. All seven panel
// actions go through the shared plumbing in do(): one request per
// submit, no retry, and failures classified by transport outcome so the
// panels can surface the right message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buddyapp/buddy/internal/config"
	"github.com/buddyapp/buddy/internal/domain"
	debuglog "github.com/buddyapp/buddy/internal/log"
)

// Client talks to one configured backend base URL. The RAG actions use
// a longer timeout than the rest; nothing else differs between panels.
type Client struct {
	baseURL    string
	httpClient *http.Client
	ragClient  *http.Client
}

// NewClient builds a client from settings. The base URL is normalized
// without a trailing slash.
func NewClient(cfg *config.Settings) *Client {
	base := strings.TrimRight(cfg.BackendURL, "/")
	if base == "" {
		base = config.DefaultBackendURL
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		ragClient:  &http.Client{Timeout: cfg.RAGTimeout},
	}
}

// BaseURL returns the configured backend base.
func (c *Client) BaseURL() string { return c.baseURL }

// Generate creates social-media text for a platform and topic.
func (c *Client) Generate(ctx context.Context, req domain.TextRequest) (*domain.TextResponse, error) {
	var out domain.TextResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/generate", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateImage asks the backend for an image; the result arrives as
// base64, optionally with a hosted URL.
func (c *Client) GenerateImage(ctx context.Context, req domain.ImageRequest) (*domain.ImageResponse, error) {
	var out domain.ImageResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/generate-image", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// NewsNLP runs the financial-analysis action.
func (c *Client) NewsNLP(ctx context.Context, req domain.FinanceRequest) (*domain.FinanceResponse, error) {
	var out domain.FinanceResponse
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/news-nlp", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RAGGenerate answers a question against the vector store. The backend
// takes the parameters as a query string on a POST, not as a body.
func (c *Client) RAGGenerate(ctx context.Context, req domain.RAGQuestion) (*domain.RAGAnswer, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	q.Set("top_k", strconv.Itoa(req.TopK))
	q.Set("temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64))
	q.Set("max_tokens", strconv.Itoa(req.MaxTokens))
	q.Set("stream", strconv.FormatBool(req.Stream))

	var out domain.RAGAnswer
	if err := c.do(ctx, c.ragClient, http.MethodPost, "/rag/generate", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RAGCompare runs the combined RAG-vs-plain comparison. It is one call;
// the two halves of the result cannot fail independently.
func (c *Client) RAGCompare(ctx context.Context, req domain.CompareRequest) (*domain.CompareResult, error) {
	q := url.Values{}
	q.Set("query", req.Query)
	q.Set("top_k", strconv.Itoa(req.TopK))
	q.Set("temperature", strconv.FormatFloat(req.Temperature, 'f', -1, 64))
	q.Set("max_tokens", strconv.Itoa(req.MaxTokens))

	var out domain.CompareResult
	if err := c.do(ctx, c.ragClient, http.MethodGet, "/rag/compare", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SearchArticles queries the scientific-article search.
func (c *Client) SearchArticles(ctx context.Context, req domain.SearchRequest) (*domain.SearchResult, error) {
	q := url.Values{}
	q.Set("topic", req.Topic)
	q.Set("max_results", strconv.Itoa(req.MaxResults))
	q.Set("download_pdfs", strconv.FormatBool(req.DownloadPDFs))
	q.Set("extract_text", strconv.FormatBool(req.ExtractText))

	var out domain.SearchResult
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/rag/search-articles", q, nil, &out); err != nil {
		return nil, err
	}
	if out.SearchDate == "" {
		out.SearchDate = time.Now().Format(time.RFC3339)
	}
	return &out, nil
}

// AddArticles forwards a selected subset of search results to the
// vector store. A 2xx status is the only indexing confirmation.
func (c *Client) AddArticles(ctx context.Context, req domain.AddArticlesRequest) (*domain.AddArticlesResult, error) {
	var out domain.AddArticlesResult
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/rag/add-articles-to-vector-db", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]any
	return c.do(ctx, c.httpClient, http.MethodGet, "/health", nil, nil, &out)
}

// errorBody is the backend's error envelope; detail is surfaced to the
// user verbatim.
type errorBody struct {
	Detail string `json:"detail"`
}

// do is the single implementation of HTTP plumbing shared by every
// action: marshal, send, classify failures, decode.
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, query url.Values, payload, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return &domain.RequestError{Kind: domain.Unexpected, URL: endpoint, Err: err}
		}
		debuglog.Debug(debuglog.Wire, "api request body: %s\n", raw)
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return &domain.RequestError{Kind: domain.Unexpected, URL: endpoint, Err: err}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	debuglog.Debug(debuglog.Detailed, "api %s %s\n", method, endpoint)

	resp, err := hc.Do(req)
	if err != nil {
		return &domain.RequestError{Kind: domain.NoResponse, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.RequestError{Kind: domain.Unexpected, Status: resp.StatusCode, URL: endpoint, Err: err}
	}

	debuglog.Debug(debuglog.Detailed, "api response status: %d\n", resp.StatusCode)
	debuglog.Debug(debuglog.Wire, "api response body: %s\n", respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := extractDetail(respBody)
		return &domain.RequestError{
			Kind:   domain.ServerError,
			Status: resp.StatusCode,
			Detail: detail,
			URL:    endpoint,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &domain.RequestError{Kind: domain.Unexpected, Status: resp.StatusCode, URL: endpoint, Err: err}
	}
	return nil
}

// extractDetail pulls the backend's detail message out of an error body,
// falling back to the truncated raw body.
func extractDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Detail != "" {
		return eb.Detail
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "... (truncated)"
	}
	if msg == "" {
		msg = "the backend returned an error without a message"
	}
	return fmt.Sprintf("backend error: %s", msg)
}
