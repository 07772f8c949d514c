package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/buddyapp/buddy/internal/config"
	"github.com/buddyapp/buddy/internal/domain"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.Settings{
		BackendURL:     baseURL,
		RequestTimeout: 5 * time.Second,
		RAGTimeout:     5 * time.Second,
	})
}

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/generate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Request-ID"); got == "" {
			t.Error("missing X-Request-ID header")
		}
		var req domain.TextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Platform != "twitter" || req.Topic != "launch" {
			t.Errorf("unexpected payload: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]string{"content": "Big launch today!"})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	resp, err := c.Generate(context.Background(), domain.TextRequest{Platform: "twitter", Topic: "launch"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Content != "Big launch today!" {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestRAGGenerateSendsQueryParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") != "what is RAG" || q.Get("top_k") != "5" || q.Get("max_tokens") != "1024" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(domain.RAGAnswer{
			Response:           "RAG is retrieval-augmented generation.",
			DocumentsRetrieved: 2,
			SourceDocuments:    []domain.Article{{Title: "A"}, {Title: "B"}},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	ans, err := c.RAGGenerate(context.Background(), domain.RAGQuestion{
		Query: "what is RAG", TopK: 5, Temperature: 0.7, MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("RAGGenerate() error = %v", err)
	}
	if ans.DocumentsRetrieved != 2 || len(ans.SourceDocuments) != 2 {
		t.Errorf("unexpected answer: %+v", ans)
	}
}

func TestRAGCompareDecodesBothHalves(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/rag/compare" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{
			"query": "What is quantum computing?",
			"rag_response": {"response": "grounded answer", "documents_used": 3, "model": "m"},
			"simple_response": {"response": "plain answer", "model": "m"},
			"comparison": {"rag_has_documents": true, "rag_response_length": 15, "simple_response_length": 12}
		}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	res, err := c.RAGCompare(context.Background(), domain.CompareRequest{
		Query: "What is quantum computing?", TopK: 5, Temperature: 0.7, MaxTokens: 1024,
	})
	if err != nil {
		t.Fatalf("RAGCompare() error = %v", err)
	}
	if res.RAGResponse.Response != "grounded answer" || res.SimpleResponse.Response != "plain answer" {
		t.Errorf("unexpected result: %+v", res)
	}
	if !res.Comparison.RAGHasDocuments {
		t.Error("comparison flag not decoded")
	}
}

func TestServerErrorSurfacesDetailVerbatim(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail": "Topic is required"}`))
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	_, err := c.Generate(context.Background(), domain.TextRequest{Platform: "twitter", Topic: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T", err)
	}
	if reqErr.Kind != domain.ServerError {
		t.Errorf("Kind = %v, want ServerError", reqErr.Kind)
	}
	if reqErr.Error() != "Topic is required" {
		t.Errorf("message = %q, want the detail verbatim", reqErr.Error())
	}
}

func TestUnreachableBackendNamesURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // nothing listening anymore

	c := newTestClient(ts.URL)
	_, err := c.Generate(context.Background(), domain.TextRequest{Platform: "twitter", Topic: "launch"})
	if err == nil {
		t.Fatal("expected error")
	}
	var reqErr *domain.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type = %T", err)
	}
	if reqErr.Kind != domain.NoResponse {
		t.Errorf("Kind = %v, want NoResponse", reqErr.Kind)
	}
	if !strings.Contains(reqErr.Error(), ts.URL) {
		t.Errorf("message %q does not name the attempted URL", reqErr.Error())
	}
}

func TestSearchArticles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("topic") != "quantum" || q.Get("max_results") != "3" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		json.NewEncoder(w).Encode(domain.SearchResult{
			Topic:      "quantum",
			TotalFound: 1,
			Documents: []domain.Article{{
				ArxivID: "2401.00001",
				Title:   "Quantum things",
				Authors: []string{"Ana Ruiz"},
			}},
		})
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	res, err := c.SearchArticles(context.Background(), domain.SearchRequest{Topic: "quantum", MaxResults: 3})
	if err != nil {
		t.Fatalf("SearchArticles() error = %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].ArxivID != "2401.00001" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.SearchDate == "" {
		t.Error("SearchDate should be filled when the backend omits it")
	}
}

func TestAddArticles(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req domain.AddArticlesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Documents) != 2 {
			t.Errorf("forwarded %d documents, want 2", len(req.Documents))
		}
		out := domain.AddArticlesResult{}
		out.VectorResults.Processed = 2
		out.VectorResults.TotalDocuments = 10
		json.NewEncoder(w).Encode(out)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	res, err := c.AddArticles(context.Background(), domain.AddArticlesRequest{
		Documents: []domain.Article{{Title: "A"}, {Title: "B"}},
		Topic:     "quantum",
	})
	if err != nil {
		t.Fatalf("AddArticles() error = %v", err)
	}
	if res.VectorResults.Processed != 2 {
		t.Errorf("Processed = %d, want 2", res.VectorResults.Processed)
	}
}
