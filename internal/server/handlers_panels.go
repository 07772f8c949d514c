package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/buddyapp/buddy/internal/domain"
)

// bindAndValidate decodes the JSON body and runs the shared validator so
// the panel routes reject bad input before touching the backend.
func bindAndValidate(c *gin.Context, out any) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return false
	}
	if err := validate.Struct(out); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

func (s *Server) generateText(c *gin.Context) {
	var req domain.TextRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := s.backend.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) generateImage(c *gin.Context) {
	var req domain.ImageRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := s.backend.GenerateImage(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// finance injects the signed-in UID when the payload leaves it empty so
// the backend can keep per-user conversation history.
func (s *Server) finance(c *gin.Context) {
	var req domain.FinanceRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.UID == "" {
		if sess, err := s.provider.ActiveSession(); err == nil {
			req.UID = sess.UID
		}
	}
	resp, err := s.backend.NewsNLP(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ragAsk(c *gin.Context) {
	var req domain.RAGQuestion
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := s.backend.RAGGenerate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ragCompare(c *gin.Context) {
	req := domain.CompareRequest{
		Query:       c.Query("query"),
		TopK:        intQuery(c, "top_k", 5),
		Temperature: floatQuery(c, "temperature", 0.7),
		MaxTokens:   intQuery(c, "max_tokens", 1000),
	}
	if err := validate.Struct(req); err != nil {
		writeError(c, err)
		return
	}
	resp, err := s.backend.RAGCompare(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ragSearch(c *gin.Context) {
	req := domain.SearchRequest{
		Topic:        c.Query("topic"),
		MaxResults:   intQuery(c, "max_results", 10),
		DownloadPDFs: boolQuery(c, "download_pdfs"),
		ExtractText:  boolQuery(c, "extract_text"),
	}
	if err := validate.Struct(req); err != nil {
		writeError(c, err)
		return
	}
	resp, err := s.backend.SearchArticles(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ragAdd(c *gin.Context) {
	var req domain.AddArticlesRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := s.backend.AddArticles(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func floatQuery(c *gin.Context, key string, fallback float64) float64 {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func boolQuery(c *gin.Context, key string) bool {
	v, _ := strconv.ParseBool(c.Query(key))
	return v
}
