package domain

// Request and response shapes for the seven backend actions. Field names
// follow the wire format of the BUDDY backend; the Spanish ones are part
// of its public contract, not a translation choice made here.

// TextRequest drives POST /generate.
type TextRequest struct {
	Platform string `json:"platform" validate:"required"`
	Topic    string `json:"topic" validate:"required"`
	Language string `json:"language,omitempty"`
}

// TextResponse carries the generated social-media copy.
type TextResponse struct {
	Content string `json:"content"`
}

// ImageRequest drives POST /generate-image.
type ImageRequest struct {
	Tema      string `json:"tema" validate:"required"`
	Audiencia string `json:"audiencia" validate:"required"`
	Estilo    string `json:"estilo" validate:"required"`
	Colores   string `json:"colores,omitempty"`
	Detalles  string `json:"detalles,omitempty"`
}

// ImageResponse returns the image as base64 plus an optional hosted URL.
// IsPlaceholder marks a fallback image produced when the diffusion
// service was unavailable.
type ImageResponse struct {
	Filename      string `json:"filename"`
	Imagen        string `json:"imagen"`
	Descripcion   string `json:"descripcion"`
	Mensaje       string `json:"mensaje"`
	IsPlaceholder bool   `json:"is_placeholder"`
	URLSupabase   string `json:"url_supabase,omitempty"`
}

// FinanceRequest drives POST /news-nlp. UID lets the backend personalize
// the summary with the caller's profile bio.
type FinanceRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	Language string `json:"language,omitempty"`
	CoinName string `json:"coin_name,omitempty"`
	UID      string `json:"uid,omitempty"`
}

// FinanceResponse carries the financial-analysis summary.
type FinanceResponse struct {
	Response string `json:"response"`
}

// RAGQuestion drives POST /rag/generate. The backend takes these as URL
// query parameters, not as a JSON body.
type RAGQuestion struct {
	Query       string  `json:"query" validate:"required"`
	TopK        int     `json:"top_k" validate:"min=1,max=10"`
	Temperature float64 `json:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `json:"max_tokens" validate:"min=100,max=4096"`
	Stream      bool    `json:"stream"`
}

// RAGUsage mirrors the token-usage block the backend attaches to answers.
type RAGUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// RAGAnswer is the answer to one RAG question together with the documents
// that grounded it.
type RAGAnswer struct {
	Response           string         `json:"response"`
	Model              string         `json:"model"`
	Usage              RAGUsage       `json:"usage"`
	SourceDocuments    []Article      `json:"source_documents"`
	DocumentsRetrieved int            `json:"documents_retrieved"`
	DocumentAnalysis   map[string]any `json:"document_analysis,omitempty"`
}

// CompareRequest drives the combined GET /rag/compare call.
type CompareRequest struct {
	Query       string  `json:"query" validate:"required"`
	TopK        int     `json:"top_k" validate:"min=1,max=10"`
	Temperature float64 `json:"temperature" validate:"min=0,max=2"`
	MaxTokens   int     `json:"max_tokens" validate:"min=100,max=4096"`
}

// ComparedAnswer is one half of a comparison result.
type ComparedAnswer struct {
	Response      string   `json:"response"`
	DocumentsUsed int      `json:"documents_used,omitempty"`
	Model         string   `json:"model"`
	Usage         RAGUsage `json:"usage"`
}

// CompareResult holds both answers. The backend produces them in one
// call, so a failure fails both sides together.
type CompareResult struct {
	Query          string         `json:"query"`
	RAGResponse    ComparedAnswer `json:"rag_response"`
	SimpleResponse ComparedAnswer `json:"simple_response"`
	Comparison     struct {
		RAGHasDocuments      bool `json:"rag_has_documents"`
		RAGResponseLength    int  `json:"rag_response_length"`
		SimpleResponseLength int  `json:"simple_response_length"`
	} `json:"comparison"`
}

// SearchRequest drives GET /rag/search-articles.
type SearchRequest struct {
	Topic        string `json:"topic" validate:"required"`
	MaxResults   int    `json:"max_results" validate:"min=1,max=50"`
	DownloadPDFs bool   `json:"download_pdfs"`
	ExtractText  bool   `json:"extract_text"`
}

// AddArticlesRequest forwards a selected subset of a search result to the
// vector store via POST /rag/add-articles-to-vector-db.
type AddArticlesRequest struct {
	Documents  []Article `json:"documents" validate:"required,min=1"`
	Topic      string    `json:"search_topic"`
	SearchDate string    `json:"search_date"`
	TotalFound int       `json:"total_found"`
}

// AddArticlesResult reports how many documents the backend accepted.
// HTTP success is the only indexing confirmation the client gets.
type AddArticlesResult struct {
	SearchMetadata struct {
		Topic      string `json:"topic"`
		SearchDate string `json:"search_date"`
		TotalFound int    `json:"total_found"`
	} `json:"search_metadata"`
	VectorResults struct {
		Processed      int `json:"processed"`
		TotalDocuments int `json:"total_documents"`
	} `json:"vector_results"`
}
