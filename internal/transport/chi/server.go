package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	router "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/domain"
	domcond "github.com/kailas-cloud/skinrec/internal/domain/conditions"
	"github.com/kailas-cloud/skinrec/internal/usecase/advisor"
	conduc "github.com/kailas-cloud/skinrec/internal/usecase/conditions"
	healthuc "github.com/kailas-cloud/skinrec/internal/usecase/health"
	"github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
	"github.com/kailas-cloud/skinrec/internal/version"
)

const (
	maxBodyBytes     = 1 << 20
	maxImageBodySize = 12 << 20
	maxUpdateRecords = 1000
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes knowledge search, recommendations and consultations over HTTP.
type Server struct {
	knowledge     KnowledgeService
	recommend     Recommender
	advisor       Advisor
	health        HealthReporter
	extractor     *conduc.Extractor
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	ks KnowledgeService,
	rec Recommender,
	adv Advisor,
	health HealthReporter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		knowledge: ks,
		recommend: rec,
		advisor:   adv,
		health:    health,
		extractor: conduc.NewExtractor(),
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, ErrorCodeInvalidTopK),
		sentinelHandler(domain.ErrInvalidConditions, http.StatusBadRequest, ErrorCodeInvalidConditions),
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrTokenBudgetExceeded, http.StatusTooManyRequests, ErrorCodeTokenBudgetExceeded),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusBadGateway, ErrorCodeModelUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError,
			http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
	}
	return s
}

// Routes registers the API on r.
func (s *Server) Routes(r router.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r router.Router) {
		r.Post("/knowledge/search", s.SearchKnowledge)
		r.Get("/knowledge/search", s.SearchKnowledgeQuery)
		r.Post("/knowledge/documents", s.UpdateKnowledge)
		r.Get("/knowledge/stats", s.KnowledgeStats)
		r.Post("/recommendations", s.Recommend)
		r.Post("/consultations", s.Consult)
	})
}

// SearchKnowledge handles POST /v1/knowledge/search.
func (s *Server) SearchKnowledge(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, maxBodyBytes, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query is required")
		return
	}

	opts := knowledge.Options{
		Category: req.Category,
		Filters:  req.Filters,
		TopK:     knowledge.DefaultTopK,
		UseCache: true,
	}
	if req.TopK != nil {
		opts.TopK = *req.TopK
	}
	if req.UseCache != nil {
		opts.UseCache = *req.UseCache
	}
	s.search(w, r, req.Query, opts)
}

// SearchKnowledgeQuery handles GET /v1/knowledge/search?q=&category=&top_k=&filter=key:value.
func (s *Server) SearchKnowledgeQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		query    string
		category *string
		topK     *int
		filters  *[]string
	)
	if err := runtime.BindQueryParameter("form", true, true, "q", q, &query); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", q, &category); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", q, &topK); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "filter", q, &filters); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	opts := knowledge.Options{TopK: knowledge.DefaultTopK, UseCache: true}
	if category != nil {
		opts.Category = *category
	}
	if topK != nil {
		opts.TopK = *topK
	}
	if filters != nil {
		parsed, err := parseFilters(*filters)
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
			return
		}
		opts.Filters = parsed
	}
	s.search(w, r, query, opts)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, query string, opts knowledge.Options) {
	ctx, usage := domain.NewContextWithUsage(r.Context())
	results, err := s.knowledge.Search(ctx, query, opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Items: results, Total: len(results)})
}

// UpdateKnowledge handles POST /v1/knowledge/documents.
func (s *Server) UpdateKnowledge(w http.ResponseWriter, r *http.Request) {
	var req UpdateKnowledgeRequest
	if !decodeBody(w, r, maxImageBodySize, &req) {
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "documents are required")
		return
	}
	if len(req.Documents) > maxUpdateRecords {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("at most %d documents per request", maxUpdateRecords))
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	report, err := s.knowledge.UpdateKnowledge(ctx, req.Documents)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, report)
}

// KnowledgeStats handles GET /v1/knowledge/stats.
func (s *Server) KnowledgeStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.knowledge.Stats())
}

// Recommend handles POST /v1/recommendations.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !decodeBody(w, r, maxBodyBytes, &req) {
		return
	}

	var c domcond.QueryConditions
	switch {
	case req.Conditions != nil:
		c = *req.Conditions
	case len(req.Profile) > 0:
		c = s.extractor.FromProfile(req.Profile)
		if req.Text != "" {
			c = conduc.Combine(s.extractor.Extract(req.Text), c)
		}
	case strings.TrimSpace(req.Text) != "":
		c = s.extractor.Extract(req.Text)
	default:
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "text, profile or conditions required")
		return
	}

	set, err := s.recommend.Suggest(r.Context(), c)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// Consult handles POST /v1/consultations.
func (s *Server) Consult(w http.ResponseWriter, r *http.Request) {
	var req ConsultationRequest
	if !decodeBody(w, r, maxImageBodySize, &req) {
		return
	}

	imageType := req.ImageType
	if len(req.Image) > 0 && imageType == "" {
		imageType = http.DetectContentType(req.Image)
	}

	resp, err := s.advisor.Consult(r.Context(), advisor.Request{
		Message:   req.Message,
		Image:     req.Image,
		ImageType: imageType,
		Profile:   req.Profile,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	w.Header().Set("X-Skinrec-Version", version.Version)

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
}

// decodeBody writes a 400 and returns false when the body is not valid JSON.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// parseFilters turns repeated key:value pairs into a filter map.
func parseFilters(raw []string) (map[string][]string, error) {
	out := make(map[string][]string, len(raw))
	for _, f := range raw {
		key, value, ok := strings.Cut(f, ":")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !ok || key == "" || value == "" {
			return nil, fmt.Errorf("filter %q must be key:value", f)
		}
		out[key] = append(out[key], value)
	}
	return out, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidTopK,
		domain.ErrInvalidConditions,
		domain.ErrInvalidRequest,
		domain.ErrTokenBudgetExceeded,
		domain.ErrModelUnavailable,
		domain.ErrEmbeddingProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
