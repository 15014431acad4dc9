package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/thinkstruct/patentsearch/internal/domain"
	"github.com/thinkstruct/patentsearch/internal/domain/scenario"
	"github.com/thinkstruct/patentsearch/internal/domain/search/criteria"
	"github.com/thinkstruct/patentsearch/internal/domain/search/query"
	"github.com/thinkstruct/patentsearch/internal/domain/search/result"
	engineuc "github.com/thinkstruct/patentsearch/internal/usecase/engine"
	healthuc "github.com/thinkstruct/patentsearch/internal/usecase/health"
	historyuc "github.com/thinkstruct/patentsearch/internal/usecase/history"
	statsuc "github.com/thinkstruct/patentsearch/internal/usecase/stats"
)

const defaultHistoryLimit = 50

// defaultInfringementFloor drops weak matches from infringement searches when
// the request carries no min_similarity. An explicit value, including 0,
// overrides it.
const defaultInfringementFloor = 0.5

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the search engine.
type Server struct {
	engine        *engineuc.Service
	stats         *statsuc.Service
	health        *healthuc.Service
	history       *historyuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	engine *engineuc.Service,
	stats *statsuc.Service,
	health *healthuc.Service,
	history *historyuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:  engine,
		stats:   stats,
		health:  health,
		history: history,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidCriteria, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrPatentNotFound, http.StatusNotFound, codePatentNotFound),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingProviderErr),
		sentinelHandler(domain.ErrNotReady, http.StatusServiceUnavailable, codeEngineNotReady),
		sentinelHandler(domain.ErrIndexMisaligned, http.StatusInternalServerError, codeInternalError),
	}
	return s
}

// Register mounts all routes onto the router.
func (s *Server) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search/invalidity", s.handleSearch(scenario.Invalidity))
		r.Post("/search/infringement", s.handleSearch(scenario.Infringement))
		r.Post("/search/patentability", s.handleSearch(scenario.Patentability))
		r.Get("/patents/{docNumber}", s.handleGetPatent)
		r.Get("/patents/{docNumber}/similar", s.handleSimilar)
		r.Get("/stats", s.handleStats)
		r.Get("/history", s.handleHistory)
	})
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

// handleSearch handles POST /api/v1/search/{scenario}.
func (s *Server) handleSearch(scn scenario.Scenario) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
			return
		}

		filters, err := filtersFromRequest(req.Filters)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		// The patent under analysis never appears in its own results. For
		// invalidity, prior art must also predate it.
		if req.TargetDocNumber != "" {
			target, err := s.engine.Get(r.Context(), req.TargetDocNumber)
			if err != nil {
				s.handleDomainError(w, err)
				return
			}
			if scn == scenario.Invalidity && target.PublicationDate() != "" {
				filters = filters.WithDateTo(target.PublicationDate())
			}
		}

		minScore := 0.0
		switch {
		case req.MinSimilarity != nil:
			minScore = *req.MinSimilarity
		case scn == scenario.Infringement:
			minScore = defaultInfringementFloor
		}

		q, err := query.New(scn, req.Query, "", req.TargetDocNumber, filters, req.TopK, minScore)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		results, err := s.engine.Search(r.Context(), &q)
		if err != nil {
			s.handleDomainError(w, err)
			return
		}

		s.recordHistory(r, string(scn), req, len(results), topScore(results))

		items := make([]resultItem, len(results))
		for i := range results {
			items[i] = resultToItem(&results[i])
		}
		writeJSON(w, http.StatusOK, searchResponse{
			Scenario:     string(scn),
			TotalResults: len(items),
			Results:      items,
		})
	}
}

// handleGetPatent handles GET /api/v1/patents/{docNumber}.
func (s *Server) handleGetPatent(w http.ResponseWriter, r *http.Request) {
	docNumber := chi.URLParam(r, "docNumber")

	rec, err := s.engine.Get(r.Context(), docNumber)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, patentToResponse(&rec))
}

// handleSimilar handles GET /api/v1/patents/{docNumber}/similar.
func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	docNumber := chi.URLParam(r, "docNumber")

	topK, err := intQueryParam(r, "top_k")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	minScore, err := floatQueryParam(r, "min_similarity")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	q, err := query.New(scenario.ByID, "", docNumber, "", criteria.Criteria{}, topK, minScore)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	results, err := s.engine.Search(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]resultItem, len(results))
	for i := range results {
		items[i] = resultToItem(&results[i])
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Scenario:     string(scenario.ByID),
		TotalResults: len(items),
		Results:      items,
	})
}

// handleStats handles GET /api/v1/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsToResponse(s.stats.Report()))
}

// handleHistory handles GET /api/v1/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !s.history.Enabled() {
		writeError(w, http.StatusNotFound, codeHistoryNotConfigured, "search history is not configured")
		return
	}

	limit, err := intQueryParam(r, "limit")
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Entries: entries})
}

// handleHealth handles GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status == healthuc.NotReady {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthToResponse(report))
}

func (s *Server) recordHistory(r *http.Request, scn string, req searchRequest, resultCount int, topScore float64) {
	var filters string
	if req.Filters != nil {
		if b, err := json.Marshal(req.Filters); err == nil {
			filters = string(b)
		}
	}
	s.history.RecordSearch(r.Context(), scn, req.Query, filters, resultCount, topScore)
}

func filtersFromRequest(f *filterRequest) (criteria.Criteria, error) {
	if f == nil {
		return criteria.Criteria{}, nil
	}
	return criteria.New(f.Classification, f.Keywords, f.TitleContains, f.DateFrom, f.DateTo)
}

func topScore(results []result.Result) float64 {
	if len(results) == 0 {
		return 0
	}
	return results[0].Score()
}

func intQueryParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(name + " must be an integer")
	}
	return v, nil
}

func floatQueryParam(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New(name + " must be a number")
	}
	return v, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidCriteria,
		domain.ErrPatentNotFound,
		domain.ErrEmbeddingProviderError,
		domain.ErrNotReady,
		domain.ErrIndexMisaligned,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
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
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
