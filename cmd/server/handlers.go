package main

import (
	"context"
	"encoding/json"
	"errors"
	"runtime"
	"sync"
	"time"

	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_filename_similarity/internal/adapters/normalizer"
	"github.com/baditaflorin/go_filename_similarity/internal/ports"
	"github.com/baditaflorin/go_filename_similarity/internal/reconcile"
	"github.com/baditaflorin/go_filename_similarity/pkg/search"
	"github.com/baditaflorin/l"
	"github.com/valyala/fasthttp"
)

// maxResolutions bounds the resolution history served by /resolutions.
const maxResolutions = 100

// NormalizeRequest is the body of /normalize.
type NormalizeRequest struct {
	Filename string `json:"filename"`
}

// NormalizeResponse is the body returned by /normalize.
type NormalizeResponse struct {
	Filename  string `json:"filename"`
	Canonical string `json:"canonical"`
}

// SimilarityRequest is the body of /similarity.
type SimilarityRequest struct {
	A         string `json:"a"`
	B         string `json:"b"`
	Normalize bool   `json:"normalize,omitempty"`
}

// SimilarityResponse is the body returned by /similarity.
type SimilarityResponse struct {
	Score float64 `json:"score"`
}

// MatchRequest is the body of /match.
type MatchRequest struct {
	Requested string  `json:"requested"`
	Actual    string  `json:"actual"`
	Threshold float64 `json:"threshold,omitempty"`
}

// SearchRequest is the body of /search.
type SearchRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
	Limit      int      `json:"limit,omitempty"`
	Threshold  float64  `json:"threshold,omitempty"`
}

// SearchResponse is the body returned by /search.
type SearchResponse struct {
	Hits           []filenamesimilarity.Hit `json:"hits"`
	Candidates     int                      `json:"candidates"`
	ProcessingTime string                   `json:"processing_time"`
}

// ExpectRequest is the body of /expect. Description is converted to the
// filename a downloader would write when Requested is empty.
type ExpectRequest struct {
	ID          string `json:"id"`
	Requested   string `json:"requested,omitempty"`
	Description string `json:"description,omitempty"`
}

// ObserveRequest is the body of /observe.
type ObserveRequest struct {
	Path string `json:"path"`
}

// ResolutionResponse describes a reconciled download.
type ResolutionResponse struct {
	ID        string                         `json:"id"`
	Requested string                         `json:"requested"`
	Path      string                         `json:"path"`
	Result    filenamesimilarity.MatchResult `json:"result"`
	At        string                         `json:"at"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

type server struct {
	cfg        Config
	logger     l.Logger
	normalizer ports.Normalizer
	matcher    *filenamesimilarity.FilenameMatcher
	searcher   *search.Searcher
	reconciler *reconcile.Reconciler

	mu          sync.Mutex
	resolutions []ResolutionResponse
}

// newServer initializes the matcher, searcher and reconciler from cfg.
func newServer(cfg Config, lg l.Logger) (*server, error) {
	normType, err := normalizer.ParseNormalizerType(cfg.Normalizer)
	if err != nil {
		return nil, err
	}
	norm := normalizer.NewNormalizerFactory().CreateNormalizer(normType)

	fm, err := filenamesimilarity.New(
		filenamesimilarity.WithLogger(lg),
		filenamesimilarity.WithNormalizer(norm),
		filenamesimilarity.WithThreshold(cfg.Threshold),
		filenamesimilarity.WithAlgorithm(filenamesimilarity.Algorithm(cfg.Algorithm)),
		filenamesimilarity.WithWarmUp(cfg.WarmUp),
	)
	if err != nil {
		return nil, err
	}

	s := &server{
		cfg:        cfg,
		logger:     lg,
		normalizer: norm,
		matcher:    fm,
	}

	s.searcher, err = s.newSearcher(fm)
	if err != nil {
		return nil, err
	}

	s.reconciler = reconcile.New(fm, s.recordResolution, reconcile.WithLogger(logger.FromExisting(lg)))

	lg.Info("Filename matcher initialized successfully",
		"threshold", cfg.Threshold,
		"algorithm", cfg.Algorithm,
		"normalizer", normType.String(),
		"warm_up", cfg.WarmUp,
		"cpus", runtime.NumCPU(),
	)
	return s, nil
}

func (s *server) newSearcher(m ports.Matcher) (*search.Searcher, error) {
	opts := []search.Option{
		search.WithMatcher(m),
		search.WithLogger(s.logger),
	}
	if s.cfg.SearchWorkers > 0 {
		opts = append(opts, search.WithWorkers(s.cfg.SearchWorkers))
	}
	return search.New(opts...)
}

// matcherFor returns the shared matcher, or a quiet one with the requested threshold.
func (s *server) matcherFor(threshold float64) (*filenamesimilarity.FilenameMatcher, error) {
	if threshold == 0 || threshold == s.matcher.Threshold() {
		return s.matcher, nil
	}
	return filenamesimilarity.New(
		filenamesimilarity.WithQuietLogger(),
		filenamesimilarity.WithNormalizer(s.normalizer),
		filenamesimilarity.WithThreshold(threshold),
		filenamesimilarity.WithAlgorithm(filenamesimilarity.Algorithm(s.cfg.Algorithm)),
	)
}

func (s *server) recordResolution(res reconcile.Resolution) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolutions = append(s.resolutions, ResolutionResponse{
		ID:        res.ID,
		Requested: res.Requested,
		Path:      res.Path,
		Result:    res.Result,
		At:        res.At.Format(time.RFC3339),
	})
	if len(s.resolutions) > maxResolutions {
		s.resolutions = s.resolutions[len(s.resolutions)-maxResolutions:]
	}
}

// requestHandler is the main fasthttp request handler
func (s *server) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "FilenameSimilarityServer")

	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/normalize":
		s.handleNormalize(ctx)
	case "/similarity":
		s.handleSimilarity(ctx)
	case "/match":
		s.handleMatch(ctx)
	case "/search":
		s.handleSearch(ctx)
	case "/expect":
		s.handleExpect(ctx)
	case "/observe":
		s.handleObserve(ctx)
	case "/pending":
		s.handlePending(ctx)
	case "/resolutions":
		s.handleResolutions(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		s.writeJSONError(ctx, "Not found")
	}

	s.logger.Info("Request processed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func (s *server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// decodePost enforces POST and unmarshals the body into v.
func (s *server) decodePost(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return false
	}
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}
	return true
}

func (s *server) requireGet(ctx *fasthttp.RequestCtx) bool {
	if !ctx.IsGet() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return false
	}
	return true
}

func (s *server) handleNormalize(ctx *fasthttp.RequestCtx) {
	var req NormalizeRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, NormalizeResponse{
		Filename:  req.Filename,
		Canonical: s.matcher.Normalize(req.Filename),
	})
}

func (s *server) handleSimilarity(ctx *fasthttp.RequestCtx) {
	var req SimilarityRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	a, b := req.A, req.B
	if req.Normalize {
		a, b = s.matcher.Normalize(a), s.matcher.Normalize(b)
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, SimilarityResponse{Score: s.matcher.Similarity(a, b)})
}

func (s *server) handleMatch(ctx *fasthttp.RequestCtx) {
	var req MatchRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	m, err := s.matcherFor(req.Threshold)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, err.Error())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, m.Match(req.Requested, req.Actual))
}

func (s *server) handleSearch(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	var req SearchRequest
	if !s.decodePost(ctx, &req) {
		return
	}
	if len(req.Candidates) > s.cfg.MaxCandidates {
		ctx.SetStatusCode(fasthttp.StatusRequestEntityTooLarge)
		s.writeJSONError(ctx, "Too many candidates")
		return
	}

	searcher := s.searcher
	if req.Threshold != 0 {
		m, err := s.matcherFor(req.Threshold)
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			s.writeJSONError(ctx, err.Error())
			return
		}
		if searcher, err = s.newSearcher(m); err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			s.writeJSONError(ctx, "Internal server error")
			return
		}
	}

	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hits, err := searcher.Search(c, req.Query, req.Candidates)
	if err != nil {
		if errors.Is(err, search.ErrEmptyQuery) {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
		} else {
			ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		}
		s.writeJSONError(ctx, err.Error())
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, SearchResponse{
		Hits:           hits,
		Candidates:     len(req.Candidates),
		ProcessingTime: time.Since(startTime).String(),
	})
}

func (s *server) handleExpect(ctx *fasthttp.RequestCtx) {
	var req ExpectRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	requested := req.Requested
	var err error
	if requested == "" {
		requested, err = s.reconciler.ExpectDescription(req.ID, req.Description)
	} else {
		err = s.reconciler.Expect(req.ID, requested)
	}
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, err.Error())
		return
	}

	ctx.SetStatusCode(fasthttp.StatusAccepted)
	s.writeJSONResponse(ctx, map[string]string{"id": req.ID, "requested": requested})
}

func (s *server) handleObserve(ctx *fasthttp.RequestCtx) {
	var req ObserveRequest
	if !s.decodePost(ctx, &req) {
		return
	}
	if req.Path == "" {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Path is required")
		return
	}

	res, ok := s.reconciler.Observe(req.Path)
	ctx.SetStatusCode(fasthttp.StatusOK)
	if !ok {
		s.writeJSONResponse(ctx, map[string]interface{}{"resolved": false})
		return
	}
	s.writeJSONResponse(ctx, map[string]interface{}{
		"resolved": true,
		"id":       res.ID,
		"result":   res.Result,
	})
}

func (s *server) handlePending(ctx *fasthttp.RequestCtx) {
	if !s.requireGet(ctx) {
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{"pending": s.reconciler.Pending()})
}

func (s *server) handleResolutions(ctx *fasthttp.RequestCtx) {
	if !s.requireGet(ctx) {
		return
	}

	s.mu.Lock()
	out := make([]ResolutionResponse, len(s.resolutions))
	copy(out, s.resolutions)
	s.mu.Unlock()

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{"resolutions": out})
}

// writeJSONResponse writes a JSON response to the context
func (s *server) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON response", "error", err)
		s.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (s *server) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
