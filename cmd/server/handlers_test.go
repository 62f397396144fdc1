package main

import (
	"encoding/json"
	"io"
	"testing"

	filenamesimilarity "github.com/baditaflorin/go_filename_similarity"
	"github.com/baditaflorin/l"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestServer(t *testing.T) *server {
	t.Helper()

	lg, err := l.NewStandardFactory().CreateLogger(l.Config{Output: io.Discard})
	require.NoError(t, err)
	t.Cleanup(func() { lg.Close() })

	cfg := DefaultConfig()
	cfg.WarmUp = false
	srv, err := newServer(cfg, lg)
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *server, method, path string, body interface{}) *fasthttp.RequestCtx {
	t.Helper()

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		ctx.Request.SetBody(data)
	}
	srv.requestHandler(ctx)
	return ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), v))
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	ctx := doRequest(t, srv, "GET", "/health", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))

	var body map[string]string
	decodeBody(t, ctx, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t)

	ctx := doRequest(t, srv, "GET", "/nope", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())

	var body ErrorResponse
	decodeBody(t, ctx, &body)
	assert.Equal(t, "Not found", body.Error)
}

func TestNormalizeHandler(t *testing.T) {
	srv := newTestServer(t)

	ctx := doRequest(t, srv, "POST", "/normalize", NormalizeRequest{Filename: "  【Movie】  Title,Part 1.MP4 "})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var body NormalizeResponse
	decodeBody(t, ctx, &body)
	assert.Equal(t, "movie title part 1.mp4", body.Canonical)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/normalize", "/similarity", "/match", "/search", "/expect", "/observe"} {
		ctx := doRequest(t, srv, "GET", path, nil)
		assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode(), path)
	}
	for _, path := range []string{"/pending", "/resolutions"} {
		ctx := doRequest(t, srv, "POST", path, nil)
		assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode(), path)
	}
}

func TestInvalidJSON(t *testing.T) {
	srv := newTestServer(t)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod("POST")
	ctx.Request.SetRequestURI("/match")
	ctx.Request.SetBodyString("{not json")
	srv.requestHandler(ctx)

	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestSimilarityHandler(t *testing.T) {
	srv := newTestServer(t)

	ctx := doRequest(t, srv, "POST", "/similarity", SimilarityRequest{A: "kitten", B: "sitting"})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var body SimilarityResponse
	decodeBody(t, ctx, &body)
	assert.InDelta(t, 1-3.0/7.0, body.Score, 1e-9)

	ctx = doRequest(t, srv, "POST", "/similarity", SimilarityRequest{A: "ABC ", B: "abc", Normalize: true})
	decodeBody(t, ctx, &body)
	assert.Equal(t, 1.0, body.Score)
}

func TestMatchHandler(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name       string
		req        MatchRequest
		wantStatus int
		wantPassed bool
		wantReason filenamesimilarity.Reason
	}{
		{
			name:       "exact after normalization",
			req:        MatchRequest{Requested: "【Show】 Ep1.mp4", Actual: "show ep1.mp4"},
			wantStatus: fasthttp.StatusOK,
			wantPassed: true,
			wantReason: filenamesimilarity.ReasonExact,
		},
		{
			name:       "containment",
			req:        MatchRequest{Requested: "report.pdf", Actual: "report.pdf.download"},
			wantStatus: fasthttp.StatusOK,
			wantPassed: true,
			wantReason: filenamesimilarity.ReasonContainment,
		},
		{
			name:       "threshold boundary",
			req:        MatchRequest{Requested: "abcde", Actual: "abcdx"},
			wantStatus: fasthttp.StatusOK,
			wantPassed: false,
			wantReason: filenamesimilarity.ReasonBelowThreshold,
		},
		{
			name:       "lower per-request threshold",
			req:        MatchRequest{Requested: "abcde", Actual: "abcdx", Threshold: 0.5},
			wantStatus: fasthttp.StatusOK,
			wantPassed: true,
			wantReason: filenamesimilarity.ReasonSimilarity,
		},
		{
			name:       "invalid threshold",
			req:        MatchRequest{Requested: "a", Actual: "b", Threshold: 1.5},
			wantStatus: fasthttp.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := doRequest(t, srv, "POST", "/match", tt.req)
			require.Equal(t, tt.wantStatus, ctx.Response.StatusCode())
			if tt.wantStatus != fasthttp.StatusOK {
				return
			}

			var res filenamesimilarity.MatchResult
			decodeBody(t, ctx, &res)
			assert.Equal(t, tt.wantPassed, res.Passed)
			assert.Equal(t, tt.wantReason, res.Reason)
		})
	}
}

func TestSearchHandler(t *testing.T) {
	srv := newTestServer(t)

	req := SearchRequest{
		Query: "Holiday Video.mp4",
		Candidates: []string{
			"notes.txt",
			"holiday video.mp4",
			"Holiday Videos.mp4",
			"【Holiday】Video.mp4",
			"budget.xlsx",
		},
	}

	ctx := doRequest(t, srv, "POST", "/search", req)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var body SearchResponse
	decodeBody(t, ctx, &body)
	assert.Equal(t, 5, body.Candidates)
	require.Len(t, body.Hits, 3)
	assert.Equal(t, 1, body.Hits[0].Index)
	assert.Equal(t, 3, body.Hits[1].Index)
	assert.Equal(t, 2, body.Hits[2].Index)

	req.Limit = 1
	ctx = doRequest(t, srv, "POST", "/search", req)
	decodeBody(t, ctx, &body)
	assert.Len(t, body.Hits, 1)
}

func TestSearchHandlerErrors(t *testing.T) {
	srv := newTestServer(t)
	srv.cfg.MaxCandidates = 2

	ctx := doRequest(t, srv, "POST", "/search", SearchRequest{Query: "", Candidates: []string{"a"}})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = doRequest(t, srv, "POST", "/search", SearchRequest{Query: "a", Candidates: []string{"a", "b", "c"}})
	assert.Equal(t, fasthttp.StatusRequestEntityTooLarge, ctx.Response.StatusCode())

	ctx = doRequest(t, srv, "POST", "/search", SearchRequest{Query: "a", Candidates: []string{"a"}, Threshold: -1})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestReconcileHandlers(t *testing.T) {
	srv := newTestServer(t)

	ctx := doRequest(t, srv, "POST", "/expect", ExpectRequest{ID: "job-1", Requested: "Quarterly Report.pdf"})
	require.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())

	ctx = doRequest(t, srv, "POST", "/expect", ExpectRequest{ID: "job-2", Description: "Meeting: notes?"})
	require.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
	var expected map[string]string
	decodeBody(t, ctx, &expected)
	assert.Equal(t, "Meeting notes", expected["requested"])

	ctx = doRequest(t, srv, "POST", "/expect", ExpectRequest{Requested: "x.pdf"})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = doRequest(t, srv, "GET", "/pending", nil)
	var pending map[string][]string
	decodeBody(t, ctx, &pending)
	assert.Equal(t, []string{"job-1", "job-2"}, pending["pending"])

	ctx = doRequest(t, srv, "POST", "/observe", ObserveRequest{Path: "/downloads/quarterly report.pdf"})
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var observed struct {
		Resolved bool                           `json:"resolved"`
		ID       string                         `json:"id"`
		Result   filenamesimilarity.MatchResult `json:"result"`
	}
	decodeBody(t, ctx, &observed)
	assert.True(t, observed.Resolved)
	assert.Equal(t, "job-1", observed.ID)
	assert.Equal(t, filenamesimilarity.ReasonExact, observed.Result.Reason)

	ctx = doRequest(t, srv, "POST", "/observe", ObserveRequest{Path: "/downloads/unrelated.zip"})
	observed.Resolved = true
	decodeBody(t, ctx, &observed)
	assert.False(t, observed.Resolved)

	ctx = doRequest(t, srv, "POST", "/observe", ObserveRequest{})
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = doRequest(t, srv, "GET", "/resolutions", nil)
	var resolutions map[string][]ResolutionResponse
	decodeBody(t, ctx, &resolutions)
	require.Len(t, resolutions["resolutions"], 1)
	assert.Equal(t, "job-1", resolutions["resolutions"][0].ID)
	assert.Equal(t, "/downloads/quarterly report.pdf", resolutions["resolutions"][0].Path)

	ctx = doRequest(t, srv, "GET", "/pending", nil)
	decodeBody(t, ctx, &pending)
	assert.Equal(t, []string{"job-2"}, pending["pending"])
}

func TestResolutionHistoryIsBounded(t *testing.T) {
	srv := newTestServer(t)

	for i := 0; i < maxResolutions+10; i++ {
		require.NoError(t, srv.reconciler.Expect("id", "file.bin"))
		_, ok := srv.reconciler.Observe("file.bin")
		require.True(t, ok)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Len(t, srv.resolutions, maxResolutions)
}
