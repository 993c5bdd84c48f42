package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/carbon-audit/internal/application"
	appai "github.com/bryanwahyu/carbon-audit/internal/application/ai"
	appcomplaints "github.com/bryanwahyu/carbon-audit/internal/application/complaints"
	appsubs "github.com/bryanwahyu/carbon-audit/internal/application/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
	"github.com/bryanwahyu/carbon-audit/internal/domain/briefs"
	"github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/infra/ai/prompt"
	"github.com/bryanwahyu/carbon-audit/internal/infra/db/memory"
	"github.com/bryanwahyu/carbon-audit/internal/middleware"
)

const (
	acmeKey     = "acme-key"
	globexKey   = "globex-key"
	reviewerKey = "reviewer-key"
)

type fakeEvidence struct {
	keys []string
}

func (f *fakeEvidence) Upload(_ context.Context, r io.Reader, _ int64, key, _ string) (string, error) {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return "http://minio.local/evidence/" + key, nil
}

type testServer struct {
	handler      http.Handler
	evidence     *fakeEvidence
	evidenceDown bool
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	subsRepo := memory.NewSubmissionStore()
	acts := memory.NewActivityStore()
	brs := memory.NewBriefStore()
	ev := &fakeEvidence{}
	clock := application.FixedClock{T: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(reg)

	subs := &appsubs.Service{
		Repo:       subsRepo,
		Analyzer:   analysis.NewEngine(analysis.NewSeededRandom(7), analysis.WithDelay(0)),
		Evidence:   ev,
		Activities: acts,
		Clock:      clock,
		Logger:     zap.NewNop(),
		Metrics:    metrics,
	}
	aiSvc := appai.NewService(prompt.LocalClient{}, subsRepo, brs, acts, clock, zap.NewNop())
	complaintSvc := appcomplaints.NewService(memory.NewComplaintStore(), subsRepo, acts, clock, zap.NewNop())

	s := &testServer{evidence: ev}
	s.handler = NewRouter(Deps{
		Submissions:    subs,
		Briefs:         aiSvc,
		Complaints:     complaintSvc,
		Keys:           middleware.NewKeyring(map[string]string{"acme": acmeKey, "globex": globexKey}, map[string]string{"gov-1": reviewerKey}),
		Limiter:        limiter,
		Metrics:        metrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Health: map[string]middleware.HealthChecker{
			"evidence": middleware.CheckFunc(func(context.Context) error {
				if s.evidenceDown {
					return errors.New("bucket evidence does not exist")
				}
				return nil
			}),
		},
		Logger: zap.NewNop(),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, key string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	if key != "" {
		req.Header.Set("Authorization", "Bearer "+key)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func validSubmission() map[string]any {
	return map[string]any{
		"project_name":    "Mangrove Restoration",
		"description":     "Verified mangrove replanting across 40 hectares",
		"claimed_credits": 120.5,
		"location":        "-6.2088,106.8456",
	}
}

func (s *testServer) submit(t *testing.T) *domain.Submission {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/v1/companies/acme/submissions", acmeKey, validSubmission())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[*domain.Submission](t, rec)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, "ok", s.do(t, http.MethodGet, "/healthz/live", "", nil).Body.String())
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz/ready", "", nil).Code)

	s.evidenceDown = true
	rec := s.do(t, http.MethodGet, "/healthz/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failing":["evidence"]`)
	assert.Equal(t, http.StatusServiceUnavailable, s.do(t, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, "ok", s.do(t, http.MethodGet, "/healthz/live", "", nil).Body.String())
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		key    string
		want   int
	}{
		{"missing key", http.MethodGet, "/v1/companies/acme/submissions", "", http.StatusUnauthorized},
		{"unknown key", http.MethodGet, "/v1/companies/acme/submissions", "nope", http.StatusUnauthorized},
		{"reviewer on company route", http.MethodGet, "/v1/companies/acme/submissions", reviewerKey, http.StatusForbidden},
		{"other company", http.MethodGet, "/v1/companies/acme/submissions", globexKey, http.StatusForbidden},
		{"invalid company id", http.MethodGet, "/v1/companies/ac%20me/submissions", acmeKey, http.StatusBadRequest},
		{"company on review route", http.MethodGet, "/v1/review/summary", acmeKey, http.StatusForbidden},
		{"reviewer summary", http.MethodGet, "/v1/review/summary", reviewerKey, http.StatusOK},
		{"public registry", http.MethodGet, "/v1/public/registry", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.do(t, tt.method, tt.path, tt.key, nil).Code)
		})
	}
}

func TestSubmitAndFetch(t *testing.T) {
	s := newTestServer(t, nil)
	sub := s.submit(t)

	require.NotNil(t, sub.Analysis)
	assert.Equal(t, "acme", sub.CompanyID)
	assert.Contains(t, []domain.Status{domain.StatusPending, domain.StatusFlagged}, sub.Status)
	assert.Equal(t, sub.Analysis.RiskScore.FraudProbability, sub.RiskScore)

	rec := s.do(t, http.MethodGet, "/v1/companies/acme/submissions/"+string(sub.ID), acmeKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, sub.ID, decodeBody[*domain.Submission](t, rec).ID)

	rec = s.do(t, http.MethodGet, "/v1/companies/acme/submissions", acmeKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[domain.PaginatedResult](t, rec)
	assert.Equal(t, int64(1), page.Total)

	// globex cannot see acme's submission through its own path
	rec = s.do(t, http.MethodGet, "/v1/companies/globex/submissions/"+string(sub.ID), globexKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/companies/acme/submissions/not-a-uuid", acmeKey, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitValidation(t *testing.T) {
	s := newTestServer(t, nil)

	mutate := func(f func(map[string]any)) map[string]any {
		b := validSubmission()
		f(b)
		return b
	}
	tests := []struct {
		name string
		body any
	}{
		{"missing credits", mutate(func(b map[string]any) { delete(b, "claimed_credits") })},
		{"zero credits", mutate(func(b map[string]any) { b["claimed_credits"] = 0 })},
		{"negative credits", mutate(func(b map[string]any) { b["claimed_credits"] = -5 })},
		{"blank project", mutate(func(b map[string]any) { b["project_name"] = "   " })},
		{"missing description", mutate(func(b map[string]any) { delete(b, "description") })},
		{"unknown field", mutate(func(b map[string]any) { b["claimed_amount"] = 3 })},
		{"broken json", `{"project_name":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/v1/companies/acme/submissions", acmeKey, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeBody[middleware.ErrorBody](t, rec).Error)
		})
	}
}

func TestReviewFlow(t *testing.T) {
	s := newTestServer(t, nil)
	sub := s.submit(t)
	base := "/v1/review/submissions/" + string(sub.ID)

	rec := s.do(t, http.MethodGet, "/v1/review/submissions?status=bogus", reviewerKey, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/review/submissions?status="+strings.ToLower(string(sub.Status)), reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), decodeBody[domain.PaginatedResult](t, rec).Total)

	rec = s.do(t, http.MethodPost, base+"/decision", reviewerKey, map[string]string{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/decision", reviewerKey, map[string]string{"decision": "approve", "notes": "field visit ok"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewed := decodeBody[*domain.Submission](t, rec)
	assert.Equal(t, domain.StatusApproved, reviewed.Status)
	assert.Equal(t, "gov-1", reviewed.ReviewedBy)

	rec = s.do(t, http.MethodPost, base+"/decision", reviewerKey, map[string]string{"decision": "reject"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/public/registry", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	registry := decodeBody[registryPage](t, rec)
	require.Len(t, registry.Data, 1)
	assert.Equal(t, sub.ID, registry.Data[0].ID)
	assert.NotContains(t, rec.Body.String(), "field visit ok")

	rec = s.do(t, http.MethodGet, base+"/activity", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "submission.reviewed")
	assert.Contains(t, rec.Body.String(), "submission.created")

	rec = s.do(t, http.MethodGet, "/v1/review/summary", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeBody[domain.Summary](t, rec)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.ByStatus[domain.StatusApproved])

	rec = s.do(t, http.MethodGet, "/v1/review/submissions/00000000-0000-0000-0000-000000000000", reviewerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBriefs(t *testing.T) {
	s := newTestServer(t, nil)
	sub := s.submit(t)
	base := "/v1/review/submissions/" + string(sub.ID)

	rec := s.do(t, http.MethodGet, base+"/brief", reviewerKey, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, base+"/brief", reviewerKey, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody[*briefs.Brief](t, rec)
	assert.Equal(t, prompt.LocalModel, created.Model)
	assert.Equal(t, "gov-1", created.Reviewer)

	var content prompt.Brief
	require.NoError(t, json.Unmarshal([]byte(created.Content), &content))
	assert.Equal(t, string(sub.ID), content.SubmissionID)

	rec = s.do(t, http.MethodGet, base+"/brief", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeBody[*briefs.Brief](t, rec).ID)

	rec = s.do(t, http.MethodGet, base+"/briefs", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]*briefs.Brief](t, rec), 1)
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func TestUploadEvidence(t *testing.T) {
	s := newTestServer(t, nil)
	sub := s.submit(t)
	path := fmt.Sprintf("/v1/companies/acme/submissions/%s/evidence", sub.ID)

	body, ct := multipartBody(t, "file", "../../survey.pdf", "%PDF-1.7")
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+acmeKey)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	updated := decodeBody[*domain.Submission](t, rec)
	require.Len(t, updated.EvidenceFiles, 1)
	assert.Equal(t, []string{fmt.Sprintf("acme/%s/survey.pdf", sub.ID)}, s.evidence.keys)

	body, ct = multipartBody(t, "other", "x.pdf", "x")
	req = httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Authorization", "Bearer "+acmeKey)
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview(t *testing.T) {
	s := newTestServer(t, nil)

	rec := s.do(t, http.MethodPost, "/v1/companies/acme/analysis/preview", acmeKey, map[string]any{
		"description":        "carbon offset project planned, pending verification",
		"claimed_credits":    800,
		"historical_credits": []float64{100, 200, 300},
		"location":           "-6.2,106.8",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeBody[analysis.Result](t, rec)
	assert.Equal(t, 300.0, res.AnomalyDetection.DeviationPercentage)
	assert.True(t, res.AnomalyDetection.IsFlagged)
	assert.NotEmpty(t, res.ESGAnalysis.FlaggedKeywords)

	// preview stores nothing
	rec = s.do(t, http.MethodGet, "/v1/companies/acme/submissions", acmeKey, nil)
	assert.Equal(t, int64(0), decodeBody[domain.PaginatedResult](t, rec).Total)

	rec = s.do(t, http.MethodPost, "/v1/companies/acme/analysis/preview", acmeKey, map[string]any{
		"claimed_credits":    10,
		"historical_credits": []float64{-1},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreview_CreditBounds(t *testing.T) {
	s := newTestServer(t, nil)
	path := "/v1/companies/acme/analysis/preview"

	rejected := []map[string]any{
		{"claimed_credits": 1e308, "historical_credits": []float64{1e-10}},
		{"claimed_credits": 10, "historical_credits": []float64{1.7e308, 1.7e308}},
		{"claimed_credits": 0.001},
		{"claimed_credits": 10, "historical_credits": make([]float64, middleware.MaxHistoryLen+1)},
	}
	for _, body := range rejected {
		rec := s.do(t, http.MethodPost, path, acmeKey, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%v", body)
		assert.Contains(t, rec.Body.String(), "error")
	}

	// widest accepted spread still produces a JSON body
	rec := s.do(t, http.MethodPost, path, acmeKey, map[string]any{
		"claimed_credits":    middleware.MaxCredits,
		"historical_credits": []float64{0, middleware.MinCredits},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[analysis.Result](t, rec)
	assert.True(t, res.AnomalyDetection.IsFlagged)
	assert.Greater(t, res.AnomalyDetection.DeviationPercentage, 1e12)
}

func TestSubmit_RejectsOversizedCredits(t *testing.T) {
	s := newTestServer(t, nil)
	body := validSubmission()
	body["claimed_credits"] = 1e308

	rec := s.do(t, http.MethodPost, "/v1/companies/acme/submissions", acmeKey, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/companies/acme/submissions", acmeKey, nil)
	assert.Equal(t, int64(0), decodeBody[domain.PaginatedResult](t, rec).Total)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, middleware.NewRateLimiter(0.001, 1))

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/review/summary", reviewerKey, nil).Code)
	rec := s.do(t, http.MethodGet, "/v1/review/summary", reviewerKey, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// separate bucket per principal
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/companies/acme/submissions", acmeKey, nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	s.submit(t)

	rec := s.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `carbon_audit_http_requests_total{code="201",method="POST",route="/v1/companies/{company}/submissions"}`)
	assert.Contains(t, rec.Body.String(), "carbon_audit_analyses_total")
}

func TestWrap_UnencodableResponse(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	r := &Router{log: zap.New(core)}
	h := r.wrap(func(w http.ResponseWriter, _ *http.Request) error {
		return middleware.WriteJSON(w, http.StatusOK, analysis.AnomalyDetection{DeviationPercentage: math.Inf(1)})
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "request failed", logs.All()[0].Message)
}

func TestComplaints(t *testing.T) {
	s := newTestServer(t, nil)
	sub := s.submit(t)

	// anonymous filer
	rec := s.do(t, http.MethodPost, "/v1/complaints", "", map[string]any{
		"title":       "Mangrove site is a parking lot",
		"description": "Visited the coordinates, no planting at all",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	anon := decodeBody[complaints.Complaint](t, rec)
	assert.Equal(t, complaints.StatusPending, anon.Status)
	assert.Equal(t, complaints.AnonymousName, anon.AnonymousName)
	assert.Empty(t, anon.FiledBy)

	// authenticated filer about a submission
	rec = s.do(t, http.MethodPost, "/v1/complaints", globexKey, map[string]any{
		"title":         "Double counted credits",
		"description":   "Same hectares claimed by another registry",
		"submission_id": string(sub.ID),
		"evidence":      []string{"http://example.org/registry.pdf"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	filed := decodeBody[complaints.Complaint](t, rec)
	assert.Equal(t, "globex", filed.FiledBy)
	assert.Empty(t, filed.AnonymousName)

	// the submission's activity trail shows the complaint
	rec = s.do(t, http.MethodGet, "/v1/review/submissions/"+string(sub.ID)+"/activity", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "complaint.filed")

	// reviewers list newest first; companies and anonymous callers cannot
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/v1/complaints", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/complaints", acmeKey, nil).Code)
	rec = s.do(t, http.MethodGet, "/v1/complaints", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[complaints.Page](t, rec)
	assert.Equal(t, int64(2), list.Total)

	rec = s.do(t, http.MethodGet, "/v1/complaints/"+filed.ID, reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(sub.ID), decodeBody[complaints.Complaint](t, rec).SubmissionID)

	// status workflow
	path := "/v1/complaints/" + filed.ID + "/status"
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, path, globexKey, map[string]any{"status": "RESOLVED"}).Code)
	rec = s.do(t, http.MethodPatch, path, reviewerKey, map[string]any{"status": "investigating"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, complaints.StatusInvestigating, decodeBody[complaints.Complaint](t, rec).Status)
	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPatch, path, reviewerKey, map[string]any{"status": "PENDING"}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPatch, path, reviewerKey, map[string]any{"status": "CLOSED"}).Code)
	rec = s.do(t, http.MethodPatch, path, reviewerKey, map[string]any{"status": "RESOLVED"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/v1/complaints?status=pending", reviewerKey, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	pending := decodeBody[complaints.Page](t, rec)
	require.Len(t, pending.Data, 1)
	assert.Equal(t, anon.ID, pending.Data[0].ID)
}

func TestComplaints_Validation(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name   string
		key    string
		body   any
		status int
	}{
		{"missing title", "", map[string]any{"description": "d"}, http.StatusBadRequest},
		{"missing description", "", map[string]any{"title": "t"}, http.StatusBadRequest},
		{"bad submission id", "", map[string]any{"title": "t", "description": "d", "submission_id": "x"}, http.StatusBadRequest},
		{"unknown submission", "", map[string]any{"title": "t", "description": "d", "submission_id": "6f1c2a5e-8d7b-4c1a-9f3e-2b4d6a8c0e1f"}, http.StatusBadRequest},
		{"unknown field", "", map[string]any{"title": "t", "description": "d", "status": "RESOLVED"}, http.StatusBadRequest},
		{"invalid key", "nope", map[string]any{"title": "t", "description": "d"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, s.do(t, http.MethodPost, "/v1/complaints", tt.key, tt.body).Code)
		})
	}

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/complaints/not-a-uuid", reviewerKey, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/v1/complaints/6f1c2a5e-8d7b-4c1a-9f3e-2b4d6a8c0e1f", reviewerKey, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/v1/complaints?status=closed", reviewerKey, nil).Code)
}
