package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	appai "github.com/bryanwahyu/carbon-audit/internal/application/ai"
	appcomplaints "github.com/bryanwahyu/carbon-audit/internal/application/complaints"
	appsubs "github.com/bryanwahyu/carbon-audit/internal/application/submissions"
	domai "github.com/bryanwahyu/carbon-audit/internal/domain/ai"
	"github.com/bryanwahyu/carbon-audit/internal/domain/complaints"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/middleware"
)

// DefaultMaxUploadBytes batas ukuran file evidence
const DefaultMaxUploadBytes = 32 << 20

// Deps is everything the router needs. Complaints, Limiter, Metrics,
// MetricsHandler and Health are optional.
type Deps struct {
	Submissions    *appsubs.Service
	Briefs         *appai.Service
	Complaints     *appcomplaints.Service
	Keys           *middleware.Keyring
	Limiter        *middleware.RateLimiter
	Metrics        *middleware.Metrics
	MetricsHandler http.Handler
	Health         map[string]middleware.HealthChecker
	Logger         *zap.Logger
	MaxUploadBytes int64
}

type Router struct {
	subs       *appsubs.Service
	briefs     *appai.Service
	complaints *appcomplaints.Service
	log        *zap.Logger
	maxUpload  int64
}

func NewRouter(d Deps) http.Handler {
	r := &Router{subs: d.Submissions, briefs: d.Briefs, complaints: d.Complaints, log: d.Logger, maxUpload: d.MaxUploadBytes}
	if r.log == nil {
		r.log = zap.NewNop()
	}
	if r.maxUpload <= 0 {
		r.maxUpload = DefaultMaxUploadBytes
	}

	mux := chi.NewRouter()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(middleware.LoggingMiddleware(r.log))
	mux.Use(chimw.Recoverer)
	if d.Metrics != nil {
		mux.Use(d.Metrics.Middleware)
	}

	limit := func(next http.Handler) http.Handler { return next }
	if d.Limiter != nil {
		limit = d.Limiter.Middleware
	}

	mux.Get("/health", middleware.HealthHandler(d.Health))
	mux.Get("/healthz/live", middleware.LivenessHandler)
	mux.Get("/healthz/ready", middleware.ReadinessHandler(d.Health))
	if d.MetricsHandler != nil {
		mux.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	mux.With(limit).Get("/v1/public/registry", r.wrap(r.handleRegistry))

	mux.Route("/v1/companies/{company}", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(d.Keys))
		rt.Use(middleware.RequireRole(middleware.RoleCompany))
		rt.Use(middleware.RequireCompany)
		rt.Use(limit)

		rt.Post("/submissions", r.wrap(r.handleSubmit))
		rt.Get("/submissions", r.wrap(r.handleListMine))
		rt.Get("/submissions/{id}", r.wrap(r.handleGetMine))
		rt.Post("/submissions/{id}/evidence", r.wrap(r.handleUploadEvidence))
		rt.Post("/analysis/preview", r.wrap(r.handlePreview))
	})

	mux.Route("/v1/review", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(d.Keys))
		rt.Use(middleware.RequireRole(middleware.RoleReviewer))
		rt.Use(limit)

		rt.Get("/submissions", r.wrap(r.handleReviewList))
		rt.Get("/submissions/{id}", r.wrap(r.handleReviewGet))
		rt.Post("/submissions/{id}/decision", r.wrap(r.handleDecision))
		rt.Post("/submissions/{id}/brief", r.wrap(r.handleGenerateBrief))
		rt.Get("/submissions/{id}/brief", r.wrap(r.handleLatestBrief))
		rt.Get("/submissions/{id}/briefs", r.wrap(r.handleListBriefs))
		rt.Get("/submissions/{id}/activity", r.wrap(r.handleActivity))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	if r.complaints != nil {
		mux.Route("/v1/complaints", func(rt chi.Router) {
			rt.With(middleware.OptionalAPIKeyAuth(d.Keys), limit).Post("/", r.wrap(r.handleFileComplaint))

			rt.Group(func(rt chi.Router) {
				rt.Use(middleware.APIKeyAuth(d.Keys))
				rt.Use(middleware.RequireRole(middleware.RoleReviewer))
				rt.Use(limit)

				rt.Get("/", r.wrap(r.handleListComplaints))
				rt.Get("/{id}", r.wrap(r.handleGetComplaint))
				rt.Patch("/{id}/status", r.wrap(r.handleComplaintStatus))
			})
		})
	}

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

var errForbidden = errors.New("forbidden")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, middleware.ErrResponseStarted):
			r.log.Warn("response write failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err),
			)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, complaints.ErrNotFound):
			middleware.WriteError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, complaints.ErrInvalidTransition):
			middleware.WriteError(w, http.StatusConflict, err.Error())
		case errors.Is(err, middleware.ErrValidation),
			errors.Is(err, domain.ErrInvalidDecision),
			errors.Is(err, domain.ErrInvalidStatus),
			errors.Is(err, complaints.ErrInvalidStatus),
			errors.Is(err, complaints.ErrUnknownSubmission):
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &maxErr):
			middleware.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, errForbidden):
			middleware.WriteError(w, http.StatusForbidden, "forbidden")
		case errors.Is(err, domai.ErrQuotaExceeded):
			middleware.WriteError(w, http.StatusTooManyRequests, "ai quota exceeded")
		case errors.Is(err, errBriefsDisabled), errors.Is(err, appsubs.ErrEvidenceUnavailable):
			middleware.WriteError(w, http.StatusServiceUnavailable, err.Error())
		case errors.Is(err, domai.ErrEmptyResponse):
			middleware.WriteError(w, http.StatusBadGateway, "ai returned an empty response")
		default:
			r.log.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", chimw.GetReqID(req.Context())),
				zap.Error(err),
			)
			middleware.WriteError(w, http.StatusInternalServerError, "internal server error")
		}
	}
}

// decode reads a JSON body; unknown fields are rejected
func decode(req *http.Request, v any) error {
	dec := json.NewDecoder(req.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", middleware.ErrValidation, err)
	}
	return nil
}

func pageParams(req *http.Request) (int, int) {
	q := req.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return page, size
}

func submissionID(req *http.Request) (domain.SubmissionID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSubmissionID(id); err != nil {
		return "", err
	}
	return domain.SubmissionID(id), nil
}

func principal(req *http.Request) (middleware.Principal, error) {
	p, ok := middleware.PrincipalFromContext(req.Context())
	if !ok {
		return middleware.Principal{}, errForbidden
	}
	return p, nil
}
