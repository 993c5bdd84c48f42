package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	appsubs "github.com/bryanwahyu/carbon-audit/internal/application/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/middleware"
)

// GET /v1/review/submissions?status=&page=&page_size=
func (r *Router) handleReviewList(w http.ResponseWriter, req *http.Request) error {
	page, size := pageParams(req)
	list, err := r.subs.ListForReview(req.Context(), req.URL.Query().Get("status"), page, size)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, list)
}

// GET /v1/review/submissions/{id}
func (r *Router) handleReviewGet(w http.ResponseWriter, req *http.Request) error {
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	sub, err := r.subs.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, sub)
}

// POST /v1/review/submissions/{id}/decision
// Body: {"decision": "APPROVE|REJECT|INVESTIGATE", "notes": "..."}
func (r *Router) handleDecision(w http.ResponseWriter, req *http.Request) error {
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	p, err := principal(req)
	if err != nil {
		return err
	}

	var body struct {
		Decision string `json:"decision"`
		Notes    string `json:"notes"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}
	body.Notes = middleware.SanitizeString(body.Notes)
	if err := middleware.ValidateText("notes", body.Notes, false, middleware.MaxNotesLen); err != nil {
		return err
	}

	sub, err := r.subs.Review(req.Context(), appsubs.ReviewCommand{
		ReviewerID:   p.ID,
		SubmissionID: id,
		Decision:     body.Decision,
		Notes:        body.Notes,
	})
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, sub)
}

// POST /v1/review/submissions/{id}/brief
func (r *Router) handleGenerateBrief(w http.ResponseWriter, req *http.Request) error {
	if r.briefs == nil {
		return errBriefsDisabled
	}
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	p, err := principal(req)
	if err != nil {
		return err
	}
	b, err := r.briefs.GenerateBrief(req.Context(), p.ID, id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusCreated, b)
}

// GET /v1/review/submissions/{id}/brief
func (r *Router) handleLatestBrief(w http.ResponseWriter, req *http.Request) error {
	if r.briefs == nil {
		return errBriefsDisabled
	}
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	b, err := r.briefs.LatestBrief(req.Context(), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, b)
}

// GET /v1/review/submissions/{id}/briefs?page=&page_size=
func (r *Router) handleListBriefs(w http.ResponseWriter, req *http.Request) error {
	if r.briefs == nil {
		return errBriefsDisabled
	}
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	page, size := pageParams(req)
	list, err := r.briefs.ListBriefs(req.Context(), id, page, size)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, list)
}

// GET /v1/review/submissions/{id}/activity?limit=50
func (r *Router) handleActivity(w http.ResponseWriter, req *http.Request) error {
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	entries, err := r.subs.Activity(req.Context(), id, limit)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, entries)
}

// GET /v1/review/summary
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	summary, err := r.subs.Summary(req.Context())
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, summary)
}

var errBriefsDisabled = errors.New("briefs are not configured")
