package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	appcomplaints "github.com/bryanwahyu/carbon-audit/internal/application/complaints"
	"github.com/bryanwahyu/carbon-audit/internal/middleware"
)

type complaintRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	SubmissionID  string   `json:"submission_id"`
	AnonymousName string   `json:"anonymous_name"`
	Evidence      []string `json:"evidence"`
}

func (b *complaintRequest) validate() error {
	b.Title = middleware.SanitizeString(b.Title)
	b.Description = middleware.SanitizeString(b.Description)
	b.AnonymousName = middleware.SanitizeString(b.AnonymousName)
	b.SubmissionID = middleware.SanitizeString(b.SubmissionID)
	for i := range b.Evidence {
		b.Evidence[i] = middleware.SanitizeString(b.Evidence[i])
	}

	if err := middleware.ValidateText("title", b.Title, true, middleware.MaxTitleLen); err != nil {
		return err
	}
	if err := middleware.ValidateText("description", b.Description, true, middleware.MaxDescriptionLen); err != nil {
		return err
	}
	if err := middleware.ValidateText("anonymous_name", b.AnonymousName, false, middleware.MaxNameLen); err != nil {
		return err
	}
	if b.SubmissionID != "" {
		if err := middleware.ValidateSubmissionID(b.SubmissionID); err != nil {
			return err
		}
	}
	return middleware.ValidateURLs("evidence", b.Evidence)
}

// POST /v1/complaints
// Open to anyone. With a valid API key the complaint is filed under that
// principal, otherwise under anonymous_name or "Anonymous".
func (r *Router) handleFileComplaint(w http.ResponseWriter, req *http.Request) error {
	var body complaintRequest
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}

	cmd := appcomplaints.FileCommand{
		Title:         body.Title,
		Description:   body.Description,
		SubmissionID:  body.SubmissionID,
		AnonymousName: body.AnonymousName,
		Evidence:      body.Evidence,
	}
	if p, ok := middleware.PrincipalFromContext(req.Context()); ok {
		cmd.FiledBy = p.ID
	}
	c, err := r.complaints.File(req.Context(), cmd)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusCreated, c)
}

// GET /v1/complaints?status=&page=&page_size=
func (r *Router) handleListComplaints(w http.ResponseWriter, req *http.Request) error {
	page, size := pageParams(req)
	list, err := r.complaints.List(req.Context(), req.URL.Query().Get("status"), page, size)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, list)
}

// GET /v1/complaints/{id}
func (r *Router) handleGetComplaint(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateComplaintID(id); err != nil {
		return err
	}
	c, err := r.complaints.Get(req.Context(), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, c)
}

// PATCH /v1/complaints/{id}/status
// Body: {"status": "INVESTIGATING|RESOLVED"}
func (r *Router) handleComplaintStatus(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateComplaintID(id); err != nil {
		return err
	}
	p, err := principal(req)
	if err != nil {
		return err
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := decode(req, &body); err != nil {
		return err
	}

	c, err := r.complaints.UpdateStatus(req.Context(), appcomplaints.StatusCommand{
		ReviewerID:  p.ID,
		ComplaintID: id,
		Status:      body.Status,
	})
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, c)
}
