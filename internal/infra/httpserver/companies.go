package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appsubs "github.com/bryanwahyu/carbon-audit/internal/application/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/domain/analysis"
	domain "github.com/bryanwahyu/carbon-audit/internal/domain/submissions"
	"github.com/bryanwahyu/carbon-audit/internal/middleware"
)

type submitRequest struct {
	ProjectName    string   `json:"project_name"`
	Description    string   `json:"description"`
	ClaimedCredits *float64 `json:"claimed_credits"`
	Location       string   `json:"location"`
	EvidenceFiles  []string `json:"evidence_files"`
}

func (b *submitRequest) validate() error {
	b.ProjectName = middleware.SanitizeString(b.ProjectName)
	b.Description = middleware.SanitizeString(b.Description)
	b.Location = middleware.SanitizeString(b.Location)

	if b.ClaimedCredits == nil {
		return fmt.Errorf("%w: claimed_credits is required", middleware.ErrValidation)
	}
	if err := middleware.ValidateCredits(*b.ClaimedCredits); err != nil {
		return err
	}
	if err := middleware.ValidateText("project_name", b.ProjectName, true, middleware.MaxProjectNameLen); err != nil {
		return err
	}
	if err := middleware.ValidateText("description", b.Description, true, middleware.MaxDescriptionLen); err != nil {
		return err
	}
	if err := middleware.ValidateText("location", b.Location, false, middleware.MaxLocationLen); err != nil {
		return err
	}
	return middleware.ValidateURLs("evidence_files", b.EvidenceFiles)
}

// POST /v1/companies/{company}/submissions
// Body: {"project_name","description","claimed_credits","location","evidence_files"}
func (r *Router) handleSubmit(w http.ResponseWriter, req *http.Request) error {
	company := chi.URLParam(req, "company")

	var body submitRequest
	if err := decode(req, &body); err != nil {
		return err
	}
	if err := body.validate(); err != nil {
		return err
	}

	sub, err := r.subs.Submit(req.Context(), appsubs.SubmitCommand{
		CompanyID:      company,
		ProjectName:    body.ProjectName,
		Description:    body.Description,
		ClaimedCredits: *body.ClaimedCredits,
		Location:       body.Location,
		EvidenceFiles:  body.EvidenceFiles,
	})
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusCreated, sub)
}

// GET /v1/companies/{company}/submissions?page=&page_size=
func (r *Router) handleListMine(w http.ResponseWriter, req *http.Request) error {
	page, size := pageParams(req)
	list, err := r.subs.ListMine(req.Context(), chi.URLParam(req, "company"), page, size)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, list)
}

// GET /v1/companies/{company}/submissions/{id}
func (r *Router) handleGetMine(w http.ResponseWriter, req *http.Request) error {
	id, err := submissionID(req)
	if err != nil {
		return err
	}
	sub, err := r.subs.GetForCompany(req.Context(), chi.URLParam(req, "company"), id)
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, sub)
}

// POST /v1/companies/{company}/submissions/{id}/evidence (multipart, field "file")
func (r *Router) handleUploadEvidence(w http.ResponseWriter, req *http.Request) error {
	id, err := submissionID(req)
	if err != nil {
		return err
	}

	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	if err := req.ParseMultipartForm(r.maxUpload); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: invalid multipart body: %v", middleware.ErrValidation, err)
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		return fmt.Errorf("%w: file is required", middleware.ErrValidation)
	}
	defer file.Close()

	sub, err := r.subs.AttachEvidence(req.Context(), appsubs.EvidenceUpload{
		CompanyID:    chi.URLParam(req, "company"),
		SubmissionID: id,
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusCreated, sub)
}

type previewRequest struct {
	Description       string    `json:"description"`
	ClaimedCredits    *float64  `json:"claimed_credits"`
	Location          string    `json:"location"`
	HistoricalCredits []float64 `json:"historical_credits"`
}

// POST /v1/companies/{company}/analysis/preview
// Dry run: nothing is stored. Without historical_credits the company's
// stored history is used.
func (r *Router) handlePreview(w http.ResponseWriter, req *http.Request) error {
	var body previewRequest
	if err := decode(req, &body); err != nil {
		return err
	}
	if body.ClaimedCredits == nil {
		return fmt.Errorf("%w: claimed_credits is required", middleware.ErrValidation)
	}
	if err := middleware.ValidateCredits(*body.ClaimedCredits); err != nil {
		return err
	}
	body.Description = middleware.SanitizeString(body.Description)
	if err := middleware.ValidateText("description", body.Description, false, middleware.MaxDescriptionLen); err != nil {
		return err
	}
	if err := middleware.ValidateHistory(body.HistoricalCredits); err != nil {
		return err
	}

	res, err := r.subs.PreviewForCompany(req.Context(), chi.URLParam(req, "company"), analysis.Input{
		Description:       body.Description,
		ClaimedCredits:    *body.ClaimedCredits,
		HistoricalCredits: body.HistoricalCredits,
		Coordinates:       middleware.SanitizeString(body.Location),
	})
	if err != nil {
		return err
	}
	return middleware.WriteJSON(w, http.StatusOK, res)
}

// registryEntry is the public view of an approved submission
type registryEntry struct {
	ID             domain.SubmissionID `json:"id"`
	CompanyID      string              `json:"company_id"`
	ProjectName    string              `json:"project_name"`
	ClaimedCredits float64             `json:"claimed_credits"`
	Location       string              `json:"location"`
	RiskLevel      analysis.RiskLevel  `json:"risk_level"`
	ApprovedAt     *time.Time          `json:"approved_at,omitempty"`
}

type registryPage struct {
	Data       []registryEntry `json:"data"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Total      int64           `json:"totalItems"`
	TotalPages int             `json:"totalPages"`
}

// GET /v1/public/registry?page=&page_size=
func (r *Router) handleRegistry(w http.ResponseWriter, req *http.Request) error {
	page, size := pageParams(req)
	list, err := r.subs.PublicRegistry(req.Context(), page, size)
	if err != nil {
		return err
	}
	out := registryPage{
		Data:       make([]registryEntry, 0, len(list.Data)),
		Page:       list.Page,
		PageSize:   list.PageSize,
		Total:      list.Total,
		TotalPages: list.TotalPages,
	}
	for _, s := range list.Data {
		out.Data = append(out.Data, registryEntry{
			ID:             s.ID,
			CompanyID:      s.CompanyID,
			ProjectName:    s.ProjectName,
			ClaimedCredits: s.ClaimedCredits,
			Location:       s.Location,
			RiskLevel:      s.RiskLevel,
			ApprovedAt:     s.ReviewedAt,
		})
	}
	return middleware.WriteJSON(w, http.StatusOK, out)
}
