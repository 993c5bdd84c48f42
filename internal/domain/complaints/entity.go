// Package complaints holds public reports about suspected carbon-credit fraud.
package complaints

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("complaint not found")
	ErrInvalidStatus     = errors.New("invalid complaint status")
	ErrInvalidTransition = errors.New("complaint status cannot move backwards")
	ErrUnknownSubmission = errors.New("complaint refers to an unknown submission")
)

// AnonymousName is shown when the filer is not authenticated and gave no name
const AnonymousName = "Anonymous"

// Status enum
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusInvestigating Status = "INVESTIGATING"
	StatusResolved      Status = "RESOLVED"
)

// ParseStatus accepts any casing
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if st.rank() < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusInvestigating:
		return 1
	case StatusResolved:
		return 2
	}
	return -1
}

// Complaint filed by the public, optionally about one submission
type Complaint struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        Status    `json:"status"`
	SubmissionID  string    `json:"submission_id,omitempty"`
	FiledBy       string    `json:"filed_by,omitempty"`
	AnonymousName string    `json:"anonymous_name,omitempty"`
	Evidence      []string  `json:"evidence"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Filer is the display name of whoever filed the complaint
func (c *Complaint) Filer() string {
	if c.FiledBy != "" {
		return c.FiledBy
	}
	if c.AnonymousName != "" {
		return c.AnonymousName
	}
	return AnonymousName
}

// MoveTo advances the status. PENDING may skip straight to RESOLVED;
// nothing moves back and RESOLVED is terminal.
func (c *Complaint) MoveTo(next Status, at time.Time) error {
	if next.rank() < 0 {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}
	if next.rank() <= c.Status.rank() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, c.ID, c.Status)
	}
	c.Status = next
	c.UpdatedAt = at
	return nil
}

// Page of complaints, newest first
type Page struct {
	Data       []*Complaint `json:"data"`
	Page       int          `json:"page"`
	PageSize   int          `json:"pageSize"`
	Total      int64        `json:"totalItems"`
	TotalPages int          `json:"totalPages"`
}

func NewPage(data []*Complaint, page, pageSize int, total int64) Page {
	if data == nil {
		data = []*Complaint{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int(math.Ceil(float64(total) / float64(pageSize)))
	}
	return Page{Data: data, Page: page, PageSize: pageSize, Total: total, TotalPages: pages}
}
