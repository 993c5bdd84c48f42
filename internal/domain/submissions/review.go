package submissions

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound          = errors.New("submission not found")
	ErrInvalidDecision   = errors.New("invalid review decision")
	ErrInvalidTransition = errors.New("submission already reviewed")
)

// Decision taken by a government reviewer
type Decision string

const (
	DecisionApprove     Decision = "APPROVE"
	DecisionReject      Decision = "REJECT"
	DecisionInvestigate Decision = "INVESTIGATE"
)

// ParseDecision accepts any casing
func ParseDecision(s string) (Decision, error) {
	d := Decision(strings.ToUpper(strings.TrimSpace(s)))
	switch d {
	case DecisionApprove, DecisionReject, DecisionInvestigate:
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDecision, s)
}

func (d Decision) target() Status {
	switch d {
	case DecisionApprove:
		return StatusApproved
	case DecisionReject:
		return StatusRejected
	default:
		return StatusFlagged
	}
}

// Final reports whether no further review is possible
func (s Status) Final() bool {
	return s == StatusApproved || s == StatusRejected
}

// Review applies a decision. APPROVED and REJECTED are terminal.
func (s *Submission) Review(d Decision, reviewer, notes string, at time.Time) error {
	if _, err := ParseDecision(string(d)); err != nil {
		return err
	}
	if s.Status.Final() {
		return fmt.Errorf("%w: %s is %s", ErrInvalidTransition, s.ID, s.Status)
	}
	s.Status = d.target()
	s.ReviewedBy = reviewer
	s.ReviewNotes = notes
	s.ReviewedAt = &at
	s.UpdatedAt = at
	return nil
}
