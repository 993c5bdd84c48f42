package middleware

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input validation and sanitization utilities

// ErrValidation is wrapped by every validator error
var ErrValidation = errors.New("validation failed")

const (
	MaxProjectNameLen = 255
	MaxDescriptionLen = 10000
	MaxLocationLen    = 255
	MaxNotesLen       = 2000
	MaxTitleLen       = 255
	MaxNameLen        = 128
	MaxURLLen         = 2048
	MaxEvidenceURLs   = 20

	// credit amounts outside this range are rejected before analysis
	MinCredits = 0.01
	MaxCredits = 1e12
	// MaxHistoryLen caps caller-supplied historical_credits
	MaxHistoryLen = 100
)

var companyIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// ValidateCompanyID allows alphanumeric, dash, underscore (max 64 chars)
func ValidateCompanyID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: company ID cannot be empty", ErrValidation)
	}
	if !companyIDPattern.MatchString(id) {
		return fmt.Errorf("%w: invalid company ID format (alphanumeric, dash, underscore only, max 64 chars)", ErrValidation)
	}
	return nil
}

// ValidateSubmissionID expects a UUID
func ValidateSubmissionID(id string) error { return validateUUID("submission", id) }

// ValidateComplaintID expects a UUID
func ValidateComplaintID(id string) error { return validateUUID("complaint", id) }

func validateUUID(kind, id string) error {
	if id == "" {
		return fmt.Errorf("%w: %s ID cannot be empty", ErrValidation, kind)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: invalid %s ID format", ErrValidation, kind)
	}
	return nil
}

// ValidateURLs checks a list of evidence links
func ValidateURLs(field string, urls []string) error {
	if len(urls) > MaxEvidenceURLs {
		return fmt.Errorf("%w: %s allows at most %d entries", ErrValidation, field, MaxEvidenceURLs)
	}
	for i, u := range urls {
		if err := ValidateText(fmt.Sprintf("%s[%d]", field, i), u, true, MaxURLLen); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCredits requires a finite amount in [MinCredits, MaxCredits]
func ValidateCredits(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: claimed_credits must be a finite number", ErrValidation)
	}
	if v < MinCredits || v > MaxCredits {
		return fmt.Errorf("%w: claimed_credits must be between %g and %g", ErrValidation, MinCredits, MaxCredits)
	}
	return nil
}

// ValidateHistory checks caller-supplied past claims. Zero is allowed for a
// period without credits.
func ValidateHistory(values []float64) error {
	if len(values) > MaxHistoryLen {
		return fmt.Errorf("%w: historical_credits allows at most %d values", ErrValidation, MaxHistoryLen)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxCredits {
			return fmt.Errorf("%w: historical_credits[%d] must be between 0 and %g", ErrValidation, i, MaxCredits)
		}
	}
	return nil
}

// ValidateText checks required-ness and rune length
func ValidateText(field, v string, required bool, max int) error {
	if required && strings.TrimSpace(v) == "" {
		return fmt.Errorf("%w: %s is required", ErrValidation, field)
	}
	if utf8.RuneCountInString(v) > max {
		return fmt.Errorf("%w: %s exceeds %d characters", ErrValidation, field, max)
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
