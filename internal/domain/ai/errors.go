package ai

import "errors"

var (
	// ErrQuotaExceeded indicates the model provider answered with HTTP 429 or a quota error.
	ErrQuotaExceeded = errors.New("ai quota exceeded")
	// ErrEmptyResponse indicates the provider returned no choices.
	ErrEmptyResponse = errors.New("ai returned an empty response")
)
