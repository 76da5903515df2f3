// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// LLM response errors.
var (
	// ErrNoContent indicates the LLM returned a response with no usable content.
	ErrNoContent = errors.New("no message content from assistant")

	// ErrExtraction indicates claim extraction produced no parseable result.
	ErrExtraction = errors.New("claim extraction failed")
)

// Claim store errors.
var (
	// ErrClaimNotResolved indicates a post-insert lookup inconsistency:
	// a candidate's target claim could not be located for source attachment.
	ErrClaimNotResolved = errors.New("could not locate claim to update")

	// ErrNotFound is a generic not found error for influencers and claims.
	ErrNotFound = errors.New("not found")
)

// Evidence retrieval errors.
var (
	// ErrEvidenceFetch indicates the upstream literature API failed.
	ErrEvidenceFetch = errors.New("evidence fetch failed")
)

// Validation errors.
var (
	// ErrInvalidInput indicates a malformed request to a stage.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedNetwork indicates posts cannot be fetched for the
	// requested social network.
	ErrUnsupportedNetwork = errors.New("social network not supported")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
