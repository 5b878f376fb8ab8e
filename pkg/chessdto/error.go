package chessdto

import "errors"

// Error codes for the history domain. Validation and index-fetch failures
// abort a whole operation; archive-fetch and PGN-parse failures are recovered
// locally and never reach the caller as an error return.
const (
	CodeValidation   = "validation"
	CodeIndexFetch   = "index_fetch"
	CodeArchiveFetch = "archive_fetch"
	CodePGNParse     = "pgn_parse"
)

type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}

func (e *DomainError) Unwrap() error { return e.Err }

func NewValidationError(msg string) *DomainError {
	return &DomainError{Code: CodeValidation, Message: msg}
}

func NewIndexFetchError(err error) *DomainError {
	return &DomainError{Code: CodeIndexFetch, Message: "archive index fetch failed", Err: err}
}

// HasCode reports whether err is (or wraps) a DomainError with the given code.
func HasCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}
