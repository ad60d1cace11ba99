package model

import (
	"github.com/m-mizutani/goerr/v2"
)

// Error taxonomy tags. Every error that crosses the usecase boundary
// carries exactly one primary tag; transient provider failures carry
// TagProviderTransient in addition to TagProvider.
var (
	TagValidation        = goerr.NewTag("validation")
	TagNotFound          = goerr.NewTag("not_found")
	TagProvider          = goerr.NewTag("provider")
	TagProviderTransient = goerr.NewTag("provider_transient")
	TagConfiguration     = goerr.NewTag("configuration")
	TagStorage           = goerr.NewTag("storage")
)

var (
	ErrMemoryNotFound = goerr.New("memory not found", goerr.T(TagNotFound))
	ErrEmptyText      = goerr.New("text must not be empty", goerr.T(TagValidation))
	ErrEmptyQuery     = goerr.New("query must not be empty", goerr.T(TagValidation))
	ErrInvalidLimit   = goerr.New("limit must be a positive integer", goerr.T(TagValidation))
	ErrUnknownSetting = goerr.New("unknown setting", goerr.T(TagConfiguration))
)

// ErrorKind returns the taxonomy name of an error chain for
// operator-facing output. Untagged errors report as "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case goerr.HasTag(err, TagValidation):
		return "validation"
	case goerr.HasTag(err, TagNotFound):
		return "not_found"
	case goerr.HasTag(err, TagProvider):
		return "provider"
	case goerr.HasTag(err, TagConfiguration):
		return "configuration"
	case goerr.HasTag(err, TagStorage):
		return "storage"
	default:
		return "internal"
	}
}

// IsRetryable reports whether the failure is a transient provider
// error, safe for a caller-initiated retry with backoff.
func IsRetryable(err error) bool {
	return goerr.HasTag(err, TagProviderTransient)
}
