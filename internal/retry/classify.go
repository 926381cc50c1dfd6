package retry

import (
	"fmt"
	"strings"
	"time"
)

// Kind categorizes an upstream failure.
type Kind string

const (
	KindNetwork          Kind = "network"
	KindRateLimit        Kind = "rate_limit"
	KindGeoRestriction   Kind = "geo_restriction"
	KindPrivateContent   Kind = "private_content"
	KindDeletedContent   Kind = "deleted_content"
	KindInvalidInput     Kind = "invalid_input"
	KindPermissionDenied Kind = "permission_denied"
	KindStorageExhausted Kind = "storage_exhausted"
	KindAuthRequired     Kind = "auth_required"
	KindUnknown          Kind = "unknown"
)

// ClassifiedError wraps a raw failure with its category and a remediation hint.
type ClassifiedError struct {
	Kind Kind
	Hint string
	Err  error
}

func (e *ClassifiedError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *ClassifiedError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth retrying. Only transient
// kinds qualify; Unknown is treated as requiring human attention.
func (e *ClassifiedError) Retryable() bool {
	switch e.Kind {
	case KindNetwork, KindRateLimit:
		return true
	}
	return false
}

// SuggestedWait returns the recommended pause before another attempt.
// Informational for non-retryable kinds.
func (e *ClassifiedError) SuggestedWait() time.Duration {
	switch e.Kind {
	case KindRateLimit:
		return 300 * time.Second
	case KindGeoRestriction:
		return 60 * time.Second
	case KindUnknown:
		return 45 * time.Second
	}
	return 30 * time.Second
}

// Keyword sets per kind, matched case-insensitively against the error text.
// Order matters: sets overlap (e.g. "unauthorized" vs "forbidden"), so the
// table is walked top to bottom and the first match wins. Keep the order
// stable; tests depend on it.
var classification = []struct {
	kind     Kind
	keywords []string
	hint     string
}{
	{
		KindGeoRestriction,
		[]string{"geo", "not available in your", "region", "country"},
		"content is region-locked; connect through a VPN or export cookies",
	},
	{
		KindPrivateContent,
		[]string{"private", "unavailable"},
		"content is private or restricted; a logged-in session may be required",
	},
	{
		KindDeletedContent,
		[]string{"removed", "deleted", "no longer available", "not found", "404"},
		"content has been deleted upstream; nothing to retry",
	},
	{
		KindRateLimit,
		[]string{"rate limit", "429", "too many requests", "slow down"},
		"upstream is throttling; lower the check frequency or wait a few minutes",
	},
	{
		KindNetwork,
		[]string{"connection", "timeout", "timed out", "network", "unreachable", "no internet"},
		"network problem; check connectivity, the monitor retries automatically",
	},
	{
		KindInvalidInput,
		[]string{"invalid url", "malformed", "unsupported url"},
		"the source identifier or URL is malformed; fix the configuration",
	},
	{
		KindPermissionDenied,
		[]string{"permission", "access denied", "forbidden", "403"},
		"access denied; the content may need special permissions",
	},
	{
		KindStorageExhausted,
		[]string{"disk", "space", "storage"},
		"local storage is full; free up space or change the output directory",
	},
	{
		KindAuthRequired,
		[]string{"sign in", "login", "authentication", "unauthorized", "cookies", "unable to extract"},
		"authentication required; export cookies from a logged-in browser session",
	},
}

// Classify maps a raw error onto a ClassifiedError by inspecting its text.
// Pure function; unrecognized failures fall through to KindUnknown.
func Classify(err error) *ClassifiedError {
	msg := strings.ToLower(err.Error())

	for _, c := range classification {
		for _, kw := range c.keywords {
			if strings.Contains(msg, kw) {
				return &ClassifiedError{Kind: c.kind, Hint: c.hint, Err: err}
			}
		}
	}

	return &ClassifiedError{
		Kind: KindUnknown,
		Hint: "unexpected failure; check the raw error and report it if it persists",
		Err:  err,
	}
}
