// Package errorsx defines the typed error kinds the reconciliation engine
// returns, wrapping causes with fmt.Errorf("...: %w", cause) so errors.As and
// errors.Is work across package boundaries.
package errorsx

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// PackageNotFound is returned when a manifest path does not exist.
type PackageNotFound struct {
	Path string
	Err  error
}

func (e *PackageNotFound) Error() string {
	return fmt.Sprintf("package not found at %q: %v", e.Path, e.Err)
}

func (e *PackageNotFound) Unwrap() error { return e.Err }

// PackageParseError is returned when a manifest file fails to parse as
// YAML or JSON.
type PackageParseError struct {
	Path string
	Err  error
}

func (e *PackageParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest %q: %v", e.Path, e.Err)
}

func (e *PackageParseError) Unwrap() error { return e.Err }

// PackageValidationError aggregates every validation failure found while
// validating a single package, using go-multierror so callers can range
// over e.Errors() or print the combined message.
type PackageValidationError struct {
	Path   string
	Errors *multierror.Error
}

func (e *PackageValidationError) Error() string {
	if e.Errors == nil || e.Errors.Len() == 0 {
		return fmt.Sprintf("package %q failed validation", e.Path)
	}
	return fmt.Sprintf("package %q failed validation: %v", e.Path, e.Errors)
}

func (e *PackageValidationError) Unwrap() error {
	if e.Errors == nil {
		return nil
	}
	return e.Errors.ErrorOrNil()
}

// Add appends a validation issue, initializing the aggregator on first use.
func (e *PackageValidationError) Add(format string, args ...any) {
	if e.Errors == nil {
		e.Errors = &multierror.Error{}
	}
	e.Errors = multierror.Append(e.Errors, fmt.Errorf(format, args...))
}

// HasErrors reports whether any validation issue was recorded.
func (e *PackageValidationError) HasErrors() bool {
	return e.Errors != nil && e.Errors.Len() > 0
}

// MergeConflictKind names the category of conflict detected by the merge
// engine (spec.md §4.2).
type MergeConflictKind string

const (
	ConflictTypeMismatch      MergeConflictKind = "type_conflict"
	ConflictResourceIdentity  MergeConflictKind = "resource_identity_conflict"
	ConflictConstraintViolated MergeConflictKind = "constraint_violation"
)

// MergeConflict is a single fatal conflict detected while merging layers.
type MergeConflict struct {
	Kind         MergeConflictKind
	ResourceName string
	Field        string
	Detail       string
}

func (e *MergeConflict) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("merge conflict (%s) on %s.%s: %s", e.Kind, e.ResourceName, e.Field, e.Detail)
	}
	return fmt.Sprintf("merge conflict (%s) on %s: %s", e.Kind, e.ResourceName, e.Detail)
}

// MergeConflicts aggregates every conflict found while merging a set of
// layered packages.
type MergeConflicts struct {
	Errors *multierror.Error
}

func (e *MergeConflicts) Error() string {
	if e.Errors == nil || e.Errors.Len() == 0 {
		return "merge failed with conflicts"
	}
	return e.Errors.Error()
}

func (e *MergeConflicts) Unwrap() error {
	if e.Errors == nil {
		return nil
	}
	return e.Errors.ErrorOrNil()
}

func (e *MergeConflicts) Add(c *MergeConflict) {
	e.Errors = multierror.Append(e.Errors, c)
}

func (e *MergeConflicts) HasErrors() bool {
	return e.Errors != nil && e.Errors.Len() > 0
}

// ApiRequestError wraps a failed call to the remote platform, retaining
// enough of the HTTP response to let retry middleware and callers
// distinguish retryable failures from permanent ones.
type ApiRequestError struct {
	Method     string
	URL        string
	StatusCode int
	RetryAfter string
	Body       string
	Err        error
}

func (e *ApiRequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api request %s %s failed with status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("api request %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *ApiRequestError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is one the retry middleware should
// retry: 429, 5xx, or a transport-level error with no status code at all.
func (e *ApiRequestError) Retryable() bool {
	if e.StatusCode == 0 {
		return e.Err != nil
	}
	return e.StatusCode == 429 || (e.StatusCode >= 500 && e.StatusCode < 600)
}

// CredentialMissing is returned when no provider in the credential chain
// can resolve a required secret.
type CredentialMissing struct {
	Target string
	Tried  []string
}

func (e *CredentialMissing) Error() string {
	return fmt.Sprintf("no credential available for %q (tried: %v)", e.Target, e.Tried)
}

// PreconditionRefused is returned when an operation declines to proceed
// absent an explicit override (e.g. breaking change without --force).
type PreconditionRefused struct {
	Reason string
}

func (e *PreconditionRefused) Error() string {
	return fmt.Sprintf("precondition refused: %s", e.Reason)
}

// ActionFailed wraps a single plan/upgrade action's execution failure;
// never fatal to the surrounding batch unless it is itself a
// PreconditionRefused.
type ActionFailed struct {
	ResourceKind string
	ResourceName string
	ActionType   string
	Err          error
}

func (e *ActionFailed) Error() string {
	return fmt.Sprintf("action %s on %s %q failed: %v", e.ActionType, e.ResourceKind, e.ResourceName, e.Err)
}

func (e *ActionFailed) Unwrap() error { return e.Err }
