package apply

import (
	"errors"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/hashicorp/go-multierror"
)

// AggregateErrors rolls every failed action in result into one
// multierror, for callers (the CLI) that want a single non-nil error to
// derive a process exit status from without walking Outcomes themselves.
// Returns nil when nothing failed.
func AggregateErrors(result *v1.ApplyResult) error {
	var merr *multierror.Error
	for _, o := range result.Outcomes {
		if !o.Success {
			merr = multierror.Append(merr, errors.New(o.Error))
		}
	}
	return merr.ErrorOrNil()
}
