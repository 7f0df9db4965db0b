package batch

import (
	"errors"

	v1 "github.com/Smarty-Pants-Inc/letta-sync/api/v1"
	"github.com/hashicorp/go-multierror"
)

// AggregateErrors rolls every failed agent's error in result into one
// multierror (spec.md §4.10's per-agent failure isolation means no single
// agent's error is fatal to the run, but a caller driving a CLI exit code
// still wants one error to check). Returns nil when nothing failed.
func AggregateErrors(result *v1.BatchUpgradeResult) error {
	var merr *multierror.Error
	for _, r := range result.Results {
		if r.Status == v1.BatchStatusFailed {
			msg := r.Err
			if msg == "" {
				msg = "failed"
			}
			merr = multierror.Append(merr, errors.New(r.AgentID+": "+msg))
		}
	}
	return merr.ErrorOrNil()
}
