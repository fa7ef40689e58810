package routeconf

import (
	"github.com/agentstation/routeconf/pkg/apply"
	"github.com/agentstation/routeconf/pkg/reconcile"
)

// Hook function types for run events
type (
	// ReconciledHook is called after reconciliation succeeded
	ReconciledHook func(result *reconcile.Result)

	// AppliedHook is called after the program ran; err is the program failure, if any
	AppliedHook func(outcome *apply.Outcome, err error)

	// FailedHook is called once when the run fails
	FailedHook func(err error)
)

// hooks holds the callbacks registered for one run. Runs are sequential so
// no locking is needed.
type hooks struct {
	onReconciled []ReconciledHook
	onApplied    []AppliedHook
	onFailed     []FailedHook
	failed       bool
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) triggerReconciled(result *reconcile.Result) {
	for _, fn := range h.onReconciled {
		fn(result)
	}
}

func (h *hooks) triggerApplied(outcome *apply.Outcome, err error) {
	if outcome == nil {
		return
	}
	for _, fn := range h.onApplied {
		fn(outcome, err)
	}
}

func (h *hooks) triggerFailed(err error) {
	if h.failed {
		return
	}
	h.failed = true
	for _, fn := range h.onFailed {
		fn(err)
	}
}
