package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/routeconf/pkg/store"
)

// NoRoutersMessage is the result message when the request is absent.
const NoRoutersMessage = "no routers were specified"

// Result represents the outcome of one reconciliation.
type Result struct {
	// Changed is true when at least one record was appended
	Changed bool `json:"changed" yaml:"changed"`

	// Counts
	ExistingCount  int `json:"existing_count" yaml:"existing_count"`
	RequestedCount int `json:"requested_count" yaml:"requested_count"`
	AddedCount     int `json:"added_count" yaml:"added_count"`

	// Message is the human-readable summary
	Message string `json:"msg" yaml:"msg"`

	// Added and Skipped hold router addresses in request order.
	Added   []string `json:"added,omitempty" yaml:"added,omitempty"`
	Skipped []string `json:"skipped,omitempty" yaml:"skipped,omitempty"`

	// Store details
	StorePath    string       `json:"store_path,omitempty" yaml:"store_path,omitempty"`
	Format       store.Format `json:"format,omitempty" yaml:"format,omitempty"`
	StoreCreated bool         `json:"store_created,omitempty" yaml:"store_created,omitempty"`

	// Warnings contains non-fatal issues, such as a store ignored in lenient mode
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	DryRun    bool          `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
	StartedAt utc.Time      `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// HasChanges returns true if the store was (or in a dry run would be) modified.
func (r *Result) HasChanges() bool {
	return r != nil && r.AddedCount > 0
}

// Summary returns the result message, computing it from the counts when unset.
func (r *Result) Summary() string {
	if r == nil {
		return ""
	}
	if r.Message != "" {
		return r.Message
	}
	return summaryMessage(r.ExistingCount, r.RequestedCount, r.AddedCount)
}

func summaryMessage(existing, requested, added int) string {
	return fmt.Sprintf("existing routers: %d, requested routers: %d, added %d routers", existing, requested, added)
}

func absentResult() *Result {
	return &Result{
		Message:   NoRoutersMessage,
		StartedAt: utc.Now(),
	}
}
