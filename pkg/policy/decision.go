// Package policy contains the pre-execution hooks tools use to decide
// whether a proposed action runs immediately, needs a human yes/no, or is
// hard-blocked. Hooks are invoked once per proposed tool call, before
// execution.
package policy

import "fmt"

// Decision is the outcome of a policy hook.
type Decision int

const (
	// NoApprovalNeeded lets the tool call execute immediately.
	NoApprovalNeeded Decision = iota

	// ApprovalRequired pauses the tool call for a human decision.
	ApprovalRequired
)

func (d Decision) String() string {
	switch d {
	case NoApprovalNeeded:
		return "no-approval-needed"
	case ApprovalRequired:
		return "approval-required"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}
