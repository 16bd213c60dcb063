// Copyright 2026 The shellguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package exec

import (
	"context"
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/shellguard/shellguard/pkg/approval"
	"github.com/shellguard/shellguard/pkg/policy"
)

// ErrDenied is returned when the human declines an approval request.
var ErrDenied = errors.New("command denied by user")

// Approver asks the human for a yes/no decision. The pending context
// describes the command awaiting the answer.
type Approver func(ctx context.Context, pending *approval.PendingContext) (bool, error)

// Gated wraps an executor with the shell policy and the single-slot approval
// state machine: green commands run immediately, yellow commands block on the
// approver, red commands never reach the inner executor.
type Gated struct {
	Policy   *policy.ShellPolicy
	State    *approval.State
	Approver Approver
	Inner    Executor
}

// Execute gates command and runs it on approval. The pending slot is held
// for the duration of the prompt; an approver failure moves it to the
// aborted slot so the caller can observe the interruption exactly once.
func (g *Gated) Execute(ctx context.Context, command string) (*Result, error) {
	decision, err := g.Policy.NeedsApproval(ctx, command)
	if err != nil {
		return nil, err
	}
	if decision == policy.ApprovalRequired {
		pending := approval.NewPendingContext(command, "command requires approval before execution")
		if err := g.State.SetPending(pending); err != nil {
			return nil, fmt.Errorf("requesting approval for %q: %w", command, err)
		}

		approved, err := g.Approver(ctx, pending)
		if err != nil {
			g.State.AbortPending()
			return nil, fmt.Errorf("approval interrupted: %w", err)
		}
		g.State.ConsumePending()
		if !approved {
			klog.V(1).Infof("user declined command %q", command)
			return nil, ErrDenied
		}
	}
	return g.Inner.Execute(ctx, command)
}
