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

package policy

import (
	"context"

	"github.com/shellguard/shellguard/pkg/safety"
)

// ShellPolicy gates shell-style tools: the validator's answer is the whole
// policy.
type ShellPolicy struct {
	validator *safety.Validator
}

// NewShellPolicy wraps a validator.
func NewShellPolicy(v *safety.Validator) *ShellPolicy {
	return &ShellPolicy{validator: v}
}

// NeedsApproval decides whether the command may run without a prompt. A
// hard-block error (safety.ErrForbidden) propagates to the caller as a tool
// execution failure; it must never be swallowed and treated as a skip.
func (p *ShellPolicy) NeedsApproval(ctx context.Context, command string) (Decision, error) {
	needsApproval, err := p.validator.Validate(ctx, command)
	if err != nil {
		return ApprovalRequired, err
	}
	if needsApproval {
		return ApprovalRequired, nil
	}
	return NoApprovalNeeded, nil
}
