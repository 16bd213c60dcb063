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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shellguard/shellguard/pkg/safety"
)

func newShellPolicy() *ShellPolicy {
	return NewShellPolicy(safety.NewValidator(safety.NewClassifier(safety.Options{})))
}

func TestShellPolicyNeedsApproval(t *testing.T) {
	p := newShellPolicy()
	ctx := context.Background()

	d, err := p.NeedsApproval(ctx, "git status")
	require.NoError(t, err)
	assert.Equal(t, NoApprovalNeeded, d)

	d, err = p.NeedsApproval(ctx, "git push")
	require.NoError(t, err)
	assert.Equal(t, ApprovalRequired, d)
}

func TestShellPolicyForbiddenPropagates(t *testing.T) {
	p := newShellPolicy()

	d, err := p.NeedsApproval(context.Background(), "sudo rm -rf /")
	require.Error(t, err)
	assert.ErrorIs(t, err, safety.ErrForbidden)
	// Even with the error, the decision never reads as auto-approved.
	assert.Equal(t, ApprovalRequired, d)
}

func TestShellPolicyEmptyCommand(t *testing.T) {
	p := newShellPolicy()

	d, err := p.NeedsApproval(context.Background(), "  ")
	require.Error(t, err)
	assert.Equal(t, ApprovalRequired, d)
}
