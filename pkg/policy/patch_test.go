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
)

const updateDiff = `--- a/notes.txt
+++ b/notes.txt
@@ -1,2 +1,2 @@
-hello
+goodbye
 world
`

const createDiff = `--- /dev/null
+++ b/new.txt
@@ -0,0 +1 @@
+content
`

const deleteDiff = `--- a/old.txt
+++ /dev/null
@@ -1 +0,0 @@
-content
`

func TestPatchPolicyAutoApprovesInsideWorkspace(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir(), AutoApproveEdits: true}

	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path:           "notes.txt",
		Diff:           updateDiff,
		Op:             PatchOpUpdate,
		CurrentContent: []byte("hello\nworld\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, NoApprovalNeeded, d)
}

func TestPatchPolicyCreateInsideWorkspace(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir(), AutoApproveEdits: true}

	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path: "new.txt",
		Diff: createDiff,
		Op:   PatchOpCreate,
	})
	require.NoError(t, err)
	assert.Equal(t, NoApprovalNeeded, d)
}

func TestPatchPolicyPromptsWithoutAutoApprove(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir()}

	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path:           "notes.txt",
		Diff:           updateDiff,
		Op:             PatchOpUpdate,
		CurrentContent: []byte("hello\nworld\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, ApprovalRequired, d)
}

func TestPatchPolicyWorkspaceEscape(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir(), AutoApproveEdits: true}

	for _, target := range []string{"../outside.txt", "/etc/notes.txt", "a/../../escape"} {
		d, err := p.NeedsApproval(context.Background(), PatchRequest{
			Path:           target,
			Diff:           updateDiff,
			Op:             PatchOpUpdate,
			CurrentContent: []byte("hello\nworld\n"),
		})
		require.NoError(t, err)
		assert.Equal(t, ApprovalRequired, d, "target %q", target)
	}
}

func TestPatchPolicyDeleteAlwaysPrompts(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir(), AutoApproveEdits: true}

	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path:           "old.txt",
		Diff:           deleteDiff,
		Op:             PatchOpDelete,
		CurrentContent: []byte("content\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, ApprovalRequired, d)
}

func TestPatchPolicyMalformedDiffDefersToExecution(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir(), AutoApproveEdits: false}

	// A diff that cannot be approved meaningfully skips the prompt and
	// fails later as a normal tool error.
	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path: "notes.txt",
		Diff: "this is not a diff",
		Op:   PatchOpUpdate,
	})
	require.NoError(t, err)
	assert.Equal(t, NoApprovalNeeded, d)
}

func TestPatchPolicyNonApplyingDiffDefersToExecution(t *testing.T) {
	p := &PatchPolicy{WorkspaceRoot: t.TempDir(), AutoApproveEdits: false}

	// Parses fine but the context lines do not match the current content.
	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path:           "notes.txt",
		Diff:           updateDiff,
		Op:             PatchOpUpdate,
		CurrentContent: []byte("completely different\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, NoApprovalNeeded, d)
}

func TestPatchPolicyNoWorkspaceRootFailsSafe(t *testing.T) {
	p := &PatchPolicy{AutoApproveEdits: true}

	d, err := p.NeedsApproval(context.Background(), PatchRequest{
		Path:           "notes.txt",
		Diff:           updateDiff,
		Op:             PatchOpUpdate,
		CurrentContent: []byte("hello\nworld\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, ApprovalRequired, d)
}
