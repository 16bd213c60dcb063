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
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"k8s.io/klog/v2"
)

// PatchOp is the kind of file mutation a patch-style tool proposes.
type PatchOp string

const (
	PatchOpCreate PatchOp = "create"
	PatchOpUpdate PatchOp = "update"
	PatchOpDelete PatchOp = "delete"
)

// PatchRequest describes one proposed patch application.
type PatchRequest struct {
	// Path is the target file, absolute or relative to the workspace root.
	Path string

	// Diff is the unified diff to apply.
	Diff string

	// Op is the proposed mutation kind.
	Op PatchOp

	// CurrentContent is the file's current content; empty for creation.
	CurrentContent []byte
}

// PatchPolicy gates patch-style tools (create or update a file from a
// diff). It runs in two passes: a dry-run application of the diff, then a
// path and mode check. Approval prompts are reserved for decisions a human
// can meaningfully make, so a malformed diff auto-approves and fails later
// as a normal tool error instead of stalling the run.
type PatchPolicy struct {
	// WorkspaceRoot is the directory edits are permitted in.
	WorkspaceRoot string

	// AutoApproveEdits skips the prompt for create/update targets inside the
	// workspace root. Deletion always prompts.
	AutoApproveEdits bool
}

// NeedsApproval evaluates one patch request. Any unexpected failure during
// evaluation fails safe to ApprovalRequired, never to NoApprovalNeeded.
func (p *PatchPolicy) NeedsApproval(ctx context.Context, req PatchRequest) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			klog.Errorf("patch policy evaluation panicked, requiring approval: %v", r)
			decision = ApprovalRequired
			err = nil
		}
	}()

	// Pass one: dry-run the diff against the current content. A diff that
	// does not parse or apply cannot be meaningfully approved; let execution
	// report it as a normal tool error.
	if !p.dryRunApplies(req) {
		klog.V(2).Infof("patch dry-run failed for %q, deferring failure to execution", req.Path)
		return NoApprovalNeeded, nil
	}

	// Pass two: path containment, then mode.
	inside, err := p.insideWorkspace(req.Path)
	if err != nil {
		klog.Errorf("patch policy could not resolve %q, requiring approval: %v", req.Path, err)
		return ApprovalRequired, nil
	}
	if !inside {
		return ApprovalRequired, nil
	}

	// Deletion policy is deliberately strict until product intent says
	// otherwise: always ask.
	if req.Op == PatchOpDelete {
		return ApprovalRequired, nil
	}

	if p.AutoApproveEdits {
		return NoApprovalNeeded, nil
	}
	return ApprovalRequired, nil
}

// dryRunApplies parses the diff and applies it to an in-memory copy of the
// current content. Nothing is written anywhere.
func (p *PatchPolicy) dryRunApplies(req PatchRequest) bool {
	files, _, err := gitdiff.Parse(strings.NewReader(req.Diff))
	if err != nil || len(files) == 0 {
		return false
	}
	var out bytes.Buffer
	for _, f := range files {
		out.Reset()
		if err := gitdiff.Apply(&out, bytes.NewReader(req.CurrentContent), f); err != nil {
			return false
		}
	}
	return true
}

// insideWorkspace reports whether the resolved target stays under the
// workspace root.
func (p *PatchPolicy) insideWorkspace(target string) (bool, error) {
	if p.WorkspaceRoot == "" {
		return false, fmt.Errorf("no workspace root configured")
	}
	root, err := filepath.Abs(p.WorkspaceRoot)
	if err != nil {
		return false, err
	}
	abs := target
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false, err
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))), nil
}
