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
	"bytes"
	"context"
	"os/exec"

	"k8s.io/klog/v2"
)

const defaultBashBin = "/bin/bash"

// LocalExecutor runs commands through bash on the local machine.
type LocalExecutor struct {
	// WorkDir is the working directory for every command. Empty means the
	// process working directory.
	WorkDir string
}

// NewLocalExecutor returns an executor rooted at workDir.
func NewLocalExecutor(workDir string) *LocalExecutor {
	return &LocalExecutor{WorkDir: workDir}
}

// Execute runs command via bash -c and captures its output.
func (e *LocalExecutor) Execute(ctx context.Context, command string) (*Result, error) {
	cmd := exec.CommandContext(ctx, lookupBashBin(), "-c", command)
	cmd.Dir = e.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Command: command,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, err
		}
		result.ExitCode = exitErr.ExitCode()
		result.Error = exitErr.Error()
	}
	return result, nil
}

// lookupBashBin resolves bash through PATH; some systems do not keep it at
// /bin/bash.
func lookupBashBin() string {
	path, err := exec.LookPath("bash")
	if err != nil {
		klog.Warningf("'bash' not found in PATH, defaulting to %s: %v", defaultBashBin, err)
		return defaultBashBin
	}
	return path
}
