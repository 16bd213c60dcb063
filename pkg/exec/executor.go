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

// Package exec runs shell commands that have passed the safety gate. The
// plain executor is policy-blind; Gated is the composition callers actually
// want.
package exec

import (
	"context"
	"fmt"
)

// Executor runs one shell command line.
type Executor interface {
	Execute(ctx context.Context, command string) (*Result, error)
}

// Result is the outcome of one command execution. A non-zero exit code is
// reported here, not as an error from Execute.
type Result struct {
	Command  string `json:"command,omitempty"`
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exitCode,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (r *Result) String() string {
	return fmt.Sprintf("command=%q exit=%d stdout=%q stderr=%q err=%q", r.Command, r.ExitCode, r.Stdout, r.Stderr, r.Error)
}
