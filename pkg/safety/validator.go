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

package safety

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shellguard/shellguard/pkg/journal"
)

// ErrForbidden marks a hard-blocked command. Callers must surface it as a
// terminal failure for the action, never catch it and continue as if the
// command had been approved.
var ErrForbidden = errors.New("forbidden")

// ErrEmptyCommand marks a caller error: validation of an empty command is
// rejected immediately, never silently treated as safe.
var ErrEmptyCommand = errors.New("command must be a non-empty string")

// Validator is the single entry point tool policy hooks call for plain
// shell execution.
type Validator struct {
	classifier *Classifier
}

// NewValidator wraps a classifier.
func NewValidator(c *Classifier) *Validator {
	return &Validator{classifier: c}
}

// Validate reports whether command needs human approval before execution.
// Red verdicts return ErrForbidden; yellow returns true; green returns
// false. Empty input is a caller error.
func (va *Validator) Validate(ctx context.Context, command string) (needsApproval bool, err error) {
	if strings.TrimSpace(command) == "" {
		va.classifier.audit(ctx, journal.ActionValidateCommand, command, Verdict{}, ErrEmptyCommand)
		return false, ErrEmptyCommand
	}

	v := va.classifier.classify(command)
	switch v.Tier {
	case TierRed:
		err = fmt.Errorf("%w: %s", ErrForbidden, strings.Join(v.Reasons, "; "))
	case TierYellow:
		needsApproval = true
	}
	va.classifier.audit(ctx, journal.ActionValidateCommand, command, v, err)
	return needsApproval, err
}
