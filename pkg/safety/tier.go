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

// Package safety classifies shell command lines into risk tiers before an
// agent is allowed to execute them. It is a conservative, deterministic
// pre-filter: it parses the command into a syntax tree, inspects every simple
// command against static allow/block lists and command-specific handlers, and
// folds the partial results into a single worst-case tier.
package safety

import "fmt"

// Tier is the risk level assigned to a command. Tiers are totally ordered:
// TierGreen < TierYellow < TierRed. During classification a tier is only ever
// escalated, never downgraded.
type Tier int

const (
	// TierGreen marks a command that may execute without asking the user.
	TierGreen Tier = iota

	// TierYellow marks a command that needs a human yes/no before execution.
	TierYellow

	// TierRed marks a command that is hard-blocked and never executed.
	TierRed
)

func (t Tier) String() string {
	switch t {
	case TierGreen:
		return "green"
	case TierYellow:
		return "yellow"
	case TierRed:
		return "red"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// Escalate returns the higher of the two tiers.
func (t Tier) Escalate(other Tier) Tier {
	if other > t {
		return other
	}
	return t
}
