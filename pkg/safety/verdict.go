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

// Verdict is the result of one classification pass. Reasons are diagnostic
// text for audit logging; control flow only ever consumes the tier.
type Verdict struct {
	Tier    Tier
	Reasons []string
}

// add escalates the verdict to at least tier and appends the reason.
// Reasons for green partial results are kept out of the log noise.
func (v *Verdict) add(tier Tier, reason string) {
	v.Tier = v.Tier.Escalate(tier)
	if reason != "" && tier > TierGreen {
		v.Reasons = append(v.Reasons, reason)
	}
}

// merge folds another partial verdict into this one using monotonic
// escalation: the resulting tier is the maximum of the two.
func (v *Verdict) merge(other Verdict) {
	v.Tier = v.Tier.Escalate(other.Tier)
	v.Reasons = append(v.Reasons, other.Reasons...)
}
