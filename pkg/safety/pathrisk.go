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
	"fmt"
	"regexp"
)

// PathClass names the pattern family that matched a path-like argument.
type PathClass int

const (
	// PathClassNone means no risky pattern matched.
	PathClassNone PathClass = iota

	// PathClassHome matches home-directory references (~, $HOME, /home/*, ...).
	PathClassHome

	// PathClassDotfile matches sensitive dotfiles, private-key extensions and
	// credential-shaped filenames.
	PathClassDotfile

	// PathClassTraversal matches ".." path segments.
	PathClassTraversal

	// PathClassRoot matches a bare "/" or "//" argument.
	PathClassRoot

	// PathClassSystem matches system-directory prefixes (/etc, /proc, ...).
	PathClassSystem
)

func (c PathClass) String() string {
	switch c {
	case PathClassNone:
		return "none"
	case PathClassHome:
		return "home"
	case PathClassDotfile:
		return "dotfile"
	case PathClassTraversal:
		return "traversal"
	case PathClassRoot:
		return "root"
	case PathClassSystem:
		return "system"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// PathRisk is the analyzer's answer for one argument. The tier is the
// analyzer's default; handlers may downgrade specific classes (the
// file-search handler treats system-directory and bare-root hits as yellow
// because enumerating them read-only is lower risk than mutating them).
type PathRisk struct {
	Tier   Tier
	Class  PathClass
	Reason string
}

// pathRule is one entry of the ordered pattern table. Rules are evaluated
// top to bottom; the first match wins.
type pathRule struct {
	class    PathClass
	tier     Tier
	reason   string
	patterns []*regexp.Regexp
}

var pathRules = []pathRule{
	{
		class:  PathClassHome,
		tier:   TierRed,
		reason: "references the user home directory",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^~`),
			regexp.MustCompile(`\$\{?(HOME|USER|LOGNAME|XDG_[A-Z_]+)\b`),
			regexp.MustCompile(`^/home(/|$)`),
			regexp.MustCompile(`^/Users(/|$)`),
			regexp.MustCompile(`^/root(/|$)`),
		},
	},
	{
		class:  PathClassDotfile,
		tier:   TierRed,
		reason: "references a sensitive dotfile or credential file",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(^|/)\.(ssh|gnupg|aws|kube|docker)(/|$)`),
			regexp.MustCompile(`(^|/)\.env(\.[^/]*)?$`),
			regexp.MustCompile(`(^|/)\.git(/|$)`),
			regexp.MustCompile(`(^|/)\.netrc$`),
			regexp.MustCompile(`\.(pem|key|p12|pfx|ppk|keystore|jks)$`),
			regexp.MustCompile(`(^|/)(credentials|token|secrets|adc)\.json$`),
			regexp.MustCompile(`(^|/)client_secret[^/]*\.json$`),
			regexp.MustCompile(`(^|/)service[-_]account[^/]*\.json$`),
		},
	},
	{
		class:  PathClassTraversal,
		tier:   TierRed,
		reason: "contains a parent-directory traversal segment",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(^|/)\.\.(/|$)`),
		},
	},
	{
		class:  PathClassRoot,
		tier:   TierRed,
		reason: "targets the filesystem root",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^//?$`),
		},
	},
	{
		class:  PathClassSystem,
		tier:   TierRed,
		reason: "targets a system directory",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`^/(etc|proc|dev|var|usr|boot|bin|sbin|lib|lib64)(/|$)`),
		},
	},
}

// AnalyzePath classifies a single path-like argument. The argument is
// expected to be lexically flattened already (quotes removed, variable
// references kept in "$NAME" form). Pure and deterministic; performs no I/O.
func AnalyzePath(arg string) PathRisk {
	for _, rule := range pathRules {
		for _, p := range rule.patterns {
			if p.MatchString(arg) {
				return PathRisk{
					Tier:   rule.tier,
					Class:  rule.class,
					Reason: fmt.Sprintf("%q %s", arg, rule.reason),
				}
			}
		}
	}
	return PathRisk{Tier: TierGreen, Class: PathClassNone}
}
