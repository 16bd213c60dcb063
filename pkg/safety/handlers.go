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
	"path"
	"strings"
)

// token is one lexically flattened argument. Opaque tokens carried a shell
// construct (command substitution, arithmetic, process substitution) that
// cannot be reduced to literal text.
type token struct {
	text   string
	opaque bool
}

func (t token) isFlag() bool {
	return !t.opaque && len(t.text) > 1 && strings.HasPrefix(t.text, "-")
}

// redirect is a file redirection attached to a simple command.
type redirect struct {
	target token
	output bool
}

// invocation is one simple command as seen by a handler: the resolved
// command name, its flattened arguments, and any attached redirections.
type invocation struct {
	name      string
	args      []token
	redirects []redirect
}

// commandHandler produces a partial verdict for one family of commands.
// Handlers are pure; they never see the surrounding pipeline or script.
type commandHandler interface {
	evaluate(inv invocation) Verdict
}

// genericHandler covers every command without a specialized handler.
// Flags are ignored; every other argument is path-analyzed, and arguments
// that cannot be resolved to literal text are conservatively yellow.
type genericHandler struct{}

func (genericHandler) evaluate(inv invocation) Verdict {
	var v Verdict
	for _, arg := range inv.args {
		if arg.opaque {
			v.add(TierYellow, fmt.Sprintf("%s: argument could not be resolved to literal text", inv.name))
			continue
		}
		if arg.isFlag() {
			continue
		}
		r := AnalyzePath(arg.text)
		v.add(r.Tier, r.Reason)
	}
	return v
}

// gitSubcommandsWrite mutate repository or remote state: history rewriting,
// pushes, branch/tag mutation, configuration, staging and merges. These are
// legitimate developer actions, so they ask rather than block.
var gitSubcommandsWrite = map[string]bool{
	"add": true, "am": true, "apply": true, "branch": true, "checkout": true,
	"cherry-pick": true, "clean": true, "clone": true, "commit": true,
	"config": true, "fetch": true, "filter-branch": true, "gc": true,
	"merge": true, "mv": true, "prune": true, "pull": true, "push": true,
	"rebase": true, "reflog": true, "remote": true, "reset": true,
	"restore": true, "revert": true, "rm": true, "stash": true,
	"submodule": true, "switch": true, "tag": true, "worktree": true,
}

// gitSubcommandsRead only inspect repository state.
var gitSubcommandsRead = map[string]bool{
	"blame": true, "cat-file": true, "count-objects": true, "describe": true,
	"diff": true, "grep": true, "help": true, "log": true, "ls-files": true,
	"ls-remote": true, "ls-tree": true, "merge-base": true, "name-rev": true,
	"rev-list": true, "rev-parse": true, "shortlog": true, "show": true,
	"status": true, "var": true, "version": true,
}

// gitHandler classifies version-control invocations by subcommand.
type gitHandler struct{}

func (gitHandler) evaluate(inv invocation) Verdict {
	var v Verdict

	sub := ""
	for i := 0; i < len(inv.args); i++ {
		arg := inv.args[i]
		if arg.opaque {
			v.add(TierYellow, "git: argument could not be resolved to literal text")
			continue
		}
		if arg.text == "-C" || arg.text == "-c" {
			i++ // both take a value
			continue
		}
		if arg.isFlag() {
			continue
		}
		sub = arg.text
		break
	}

	switch {
	case sub == "":
		v.add(TierYellow, "git invocation without a subcommand")
	case gitSubcommandsWrite[sub]:
		v.add(TierYellow, fmt.Sprintf("git %s modifies repository state", sub))
	case gitSubcommandsRead[sub]:
		for _, arg := range inv.args {
			if arg.opaque {
				continue
			}
			if isGitForceFlag(arg.text) {
				v.add(TierYellow, fmt.Sprintf("git %s with destructive flag %s", sub, arg.text))
			}
		}
	default:
		v.add(TierYellow, fmt.Sprintf("unrecognized git subcommand %q", sub))
	}
	return v
}

func isGitForceFlag(arg string) bool {
	switch {
	case arg == "-f" || arg == "-D" || arg == "--force" || arg == "--hard" || arg == "--delete":
		return true
	case strings.HasPrefix(arg, "--force-with-lease"):
		return true
	}
	return false
}

// findExecDestructive lists programs that make a find execution clause
// dangerous: removal, permission and ownership changes, copies/moves/links,
// truncation, shells and scripting one-liners, and indirection tools that
// spawn another process themselves.
var findExecDestructive = map[string]bool{
	"rm": true, "rmdir": true, "unlink": true, "shred": true,
	"chmod": true, "chown": true, "chgrp": true, "chattr": true,
	"mv": true, "cp": true, "ln": true, "rsync": true, "dd": true,
	"truncate": true, "tee": true, "install": true,
	"sh": true, "bash": true, "zsh": true, "dash": true, "ksh": true,
	"csh": true, "fish": true,
	"python": true, "python2": true, "python3": true, "perl": true,
	"ruby": true, "node": true, "php": true,
	"env": true, "xargs": true, "nohup": true, "timeout": true,
	"setsid": true, "nice": true, "ionice": true, "stdbuf": true,
	"sudo": true, "su": true,
}

func isFindExecFlag(s string) bool {
	switch s {
	case "-exec", "-execdir", "-ok", "-okdir":
		return true
	}
	return false
}

// findHandler classifies file-search invocations: dangerous execution
// clauses first, then suspicious-but-legitimate flags, then path arguments.
type findHandler struct{}

func (findHandler) evaluate(inv invocation) Verdict {
	var v Verdict

	// Positional paths come before the first expression token, but after the
	// -H/-L/-P/-D/-O options that may legally precede them.
pathScan:
	for i := 0; i < len(inv.args); i++ {
		arg := inv.args[i]
		if arg.opaque {
			v.add(TierYellow, "find: argument could not be resolved to literal text")
			break
		}
		s := arg.text
		switch {
		case s == "-H" || s == "-L" || s == "-P":
			// symlink handling; -L is escalated by the flag scan
		case s == "-D":
			i++ // debug topics value
		case strings.HasPrefix(s, "-O"):
			// -Olevel query optimization
		case strings.HasPrefix(s, "-") || s == "(" || s == "!":
			break pathScan
		default:
			evaluateFindPath(s, &v)
		}
	}

	for i := 0; i < len(inv.args); i++ {
		arg := inv.args[i]
		if arg.opaque {
			continue // reported above
		}
		s := arg.text
		switch {
		case s == "-delete":
			v.add(TierRed, "find -delete removes every matched file")
		case isFindExecFlag(s):
			prog, terminated, next := parseFindExecClause(inv.args, i+1)
			if !terminated || prog == "" {
				v.add(TierRed, fmt.Sprintf("malformed %s clause (no terminator)", s))
				i = len(inv.args)
				continue
			}
			if findExecDestructive[prog] {
				v.add(TierRed, fmt.Sprintf("find %s runs destructive program %q on every match", s, prog))
			} else {
				v.add(TierYellow, fmt.Sprintf("find %s runs %q on every match", s, prog))
			}
			i = next
		case s == "-perm":
			v.add(TierYellow, "find searches by permission bits")
			i++ // mode argument
		case s == "-inum":
			v.add(TierYellow, "find looks up files by inode number")
			i++ // inode argument
		case s == "-L" || s == "-follow":
			v.add(TierYellow, "find follows symbolic links")
		case s == "-fprint" || s == "-fprint0" || s == "-fls" || s == "-fprintf":
			v.add(TierYellow, "find writes match output to a file")
			if i+1 < len(inv.args) && !inv.args[i+1].opaque {
				r := AnalyzePath(inv.args[i+1].text)
				v.add(r.Tier, r.Reason)
			}
			i++
		}
	}
	return v
}

// evaluateFindPath applies the intentional read-vs-write asymmetry: home,
// dotfile and traversal hits keep the analyzer's red tier, while system
// directories and the bare root are only yellow under find, since recursive
// enumeration is lower risk than mutation. Globs and the current-directory
// literal are never risky.
func evaluateFindPath(s string, v *Verdict) {
	if s == "." || s == "./" || strings.ContainsAny(s, "*?[") {
		return
	}
	r := AnalyzePath(s)
	switch r.Class {
	case PathClassNone:
	case PathClassRoot:
		v.add(TierYellow, "find over the filesystem root")
	case PathClassSystem:
		v.add(TierYellow, r.Reason)
	default:
		v.add(r.Tier, r.Reason)
	}
}

// parseFindExecClause scans an -exec/-ok clause starting at argument index
// start. It returns the basename of the invoked program, whether a ";" or
// "+" terminator was found, and the index of the terminator.
func parseFindExecClause(args []token, start int) (prog string, terminated bool, end int) {
	for i := start; i < len(args); i++ {
		if args[i].opaque {
			continue
		}
		s := args[i].text
		if s == ";" || s == "+" {
			return prog, true, i
		}
		if prog == "" && s != "{}" {
			prog = path.Base(s)
		}
	}
	return prog, false, len(args)
}

// sedHandler classifies stream-editor invocations. In-place editing is
// always red; output redirection is at minimum yellow; plain reads fall
// through to the path analyzer.
type sedHandler struct{}

func (sedHandler) evaluate(inv invocation) Verdict {
	var v Verdict

	for _, r := range inv.redirects {
		if !r.output {
			continue
		}
		if r.target.opaque {
			v.add(TierYellow, "sed output redirected to an unresolvable target")
			continue
		}
		v.add(TierYellow, fmt.Sprintf("sed output redirected to %q", r.target.text))
		pr := AnalyzePath(r.target.text)
		v.add(pr.Tier, pr.Reason)
	}

	scriptSeen := false
	for i := 0; i < len(inv.args); i++ {
		arg := inv.args[i]
		if arg.opaque {
			v.add(TierYellow, "sed: argument could not be resolved to literal text")
			continue
		}
		s := arg.text
		switch {
		case s == "-i" || strings.HasPrefix(s, "-i") || strings.HasPrefix(s, "--in-place"):
			v.add(TierRed, "sed in-place edit")
		case s == "-e" || s == "--expression":
			scriptSeen = true
			i++ // script argument
		case s == "-f" || s == "--file":
			if i+1 < len(inv.args) && !inv.args[i+1].opaque {
				pr := AnalyzePath(inv.args[i+1].text)
				v.add(pr.Tier, pr.Reason)
			}
			scriptSeen = true
			i++
		case arg.isFlag():
		case !scriptSeen:
			// First bare argument is the sed script itself.
			scriptSeen = true
		default:
			pr := AnalyzePath(s)
			v.add(pr.Tier, pr.Reason)
		}
	}
	return v
}
