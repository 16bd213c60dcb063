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

// defaultAllowList names commands that are generally benign. Absence from
// both lists yields a yellow "unknown command" baseline.
var defaultAllowList = []string{
	"basename", "cat", "cmp", "cut", "date", "df", "diff", "dirname", "du",
	"echo", "egrep", "false", "fgrep", "file", "find", "git", "grep", "head",
	"hostname", "ls", "printf", "pwd", "readlink", "realpath", "rg", "sed",
	"sleep", "sort", "stat", "tail", "test", "tr", "true", "uname", "uniq",
	"wc", "which", "whoami",
}

// defaultBlockList names commands that are never executed, regardless of
// arguments. Membership is an immediate, non-overridable red short-circuit.
var defaultBlockList = []string{
	"dd", "fdisk", "halt", "init", "kexec", "mkfs", "mkfs.btrfs", "mkfs.ext4",
	"mkfs.vfat", "mkfs.xfs", "poweroff", "reboot", "rm", "shred", "shutdown",
	"su", "sudo", "wipefs",
}

// registry maps command names to their risk handlers and carries the static
// allow/block lists. Built once at classifier construction, read-only
// afterwards.
type registry struct {
	allow    map[string]bool
	block    map[string]bool
	handlers map[string]commandHandler
	generic  commandHandler
}

func newRegistry(extraAllow, extraBlock []string) *registry {
	r := &registry{
		allow:   make(map[string]bool),
		block:   make(map[string]bool),
		generic: genericHandler{},
		handlers: map[string]commandHandler{
			"git":  gitHandler{},
			"find": findHandler{},
			"sed":  sedHandler{},
		},
	}
	for _, name := range defaultAllowList {
		r.allow[name] = true
	}
	for _, name := range defaultBlockList {
		r.block[name] = true
	}
	for _, name := range extraAllow {
		r.allow[name] = true
	}
	for _, name := range extraBlock {
		r.block[name] = true
		delete(r.allow, name)
	}
	return r
}

// handlerFor returns the specialized handler for name, or the generic one.
func (r *registry) handlerFor(name string) commandHandler {
	if h, ok := r.handlers[name]; ok {
		return h
	}
	return r.generic
}
