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
	"testing"

	"github.com/stretchr/testify/assert"
)

func lit(texts ...string) []token {
	args := make([]token, 0, len(texts))
	for _, s := range texts {
		args = append(args, token{text: s})
	}
	return args
}

func TestGenericHandlerOpaqueArgs(t *testing.T) {
	v := genericHandler{}.evaluate(invocation{
		name: "ls",
		args: []token{{opaque: true}},
	})
	assert.Equal(t, TierYellow, v.Tier)
}

func TestGitHandlerConfigValueNotASubcommand(t *testing.T) {
	// The value after -c must not be mistaken for the subcommand.
	v := gitHandler{}.evaluate(invocation{
		name: "git",
		args: lit("-c", "user.name=ci", "log"),
	})
	assert.Equal(t, TierGreen, v.Tier)
}

func TestGitHandlerForceFlagOnReadSubcommand(t *testing.T) {
	v := gitHandler{}.evaluate(invocation{
		name: "git",
		args: lit("log", "--force"),
	})
	assert.Equal(t, TierYellow, v.Tier)
}

func TestParseFindExecClause(t *testing.T) {
	tests := []struct {
		name           string
		args           []token
		start          int
		wantProg       string
		wantTerminated bool
	}{
		{
			name:           "semicolon terminator",
			args:           lit("-exec", "cat", "{}", ";"),
			start:          1,
			wantProg:       "cat",
			wantTerminated: true,
		},
		{
			name:           "plus terminator",
			args:           lit("-exec", "grep", "-l", "x", "{}", "+"),
			start:          1,
			wantProg:       "grep",
			wantTerminated: true,
		},
		{
			name:           "program path reduced to basename",
			args:           lit("-exec", "/bin/rm", "{}", ";"),
			start:          1,
			wantProg:       "rm",
			wantTerminated: true,
		},
		{
			name:           "missing terminator",
			args:           lit("-exec", "cat", "{}"),
			start:          1,
			wantProg:       "cat",
			wantTerminated: false,
		},
		{
			name:           "no program at all",
			args:           lit("-exec", ";"),
			start:          1,
			wantProg:       "",
			wantTerminated: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, terminated, _ := parseFindExecClause(tt.args, tt.start)
			assert.Equal(t, tt.wantProg, prog)
			assert.Equal(t, tt.wantTerminated, terminated)
		})
	}
}

func TestFindHandlerPathsAfterRealPathOptions(t *testing.T) {
	// -H/-L/-P/-D/-O precede the positional paths; the paths behind them
	// still go through path analysis.
	v := findHandler{}.evaluate(invocation{
		name: "find",
		args: lit("-P", "/home/user", "-name", "x"),
	})
	assert.Equal(t, TierRed, v.Tier)

	v = findHandler{}.evaluate(invocation{
		name: "find",
		args: lit("-D", "search", "-O2", "/tmp", "-name", "x"),
	})
	assert.Equal(t, TierGreen, v.Tier)
}

func TestFindHandlerGlobPathsAreBenign(t *testing.T) {
	v := findHandler{}.evaluate(invocation{
		name: "find",
		args: lit("src/*", "-name", "x"),
	})
	assert.Equal(t, TierGreen, v.Tier)
}

func TestSedHandlerSeesRedirects(t *testing.T) {
	v := sedHandler{}.evaluate(invocation{
		name:      "sed",
		args:      lit("s/a/b/", "in.txt"),
		redirects: []redirect{{target: token{text: "out.txt"}, output: true}},
	})
	assert.Equal(t, TierYellow, v.Tier)

	// Input redirection alone does not escalate.
	v = sedHandler{}.evaluate(invocation{
		name:      "sed",
		args:      lit("s/a/b/"),
		redirects: []redirect{{target: token{text: "in.txt"}, output: false}},
	})
	assert.Equal(t, TierGreen, v.Tier)
}

func TestSedHandlerScriptFileAnalyzed(t *testing.T) {
	v := sedHandler{}.evaluate(invocation{
		name: "sed",
		args: lit("-f", "/etc/scripts/x.sed", "data.txt"),
	})
	assert.Equal(t, TierRed, v.Tier)
}
