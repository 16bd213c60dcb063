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
	"fmt"
	"path"
	"strings"

	"k8s.io/klog/v2"
	"mvdan.cc/sh/v3/syntax"

	"github.com/shellguard/shellguard/pkg/journal"
)

// Options configures a Classifier.
type Options struct {
	// ExtraAllowList and ExtraBlockList extend the built-in lists. A name in
	// both lists ends up blocked.
	ExtraAllowList []string
	ExtraBlockList []string

	// Recorder receives one audit event per classification or validation
	// call. Optional; klog still gets diagnostics when nil.
	Recorder journal.Recorder
}

// Classifier assigns a risk tier to a full shell command line. It holds no
// mutable state after construction and is safe for concurrent use.
type Classifier struct {
	registry *registry
	recorder journal.Recorder
}

// NewClassifier builds a Classifier. The handler registry and the
// allow/block lists are resolved here, once, and never mutated afterwards.
func NewClassifier(opts Options) *Classifier {
	return &Classifier{
		registry: newRegistry(opts.ExtraAllowList, opts.ExtraBlockList),
		recorder: opts.Recorder,
	}
}

// Classify parses command and returns the folded worst-case verdict across
// every simple command in the expression. Unparsable input degrades to
// yellow: the command cannot be proven safe, but a syntax error alone is not
// proof of malice either.
func (c *Classifier) Classify(ctx context.Context, command string) Verdict {
	v := c.classify(command)
	c.audit(ctx, journal.ActionClassifyCommand, command, v, nil)
	return v
}

func (c *Classifier) classify(command string) Verdict {
	// The parser keeps internal state between calls, so each classification
	// uses a fresh one; construction is cheap.
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(command), "")
	if err != nil {
		klog.Warningf("command does not parse as shell syntax, degrading to yellow: %v", err)
		return Verdict{
			Tier:    TierYellow,
			Reasons: []string{"command could not be parsed as shell syntax"},
		}
	}

	var v Verdict
	c.walkStmts(file.Stmts, &v)
	return v
}

func (c *Classifier) walkStmts(stmts []*syntax.Stmt, v *Verdict) {
	for _, st := range stmts {
		c.walkStmt(st, v)
	}
}

// walkStmt visits one statement node and folds its partial verdict into v.
// Compound nodes recurse into every child; simple commands dispatch to a
// handler. The fold is monotonic: a single red child makes the whole
// expression red.
func (c *Classifier) walkStmt(st *syntax.Stmt, v *Verdict) {
	if st == nil {
		return
	}
	switch cmd := st.Cmd.(type) {
	case *syntax.CallExpr:
		c.evalCall(cmd, st.Redirs, v)
		return
	case *syntax.BinaryCmd:
		c.walkStmt(cmd.X, v)
		c.walkStmt(cmd.Y, v)
	case *syntax.Subshell:
		c.walkStmts(cmd.Stmts, v)
	case *syntax.Block:
		c.walkStmts(cmd.Stmts, v)
	case *syntax.IfClause:
		for ic := cmd; ic != nil; ic = ic.Else {
			c.walkStmts(ic.Cond, v)
			c.walkStmts(ic.Then, v)
		}
	case *syntax.WhileClause:
		c.walkStmts(cmd.Cond, v)
		c.walkStmts(cmd.Do, v)
	case *syntax.ForClause:
		if wi, ok := cmd.Loop.(*syntax.WordIter); ok {
			for _, w := range wi.Items {
				c.flattenWord(w, v)
			}
		}
		c.walkStmts(cmd.Do, v)
	case *syntax.CaseClause:
		c.flattenWord(cmd.Word, v)
		for _, item := range cmd.Items {
			c.walkStmts(item.Stmts, v)
		}
	case *syntax.FuncDecl:
		c.walkStmt(cmd.Body, v)
	case *syntax.TimeClause:
		c.walkStmt(cmd.Stmt, v)
	case *syntax.CoprocClause:
		c.walkStmt(cmd.Stmt, v)
	case *syntax.DeclClause:
		// export/declare/local assignments can hide substitutions in their
		// values.
		for _, as := range cmd.Args {
			c.evalAssign(as, v)
		}
	case *syntax.LetClause:
		for _, x := range cmd.Exprs {
			c.walkArithm(x, v)
		}
	case *syntax.ArithmCmd:
		c.walkArithm(cmd.X, v)
	case *syntax.TestClause:
		c.walkTest(cmd.X, v)
	case nil:
	default:
		v.add(TierYellow, "unsupported shell construct")
	}
	c.evalRedirects(st.Redirs, nil, v)
}

// evalCall resolves one simple command and dispatches it: block list first
// (immediate red, short-circuiting further analysis of this node only), then
// the allow-list baseline, then the registered or generic handler.
func (c *Classifier) evalCall(call *syntax.CallExpr, redirs []*syntax.Redirect, v *Verdict) {
	for _, as := range call.Assigns {
		c.evalAssign(as, v)
	}

	if len(call.Args) == 0 {
		// Assignment or bare redirection; only the targets matter.
		c.evalRedirects(redirs, nil, v)
		return
	}

	nameTok := c.flattenWord(call.Args[0], v)
	inv := invocation{}
	for _, w := range call.Args[1:] {
		inv.args = append(inv.args, c.flattenWord(w, v))
	}
	c.evalRedirects(redirs, &inv, v)

	if nameTok.opaque {
		v.add(TierYellow, "command name could not be resolved to literal text")
		v.merge(c.registry.generic.evaluate(inv))
		return
	}

	name := path.Base(nameTok.text)
	inv.name = name

	if c.registry.block[name] {
		v.add(TierRed, fmt.Sprintf("command %q is block-listed", name))
		return
	}
	if !c.registry.allow[name] {
		v.add(TierYellow, fmt.Sprintf("unknown command %q", name))
	}
	v.merge(c.registry.handlerFor(name).evaluate(inv))
}

// evalAssign flattens an assignment's value words so any substitution bodies
// inside them are classified like every other sub-expression.
func (c *Classifier) evalAssign(as *syntax.Assign, v *Verdict) {
	if as == nil {
		return
	}
	if as.Value != nil {
		c.flattenWord(as.Value, v)
	}
	if as.Index != nil {
		c.walkArithm(as.Index, v)
	}
	if as.Array != nil {
		for _, elem := range as.Array.Elems {
			if elem.Index != nil {
				c.walkArithm(elem.Index, v)
			}
			if elem.Value != nil {
				c.flattenWord(elem.Value, v)
			}
		}
	}
}

// walkArithm descends an arithmetic expression; the leaf words carry any
// embedded substitutions.
func (c *Classifier) walkArithm(x syntax.ArithmExpr, v *Verdict) {
	switch a := x.(type) {
	case *syntax.BinaryArithm:
		c.walkArithm(a.X, v)
		c.walkArithm(a.Y, v)
	case *syntax.UnaryArithm:
		c.walkArithm(a.X, v)
	case *syntax.ParenArithm:
		c.walkArithm(a.X, v)
	case *syntax.Word:
		c.flattenWord(a, v)
	}
}

// walkTest descends a [[ ]] expression the same way.
func (c *Classifier) walkTest(x syntax.TestExpr, v *Verdict) {
	switch te := x.(type) {
	case *syntax.BinaryTest:
		c.walkTest(te.X, v)
		c.walkTest(te.Y, v)
	case *syntax.UnaryTest:
		c.walkTest(te.X, v)
	case *syntax.ParenTest:
		c.walkTest(te.X, v)
	case *syntax.Word:
		c.flattenWord(te, v)
	}
}

// evalRedirects path-analyzes file redirection targets. This runs for every
// command and compound node regardless of which handler owns the command;
// when inv is non-nil the redirects are also made visible to the handler.
func (c *Classifier) evalRedirects(redirs []*syntax.Redirect, inv *invocation, v *Verdict) {
	for _, rd := range redirs {
		var output bool
		switch rd.Op {
		case syntax.RdrOut, syntax.AppOut, syntax.ClbOut, syntax.RdrAll, syntax.AppAll:
			output = true
		case syntax.RdrIn:
			output = false
		default:
			// fd duplications and heredoc bodies carry no file path
			continue
		}
		if rd.Word == nil {
			continue
		}
		t := c.flattenWord(rd.Word, v)
		if inv != nil {
			inv.redirects = append(inv.redirects, redirect{target: t, output: output})
		}
		if t.opaque {
			v.add(TierYellow, "redirect target could not be resolved to literal text")
			continue
		}
		r := AnalyzePath(t.text)
		v.add(r.Tier, r.Reason)
	}
}

// flattenWord reduces a word to literal text. Parameter expansions keep
// their "$NAME" spelling so the path analyzer can match home-directory
// variables; command and process substitutions make the token opaque, and
// their bodies are classified like any other sub-expression.
func (c *Classifier) flattenWord(w *syntax.Word, v *Verdict) token {
	if w == nil {
		return token{opaque: true}
	}
	var sb strings.Builder
	opaque := false

	var visit func(parts []syntax.WordPart, quoted bool)
	visit = func(parts []syntax.WordPart, quoted bool) {
		for _, part := range parts {
			switch p := part.(type) {
			case *syntax.Lit:
				sb.WriteString(unescapeLit(p.Value, quoted))
			case *syntax.SglQuoted:
				sb.WriteString(p.Value)
			case *syntax.DblQuoted:
				visit(p.Parts, true)
			case *syntax.ParamExp:
				if p.Param == nil {
					opaque = true
					break
				}
				sb.WriteString("$" + p.Param.Value)
				// ${a:-b}, ${a%b} and friends cannot be flattened faithfully.
				if p.Exp != nil || p.Index != nil || p.Slice != nil || p.Repl != nil || p.Excl || p.Length || p.Width {
					opaque = true
				}
			case *syntax.CmdSubst:
				opaque = true
				c.walkStmts(p.Stmts, v)
			case *syntax.ProcSubst:
				opaque = true
				c.walkStmts(p.Stmts, v)
			default:
				opaque = true
			}
		}
	}
	visit(w.Parts, false)
	return token{text: sb.String(), opaque: opaque}
}

// unescapeLit drops backslash escapes from a literal so "\;" compares equal
// to ";". Inside double quotes the backslash only escapes a few characters.
func unescapeLit(s string, quoted bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			next := s[i+1]
			if !quoted || next == '"' || next == '\\' || next == '$' || next == '`' {
				sb.WriteByte(next)
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}

// audit emits one structured record per classification or validation call.
func (c *Classifier) audit(ctx context.Context, action journal.Action, command string, v Verdict, callErr error) {
	ev := journal.NewEvent(action, command)
	ev.Tier = v.Tier.String()
	ev.Reasons = v.Reasons
	if callErr != nil {
		ev.Error = callErr.Error()
	}

	rec := c.recorder
	if rec == nil {
		rec = journal.RecorderFromContext(ctx)
	}
	if rec != nil {
		if err := rec.Write(ctx, ev); err != nil {
			klog.Warningf("writing audit event: %v", err)
		}
		return
	}
	klog.V(2).InfoS("classified command", "action", action, "command", ev.Command, "tier", ev.Tier, "reasons", ev.Reasons)
}
