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

// shellguard is a one-shot CLI over the command safety gate: it classifies
// shell command lines into green/yellow/red and maps the validator's answer
// to exit codes for scripting.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"k8s.io/klog/v2"

	"github.com/shellguard/shellguard/pkg/approval"
	"github.com/shellguard/shellguard/pkg/config"
	sgexec "github.com/shellguard/shellguard/pkg/exec"
	"github.com/shellguard/shellguard/pkg/journal"
	"github.com/shellguard/shellguard/pkg/policy"
	"github.com/shellguard/shellguard/pkg/safety"
)

const (
	exitUsage     = 2
	exitApproval  = 10
	exitForbidden = 20
)

type options struct {
	configPath string
	auditLog   string
	allow      []string
	block      []string
}

// exitCodeError carries a process exit code out through cobra's error
// return, so deferred cleanup in run still happens before the process ends.
type exitCodeError struct {
	code int
}

func (e exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func main() {
	err := run()
	if err == nil {
		return
	}
	var ec exitCodeError
	if errors.As(err, &ec) {
		os.Exit(ec.code)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func run() error {
	klog.InitFlags(nil)
	defer klog.Flush()

	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "shellguard",
		Short:         "Classify shell commands before an agent runs them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML policy file")
	rootCmd.PersistentFlags().StringVar(&opts.auditLog, "audit-log", "", "append one JSON audit record per decision to this file")
	rootCmd.PersistentFlags().StringArrayVar(&opts.allow, "allow", nil, "extra allow-listed command name (repeatable)")
	rootCmd.PersistentFlags().StringArrayVar(&opts.block, "block", nil, "extra block-listed command name (repeatable)")

	rootCmd.AddCommand(newCheckCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newRunCommand(opts))
	return rootCmd.Execute()
}

func buildClassifier(opts *options) (*safety.Classifier, func(), error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = loaded
	}
	cfg.ExtraAllowList = append(cfg.ExtraAllowList, opts.allow...)
	cfg.ExtraBlockList = append(cfg.ExtraBlockList, opts.block...)

	auditPath := cfg.AuditLogPath
	if opts.auditLog != "" {
		auditPath = opts.auditLog
	}

	var recorder journal.Recorder
	cleanup := func() {}
	if auditPath != "" {
		fileRecorder, err := journal.NewFileRecorder(auditPath)
		if err != nil {
			return nil, nil, err
		}
		recorder = fileRecorder
		cleanup = func() {
			if err := fileRecorder.Close(); err != nil {
				klog.Warningf("closing audit log: %v", err)
			}
		}
	}

	classifier := safety.NewClassifier(safety.Options{
		ExtraAllowList: cfg.ExtraAllowList,
		ExtraBlockList: cfg.ExtraBlockList,
		Recorder:       recorder,
	})
	return classifier, cleanup, nil
}

func newCheckCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check <command> [<command>...]",
		Short: "Classify command lines and print their tiers with reasons",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, cleanup, err := buildClassifier(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			for _, command := range args {
				v := classifier.Classify(ctx, command)
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", renderTier(v.Tier), command)
				for _, reason := range v.Reasons {
					fmt.Fprintf(cmd.OutOrStdout(), "        - %s\n", reason)
				}
			}
			return nil
		},
	}
}

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <command>",
		Short: "Exit 0 when the command is safe, 10 when it needs approval, 20 when forbidden",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, cleanup, err := buildClassifier(opts)
			if err != nil {
				return err
			}
			defer cleanup()
			validator := safety.NewValidator(classifier)

			needsApproval, err := validator.Validate(cmd.Context(), args[0])
			switch {
			case errors.Is(err, safety.ErrForbidden):
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				return exitCodeError{exitForbidden}
			case err != nil:
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				return exitCodeError{exitUsage}
			case needsApproval:
				fmt.Fprintln(cmd.OutOrStdout(), "approval required")
				return exitCodeError{exitApproval}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

func newRunCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run <command>",
		Short: "Gate a command and execute it locally when it passes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classifier, cleanup, err := buildClassifier(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			validator := safety.NewValidator(classifier)
			gated := &sgexec.Gated{
				Policy:   policy.NewShellPolicy(validator),
				State:    approval.NewState(),
				Approver: promptApprover(cmd),
				Inner:    sgexec.NewLocalExecutor(""),
			}

			res, err := gated.Execute(cmd.Context(), args[0])
			switch {
			case errors.Is(err, safety.ErrForbidden):
				fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
				return exitCodeError{exitForbidden}
			case errors.Is(err, sgexec.ErrDenied):
				fmt.Fprintln(cmd.ErrOrStderr(), "denied")
				return exitCodeError{exitApproval}
			case err != nil:
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), res.Stdout)
			fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)
			if res.ExitCode != 0 {
				return exitCodeError{res.ExitCode}
			}
			return nil
		},
	}
}

// promptApprover asks for a yes/no on the command's streams. Anything but an
// explicit yes declines.
func promptApprover(cmd *cobra.Command) sgexec.Approver {
	return func(ctx context.Context, pending *approval.PendingContext) (bool, error) {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\nRun it? [y/N] ", pending.Interruption, pending.ExecutionState)
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil {
			return false, err
		}
		answer := strings.ToLower(strings.TrimSpace(line))
		return answer == "y" || answer == "yes", nil
	}
}

var tierStyles = map[safety.Tier]lipgloss.Style{
	safety.TierGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
	safety.TierYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	safety.TierRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

func renderTier(t safety.Tier) string {
	label := fmt.Sprintf("%-6s", t)
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return label
	}
	return tierStyles[t].Render(label)
}
