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

// Package config loads the safety-gate policy file.
package config

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// Config is the operator-supplied policy. All fields are optional.
type Config struct {
	// ExtraAllowList adds command names to the built-in allow list.
	ExtraAllowList []string `json:"extraAllowList,omitempty"`

	// ExtraBlockList adds command names to the built-in block list.
	ExtraBlockList []string `json:"extraBlockList,omitempty"`

	// WorkspaceRoot is the directory patch-style edits are permitted in.
	// Defaults to the process working directory.
	WorkspaceRoot string `json:"workspaceRoot,omitempty"`

	// AutoApproveEdits skips prompts for create/update patches inside the
	// workspace root.
	AutoApproveEdits bool `json:"autoApproveEdits,omitempty"`

	// AuditLogPath, when set, appends one JSON audit record per decision.
	AuditLogPath string `json:"auditLogPath,omitempty"`
}

// Default returns the zero policy with the workspace root resolved to the
// current directory.
func Default() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{WorkspaceRoot: cwd}
}

// Load reads and validates a YAML policy file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects contradictory policy. A name in both lists is an
// operator mistake that must not be silently resolved either way.
func (c *Config) Validate() error {
	blocked := make(map[string]bool, len(c.ExtraBlockList))
	for _, name := range c.ExtraBlockList {
		blocked[name] = true
	}
	for _, name := range c.ExtraAllowList {
		if blocked[name] {
			return fmt.Errorf("command %q is in both extraAllowList and extraBlockList", name)
		}
	}
	return nil
}
