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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotEmpty(t, cfg.WorkspaceRoot)
	assert.Empty(t, cfg.ExtraAllowList)
	assert.False(t, cfg.AutoApproveEdits)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
extraAllowList:
  - terraform
  - kubectl
extraBlockList:
  - curl
workspaceRoot: /work/project
autoApproveEdits: true
auditLogPath: /var/tmp/audit.jsonl
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"terraform", "kubectl"}, cfg.ExtraAllowList)
	assert.Equal(t, []string{"curl"}, cfg.ExtraBlockList)
	assert.Equal(t, "/work/project", cfg.WorkspaceRoot)
	assert.True(t, cfg.AutoApproveEdits)
	assert.Equal(t, "/var/tmp/audit.jsonl", cfg.AuditLogPath)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "extraAllowList: [make]\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"make"}, cfg.ExtraAllowList)
	assert.NotEmpty(t, cfg.WorkspaceRoot)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "extraAlowList: [make]\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsOverlap(t *testing.T) {
	cfg := &Config{
		ExtraAllowList: []string{"make", "curl"},
		ExtraBlockList: []string{"curl"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "curl")

	cfg.ExtraBlockList = []string{"wget"}
	assert.NoError(t, cfg.Validate())
}
