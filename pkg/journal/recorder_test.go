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

package journal

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventTruncatesCommand(t *testing.T) {
	long := strings.Repeat("x", 10_000)
	ev := NewEvent(ActionClassifyCommand, long)

	assert.Len(t, ev.Command, maxCommandPrefix)
	assert.NotEmpty(t, ev.ID)
	assert.False(t, ev.Timestamp.IsZero())

	short := NewEvent(ActionClassifyCommand, "ls")
	assert.Equal(t, "ls", short.Command)
}

func TestFileRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	rec, err := NewFileRecorder(path)
	require.NoError(t, err)

	ctx := context.Background()
	for _, cmd := range []string{"ls", "git push", "rm -rf /"} {
		ev := NewEvent(ActionValidateCommand, cmd)
		ev.Tier = "yellow"
		require.NoError(t, rec.Write(ctx, ev))
	}
	require.NoError(t, rec.Close())

	// One valid JSON object per line, in write order.
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		assert.Equal(t, ActionValidateCommand, ev.Action)
		commands = append(commands, ev.Command)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"ls", "git push", "rm -rf /"}, commands)
}

func TestFileRecorderAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		rec, err := NewFileRecorder(path)
		require.NoError(t, err)
		require.NoError(t, rec.Write(ctx, NewEvent(ActionClassifyCommand, "ls")))
		require.NoError(t, rec.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\n"))
}

func TestFileRecorderClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	rec, err := NewFileRecorder(path)
	require.NoError(t, err)
	require.NoError(t, rec.Close())

	err = rec.Write(context.Background(), NewEvent(ActionClassifyCommand, "ls"))
	assert.Error(t, err)

	// Close is idempotent.
	assert.NoError(t, rec.Close())
}

func TestMultiRecorder(t *testing.T) {
	dir := t.TempDir()
	a, err := NewFileRecorder(filepath.Join(dir, "a.jsonl"))
	require.NoError(t, err)
	b, err := NewFileRecorder(filepath.Join(dir, "b.jsonl"))
	require.NoError(t, err)

	multi := NewMultiRecorder(a, b)
	require.NoError(t, multi.Write(context.Background(), NewEvent(ActionPatchPolicy, "")))
	require.NoError(t, multi.Close())

	for _, name := range []string{"a.jsonl", "b.jsonl"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Contains(t, string(data), string(ActionPatchPolicy))
	}
}

func TestRecorderContext(t *testing.T) {
	assert.Nil(t, RecorderFromContext(context.Background()))

	rec := LogRecorder{}
	ctx := ContextWithRecorder(context.Background(), rec)
	assert.Equal(t, rec, RecorderFromContext(ctx))
}
