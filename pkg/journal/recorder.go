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

// Package journal records structured audit events for every classification
// and validation decision the safety gate makes. The journal only produces
// the record content; transport beyond a local file or log is someone
// else's problem.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"k8s.io/klog/v2"
)

// Action names the call being audited.
type Action string

const (
	ActionClassifyCommand Action = "classify-command"
	ActionValidateCommand Action = "validate-command"
	ActionPatchPolicy     Action = "patch-policy"
)

// maxCommandPrefix bounds how much of the (possibly adversarial, possibly
// enormous) command text lands in the audit record.
const maxCommandPrefix = 256

// Event is one audit record.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Action    Action    `json:"action"`
	Command   string    `json:"command,omitempty"`
	Tier      string    `json:"tier,omitempty"`
	Reasons   []string  `json:"reasons,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// NewEvent builds an event with a fresh ID and timestamp; the command text
// is truncated to a bounded prefix.
func NewEvent(action Action, command string) *Event {
	if len(command) > maxCommandPrefix {
		command = command[:maxCommandPrefix]
	}
	return &Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		Action:    action,
		Command:   command,
	}
}

// Recorder is the sink for audit events.
type Recorder interface {
	io.Closer

	// Write adds an event to the recorder.
	Write(ctx context.Context, event *Event) error
}

// FileRecorder appends events to a file, one JSON object per line.
type FileRecorder struct {
	mu sync.Mutex
	f  *os.File
}

// NewFileRecorder opens (or creates) the audit file for appending.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}
	return &FileRecorder{f: f}, nil
}

func (r *FileRecorder) Write(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return errors.New("recorder closed")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	b = append(b, '\n')
	if _, err := r.f.Write(b); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}

func (r *FileRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}

// LogRecorder writes events to klog. Useful when no audit file is
// configured but the operator still wants a trace at higher verbosity.
type LogRecorder struct{}

func (LogRecorder) Write(ctx context.Context, event *Event) error {
	klog.FromContext(ctx).V(1).Info("audit",
		"action", event.Action,
		"command", event.Command,
		"tier", event.Tier,
		"reasons", event.Reasons,
		"error", event.Error,
	)
	return nil
}

func (LogRecorder) Close() error { return nil }

// MultiRecorder fans events out to several sinks.
type MultiRecorder struct {
	recorders []Recorder
}

func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

func (m *MultiRecorder) Write(ctx context.Context, event *Event) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Write(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type recorderKeyType int

var recorderKey recorderKeyType

// ContextWithRecorder attaches a recorder to the context so deep call sites
// can audit without threading the sink explicitly.
func ContextWithRecorder(ctx context.Context, recorder Recorder) context.Context {
	return context.WithValue(ctx, recorderKey, recorder)
}

// RecorderFromContext returns the recorder attached to ctx, or nil.
func RecorderFromContext(ctx context.Context) Recorder {
	if ctx == nil {
		return nil
	}
	r, _ := ctx.Value(recorderKey).(Recorder)
	return r
}
