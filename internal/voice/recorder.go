package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"taskvoice/internal/orchestrator"
	"taskvoice/internal/provider"
)

var ErrNoSource = errors.New("no audio source selected")

// FileRecorder 以音频文件模拟录音：Start 记录来源，Stop 读取文件内容
// FileRecorder stands in for a microphone: Start remembers the source file, Stop reads it
type FileRecorder struct {
	mu      sync.Mutex
	source  string
	running bool
}

func NewFileRecorder() *FileRecorder {
	return &FileRecorder{}
}

// SetSource selects the file the next capture reads.
func (r *FileRecorder) SetSource(path string) {
	r.mu.Lock()
	r.source = strings.TrimSpace(path)
	r.mu.Unlock()
}

func (r *FileRecorder) Source() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

func (r *FileRecorder) Start(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.source == "" {
		return ErrNoSource
	}
	if _, err := os.Stat(r.source); err != nil {
		return fmt.Errorf("audio source: %w", err)
	}
	r.running = true
	return nil
}

// Stop returns the recorded clip. A capture that was never started yields an empty clip.
func (r *FileRecorder) Stop(_ context.Context) (orchestrator.Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return orchestrator.Clip{}, nil
	}
	r.running = false
	data, err := os.ReadFile(r.source)
	if err != nil {
		return orchestrator.Clip{}, fmt.Errorf("read audio: %w", err)
	}
	return orchestrator.Clip{Data: data, MIMEType: provider.MIMETypeForPath(r.source)}, nil
}

// ReadClip loads a whole audio file as one voice message.
func ReadClip(path string) (orchestrator.Clip, error) {
	data, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return orchestrator.Clip{}, fmt.Errorf("read audio: %w", err)
	}
	return orchestrator.Clip{Data: data, MIMEType: provider.MIMETypeForPath(path)}, nil
}
