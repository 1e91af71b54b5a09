package voice

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskvoice/internal/provider"
)

// FileSpeaker 将合成的回复语音写入缓存目录，播放交给系统播放器
// FileSpeaker writes synthesized replies to the cache dir; playback is left to the system player
type FileSpeaker struct {
	synth provider.Synthesizer
	dir   string
	log   zerolog.Logger
	now   func() time.Time

	mu   sync.Mutex
	last string
}

func NewFileSpeaker(synth provider.Synthesizer, dir string, log zerolog.Logger) *FileSpeaker {
	return &FileSpeaker{
		synth: synth,
		dir:   dir,
		log:   log.With().Str("component", "speaker").Logger(),
		now:   time.Now,
	}
}

func (s *FileSpeaker) Speak(ctx context.Context, text string) error {
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create speech dir: %w", err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("reply-%s.mp3", s.now().UTC().Format("20060102-150405.000")))
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write speech: %w", err)
	}
	s.log.Debug().Str("path", path).Int("bytes", len(audio)).Msg("reply spoken")

	s.mu.Lock()
	s.last = path
	s.mu.Unlock()
	return nil
}

// LastPath returns the most recent reply file, or "".
func (s *FileSpeaker) LastPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
