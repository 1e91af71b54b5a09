package provider

import (
	"context"
)

// Request 单轮模型请求
// Request is one turn's model request
type Request struct {
	// Prompt is the full instruction built from the context snapshot and history.
	Prompt string
	// Text is the user's typed message; empty for voice turns.
	Text     string
	Audio    []byte
	MIMEType string
}

func (r Request) HasAudio() bool { return len(r.Audio) > 0 }

// Response 模型原始回复
// Response is the raw model reply
type Response struct {
	Text string
	// Transcript is set by backends that transcribe before chatting.
	Transcript string
}

// Backend 模型后端接口：单次多模态调用或先转写再对话，两种实现在配置时选定
// Backend is the model backend interface; single-call multimodal and two-stage
// transcribe-then-chat implementations are chosen at configuration time
type Backend interface {
	Name() string
	Send(ctx context.Context, req Request) (Response, error)
}

// Transcriber turns recorded speech into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
}

// Synthesizer turns assistant text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
