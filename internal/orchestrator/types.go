package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"taskvoice/internal/approval"
	"taskvoice/internal/chat"
	"taskvoice/internal/command"
	"taskvoice/internal/contextmgr"
	"taskvoice/internal/executor"
	"taskvoice/internal/i18n"
	"taskvoice/internal/metrics"
)

var (
	ErrBusy           = errors.New("a turn is already in progress")
	ErrEmptyInput     = errors.New("empty input")
	ErrNothingPending = errors.New("nothing is awaiting confirmation")
	ErrNotCapturing   = errors.New("not capturing audio")
	ErrNoRecorder     = errors.New("no audio recorder configured")
)

// Clip 一段录制完成的音频
// Clip is a finished audio recording
type Clip struct {
	Data     []byte
	MIMEType string
}

// Recorder captures the user's voice. Stop with no data means the user backed out.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) (Clip, error)
}

// Speaker plays assistant replies aloud.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Executor runs confirmed commands against the task and mission repositories.
type Executor interface {
	Execute(ctx context.Context, p command.Pending, now time.Time) (executor.Result, error)
}

// MessageLog 会话记录持久化；待确认命令不会写入
// MessageLog persists the conversation; pending commands are never written
type MessageLog interface {
	AppendMessage(ctx context.Context, msg chat.Message) error
	UpdateMessageContent(ctx context.Context, id, content string) error
	ClearMessages(ctx context.Context) error
}

// OnStateChange is called after every state transition with a fresh copy.
type OnStateChange = func(State)

// State 编排器对外可见的状态快照
// State is a copy of what a front-end needs to render
type State struct {
	Capturing  bool
	Processing bool
	Speaking   bool
	History    []chat.Message
	Pending    *command.Pending
	LastError  error
}

type Options struct {
	Sources    contextmgr.Sources
	Assembler  *contextmgr.Assembler
	Window     contextmgr.Window
	Gate       *approval.Gate
	MessageLog MessageLog
	Recorder   Recorder
	Speaker    Speaker
	// SpeakReplies speaks the answer to voice turns through Speaker.
	SpeakReplies bool
	I18n         *i18n.I18n
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
	Locale       string
	// History restores an earlier conversation, oldest first.
	History []chat.Message
	Now     func() time.Time
}
