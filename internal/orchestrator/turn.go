package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"taskvoice/internal/chat"
	"taskvoice/internal/command"
	"taskvoice/internal/contextmgr"
	"taskvoice/internal/provider"
	"taskvoice/internal/reply"
)

type turnInput struct {
	text     string
	audio    []byte
	mimeType string
}

func (in turnInput) kind() string {
	if len(in.audio) > 0 {
		return "audio"
	}
	return "text"
}

// RunText 处理一条文字消息，返回追加的助手消息
// RunText answers a typed message and returns the assistant message it appended
func (o *Orchestrator) RunText(ctx context.Context, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, ErrEmptyInput
	}
	return o.runTurn(ctx, turnInput{text: text})
}

// RunAudio answers a voice message. mimeType may be empty.
func (o *Orchestrator) RunAudio(ctx context.Context, audio []byte, mimeType string) (chat.Message, error) {
	if len(audio) == 0 {
		return chat.Message{}, ErrEmptyInput
	}
	return o.runTurn(ctx, turnInput{audio: audio, mimeType: mimeType})
}

func (o *Orchestrator) runTurn(ctx context.Context, in turnInput) (chat.Message, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	o.processing = true
	o.lastErr = nil
	prior := chat.CloneAll(o.history)
	o.mu.Unlock()

	// 新的一轮会使之前未确认的命令失效
	// A new turn supersedes any unconfirmed command
	if o.gate.Discard() {
		o.metrics.RecordGate("discard")
		o.metrics.SetPending(false)
	}

	now := o.now()
	userContent := in.text
	if len(in.audio) > 0 {
		userContent = contextmgr.VoicePlaceholder
	}
	userMsg := chat.NewMessage(chat.RoleUser, userContent, now)
	userMsg.Audio = len(in.audio) > 0
	o.appendMessage(ctx, userMsg)
	o.notify()

	assistant, status := o.answer(ctx, in, prior, userMsg, now)
	o.appendMessage(ctx, assistant)

	o.mu.Lock()
	o.processing = false
	o.mu.Unlock()
	o.metrics.RecordTurn(in.kind(), status)
	o.log.Info().
		Str("input", in.kind()).
		Str("status", status).
		Bool("pending", assistant.Pending != nil).
		Msg("turn finished")
	o.notify()

	if len(in.audio) > 0 && o.speakReplies && o.speaker != nil {
		o.speak(ctx, assistant.Content)
	}
	return assistant, nil
}

// answer 调用模型并把结果转换为助手消息；任何失败都变成一句致歉
// answer calls the backend and turns the outcome into an assistant message; every failure becomes an apology
func (o *Orchestrator) answer(ctx context.Context, in turnInput, prior []chat.Message, userMsg chat.Message, now time.Time) (chat.Message, string) {
	snap, err := contextmgr.Capture(ctx, o.sources, o.locale, now)
	if err != nil {
		o.log.Error().Err(err).Msg("capture snapshot failed")
		o.setLastError(err)
		return chat.NewMessage(chat.RoleAssistant, o.i18n.T("reply.error.generic"), o.now()), "error"
	}

	// 先转写再对话的后端不会把音频交给模型
	// a transcribe-then-chat backend never hands the clip to the model
	_, twoStage := o.backend.(provider.Transcriber)
	prompt := o.assembler.Build(snap, o.window.Apply(prior), contextmgr.Turn{
		Text:        in.text,
		Audio:       len(in.audio) > 0,
		Transcribed: twoStage,
	})

	start := time.Now()
	resp, err := o.backend.Send(ctx, provider.Request{
		Prompt:   prompt,
		Text:     in.text,
		Audio:    in.audio,
		MIMEType: in.mimeType,
	})
	elapsed := time.Since(start)
	o.metrics.ObserveBackend(o.backend.Name(), elapsed.Seconds())
	if err != nil {
		o.log.Warn().Err(err).Str("backend", o.backend.Name()).Dur("elapsed", elapsed).Msg("backend call failed")
		o.setLastError(err)
		text, status := o.failureReply(err)
		return chat.NewMessage(chat.RoleAssistant, text, o.now()), status
	}
	o.log.Debug().Str("backend", o.backend.Name()).Dur("elapsed", elapsed).Int("chars", len(resp.Text)).Msg("backend replied")

	parsed := reply.Parse(resp.Text)
	if !parsed.Structured {
		o.metrics.RecordParseFallback()
		o.log.Debug().Msg("reply was not structured, using raw text")
	}

	if len(in.audio) > 0 {
		transcript := strings.TrimSpace(resp.Transcript)
		if transcript == "" {
			transcript = strings.TrimSpace(parsed.Transcript)
		}
		if transcript != "" {
			o.replaceContent(ctx, userMsg.ID, transcript)
		}
	}

	text := parsed.Message
	status := "ok"
	var pending *command.Pending
	if parsed.Pending != nil {
		p := *parsed.Pending
		if err := command.Validate(p); err != nil {
			var verr *command.ValidationError
			reason := err.Error()
			if errors.As(err, &verr) {
				reason = verr.Reason
			}
			text = o.i18n.T("reply.invalid_command", text, reason)
			status = "invalid"
			o.log.Info().Str("action", string(p.Action)).Str("reason", reason).Msg("command rejected")
		} else if p.Action.IsMutating() {
			o.gate.Offer(p)
			o.metrics.RecordGate("offer")
			o.metrics.SetPending(true)
			pending = p.Clone()
			status = "pending"
		}
	}

	msg := chat.NewMessage(chat.RoleAssistant, text, o.now())
	msg.Pending = pending
	return msg, status
}

func (o *Orchestrator) failureReply(err error) (string, string) {
	switch {
	case errors.Is(err, provider.ErrNoSpeech):
		return o.i18n.T("reply.error.no_speech"), "no_speech"
	case errors.Is(err, provider.ErrUnconfigured):
		return o.i18n.T("reply.error.unconfigured"), "unconfigured"
	case errors.Is(err, provider.ErrTransport):
		return o.i18n.T("reply.error.transport"), "transport"
	}
	return o.i18n.T("reply.error.generic"), "error"
}

func (o *Orchestrator) speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	o.mu.Lock()
	o.speaking = true
	o.mu.Unlock()
	o.notify()

	if err := o.speaker.Speak(ctx, text); err != nil {
		o.log.Warn().Err(err).Msg("speak reply failed")
	}

	o.mu.Lock()
	o.speaking = false
	o.mu.Unlock()
	o.notify()
}
