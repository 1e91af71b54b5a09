package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskvoice/internal/approval"
	"taskvoice/internal/chat"
	"taskvoice/internal/contextmgr"
	"taskvoice/internal/i18n"
	"taskvoice/internal/metrics"
	"taskvoice/internal/provider"
)

// Orchestrator 驱动一轮对话：快照 → 提示词 → 模型 → 解析 → 校验 → 确认门
// Orchestrator drives a turn: snapshot, prompt, backend, parse, validate, gate
type Orchestrator struct {
	backend      provider.Backend
	exec         Executor
	sources      contextmgr.Sources
	assembler    *contextmgr.Assembler
	window       contextmgr.Window
	gate         *approval.Gate
	messageLog   MessageLog
	recorder     Recorder
	speaker      Speaker
	speakReplies bool
	i18n         *i18n.I18n
	metrics      *metrics.Metrics
	log          zerolog.Logger
	locale       string
	now          func() time.Time

	mu         sync.Mutex
	history    []chat.Message
	capturing  bool
	processing bool
	speaking   bool
	lastErr    error
	onChange   OnStateChange
}

func New(backend provider.Backend, exec Executor, opts Options) *Orchestrator {
	if opts.Assembler == nil {
		opts.Assembler = contextmgr.New("")
	}
	if opts.Window.Limit <= 0 {
		opts.Window = contextmgr.NewWindow(contextmgr.DefaultHistoryLimit, contextmgr.DefaultTokenBudget, opts.Window.Tokenizer)
	}
	if opts.Gate == nil {
		opts.Gate = approval.NewGate(opts.Logger)
	}
	if opts.I18n == nil {
		opts.I18n = i18n.New(opts.Locale)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		backend:      backend,
		exec:         exec,
		sources:      opts.Sources,
		assembler:    opts.Assembler,
		window:       opts.Window,
		gate:         opts.Gate,
		messageLog:   opts.MessageLog,
		recorder:     opts.Recorder,
		speaker:      opts.Speaker,
		speakReplies: opts.SpeakReplies,
		i18n:         opts.I18n,
		metrics:      opts.Metrics,
		log:          opts.Logger.With().Str("component", "orchestrator").Logger(),
		locale:       opts.Locale,
		now:          opts.Now,
		history:      chat.CloneAll(opts.History),
	}
}

// SetStateCallback 设置状态变化回调（REPL 用于刷新提示）
// SetStateCallback sets the state change callback (the REPL uses it to refresh its prompt)
func (o *Orchestrator) SetStateCallback(fn OnStateChange) {
	o.mu.Lock()
	o.onChange = fn
	o.mu.Unlock()
}

// State returns a copy; callers may keep it.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stateLocked()
}

func (o *Orchestrator) stateLocked() State {
	st := State{
		Capturing:  o.capturing,
		Processing: o.processing,
		Speaking:   o.speaking,
		History:    chat.CloneAll(o.history),
		LastError:  o.lastErr,
	}
	if p, ok := o.gate.Pending(); ok {
		st.Pending = p.Clone()
	}
	return st
}

func (o *Orchestrator) Messages() []chat.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return chat.CloneAll(o.history)
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	fn := o.onChange
	var st State
	if fn != nil {
		st = o.stateLocked()
	}
	o.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// Clear 清空对话与持久化记录，并丢弃待确认命令
// Clear wipes the conversation and its persisted log and drops any pending command
func (o *Orchestrator) Clear(ctx context.Context) error {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return ErrBusy
	}
	o.history = nil
	o.lastErr = nil
	o.mu.Unlock()

	if o.gate.Discard() {
		o.metrics.RecordGate("discard")
	}
	o.metrics.SetPending(false)
	var err error
	if o.messageLog != nil {
		err = o.messageLog.ClearMessages(ctx)
	}
	o.notify()
	return err
}

// appendMessage 追加消息并写入会话记录；写入失败只记日志
// appendMessage appends to history and the message log; log failures are only logged
func (o *Orchestrator) appendMessage(ctx context.Context, msg chat.Message) {
	o.mu.Lock()
	o.history = append(o.history, msg.Clone())
	o.mu.Unlock()
	if o.messageLog == nil {
		return
	}
	if err := o.messageLog.AppendMessage(ctx, msg); err != nil {
		o.log.Warn().Err(err).Str("message_id", msg.ID).Msg("persist message failed")
	}
}

func (o *Orchestrator) replaceContent(ctx context.Context, id, content string) {
	o.mu.Lock()
	for i := range o.history {
		if o.history[i].ID == id {
			o.history[i].Content = content
			break
		}
	}
	o.mu.Unlock()
	if o.messageLog == nil {
		return
	}
	if err := o.messageLog.UpdateMessageContent(ctx, id, content); err != nil {
		o.log.Warn().Err(err).Str("message_id", id).Msg("update message failed")
	}
}

func (o *Orchestrator) setLastError(err error) {
	o.mu.Lock()
	o.lastErr = err
	o.mu.Unlock()
}
