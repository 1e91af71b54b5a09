package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"

	"taskvoice/internal/bootstrap"
	"taskvoice/internal/chat"
	"taskvoice/internal/orchestrator"
	"taskvoice/internal/voice"
)

var replCommands = []string{
	"/confirm", "/yes", "/cancel", "/no",
	"/tasks", "/missions",
	"/voice", "/record", "/stop",
	"/clear", "/help", "/exit", "/quit",
}

// Loop holds REPL state: the built session, input and output.
// Loop 持有 REPL 状态：会话组件、输入与输出。
type Loop struct {
	*bootstrap.BuildResult
	in    LineInput
	out   io.Writer
	theme Theme
	log   zerolog.Logger
	now   func() time.Time
}

// NewLoop builds a REPL loop from a BuildResult.
func NewLoop(res *bootstrap.BuildResult, in LineInput, out io.Writer, log zerolog.Logger) *Loop {
	return &Loop{
		BuildResult: res,
		in:          in,
		out:         out,
		theme:       NewTheme(out),
		log:         log.With().Str("component", "repl").Logger(),
		now:         time.Now,
	}
}

// Run 读取输入直到 EOF 或 /exit：普通输入交给编排器，斜杠命令在本地处理
// Run reads until EOF or /exit: plain lines go to the orchestrator, slash commands are handled locally
func (l *Loop) Run(ctx context.Context) error {
	if l.Orch == nil {
		return fmt.Errorf("orchestrator is nil")
	}
	fmt.Fprintln(l.out, l.theme.Title.Render(l.I18n.T("repl.welcome", l.AssistantName)))
	for _, msg := range l.Orch.Messages() {
		l.printMessage(msg)
	}

	for {
		line, err := l.in.ReadLine(l.I18n.T("repl.prompt"))
		if err != nil {
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(l.out)
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.bye")))
				return nil
			default:
				return fmt.Errorf("read input: %w", err)
			}
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if exit := l.handleCommand(ctx, input); exit {
				fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.bye")))
				return nil
			}
			continue
		}
		// 有待确认命令时，简短的“是/否”直接作答
		// While a command is pending, a bare yes/no answers it
		if l.Orch.State().Pending != nil {
			if decision, ok := parseConfirmation(input); ok {
				l.decide(ctx, decision)
				continue
			}
		}
		msg, err := l.Orch.RunText(ctx, input)
		if err != nil {
			l.printError(err)
			continue
		}
		l.printMessage(msg)
	}
}

// handleCommand reports whether the REPL should exit.
func (l *Loop) handleCommand(ctx context.Context, input string) bool {
	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	arg := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch cmd {
	case "/exit", "/quit":
		return true
	case "/help":
		fmt.Fprintln(l.out, l.I18n.T("repl.help"))
	case "/confirm", "/yes":
		l.decide(ctx, decisionConfirm)
	case "/cancel", "/no":
		l.decide(ctx, decisionCancel)
	case "/clear":
		if err := l.Orch.Clear(ctx); err != nil {
			l.printError(err)
			return false
		}
		fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.cleared")))
	case "/tasks":
		tasks, err := l.Store.ListTasks(ctx)
		if err != nil {
			l.printError(err)
			return false
		}
		WriteTasks(l.out, l.I18n, l.theme, tasks)
	case "/missions":
		missions, err := l.Store.ListMissions(ctx)
		if err != nil {
			l.printError(err)
			return false
		}
		WriteMissions(l.out, l.I18n, l.theme, missions, l.now())
	case "/voice":
		if arg == "" {
			fmt.Fprintln(l.out, l.I18n.T("repl.usage_voice"))
			return false
		}
		clip, err := voice.ReadClip(arg)
		if err != nil {
			l.printError(err)
			return false
		}
		l.voiceTurn(func() (chat.Message, error) {
			return l.Orch.RunAudio(ctx, clip.Data, clip.MIMEType)
		})
	case "/record":
		if arg == "" {
			fmt.Fprintln(l.out, l.I18n.T("repl.usage_record"))
			return false
		}
		if l.Recorder == nil {
			l.printError(orchestrator.ErrNoRecorder)
			return false
		}
		l.Recorder.SetSource(arg)
		if err := l.Orch.StartCapture(ctx); err != nil {
			l.printError(err)
			return false
		}
		fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.recording", arg)))
	case "/stop":
		l.voiceTurn(func() (chat.Message, error) {
			return l.Orch.StopCapture(ctx)
		})
	default:
		fmt.Fprintln(l.out, l.I18n.T("repl.unknown_command", parts[0]))
	}
	return false
}

func (l *Loop) decide(ctx context.Context, d decision) {
	run := l.Orch.Confirm
	if d == decisionCancel {
		run = l.Orch.Cancel
	}
	msg, err := run(ctx)
	if err != nil {
		l.printError(err)
		return
	}
	l.printMessage(msg)
}

// voiceTurn 运行一次语音回合并回显转写文本，若生成了语音回复则提示文件位置
// voiceTurn runs one audio turn, echoes the transcript and points at any spoken reply
func (l *Loop) voiceTurn(run func() (chat.Message, error)) {
	lastSpoken := ""
	if l.Speaker != nil {
		lastSpoken = l.Speaker.LastPath()
	}
	msg, err := run()
	if err != nil {
		l.printError(err)
		return
	}
	if msg.ID == "" {
		// 空录音被视为取消 / an empty clip counts as backing out
		return
	}
	if transcript := l.lastVoiceTranscript(); transcript != "" {
		fmt.Fprintln(l.out, l.theme.User.Render(l.I18n.T("reply.voice_transcript", transcript)))
	}
	l.printMessage(msg)
	if l.Speaker != nil {
		if path := l.Speaker.LastPath(); path != "" && path != lastSpoken {
			fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.spoken", path)))
		}
	}
}

func (l *Loop) lastVoiceTranscript() string {
	msgs := l.Orch.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleUser {
			if !msgs[i].Audio {
				return ""
			}
			return msgs[i].Content
		}
	}
	return ""
}

func (l *Loop) printMessage(msg chat.Message) {
	if msg.Role == chat.RoleUser {
		fmt.Fprintf(l.out, "%s %s\n", l.theme.User.Render(l.I18n.T("repl.you")+":"), msg.Content)
		return
	}
	fmt.Fprintf(l.out, "%s %s\n", l.theme.Assistant.Render(l.AssistantName+":"), msg.Content)
	if msg.Pending != nil && l.Orch.State().Pending != nil {
		fmt.Fprintln(l.out, l.theme.Pending.Render(l.I18n.T("repl.pending")))
	}
}

func (l *Loop) printError(err error) {
	switch {
	case errors.Is(err, orchestrator.ErrNothingPending):
		fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.nothing_pending")))
	case errors.Is(err, orchestrator.ErrBusy):
		fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.busy")))
	case errors.Is(err, orchestrator.ErrNotCapturing):
		fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.not_recording")))
	case errors.Is(err, orchestrator.ErrNoRecorder), errors.Is(err, voice.ErrNoSource):
		fmt.Fprintln(l.out, l.theme.Muted.Render(l.I18n.T("repl.no_recorder")))
	default:
		l.log.Warn().Err(err).Msg("repl command failed")
		fmt.Fprintln(l.out, l.theme.Error.Render(l.I18n.T("repl.error", err.Error())))
	}
}
