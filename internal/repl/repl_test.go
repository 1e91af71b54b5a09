package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"taskvoice/internal/bootstrap"
	"taskvoice/internal/config"
	"taskvoice/internal/contextmgr"
	"taskvoice/internal/domain"
	"taskvoice/internal/i18n"
	"taskvoice/internal/provider"
)

const createGymReply = `{"message":"Add Gym on 03/03/2026 at 18:00?","pending_command":{"action":"CREATE_TASK","params":{"title":"Gym","date":"03/03/2026","time":"18:00","duration":90}}}`

type scriptedBackend struct {
	replies []string
	calls   int
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Send(_ context.Context, _ provider.Request) (provider.Response, error) {
	if b.calls >= len(b.replies) {
		return provider.Response{}, fmt.Errorf("no scripted reply left")
	}
	r := b.replies[b.calls]
	b.calls++
	return provider.Response{Text: r}, nil
}

func newTestLoop(t *testing.T, replies []string, input string) (*Loop, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	cfg := config.Default()
	cfg.Storage.BaseDir = filepath.Join(t.TempDir(), "data")
	cfg.Locale = "en"
	cfg.Provider.OpenAI.APIKey = ""
	res, err := bootstrap.Build(context.Background(), cfg, zerolog.Nop(), bootstrap.BuildOptions{
		Backend:   &scriptedBackend{replies: replies},
		Tokenizer: contextmgr.HeuristicTokenizer(),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { res.Store.Close() })
	var out bytes.Buffer
	return NewLoop(res, NewBasicLineInput(strings.NewReader(input), io.Discard), &out, zerolog.Nop()), &out
}

func TestLoop_BareYesAnswersPending(t *testing.T) {
	loop, out := newTestLoop(t, []string{createGymReply, `{"message":"Okay."}`}, "gym\nyes\nno\n/exit\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	for _, want := range []string{
		"Waiting for confirmation",
		`Done! Task "Gym" was created.`,
		"Tempo: Okay.",
		"Bye!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	tasks, err := loop.Store.ListTasks(context.Background())
	if err != nil || len(tasks) != 1 {
		t.Fatalf("want one task, got %d (%v)", len(tasks), err)
	}
}

func TestLoop_NoCancelsPending(t *testing.T) {
	loop, out := newTestLoop(t, []string{createGymReply}, "gym\n不\n/tasks\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Okay, I cancelled that.") || !strings.Contains(got, "No tasks scheduled.") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestLoop_BackendFailureIsApology(t *testing.T) {
	loop, out := newTestLoop(t, nil, "hello\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Tempo: ") {
		t.Fatalf("expected an assistant reply:\n%s", out.String())
	}
	if st := loop.Orch.State(); st.Processing {
		t.Fatal("loop left the orchestrator processing")
	}
}

func TestLoop_RecordWithoutFile(t *testing.T) {
	loop, out := newTestLoop(t, nil, "/record /no/such/file.wav\n/stop\n")
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "Error: audio source") || !strings.Contains(got, "Not recording.") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestParseConfirmation(t *testing.T) {
	tests := []struct {
		input string
		want  decision
		ok    bool
	}{
		{input: "yes", want: decisionConfirm, ok: true},
		{input: " Y ", want: decisionConfirm, ok: true},
		{input: "ok!", want: decisionConfirm, ok: true},
		{input: "好的。", want: decisionConfirm, ok: true},
		{input: "sim", want: decisionConfirm, ok: true},
		{input: "no", want: decisionCancel, ok: true},
		{input: "取消", want: decisionCancel, ok: true},
		{input: "Não", want: decisionCancel, ok: true},
		{input: "yes but at 7pm", ok: false},
		{input: "", ok: false},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, ok := parseConfirmation(tc.input)
			if ok != tc.ok || (ok && got != tc.want) {
				t.Fatalf("parseConfirmation(%q) = (%v, %v), want (%v, %v)", tc.input, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestWriteTasksPadsWideTitles(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)
	tasks := []domain.Task{
		{ID: 1, Title: "写报告", StartAt: start, DurationMinutes: 30},
		{ID: 2, Title: "Gym", StartAt: start.Add(time.Hour), DurationMinutes: 60},
	}
	WriteTasks(&out, i18n.New("en"), NewTheme(&out), tasks)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %q", lines)
	}
	if lines[0] != "#1  写报告  2026-03-02 09:00  (30 min)" {
		t.Fatalf("line 1: %q", lines[0])
	}
	if lines[1] != "#2  Gym     2026-03-02 10:00  (60 min)" {
		t.Fatalf("line 2: %q", lines[1])
	}
}

func TestWriteMissionsStatus(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var out bytes.Buffer
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.Local)
	missions := []domain.Mission{
		{ID: 1, Title: "Open", Deadline: now.Add(24 * time.Hour)},
		{ID: 2, Title: "Late", Deadline: now.Add(-time.Hour)},
		{ID: 3, Title: "Done", Deadline: now.Add(-time.Hour), Completed: true},
	}
	WriteMissions(&out, i18n.New("en"), NewTheme(&out), missions, now)
	got := out.String()
	for _, want := range []string{"Open  due 2026-03-03 12:00  [open]", "[overdue]", "[done]"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}

	out.Reset()
	WriteMissions(&out, i18n.New("zh-CN"), NewTheme(&out), nil, now)
	if strings.TrimSpace(out.String()) == "" || strings.Contains(out.String(), "No missions") {
		t.Fatalf("expected zh-CN empty message, got %q", out.String())
	}
}

func TestBasicLineInput(t *testing.T) {
	var prompt bytes.Buffer
	in := NewBasicLineInput(strings.NewReader("first\r\nlast"), &prompt)
	line, err := in.ReadLine("> ")
	if err != nil || line != "first" {
		t.Fatalf("got %q, %v", line, err)
	}
	line, err = in.ReadLine("> ")
	if err != nil || line != "last" {
		t.Fatalf("got %q, %v", line, err)
	}
	if _, err := in.ReadLine("> "); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
	if prompt.String() != "> > > " {
		t.Fatalf("unexpected prompts %q", prompt.String())
	}
}
