package reply

import (
	"testing"

	"taskvoice/internal/command"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Reply
	}{
		{
			name: "plain json",
			raw:  `{"message":"Hi there","pending_command":null}`,
			want: Reply{Message: "Hi there", Structured: true},
		},
		{
			name: "no braces falls back to raw text",
			raw:  "  Sure, what time works for you?  ",
			want: Reply{Message: "Sure, what time works for you?"},
		},
		{
			name: "code fence and prose are stripped",
			raw: "Here you go:\n```json\n" +
				`{"message":"Create gym at 18:00?","pending_command":{"action":"CREATE_TASK","params":{"title":"Gym","date":"05/03/2026","time":"18:00","duration":90},"confirmationMessage":"Create gym at 18:00?"}}` +
				"\n```\nAnything else?",
			want: Reply{
				Message: "Create gym at 18:00?",
				Pending: &command.Pending{
					Action:              command.ActionCreateTask,
					Params:              command.Params{Title: "Gym", Date: "05/03/2026", Time: "18:00", Duration: 90},
					ConfirmationMessage: "Create gym at 18:00?",
				},
				Structured: true,
			},
		},
		{
			name: "truncated object gets closing braces",
			raw:  `{"message":"Delete it?","pending_command":{"action":"DELETE_TASK","params":{"title":"Gym"}`,
			want: Reply{
				Message: "Delete it?",
				Pending: &command.Pending{
					Action:              command.ActionDeleteTask,
					Params:              command.Params{Title: "Gym"},
					ConfirmationMessage: "Delete it?",
				},
				Structured: true,
			},
		},
		{
			name: "braces inside strings are not counted",
			raw:  `{"message":"use {curly} braces","pending_command":{"action":"CHAT","params":{}}`,
			want: Reply{
				Message: "use {curly} braces",
				Pending: &command.Pending{
					Action:              command.ActionChat,
					ConfirmationMessage: "use {curly} braces",
				},
				Structured: true,
			},
		},
		{
			name: "snake case ids and bare id are normalized",
			raw:  `{"message":"Finish?","pendingCommand":{"action":"COMPLETE_MISSION","parameters":{"id":"12"},"confirmation_message":"Mark thesis done?"}}`,
			want: Reply{
				Message: "Finish?",
				Pending: &command.Pending{
					Action:              command.ActionCompleteMission,
					Params:              command.Params{MissionID: 12},
					ConfirmationMessage: "Mark thesis done?",
				},
				Structured: true,
			},
		},
		{
			name: "bare id on a task action becomes taskId",
			raw:  `{"message":"ok","pending_command":{"action":"DELETE_TASK","params":{"id":4,"task_id":7}}}`,
			want: Reply{
				Message: "ok",
				Pending: &command.Pending{
					Action:              command.ActionDeleteTask,
					Params:              command.Params{TaskID: 7},
					ConfirmationMessage: "ok",
				},
				Structured: true,
			},
		},
		{
			name: "flattened params are lifted",
			raw:  `{"message":"Add?","pending_command":{"action":"CREATE_MISSION","title":"Thesis","date":"30/06/2026"}}`,
			want: Reply{
				Message: "Add?",
				Pending: &command.Pending{
					Action:              command.ActionCreateMission,
					Params:              command.Params{Title: "Thesis", Date: "30/06/2026"},
					ConfirmationMessage: "Add?",
				},
				Structured: true,
			},
		},
		{
			name: "blank message uses confirmation message",
			raw:  `{"message":"","pending_command":{"action":"DELETE_MISSION","params":{"mission_id":3},"confirmationMessage":"Delete mission 3?"}}`,
			want: Reply{
				Message: "Delete mission 3?",
				Pending: &command.Pending{
					Action:              command.ActionDeleteMission,
					Params:              command.Params{MissionID: 3},
					ConfirmationMessage: "Delete mission 3?",
				},
				Structured: true,
			},
		},
		{
			name: "blank message and no pending falls back to raw",
			raw:  `{"message":"   "}`,
			want: Reply{Message: `{"message":"   "}`, Structured: true},
		},
		{
			name: "unknown action decodes to UNKNOWN",
			raw:  `{"message":"hmm","pending_command":{"action":"TELEPORT","params":{"title":"x"}}}`,
			want: Reply{
				Message: "hmm",
				Pending: &command.Pending{
					Action:              command.ActionUnknown,
					Params:              command.Params{Title: "x"},
					ConfirmationMessage: "hmm",
				},
				Structured: true,
			},
		},
		{
			name: "garbage between braces falls back",
			raw:  `I think {this is not json} honestly`,
			want: Reply{Message: `I think {this is not json} honestly`},
		},
		{
			name: "wrong field type falls back",
			raw:  `{"message":"x","pending_command":{"action":"CREATE_TASK","params":{"title":["a"]}}}`,
			want: Reply{Message: `{"message":"x","pending_command":{"action":"CREATE_TASK","params":{"title":["a"]}}}`},
		},
		{
			name: "transcript is carried",
			raw:  `{"message":"Noted","transcript":"remind me to call mom","pending_command":null}`,
			want: Reply{Message: "Noted", Transcript: "remind me to call mom", Structured: true},
		},
		{
			name: "string pending command is dropped",
			raw:  `{"message":"ok","pending_command":"CREATE_TASK"}`,
			want: Reply{Message: "ok", Structured: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseCollidingAliasesAreStable(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		message string
		action  command.Action
	}{
		{"reply beats text", `{"text":"A","reply":"B"}`, "B", ""},
		{"canonical beats aliases", `{"response":"A","message":"M","text":"C"}`, "M", ""},
		{
			name:    "intent beats type",
			raw:     `{"message":"ok","command":{"type":"DELETE_TASK","intent":"CREATE_TASK","params":{"title":"gym"}}}`,
			message: "ok",
			action:  command.ActionCreateTask,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 100; i++ {
				got := Parse(tt.raw)
				if got.Message != tt.message {
					t.Fatalf("run %d: Message=%q, want %q", i, got.Message, tt.message)
				}
				if tt.action == "" {
					continue
				}
				if got.Pending == nil || got.Pending.Action != tt.action {
					t.Fatalf("run %d: Pending=%+v, want action %s", i, got.Pending, tt.action)
				}
			}
		})
	}
}

func TestCloseTruncated(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{`{"a":{"b":1}`, `{"a":{"b":1}}`},
		{`{"a":"}"`, `{"a":"}"}`},
		{`{"a":{"b":"x}`, `{"a":{"b":"x}"}}`},
		{`{"a":"q\"}`, `{"a":"q\"}"}`},
	}
	for _, tt := range tests {
		if got := closeTruncated(tt.in); got != tt.want {
			t.Errorf("closeTruncated(%q)=%q, want %q", tt.in, got, tt.want)
		}
	}
}
