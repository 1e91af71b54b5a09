package command

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want Action
	}{
		{"CREATE_TASK", ActionCreateTask},
		{"create_task", ActionCreateTask},
		{" complete-mission ", ActionCompleteMission},
		{"update mission", ActionUpdateMission},
		{"QUERY", ActionQuery},
		{"RESCHEDULE_EVERYTHING", ActionUnknown},
		{"", ActionUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAction(tt.in), "ParseAction(%q)", tt.in)
	}
}

func TestAction_UnmarshalNeverFails(t *testing.T) {
	var p Pending
	err := json.Unmarshal([]byte(`{"action":"FLY_TO_MOON","params":{"title":"x"}}`), &p)
	require.NoError(t, err)
	assert.Equal(t, ActionUnknown, p.Action)

	err = json.Unmarshal([]byte(`{"action":42}`), &p)
	require.NoError(t, err)
	assert.Equal(t, ActionUnknown, p.Action)
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{`12`, 12},
		{`12.9`, 12},
		{`"7"`, 7},
		{`"#31"`, 31},
		{`"45 min"`, 45},
		{`"soon"`, 0},
		{`null`, 0},
		{`true`, 0},
	}
	for _, tt := range tests {
		var n FlexInt
		require.NoError(t, json.Unmarshal([]byte(tt.raw), &n), tt.raw)
		assert.Equal(t, tt.want, n.Int(), tt.raw)
	}
}

func TestAction_IsMutating(t *testing.T) {
	for _, a := range Actions() {
		switch a {
		case ActionQuery, ActionChat, ActionUnknown:
			assert.False(t, a.IsMutating(), a)
		default:
			assert.True(t, a.IsMutating(), a)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     Pending
		wantErr bool
	}{
		{"create task with title", Pending{Action: ActionCreateTask, Params: Params{Title: "Gym"}}, false},
		{"create task blank title", Pending{Action: ActionCreateTask, Params: Params{Title: "   "}}, true},
		{"create mission no title", Pending{Action: ActionCreateMission}, true},
		{"delete task by id", Pending{Action: ActionDeleteTask, Params: Params{TaskID: 3}}, false},
		{"delete task by title", Pending{Action: ActionDeleteTask, Params: Params{Title: "gym"}}, false},
		{"delete task nothing", Pending{Action: ActionDeleteTask}, true},
		{"delete task with mission id only", Pending{Action: ActionDeleteTask, Params: Params{MissionID: 3}}, true},
		{"update task nothing", Pending{Action: ActionUpdateTask, Params: Params{Time: "10:00"}}, true},
		{"complete mission by id", Pending{Action: ActionCompleteMission, Params: Params{MissionID: 9}}, false},
		{"complete mission nothing", Pending{Action: ActionCompleteMission}, true},
		{"delete mission negative id", Pending{Action: ActionDeleteMission, Params: Params{MissionID: -1}}, true},
		{"update mission by title", Pending{Action: ActionUpdateMission, Params: Params{Title: "thesis"}}, false},
		{"query always passes", Pending{Action: ActionQuery}, false},
		{"chat always passes", Pending{Action: ActionChat}, false},
		{"unknown always passes", Pending{Action: ActionUnknown}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.cmd
			err := Validate(tt.cmd)
			assert.Equal(t, before, tt.cmd)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.cmd.Action, verr.Action)
		})
	}
}
