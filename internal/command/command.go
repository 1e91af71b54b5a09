package command

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Action 模型可以提出的动作种类（封闭集合）
// Action is the closed set of actions the model may propose
type Action string

const (
	ActionCreateTask      Action = "CREATE_TASK"
	ActionDeleteTask      Action = "DELETE_TASK"
	ActionUpdateTask      Action = "UPDATE_TASK"
	ActionCreateMission   Action = "CREATE_MISSION"
	ActionDeleteMission   Action = "DELETE_MISSION"
	ActionUpdateMission   Action = "UPDATE_MISSION"
	ActionCompleteMission Action = "COMPLETE_MISSION"
	ActionQuery           Action = "QUERY"
	ActionChat            Action = "CHAT"
	ActionUnknown         Action = "UNKNOWN"
)

var allActions = []Action{
	ActionCreateTask,
	ActionDeleteTask,
	ActionUpdateTask,
	ActionCreateMission,
	ActionDeleteMission,
	ActionUpdateMission,
	ActionCompleteMission,
	ActionQuery,
	ActionChat,
	ActionUnknown,
}

// Actions returns every action identifier in prompt order.
func Actions() []Action {
	return append([]Action(nil), allActions...)
}

// ParseAction maps free text onto the closed set; anything unrecognized is ActionUnknown.
func ParseAction(s string) Action {
	norm := strings.ToUpper(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for _, a := range allActions {
		if Action(norm) == a {
			return a
		}
	}
	return ActionUnknown
}

// UnmarshalJSON 未知或非字符串的动作解码为 UNKNOWN，从不报错
// UnmarshalJSON decodes unknown or non-string actions to UNKNOWN and never fails
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*a = ActionUnknown
		return nil
	}
	*a = ParseAction(s)
	return nil
}

// IsMutating reports whether executing the action changes stored tasks or missions.
func (a Action) IsMutating() bool {
	switch a {
	case ActionCreateTask, ActionDeleteTask, ActionUpdateTask,
		ActionCreateMission, ActionDeleteMission, ActionUpdateMission, ActionCompleteMission:
		return true
	}
	return false
}

func (a Action) TargetsTask() bool {
	return a == ActionCreateTask || a == ActionDeleteTask || a == ActionUpdateTask
}

func (a Action) TargetsMission() bool {
	return a == ActionCreateMission || a == ActionDeleteMission ||
		a == ActionUpdateMission || a == ActionCompleteMission
}

// FlexInt accepts a JSON number or a numeric string ("12", "#12", "45 min").
// Values that cannot be read as a number decode to zero.
type FlexInt int64

func (n *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*n = 0
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*n = FlexInt(leadingInt(s))
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = FlexInt(int64(f))
	return nil
}

func (n FlexInt) Int() int64 { return int64(n) }

func leadingInt(s string) int64 {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Params 命令参数，所有字段可选
// Params carries command arguments; every field is optional
type Params struct {
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date,omitempty"`
	Time        string  `json:"time,omitempty"`
	Duration    FlexInt `json:"duration,omitempty"`
	TaskID      FlexInt `json:"taskId,omitempty"`
	MissionID   FlexInt `json:"missionId,omitempty"`
}

// Pending is a model-proposed command awaiting user confirmation.
type Pending struct {
	Action              Action `json:"action"`
	Params              Params `json:"params"`
	ConfirmationMessage string `json:"confirmationMessage,omitempty"`
}

// Clone returns a pointer to a copy, so callers cannot alias gate state.
func (p Pending) Clone() *Pending {
	cp := p
	return &cp
}
