package command

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalid = errors.New("invalid command")

// ValidationError names the action that failed and why.
type ValidationError struct {
	Action Action
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s command: %s", e.Action, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Validate 检查命令是否具备执行所需的最少参数，不修改输入
// Validate checks that a command carries the minimum parameters needed to execute; it never mutates
func Validate(p Pending) error {
	hasTitle := strings.TrimSpace(p.Params.Title) != ""
	switch p.Action {
	case ActionCreateTask, ActionCreateMission:
		if !hasTitle {
			return &ValidationError{Action: p.Action, Reason: "title is required"}
		}
	case ActionDeleteTask, ActionUpdateTask:
		if !hasTitle && p.Params.TaskID <= 0 {
			return &ValidationError{Action: p.Action, Reason: "title or task id is required"}
		}
	case ActionDeleteMission, ActionUpdateMission, ActionCompleteMission:
		if !hasTitle && p.Params.MissionID <= 0 {
			return &ValidationError{Action: p.Action, Reason: "title or mission id is required"}
		}
	}
	return nil
}
