package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskvoice/internal/chat"
	"taskvoice/internal/command"
	"taskvoice/internal/executor"
)

var ackKeys = map[command.Action]string{
	command.ActionCreateTask:      "ack.create_task",
	command.ActionUpdateTask:      "ack.update_task",
	command.ActionDeleteTask:      "ack.delete_task",
	command.ActionCreateMission:   "ack.create_mission",
	command.ActionUpdateMission:   "ack.update_mission",
	command.ActionDeleteMission:   "ack.delete_mission",
	command.ActionCompleteMission: "ack.complete_mission",
}

// Confirm 执行等待确认的命令，并追加一条确认或失败消息
// Confirm executes the held command and appends an acknowledgement or failure message
func (o *Orchestrator) Confirm(ctx context.Context) (chat.Message, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	p, ok := o.gate.Take()
	if !ok {
		o.mu.Unlock()
		return chat.Message{}, ErrNothingPending
	}
	o.processing = true
	o.lastErr = nil
	o.mu.Unlock()
	o.metrics.RecordGate("confirm")
	o.metrics.SetPending(false)

	res, err := o.exec.Execute(ctx, p, o.now())
	var text string
	switch {
	case err == nil:
		text = o.acknowledge(p, res)
		o.metrics.RecordCommand(string(p.Action), "ok")
	case errors.Is(err, executor.ErrNotFound):
		text = o.i18n.T("ack.not_found", describeTarget(p))
		o.metrics.RecordCommand(string(p.Action), "not_found")
	default:
		text = o.i18n.T("ack.failed", failureReason(err))
		o.metrics.RecordCommand(string(p.Action), "error")
	}
	if err != nil {
		o.setLastError(err)
	}

	msg := chat.NewMessage(chat.RoleAssistant, text, o.now())
	o.appendMessage(ctx, msg)

	o.mu.Lock()
	o.processing = false
	o.mu.Unlock()
	o.notify()
	return msg, nil
}

// Cancel drops the held command without running it. ErrBusy while a turn
// is processing, since that turn may be about to offer a new command.
func (o *Orchestrator) Cancel(ctx context.Context) (chat.Message, error) {
	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return chat.Message{}, ErrBusy
	}
	_, ok := o.gate.Cancel()
	o.mu.Unlock()
	if !ok {
		return chat.Message{}, ErrNothingPending
	}
	o.metrics.RecordGate("cancel")
	o.metrics.SetPending(false)

	msg := chat.NewMessage(chat.RoleAssistant, o.i18n.T("ack.cancelled"), o.now())
	o.appendMessage(ctx, msg)
	o.notify()
	return msg, nil
}

func (o *Orchestrator) acknowledge(p command.Pending, res executor.Result) string {
	key, ok := ackKeys[p.Action]
	if !ok {
		if msg := strings.TrimSpace(res.Message); msg != "" {
			return msg
		}
		return o.i18n.T("ack.done")
	}
	title := res.Title()
	if title == "" {
		title = strings.TrimSpace(p.Params.Title)
	}
	return o.i18n.T(key, title)
}

// describeTarget names what the user asked for, e.g. `"gym"` or `#12`.
func describeTarget(p command.Pending) string {
	if title := strings.TrimSpace(p.Params.Title); title != "" {
		return fmt.Sprintf("%q", title)
	}
	id := p.Params.TaskID.Int()
	if p.Action.TargetsMission() {
		id = p.Params.MissionID.Int()
	}
	return fmt.Sprintf("#%d", id)
}

func failureReason(err error) string {
	var verr *command.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	return err.Error()
}
