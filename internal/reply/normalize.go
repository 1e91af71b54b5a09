package reply

import (
	"taskvoice/internal/command"
)

type alias struct {
	from, to string
}

// 模型常见的键名漂移，按优先级排列：同一目标键先出现者胜出
// key drift models commonly produce, in priority order: the first alias present wins
var topLevelAliases = []alias{
	{"pending_action", "pending_command"},
	{"pendingCommand", "pending_command"},
	{"pending", "pending_command"},
	{"command", "pending_command"},
	{"reply", "message"},
	{"response", "message"},
	{"text", "message"},
	{"user_transcript", "transcript"},
	{"userTranscript", "transcript"},
}

var commandAliases = []alias{
	{"parameters", "params"},
	{"arguments", "params"},
	{"args", "params"},
	{"confirmation_message", "confirmationMessage"},
	{"confirmation", "confirmationMessage"},
	{"intent", "action"},
	{"type", "action"},
}

var paramAliases = []alias{
	{"task_id", "taskId"},
	{"taskID", "taskId"},
	{"mission_id", "missionId"},
	{"missionID", "missionId"},
	{"duration_minutes", "duration"},
	{"durationMinutes", "duration"},
	{"name", "title"},
	{"details", "description"},
}

// fields that belong in params when a model flattens them into the command
var paramFields = []string{
	"title", "description", "date", "time", "duration",
	"taskId", "missionId", "id",
	"task_id", "mission_id", "duration_minutes", "durationMinutes",
}

func normalizeDocument(doc map[string]any) {
	renameKeys(doc, topLevelAliases)
	if msg, ok := doc["message"]; ok {
		if _, isString := msg.(string); !isString && msg != nil {
			delete(doc, "message")
		}
	}
	if t, ok := doc["transcript"]; ok {
		if _, isString := t.(string); !isString {
			delete(doc, "transcript")
		}
	}

	pending, ok := doc["pending_command"]
	if !ok || pending == nil {
		return
	}
	cmd, ok := pending.(map[string]any)
	if !ok {
		// e.g. "pending_command": "CREATE_TASK"
		delete(doc, "pending_command")
		return
	}
	normalizeCommand(cmd)
}

func normalizeCommand(cmd map[string]any) {
	renameKeys(cmd, commandAliases)

	params, _ := cmd["params"].(map[string]any)
	if params == nil {
		params = map[string]any{}
	}
	for _, field := range paramFields {
		if v, ok := cmd[field]; ok {
			if _, exists := params[field]; !exists {
				params[field] = v
			}
			delete(cmd, field)
		}
	}
	renameKeys(params, paramAliases)

	if id, ok := params["id"]; ok {
		action := command.ActionUnknown
		if s, isString := cmd["action"].(string); isString {
			action = command.ParseAction(s)
		}
		switch {
		case action.TargetsMission():
			setIfAbsent(params, "missionId", id)
		case action.TargetsTask():
			setIfAbsent(params, "taskId", id)
		}
		delete(params, "id")
	}
	cmd["params"] = params
}

// renameKeys moves aliased keys to their canonical name unless the canonical key is already set.
func renameKeys(m map[string]any, aliases []alias) {
	for _, a := range aliases {
		v, ok := m[a.from]
		if !ok {
			continue
		}
		delete(m, a.from)
		setIfAbsent(m, a.to, v)
	}
}

func setIfAbsent(m map[string]any, key string, v any) {
	if existing, ok := m[key]; ok && existing != nil {
		return
	}
	m[key] = v
}
