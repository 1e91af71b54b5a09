package repl

import "strings"

type decision int

const (
	decisionConfirm decision = iota
	decisionCancel
)

// parseConfirmation recognises a bare yes/no answer in English, Chinese or Portuguese.
// Anything else is a new message for the assistant.
func parseConfirmation(input string) (decision, bool) {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.TrimRight(s, ".!。！ ")
	switch s {
	case "y", "yes", "ok", "okay", "sure", "confirm", "sim", "是", "好", "好的", "确认", "可以":
		return decisionConfirm, true
	case "n", "no", "nope", "cancel", "não", "nao", "不", "不要", "取消", "算了":
		return decisionCancel, true
	default:
		return decisionConfirm, false
	}
}
