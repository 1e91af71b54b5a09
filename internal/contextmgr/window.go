package contextmgr

import "taskvoice/internal/chat"

const (
	DefaultHistoryLimit = 10
	DefaultTokenBudget  = 3000
)

// Window 选择送入模型的最近历史：先按条数截断，再按 token 预算丢弃最旧消息
// Window selects the recent history sent to the model: newest Limit entries, then oldest dropped until the token budget fits
type Window struct {
	Limit       int
	TokenBudget int
	Tokenizer   *Tokenizer
}

func NewWindow(limit, tokenBudget int, tok *Tokenizer) Window {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if tokenBudget <= 0 {
		tokenBudget = DefaultTokenBudget
	}
	if tok == nil {
		tok = DefaultTokenizer()
	}
	return Window{Limit: limit, TokenBudget: tokenBudget, Tokenizer: tok}
}

// Apply never returns more than Limit messages and keeps at least the newest one.
func (w Window) Apply(history []chat.Message) []chat.Message {
	limit := w.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	start := 0
	if len(history) > limit {
		start = len(history) - limit
	}
	recent := history[start:]
	if w.Tokenizer == nil || w.TokenBudget <= 0 || len(recent) <= 1 {
		return append([]chat.Message(nil), recent...)
	}

	total := w.Tokenizer.Count(recent)
	for len(recent) > 1 && total > w.TokenBudget {
		total -= w.Tokenizer.CountMessage(recent[0])
		recent = recent[1:]
	}
	return append([]chat.Message(nil), recent...)
}
