package reply

import (
	"encoding/json"
	"strings"

	"taskvoice/internal/command"
)

// Reply 模型回复解析后的结构
// Reply is the structured form of a model response
type Reply struct {
	Message string
	Pending *command.Pending
	// Transcript is what the model heard in a voice turn, when it reported it.
	Transcript string
	// Structured is false when the raw text was used verbatim.
	Structured bool
}

type wireReply struct {
	Message    string           `json:"message"`
	Pending    *command.Pending `json:"pending_command"`
	Transcript string           `json:"transcript"`
}

// Parse 从模型自由文本中恢复结构化回复；任何失败都回退为原文，不返回错误
// Parse recovers a structured reply from free model text; every failure falls back to the raw text
func Parse(raw string) Reply {
	trimmed := strings.TrimSpace(raw)
	fallback := Reply{Message: trimmed}

	candidate, ok := extractObject(trimmed)
	if !ok {
		return fallback
	}
	candidate = closeTruncated(candidate)

	var doc map[string]any
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil || doc == nil {
		return fallback
	}
	normalizeDocument(doc)

	data, err := json.Marshal(doc)
	if err != nil {
		return fallback
	}
	var w wireReply
	if err := json.Unmarshal(data, &w); err != nil {
		return fallback
	}

	out := Reply{
		Message:    strings.TrimSpace(w.Message),
		Transcript: strings.TrimSpace(w.Transcript),
		Structured: true,
	}
	if w.Pending != nil {
		p := *w.Pending
		if p.Action == "" {
			p.Action = command.ActionUnknown
		}
		p.ConfirmationMessage = strings.TrimSpace(p.ConfirmationMessage)
		out.Pending = &p
	}
	if out.Message == "" && out.Pending != nil {
		out.Message = out.Pending.ConfirmationMessage
	}
	if out.Message == "" {
		out.Message = trimmed
	}
	if out.Pending != nil && out.Pending.ConfirmationMessage == "" {
		out.Pending.ConfirmationMessage = out.Message
	}
	return out
}

// extractObject returns the span from the first '{' to the last '}'.
func extractObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// closeTruncated closes an unterminated string and appends the closing
// braces a truncated object is missing. Braces inside strings do not count.
func closeTruncated(candidate string) string {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(candidate); i++ {
		c := candidate[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
		}
	}
	if !inString && depth <= 0 {
		return candidate
	}
	var b strings.Builder
	b.WriteString(candidate)
	if inString {
		if escaped {
			b.WriteByte('\\')
		}
		b.WriteByte('"')
	}
	for ; depth > 0; depth-- {
		b.WriteByte('}')
	}
	return b.String()
}
