package chat

import (
	"time"

	"taskvoice/internal/command"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message 会话中的一条消息，按追加顺序构成历史
// Message is one entry of the append-only conversation history
type Message struct {
	ID        string           `json:"id"`
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Pending   *command.Pending `json:"pending,omitempty"`
	Audio     bool             `json:"audio,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func NewMessage(role Role, content string, now time.Time) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}
}

// Clone copies the message including its pending command.
func (m Message) Clone() Message {
	if m.Pending != nil {
		m.Pending = m.Pending.Clone()
	}
	return m
}

// CloneAll copies a history slice so callers never share backing arrays.
func CloneAll(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, m := range messages {
		out[i] = m.Clone()
	}
	return out
}
