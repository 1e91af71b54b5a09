package storage

import (
	"context"

	"taskvoice/internal/chat"
	"taskvoice/internal/domain"
)

// Store 持久化接口：任务、目标、用户资料与会话记录
// Store is the persistence interface: tasks, missions, profile and conversation log
type Store interface {
	domain.TaskRepository
	domain.MissionRepository
	domain.ProfileStore

	AppendMessage(ctx context.Context, msg chat.Message) error
	UpdateMessageContent(ctx context.Context, id, content string) error
	LoadMessages(ctx context.Context, limit int) ([]chat.Message, error)
	ClearMessages(ctx context.Context) error

	Close() error
}

var _ Store = (*SQLiteStore)(nil)
