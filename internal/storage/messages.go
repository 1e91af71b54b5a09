package storage

import (
	"context"
	"fmt"

	"taskvoice/internal/chat"
)

// AppendMessage 追加一条会话消息；待确认命令只存在于会话内存中，不落盘
// AppendMessage appends one conversation entry; pending commands live only in memory and are never written
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg chat.Message) error {
	created := msg.CreatedAt
	if created.IsZero() {
		created = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, role, content, audio, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, string(msg.Role), msg.Content, boolToInt(msg.Audio), formatTime(created))
	if err != nil {
		return fmt.Errorf("insert message %s: %w", msg.ID, err)
	}
	return nil
}

// UpdateMessageContent rewrites a logged message, e.g. once a transcript is known.
func (s *SQLiteStore) UpdateMessageContent(ctx context.Context, id, content string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE messages SET content=? WHERE id=?`, content, id)
	if err != nil {
		return fmt.Errorf("update message %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("message %s not found", id)
	}
	return nil
}

// LoadMessages returns the newest limit messages in conversation order; limit <= 0 returns all.
func (s *SQLiteStore) LoadMessages(ctx context.Context, limit int) ([]chat.Message, error) {
	query := `SELECT id, role, content, audio, created_at FROM messages ORDER BY seq DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var newestFirst []chat.Message
	for rows.Next() {
		var (
			msg     chat.Message
			role    string
			audio   int
			created string
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &audio, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msg.Role = chat.Role(role)
		msg.Audio = audio != 0
		msg.CreatedAt = parseTime(created)
		newestFirst = append(newestFirst, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]chat.Message, len(newestFirst))
	for i, m := range newestFirst {
		out[len(newestFirst)-1-i] = m
	}
	return out, nil
}

func (s *SQLiteStore) ClearMessages(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	return nil
}
