package storage

import (
	"context"
	"fmt"
	"strings"

	"taskvoice/internal/domain"
)

// ListMissions returns open missions first, each group by deadline.
func (s *SQLiteStore) ListMissions(ctx context.Context) ([]domain.Mission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, deadline, completed, completed_at, created_at
		FROM missions ORDER BY completed, deadline, id`)
	if err != nil {
		return nil, fmt.Errorf("query missions: %w", err)
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		var (
			m                                domain.Mission
			completed                        int
			deadline, completedAt, createdAt string
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &deadline, &completed, &completedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan mission: %w", err)
		}
		m.Deadline = parseTime(deadline)
		m.Completed = completed != 0
		if t := parseTime(completedAt); !t.IsZero() {
			m.CompletedAt = &t
		}
		m.CreatedAt = parseTime(createdAt)
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

func (s *SQLiteStore) CreateMission(ctx context.Context, mission domain.Mission) (domain.Mission, error) {
	mission.Title = strings.TrimSpace(mission.Title)
	if mission.Title == "" {
		return domain.Mission{}, fmt.Errorf("mission title is empty")
	}
	if mission.CreatedAt.IsZero() {
		mission.CreatedAt = s.now()
	}
	completedAt := ""
	if mission.CompletedAt != nil {
		completedAt = formatTime(*mission.CompletedAt)
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO missions (title, description, deadline, completed, completed_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		mission.Title, mission.Description, formatTime(mission.Deadline), boolToInt(mission.Completed), completedAt, formatTime(mission.CreatedAt))
	if err != nil {
		return domain.Mission{}, fmt.Errorf("insert mission: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Mission{}, fmt.Errorf("mission id: %w", err)
	}
	mission.ID = id
	return mission, nil
}

func (s *SQLiteStore) UpdateMission(ctx context.Context, mission domain.Mission) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE missions SET title=?, description=?, deadline=? WHERE id=?`,
		mission.Title, mission.Description, formatTime(mission.Deadline), mission.ID)
	if err != nil {
		return fmt.Errorf("update mission %d: %w", mission.ID, err)
	}
	return requireAffected(res, "mission", mission.ID)
}

func (s *SQLiteStore) DeleteMission(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM missions WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete mission %d: %w", id, err)
	}
	return requireAffected(res, "mission", id)
}

// SetMissionStatus 标记完成或重新打开；完成时间随状态一起写入
// SetMissionStatus marks a mission done or reopens it, stamping completed_at accordingly
func (s *SQLiteStore) SetMissionStatus(ctx context.Context, id int64, completed bool) error {
	completedAt := ""
	if completed {
		completedAt = s.nowUTC()
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE missions SET completed=?, completed_at=? WHERE id=?`,
		boolToInt(completed), completedAt, id)
	if err != nil {
		return fmt.Errorf("set mission %d status: %w", id, err)
	}
	return requireAffected(res, "mission", id)
}
