package executor

import (
	"context"
	"fmt"
	"strings"

	"taskvoice/internal/command"
	"taskvoice/internal/domain"
)

// findTask resolves by id first, then by the first case-insensitive title
// substring match in list order. First match, not best match.
func (e *Executor) findTask(ctx context.Context, p command.Params) (domain.Task, error) {
	tasks, err := e.tasks.ListTasks(ctx)
	if err != nil {
		return domain.Task{}, fmt.Errorf("list tasks: %w", err)
	}
	if id := p.TaskID.Int(); id > 0 {
		for _, t := range tasks {
			if t.ID == id {
				return t, nil
			}
		}
	}
	if q := normalizeTitle(p.Title); q != "" {
		for _, t := range tasks {
			if strings.Contains(normalizeTitle(t.Title), q) {
				return t, nil
			}
		}
	}
	return domain.Task{}, fmt.Errorf("%w: task %s", ErrNotFound, describe(p.Title, p.TaskID))
}

func (e *Executor) findMission(ctx context.Context, p command.Params) (domain.Mission, error) {
	missions, err := e.missions.ListMissions(ctx)
	if err != nil {
		return domain.Mission{}, fmt.Errorf("list missions: %w", err)
	}
	if id := p.MissionID.Int(); id > 0 {
		for _, m := range missions {
			if m.ID == id {
				return m, nil
			}
		}
	}
	if q := normalizeTitle(p.Title); q != "" {
		for _, m := range missions {
			if strings.Contains(normalizeTitle(m.Title), q) {
				return m, nil
			}
		}
	}
	return domain.Mission{}, fmt.Errorf("%w: mission %s", ErrNotFound, describe(p.Title, p.MissionID))
}

func normalizeTitle(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func describe(title string, id command.FlexInt) string {
	if t := strings.TrimSpace(title); t != "" {
		return fmt.Sprintf("%q", t)
	}
	return fmt.Sprintf("#%d", id)
}
