package contextmgr

import (
	"context"
	"fmt"
	"time"

	"taskvoice/internal/domain"
)

// Snapshot 每轮对话开始时捕获的只读上下文
// Snapshot is the read-only context captured at the start of each turn
type Snapshot struct {
	Profile  domain.Profile
	Tasks    []domain.Task
	Missions []domain.Mission
	Locale   string
	Now      time.Time
}

// Sources groups the collaborators a snapshot reads from.
type Sources struct {
	Tasks    domain.TaskRepository
	Missions domain.MissionRepository
	Profiles domain.ProfileStore
}

// Capture reads the current profile, tasks and missions. Slices are copied
// so later repository writes never show through.
func Capture(ctx context.Context, src Sources, locale string, now time.Time) (Snapshot, error) {
	snap := Snapshot{Locale: locale, Now: now}
	if src.Profiles != nil {
		profile, err := src.Profiles.LoadProfile(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("load profile: %w", err)
		}
		snap.Profile = profile
		if profile.Locale != "" {
			snap.Locale = profile.Locale
		}
	}
	if src.Tasks != nil {
		tasks, err := src.Tasks.ListTasks(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("list tasks: %w", err)
		}
		snap.Tasks = append([]domain.Task(nil), tasks...)
	}
	if src.Missions != nil {
		missions, err := src.Missions.ListMissions(ctx)
		if err != nil {
			return Snapshot{}, fmt.Errorf("list missions: %w", err)
		}
		snap.Missions = append([]domain.Mission(nil), missions...)
	}
	return snap, nil
}
