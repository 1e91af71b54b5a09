package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

// Repeat 任务重复规则
// Repeat is a task recurrence rule
type Repeat string

const (
	RepeatNone   Repeat = ""
	RepeatDaily  Repeat = "daily"
	RepeatWeekly Repeat = "weekly"
)

// Task is a scheduled activity with a start and a duration.
type Task struct {
	ID              int64     `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Description     string    `json:"description,omitempty" yaml:"description,omitempty"`
	StartAt         time.Time `json:"start_at" yaml:"start_at"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	Repeat          Repeat    `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
}

func (t Task) EndAt() time.Time {
	return t.StartAt.Add(time.Duration(t.DurationMinutes) * time.Minute)
}

// Mission is a goal with a deadline and a completion flag.
type Mission struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Deadline    time.Time  `json:"deadline" yaml:"deadline"`
	Completed   bool       `json:"completed" yaml:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"-"`
	CreatedAt   time.Time  `json:"created_at" yaml:"-"`
}

func (m Mission) Overdue(now time.Time) bool {
	return !m.Completed && now.After(m.Deadline)
}

// Profile 用户资料，用于个性化提示词
// Profile is the user's personal data used to personalise prompts
type Profile struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Locale     string `json:"locale"`
}

type TaskRepository interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, task Task) (Task, error)
	UpdateTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, id int64) error
}

type MissionRepository interface {
	ListMissions(ctx context.Context) ([]Mission, error)
	CreateMission(ctx context.Context, mission Mission) (Mission, error)
	UpdateMission(ctx context.Context, mission Mission) error
	DeleteMission(ctx context.Context, id int64) error
	SetMissionStatus(ctx context.Context, id int64, completed bool) error
}

type ProfileStore interface {
	LoadProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, profile Profile) error
}
