package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskvoice/internal/command"
	"taskvoice/internal/domain"

	"github.com/rs/zerolog"
)

// ErrNotFound means no task or mission matched the id or title.
var ErrNotFound = errors.New("no matching item")

// Result 执行结果，供编排器生成确认消息
// Result describes what an executed command changed
type Result struct {
	Action  command.Action
	Task    *domain.Task
	Mission *domain.Mission
	// Message is the assistant text for non-mutating actions.
	Message string
}

// Title returns the title of the affected item, if any.
func (r Result) Title() string {
	switch {
	case r.Task != nil:
		return r.Task.Title
	case r.Mission != nil:
		return r.Mission.Title
	}
	return ""
}

type Executor struct {
	tasks    domain.TaskRepository
	missions domain.MissionRepository
	log      zerolog.Logger
}

func New(tasks domain.TaskRepository, missions domain.MissionRepository, log zerolog.Logger) *Executor {
	return &Executor{
		tasks:    tasks,
		missions: missions,
		log:      log.With().Str("component", "executor").Logger(),
	}
}

// Execute 执行已确认的命令；now 决定默认日期
// Execute runs a confirmed command; now anchors every default date
func (e *Executor) Execute(ctx context.Context, p command.Pending, now time.Time) (Result, error) {
	if err := command.Validate(p); err != nil {
		return Result{}, err
	}
	var (
		res Result
		err error
	)
	switch p.Action {
	case command.ActionCreateTask:
		res, err = e.createTask(ctx, p.Params, now)
	case command.ActionUpdateTask:
		res, err = e.updateTask(ctx, p.Params)
	case command.ActionDeleteTask:
		res, err = e.deleteTask(ctx, p.Params)
	case command.ActionCreateMission:
		res, err = e.createMission(ctx, p.Params, now)
	case command.ActionUpdateMission:
		res, err = e.updateMission(ctx, p.Params)
	case command.ActionDeleteMission:
		res, err = e.deleteMission(ctx, p.Params)
	case command.ActionCompleteMission:
		res, err = e.completeMission(ctx, p.Params, now)
	default:
		res = Result{Message: p.ConfirmationMessage}
	}
	res.Action = p.Action
	if err != nil {
		e.log.Warn().Err(err).Str("action", string(p.Action)).Msg("command failed")
		return res, err
	}
	e.log.Info().Str("action", string(p.Action)).Str("title", res.Title()).Msg("command executed")
	return res, nil
}

func (e *Executor) createTask(ctx context.Context, p command.Params, now time.Time) (Result, error) {
	duration := int(p.Duration)
	if duration <= 0 {
		duration = DefaultDurationMinutes
	}
	task, err := e.tasks.CreateTask(ctx, domain.Task{
		Title:           strings.TrimSpace(p.Title),
		Description:     strings.TrimSpace(p.Description),
		StartAt:         resolveTime(p.Date, p.Time, defaultTaskStart(now)),
		DurationMinutes: duration,
		CreatedAt:       now,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create task: %w", err)
	}
	return Result{Task: &task}, nil
}

func (e *Executor) updateTask(ctx context.Context, p command.Params) (Result, error) {
	task, err := e.findTask(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if p.TaskID > 0 && strings.TrimSpace(p.Title) != "" {
		task.Title = strings.TrimSpace(p.Title)
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		task.Description = d
	}
	task.StartAt = resolveTime(p.Date, p.Time, task.StartAt)
	if p.Duration > 0 {
		task.DurationMinutes = int(p.Duration)
	}
	if err := e.tasks.UpdateTask(ctx, task); err != nil {
		return Result{}, fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return Result{Task: &task}, nil
}

func (e *Executor) deleteTask(ctx context.Context, p command.Params) (Result, error) {
	task, err := e.findTask(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if err := e.tasks.DeleteTask(ctx, task.ID); err != nil {
		return Result{}, notFoundOr(fmt.Errorf("delete task %d: %w", task.ID, err))
	}
	return Result{Task: &task}, nil
}

func (e *Executor) createMission(ctx context.Context, p command.Params, now time.Time) (Result, error) {
	mission, err := e.missions.CreateMission(ctx, domain.Mission{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		Deadline:    resolveTime(p.Date, p.Time, defaultMissionDeadline(now)),
		CreatedAt:   now,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create mission: %w", err)
	}
	return Result{Mission: &mission}, nil
}

func (e *Executor) updateMission(ctx context.Context, p command.Params) (Result, error) {
	mission, err := e.findMission(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if p.MissionID > 0 && strings.TrimSpace(p.Title) != "" {
		mission.Title = strings.TrimSpace(p.Title)
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		mission.Description = d
	}
	mission.Deadline = resolveTime(p.Date, p.Time, mission.Deadline)
	if err := e.missions.UpdateMission(ctx, mission); err != nil {
		return Result{}, fmt.Errorf("update mission %d: %w", mission.ID, err)
	}
	return Result{Mission: &mission}, nil
}

func (e *Executor) deleteMission(ctx context.Context, p command.Params) (Result, error) {
	mission, err := e.findMission(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if err := e.missions.DeleteMission(ctx, mission.ID); err != nil {
		return Result{}, notFoundOr(fmt.Errorf("delete mission %d: %w", mission.ID, err))
	}
	return Result{Mission: &mission}, nil
}

func (e *Executor) completeMission(ctx context.Context, p command.Params, now time.Time) (Result, error) {
	mission, err := e.findMission(ctx, p)
	if err != nil {
		return Result{}, err
	}
	if err := e.missions.SetMissionStatus(ctx, mission.ID, true); err != nil {
		return Result{}, notFoundOr(fmt.Errorf("complete mission %d: %w", mission.ID, err))
	}
	mission.Completed = true
	mission.CompletedAt = &now
	return Result{Mission: &mission}, nil
}

func notFoundOr(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
