package storage

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskvoice/internal/domain"
)

// Seed 批量导入的任务与目标 (YAML 或 JSON)
// Seed is a batch of tasks and missions to import (YAML or JSON)
type Seed struct {
	Tasks    []domain.Task    `yaml:"tasks"`
	Missions []domain.Mission `yaml:"missions"`
}

// ImportResult counts what an import wrote and what it skipped as already present.
type ImportResult struct {
	Tasks    int
	Missions int
	Skipped  int
}

// ImportSeedFile 将种子文件导入数据库；标题与时间相同的条目视为已存在
// ImportSeedFile loads a seed file into the store; entries with the same title and time are treated as already imported
func ImportSeedFile(ctx context.Context, path string, store Store) (ImportResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return ImportResult{}, fmt.Errorf("seed path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("read seed: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return ImportResult{}, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return ImportSeed(ctx, seed, store)
}

func ImportSeed(ctx context.Context, seed Seed, store Store) (ImportResult, error) {
	var res ImportResult

	existingTasks, err := store.ListTasks(ctx)
	if err != nil {
		return res, err
	}
	seen := make(map[string]bool, len(existingTasks))
	for _, t := range existingTasks {
		seen[seedKey(t.Title, t.StartAt)] = true
	}
	for _, t := range seed.Tasks {
		if strings.TrimSpace(t.Title) == "" {
			res.Skipped++
			continue
		}
		key := seedKey(t.Title, t.StartAt)
		if seen[key] {
			res.Skipped++
			continue
		}
		t.ID = 0
		if t.DurationMinutes <= 0 {
			t.DurationMinutes = 60
		}
		if _, err := store.CreateTask(ctx, t); err != nil {
			return res, fmt.Errorf("import task %q: %w", t.Title, err)
		}
		seen[key] = true
		res.Tasks++
	}

	existingMissions, err := store.ListMissions(ctx)
	if err != nil {
		return res, err
	}
	seen = make(map[string]bool, len(existingMissions))
	for _, m := range existingMissions {
		seen[seedKey(m.Title, m.Deadline)] = true
	}
	for _, m := range seed.Missions {
		if strings.TrimSpace(m.Title) == "" {
			res.Skipped++
			continue
		}
		key := seedKey(m.Title, m.Deadline)
		if seen[key] {
			res.Skipped++
			continue
		}
		m.ID = 0
		if m.Completed && m.CompletedAt == nil {
			done := m.Deadline
			m.CompletedAt = &done
		}
		if _, err := store.CreateMission(ctx, m); err != nil {
			return res, fmt.Errorf("import mission %q: %w", m.Title, err)
		}
		seen[key] = true
		res.Missions++
	}
	return res, nil
}

func seedKey(title string, at time.Time) string {
	return strings.ToLower(strings.TrimSpace(title)) + "|" + formatTime(at)
}
