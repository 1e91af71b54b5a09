package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskvoice/internal/chat"
	"taskvoice/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteStore("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestSQLiteStore_TaskCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	start := time.Date(2026, 3, 5, 18, 0, 0, 0, time.UTC)

	created, err := store.CreateTask(ctx, domain.Task{Title: " Gym ", StartAt: start, DurationMinutes: 45})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == 0 || created.Title != "Gym" {
		t.Fatalf("created=%+v", created)
	}

	// Earlier task sorts first
	if _, err := store.CreateTask(ctx, domain.Task{Title: "Standup", StartAt: start.Add(-8 * time.Hour), DurationMinutes: 15}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	tasks, err := store.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || tasks[0].Title != "Standup" || tasks[1].Title != "Gym" {
		t.Fatalf("tasks=%+v", tasks)
	}
	if !tasks[1].StartAt.Equal(start) || tasks[1].DurationMinutes != 45 {
		t.Fatalf("gym=%+v", tasks[1])
	}

	created.Title = "Gym session"
	created.DurationMinutes = 90
	created.Repeat = domain.RepeatWeekly
	if err := store.UpdateTask(ctx, created); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	got, err := store.GetTask(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Gym session" || got.DurationMinutes != 90 || got.Repeat != domain.RepeatWeekly {
		t.Fatalf("updated=%+v", got)
	}

	if err := store.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := store.DeleteTask(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete err=%v, want ErrNotFound", err)
	}
	if _, err := store.GetTask(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("GetTask err=%v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_CreateTaskRequiresTitle(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.CreateTask(context.Background(), domain.Task{Title: "   "}); err == nil {
		t.Fatalf("expected error for blank title")
	}
}

func TestSQLiteStore_MissionLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	deadline := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	report, err := store.CreateMission(ctx, domain.Mission{Title: "Report", Deadline: deadline})
	if err != nil {
		t.Fatalf("CreateMission: %v", err)
	}
	if _, err := store.CreateMission(ctx, domain.Mission{Title: "Taxes", Deadline: deadline.AddDate(0, 1, 0)}); err != nil {
		t.Fatalf("CreateMission: %v", err)
	}

	if err := store.SetMissionStatus(ctx, report.ID, true); err != nil {
		t.Fatalf("SetMissionStatus: %v", err)
	}
	missions, err := store.ListMissions(ctx)
	if err != nil {
		t.Fatalf("ListMissions: %v", err)
	}
	// Open missions come before completed ones
	if len(missions) != 2 || missions[0].Title != "Taxes" || missions[1].Title != "Report" {
		t.Fatalf("missions=%+v", missions)
	}
	done := missions[1]
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(fixed) {
		t.Fatalf("completed mission=%+v", done)
	}

	if err := store.SetMissionStatus(ctx, report.ID, false); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	report.Title = "Quarterly report"
	if err := store.UpdateMission(ctx, report); err != nil {
		t.Fatalf("UpdateMission: %v", err)
	}
	missions, _ = store.ListMissions(ctx)
	if missions[0].Title != "Quarterly report" || missions[0].Completed || missions[0].CompletedAt != nil {
		t.Fatalf("reopened=%+v", missions[0])
	}

	if err := store.SetMissionStatus(ctx, 999, true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
	if err := store.DeleteMission(ctx, report.ID); err != nil {
		t.Fatalf("DeleteMission: %v", err)
	}
	if err := store.UpdateMission(ctx, report); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err=%v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_Profile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	empty, err := store.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if empty != (domain.Profile{}) {
		t.Fatalf("expected empty profile, got %+v", empty)
	}

	want := domain.Profile{Name: "Ana", Occupation: "nurse", Locale: "zh-CN"}
	if err := store.SaveProfile(ctx, want); err != nil {
		t.Fatalf("SaveProfile: %v", err)
	}
	want.Occupation = "doctor"
	if err := store.SaveProfile(ctx, want); err != nil {
		t.Fatalf("SaveProfile overwrite: %v", err)
	}
	got, err := store.LoadProfile(ctx)
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if got != want {
		t.Fatalf("profile=%+v, want %+v", got, want)
	}
}

func TestSQLiteStore_Messages(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	var ids []string
	for i, text := range []string{"one", "two", "three", "four"} {
		role := chat.RoleUser
		if i%2 == 1 {
			role = chat.RoleAssistant
		}
		msg := chat.NewMessage(role, text, base.Add(time.Duration(i)*time.Minute))
		ids = append(ids, msg.ID)
		if err := store.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("AppendMessage: %v", err)
		}
	}

	last, err := store.LoadMessages(ctx, 2)
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(last) != 2 || last[0].Content != "three" || last[1].Content != "four" {
		t.Fatalf("last=%+v", last)
	}
	if last[1].Role != chat.RoleAssistant {
		t.Fatalf("role=%q", last[1].Role)
	}

	if err := store.UpdateMessageContent(ctx, ids[0], "uno"); err != nil {
		t.Fatalf("UpdateMessageContent: %v", err)
	}
	if err := store.UpdateMessageContent(ctx, "missing", "x"); err == nil {
		t.Fatalf("expected error for unknown message id")
	}
	all, err := store.LoadMessages(ctx, 0)
	if err != nil {
		t.Fatalf("LoadMessages: %v", err)
	}
	if len(all) != 4 || all[0].Content != "uno" {
		t.Fatalf("all=%+v", all)
	}
	if !all[0].CreatedAt.Equal(base) {
		t.Fatalf("CreatedAt=%v, want %v", all[0].CreatedAt, base)
	}

	if err := store.ClearMessages(ctx); err != nil {
		t.Fatalf("ClearMessages: %v", err)
	}
	all, _ = store.LoadMessages(ctx, 0)
	if len(all) != 0 {
		t.Fatalf("expected empty log, got %d", len(all))
	}
}

func TestSQLiteStore_AudioFlagPersists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	msg := chat.NewMessage(chat.RoleUser, "[voice message]", time.Now())
	msg.Audio = true
	if err := store.AppendMessage(ctx, msg); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	got, _ := store.LoadMessages(ctx, 1)
	if len(got) != 1 || !got[0].Audio {
		t.Fatalf("got=%+v", got)
	}
}

func TestImportSeedFile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	seed := `
tasks:
  - title: Gym
    start_at: 2026-03-05T18:00:00Z
    duration_minutes: 45
  - title: Dentist
    start_at: 2026-03-06T09:30:00Z
  - title: ""
missions:
  - title: Report
    deadline: 2026-03-10T23:59:00Z
  - title: Taxes
    deadline: 2026-04-15T23:59:00Z
    completed: true
`
	if err := os.WriteFile(path, []byte(seed), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	res, err := ImportSeedFile(ctx, path, store)
	if err != nil {
		t.Fatalf("ImportSeedFile: %v", err)
	}
	if res.Tasks != 2 || res.Missions != 2 || res.Skipped != 1 {
		t.Fatalf("first import=%+v", res)
	}

	tasks, _ := store.ListTasks(ctx)
	if tasks[1].Title != "Dentist" || tasks[1].DurationMinutes != 60 {
		t.Fatalf("dentist=%+v", tasks[1])
	}
	missions, _ := store.ListMissions(ctx)
	if !missions[1].Completed || missions[1].CompletedAt == nil {
		t.Fatalf("taxes=%+v", missions[1])
	}

	// Re-importing the same file writes nothing new
	res, err = ImportSeedFile(ctx, path, store)
	if err != nil {
		t.Fatalf("second ImportSeedFile: %v", err)
	}
	if res.Tasks != 0 || res.Missions != 0 || res.Skipped != 5 {
		t.Fatalf("second import=%+v", res)
	}
}

func TestImportSeedFile_Errors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := ImportSeedFile(ctx, "", store); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := ImportSeedFile(ctx, filepath.Join(t.TempDir(), "missing.yaml"), store); err == nil {
		t.Fatalf("expected error for missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("tasks: [oops"), 0o644)
	if _, err := ImportSeedFile(ctx, bad, store); err == nil {
		t.Fatalf("expected parse error")
	}
}
