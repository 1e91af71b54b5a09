package repl

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-runewidth"

	"taskvoice/internal/domain"
	"taskvoice/internal/i18n"
)

const listTimeLayout = "2006-01-02 15:04"

// WriteTasks prints one line per task, titles padded to a common display width.
func WriteTasks(w io.Writer, tr *i18n.I18n, th Theme, tasks []domain.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, th.Muted.Render(tr.T("repl.no_tasks")))
		return
	}
	titles := make([]string, len(tasks))
	for i, t := range tasks {
		titles[i] = t.Title
	}
	titles = padTitles(titles)
	for i, t := range tasks {
		fmt.Fprintln(w, tr.T("list.task", t.ID, titles[i], t.StartAt.Local().Format(listTimeLayout), t.DurationMinutes))
	}
}

// WriteMissions prints missions with an open, done or overdue marker.
func WriteMissions(w io.Writer, tr *i18n.I18n, th Theme, missions []domain.Mission, now time.Time) {
	if len(missions) == 0 {
		fmt.Fprintln(w, th.Muted.Render(tr.T("repl.no_missions")))
		return
	}
	titles := make([]string, len(missions))
	for i, m := range missions {
		titles[i] = m.Title
	}
	titles = padTitles(titles)
	for i, m := range missions {
		status, style := tr.T("status.open"), th.Muted
		switch {
		case m.Completed:
			status, style = tr.T("status.done"), th.Success
		case m.Overdue(now):
			status, style = tr.T("status.overdue"), th.Error
		}
		fmt.Fprintln(w, tr.T("list.mission", m.ID, titles[i], m.Deadline.Local().Format(listTimeLayout), style.Render(status)))
	}
}

// padTitles 按终端显示宽度补齐，中文字符占两列
// padTitles pads to terminal cell width; CJK runes take two cells
func padTitles(titles []string) []string {
	width := 0
	for _, t := range titles {
		if w := runewidth.StringWidth(t); w > width {
			width = w
		}
	}
	out := make([]string, len(titles))
	for i, t := range titles {
		out[i] = runewidth.FillRight(t, width)
	}
	return out
}
