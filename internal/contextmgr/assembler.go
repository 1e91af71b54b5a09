package contextmgr

import (
	"fmt"
	"strings"

	"taskvoice/internal/chat"
	"taskvoice/internal/command"
)

const (
	DateLayout = "02/01/2006"
	TimeLayout = "15:04"

	// VoicePlaceholder stands in for the user's words until a transcript is known.
	VoicePlaceholder = "[voice message]"

	defaultMaxItems = 20
)

// Turn is the new user input being answered.
type Turn struct {
	Text  string
	Audio bool
	// Transcribed means the backend transcribes the audio itself and sends
	// the text as the user message, so the model never hears the clip.
	Transcribed bool
}

// Assembler 构建发送给模型的完整指令
// Assembler builds the full instruction sent to the model backend
type Assembler struct {
	AssistantName string
	MaxItems      int
}

func New(assistantName string) *Assembler {
	name := strings.TrimSpace(assistantName)
	if name == "" {
		name = "Tempo"
	}
	return &Assembler{AssistantName: name, MaxItems: defaultMaxItems}
}

// Build is pure: the same snapshot, history and turn always yield the same prompt.
func (a *Assembler) Build(snap Snapshot, history []chat.Message, turn Turn) string {
	var b strings.Builder
	a.writeIdentity(&b, snap)
	writeClock(&b, snap)
	a.writeTasks(&b, snap)
	a.writeMissions(&b, snap)
	writeContract(&b)
	writeExamples(&b, snap)
	writeHistory(&b, history)
	writeTurn(&b, turn)
	return b.String()
}

func (a *Assembler) writeIdentity(b *strings.Builder, snap Snapshot) {
	fmt.Fprintf(b, "You are %s, a personal planning assistant that manages the user's tasks (scheduled activities) and missions (goals with a deadline).\n", a.AssistantName)
	if name := strings.TrimSpace(snap.Profile.Name); name != "" {
		fmt.Fprintf(b, "The user's name is %s.", name)
		if occ := strings.TrimSpace(snap.Profile.Occupation); occ != "" {
			fmt.Fprintf(b, " They work as %s.", occ)
		}
		b.WriteString(" Address them by name when it feels natural.\n")
	}
	fmt.Fprintf(b, "Always write the \"message\" and \"confirmationMessage\" fields in %s.\n\n", LanguageName(snap.Locale))
}

func writeClock(b *strings.Builder, snap Snapshot) {
	now := snap.Now
	tomorrow := now.AddDate(0, 0, 1)
	b.WriteString("## Current date\n")
	fmt.Fprintf(b, "Today is %s (%s). Tomorrow is %s (%s). The time now is %s.\n",
		now.Format(DateLayout), now.Weekday(), tomorrow.Format(DateLayout), tomorrow.Weekday(), now.Format(TimeLayout))
	b.WriteString("Use these dates literally; never calculate relative dates yourself beyond adding days to them.\n\n")
}

func (a *Assembler) writeTasks(b *strings.Builder, snap Snapshot) {
	b.WriteString("## Tasks\n")
	if len(snap.Tasks) == 0 {
		b.WriteString("(none)\n\n")
		return
	}
	limit := a.limit(len(snap.Tasks))
	for _, t := range snap.Tasks[:limit] {
		fmt.Fprintf(b, "- #%d | %s | %s %s | %d min", t.ID, t.Title, t.StartAt.Format(DateLayout), t.StartAt.Format(TimeLayout), t.DurationMinutes)
		if t.Repeat != "" {
			fmt.Fprintf(b, " | repeats %s", t.Repeat)
		}
		b.WriteByte('\n')
	}
	if limit < len(snap.Tasks) {
		fmt.Fprintf(b, "(%d more not shown)\n", len(snap.Tasks)-limit)
	}
	b.WriteByte('\n')
}

func (a *Assembler) writeMissions(b *strings.Builder, snap Snapshot) {
	b.WriteString("## Missions\n")
	if len(snap.Missions) == 0 {
		b.WriteString("(none)\n\n")
		return
	}
	limit := a.limit(len(snap.Missions))
	for _, m := range snap.Missions[:limit] {
		status := "open"
		switch {
		case m.Completed:
			status = "done"
		case m.Overdue(snap.Now):
			status = "overdue"
		}
		fmt.Fprintf(b, "- #%d | %s | due %s %s | %s\n", m.ID, m.Title, m.Deadline.Format(DateLayout), m.Deadline.Format(TimeLayout), status)
	}
	if limit < len(snap.Missions) {
		fmt.Fprintf(b, "(%d more not shown)\n", len(snap.Missions)-limit)
	}
	b.WriteByte('\n')
}

func (a *Assembler) limit(n int) int {
	maxItems := a.MaxItems
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	return min(n, maxItems)
}

func writeContract(b *strings.Builder) {
	b.WriteString("## Response format\n")
	b.WriteString("Reply with ONLY one JSON object, no markdown and no text around it:\n")
	b.WriteString(`{"message": "<what you say to the user>", "pending_command": null or {"action": "<ACTION>", "params": {...}, "confirmationMessage": "<question asking the user to confirm>"}, "transcript": "<voice messages only: the user's words>"}`)
	b.WriteString("\n\nActions:\n")
	for _, act := range command.Actions() {
		fmt.Fprintf(b, "- %s\n", act)
	}
	b.WriteString("\nParams (all optional): title, description, date (dd/MM/yyyy), time (HH:mm, 24h), duration (minutes), taskId, missionId.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Creating, updating, deleting or completing anything MUST go through pending_command; the user confirms before it happens.\n")
	b.WriteString("- Refer to existing items by their #id as taskId or missionId whenever you can.\n")
	b.WriteString("- For questions about the schedule use QUERY; for small talk use CHAT or a null pending_command.\n")
	b.WriteString("- If a request is ambiguous, ask a question in message and leave pending_command null.\n\n")
}

func writeExamples(b *strings.Builder, snap Snapshot) {
	tomorrow := snap.Now.AddDate(0, 0, 1).Format(DateLayout)
	b.WriteString("## Examples\n")
	b.WriteString("User: gym tomorrow at 6pm for an hour and a half\n")
	fmt.Fprintf(b, `{"message": "Shall I add Gym tomorrow at 18:00 for 90 minutes?", "pending_command": {"action": "CREATE_TASK", "params": {"title": "Gym", "date": "%s", "time": "18:00", "duration": 90}, "confirmationMessage": "Shall I add Gym tomorrow at 18:00 for 90 minutes?"}}`, tomorrow)
	b.WriteString("\nUser: I finished the thesis draft\n")
	b.WriteString(`{"message": "Great work! Mark the mission as completed?", "pending_command": {"action": "COMPLETE_MISSION", "params": {"title": "thesis draft", "missionId": 3}, "confirmationMessage": "Mark \"Thesis draft\" as completed?"}}`)
	b.WriteString("\nUser: what do I have today?\n")
	b.WriteString(`{"message": "Today you have Standup at 09:30 and Gym at 18:00.", "pending_command": {"action": "QUERY", "params": {}}}`)
	b.WriteString("\n\n")
}

func writeHistory(b *strings.Builder, history []chat.Message) {
	if len(history) == 0 {
		return
	}
	b.WriteString("## Recent conversation\n")
	for _, m := range history {
		fmt.Fprintf(b, "%s: %s\n", m.Role, strings.TrimSpace(m.Content))
	}
	b.WriteByte('\n')
}

func writeTurn(b *strings.Builder, turn Turn) {
	b.WriteString("## New message\n")
	if turn.Audio {
		b.WriteString("user: " + VoicePlaceholder + "\n")
		if turn.Transcribed {
			b.WriteString("The user spoke this message; its transcription follows as the user's next message. Answer it.\n")
			return
		}
		b.WriteString("The user's message is the attached audio. Transcribe it into \"transcript\" and answer it.\n")
		return
	}
	fmt.Fprintf(b, "user: %s\n", strings.TrimSpace(turn.Text))
}

// LanguageName maps a locale tag to the language the model should answer in.
func LanguageName(locale string) string {
	l := strings.ToLower(strings.TrimSpace(locale))
	switch {
	case l == "":
		return "English"
	case strings.HasPrefix(l, "zh"):
		return "Simplified Chinese"
	case strings.HasPrefix(l, "en"):
		return "English"
	case strings.HasPrefix(l, "es"):
		return "Spanish"
	case strings.HasPrefix(l, "pt"):
		return "Portuguese"
	case strings.HasPrefix(l, "fr"):
		return "French"
	case strings.HasPrefix(l, "de"):
		return "German"
	case strings.HasPrefix(l, "it"):
		return "Italian"
	default:
		return "the language of locale " + locale
	}
}
