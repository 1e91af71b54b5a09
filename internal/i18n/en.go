package i18n

// EnMessages English message catalog
var EnMessages = map[string]string{
	// Assistant replies on failure
	"reply.error.generic":      "Sorry, something went wrong. Please try again.",
	"reply.error.no_speech":    "Sorry, I couldn't understand the audio. Please try again.",
	"reply.error.unconfigured": "The assistant isn't configured yet. Add an API key and try again.",
	"reply.error.transport":    "I couldn't reach the assistant service. Please try again in a moment.",
	"reply.invalid_command":    "%s\n(I can't do that yet: %s)",
	"reply.voice_transcript":   "You said: %s",

	// Acknowledgements after confirm/cancel
	"ack.create_task":      "Done! Task \"%s\" was created.",
	"ack.create_mission":   "Done! Mission \"%s\" was created.",
	"ack.update_task":      "Task \"%s\" was updated.",
	"ack.update_mission":   "Mission \"%s\" was updated.",
	"ack.delete_task":      "Task \"%s\" was deleted.",
	"ack.delete_mission":   "Mission \"%s\" was deleted.",
	"ack.complete_mission": "Mission \"%s\" is done. Nice work!",
	"ack.done":             "Done.",
	"ack.cancelled":        "Okay, I cancelled that.",
	"ack.not_found":        "I couldn't find %s.",
	"ack.failed":           "Sorry, I couldn't do that: %s",

	// Terminal front-end
	"repl.welcome":         "%s is ready. Type a message, or /help for commands.",
	"repl.prompt":          "you> ",
	"repl.you":             "you",
	"repl.pending":         "Waiting for confirmation: /confirm or /cancel",
	"repl.nothing_pending": "There is nothing to confirm.",
	"repl.busy":            "Still working on the previous message.",
	"repl.cleared":         "Conversation cleared.",
	"repl.recording":       "Recording from %s. Type /stop to send it.",
	"repl.not_recording":   "Not recording.",
	"repl.no_recorder":     "Voice input is not available.",
	"repl.no_tasks":        "No tasks scheduled.",
	"repl.no_missions":     "No missions yet.",
	"repl.unknown_command": "Unknown command: %s (try /help)",
	"repl.usage_record":    "Usage: /record <audio-file>",
	"repl.usage_voice":     "Usage: /voice <audio-file>",
	"repl.spoken":          "(reply audio saved to %s)",
	"repl.error":           "Error: %s",
	"repl.bye":             "Bye!",
	"repl.help": `Commands:
  /confirm, /yes      run the pending command
  /cancel, /no        drop the pending command
  yes / no            answer a pending confirmation directly
  /tasks              list tasks
  /missions           list missions
  /voice <file>       send an audio file as a voice message
  /record <file>      start a capture from an audio file
  /stop               stop capturing and send it
  /clear              clear the conversation
  /help               show this help
  /exit               quit`,

	// Listings
	"list.task":      "#%d  %s  %s  (%d min)",
	"list.mission":   "#%d  %s  due %s  [%s]",
	"status.open":    "open",
	"status.done":    "done",
	"status.overdue": "overdue",

	// CLI
	"cli.profile_saved":   "Profile saved.",
	"cli.profile":         "Name: %s\nOccupation: %s\nLocale: %s",
	"cli.imported":        "Imported %d tasks and %d missions (%d skipped).",
	"cli.config_written":  "Config written to %s",
	"cli.pending_skipped": "Not applied. Run again with --yes to confirm.",
}
