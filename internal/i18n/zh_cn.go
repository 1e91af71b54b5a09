package i18n

// ZhCNMessages 简体中文消息目录
// ZhCNMessages Simplified Chinese message catalog
var ZhCNMessages = map[string]string{
	"reply.error.generic":      "抱歉，出了点问题，请再试一次。",
	"reply.error.no_speech":    "抱歉，我没听清这段语音，请再试一次。",
	"reply.error.unconfigured": "助手尚未配置，请先设置 API Key。",
	"reply.error.transport":    "暂时无法连接助手服务，请稍后再试。",
	"reply.invalid_command":    "%s\n（暂时无法执行：%s）",
	"reply.voice_transcript":   "你说的是：%s",

	"ack.create_task":      "好的！已创建任务「%s」。",
	"ack.create_mission":   "好的！已创建目标「%s」。",
	"ack.update_task":      "已更新任务「%s」。",
	"ack.update_mission":   "已更新目标「%s」。",
	"ack.delete_task":      "已删除任务「%s」。",
	"ack.delete_mission":   "已删除目标「%s」。",
	"ack.complete_mission": "目标「%s」已完成，干得好！",
	"ack.done":             "完成。",
	"ack.cancelled":        "好的，已取消。",
	"ack.not_found":        "没有找到%s。",
	"ack.failed":           "抱歉，操作失败：%s",

	"repl.welcome":         "%s 已就绪。直接输入消息，或输入 /help 查看命令。",
	"repl.prompt":          "你> ",
	"repl.you":             "你",
	"repl.pending":         "等待确认：/confirm 或 /cancel",
	"repl.nothing_pending": "没有需要确认的操作。",
	"repl.busy":            "上一条消息还在处理中。",
	"repl.cleared":         "对话已清空。",
	"repl.recording":       "正在从 %s 录音，输入 /stop 发送。",
	"repl.not_recording":   "当前没有在录音。",
	"repl.no_recorder":     "语音输入不可用。",
	"repl.no_tasks":        "暂无任务。",
	"repl.no_missions":     "暂无目标。",
	"repl.unknown_command": "未知命令：%s（输入 /help 查看）",
	"repl.usage_record":    "用法：/record <音频文件>",
	"repl.usage_voice":     "用法：/voice <音频文件>",
	"repl.spoken":          "（回复语音已保存到 %s）",
	"repl.error":           "错误：%s",
	"repl.bye":             "再见！",
	"repl.help": `命令：
  /confirm, /yes      执行待确认的操作
  /cancel, /no        取消待确认的操作
  是 / 不              直接回答待确认的操作
  /tasks              列出任务
  /missions           列出目标
  /voice <文件>       以语音消息发送音频文件
  /record <文件>      从音频文件开始录音
  /stop               停止录音并发送
  /clear              清空对话
  /help               显示帮助
  /exit               退出`,

	"list.task":      "#%d  %s  %s（%d 分钟）",
	"list.mission":   "#%d  %s  截止 %s  [%s]",
	"status.open":    "进行中",
	"status.done":    "已完成",
	"status.overdue": "已逾期",

	"cli.profile_saved":   "资料已保存。",
	"cli.profile":         "姓名：%s\n职业：%s\n语言：%s",
	"cli.imported":        "已导入 %d 个任务和 %d 个目标（跳过 %d 个）。",
	"cli.config_written":  "配置已写入 %s",
	"cli.pending_skipped": "未执行。加上 --yes 重新运行以确认。",
}
