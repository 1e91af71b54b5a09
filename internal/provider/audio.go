package provider

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// DefaultMinAudioBytes is roughly a quarter second of compressed speech.
const DefaultMinAudioBytes = 4096

type audioFormat struct {
	mime string
	ext  string
}

var defaultAudioFormat = audioFormat{mime: "audio/mp4", ext: "m4a"}

var audioFormats = map[string]audioFormat{
	"audio/mp4":       {"audio/mp4", "m4a"},
	"audio/m4a":       {"audio/mp4", "m4a"},
	"audio/x-m4a":     {"audio/mp4", "m4a"},
	"audio/aac":       {"audio/aac", "aac"},
	"audio/mpeg":      {"audio/mpeg", "mp3"},
	"audio/mp3":       {"audio/mpeg", "mp3"},
	"audio/wav":       {"audio/wav", "wav"},
	"audio/x-wav":     {"audio/wav", "wav"},
	"audio/wave":      {"audio/wav", "wav"},
	"audio/vnd.wave":  {"audio/wav", "wav"},
	"audio/webm":      {"audio/webm", "webm"},
	"audio/ogg":       {"audio/ogg", "ogg"},
	"audio/opus":      {"audio/ogg", "ogg"},
	"audio/flac":      {"audio/flac", "flac"},
	"audio/x-flac":    {"audio/flac", "flac"},
	"video/mp4":       {"audio/mp4", "m4a"},
	"application/ogg": {"audio/ogg", "ogg"},
}

// AudioFormat 协商音频格式：返回规范 MIME 类型与文件扩展名，未知类型回退到 m4a
// AudioFormat negotiates the container: canonical MIME type and file extension, m4a when unknown
func AudioFormat(mimeType string) (string, string) {
	base := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(base, ';'); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	if f, ok := audioFormats[base]; ok {
		return f.mime, f.ext
	}
	return defaultAudioFormat.mime, defaultAudioFormat.ext
}

// MIMETypeForPath guesses the MIME type of an audio file from its extension.
func MIMETypeForPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, f := range audioFormats {
		if f.ext == ext {
			return f.mime
		}
	}
	switch ext {
	case "mp4", "mpeg", "mpga":
		return "audio/mp4"
	case "oga", "opus":
		return "audio/ogg"
	}
	return defaultAudioFormat.mime
}

// CheckAudio rejects clips too small to contain speech.
func CheckAudio(audio []byte, minBytes int) error {
	if minBytes <= 0 {
		minBytes = DefaultMinAudioBytes
	}
	if len(audio) < minBytes {
		return fmt.Errorf("%w: clip is %d bytes, need at least %d", ErrNoSpeech, len(audio), minBytes)
	}
	return nil
}

// 语音识别模型在静音时常见的幻觉文本 / phrases speech models produce on silence
var hallucinationPhrases = []string{
	"thanks for watching",
	"thank you for watching",
	"thank you so much for watching",
	"please subscribe",
	"like and subscribe",
	"subscribe to my channel",
	"dont forget to subscribe",
	"subtitles by",
	"subtitled by",
	"transcribed by",
	"transcription by",
	"amara org",
	"see you in the next video",
	"gracias por ver",
	"suscríbete",
	"subtítulos realizados por",
	"subtítulos por la comunidad",
	"obrigado por assistir",
	"merci davoir regardé",
	"字幕由",
	"请不吝点赞",
	"明镜与点点",
}

// maxHallucinationWords bounds how long a transcript may be and still be
// treated as filler; real requests that mention a phrase are longer.
const maxHallucinationWords = 8

// IsHallucination reports whether a transcript is empty, has no letters, or is
// dominated by a known filler phrase.
func IsHallucination(transcript string) bool {
	norm := normalizeTranscript(transcript)
	if norm == "" {
		return true
	}
	hasLetter := false
	for _, r := range norm {
		if unicode.IsLetter(r) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return true
	}
	if len(strings.Fields(norm)) > maxHallucinationWords {
		return false
	}
	for _, phrase := range hallucinationPhrases {
		if strings.Contains(norm, phrase) {
			return true
		}
	}
	return false
}

func normalizeTranscript(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r == '\'' || r == '’':
			// "don't" -> "dont"
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
