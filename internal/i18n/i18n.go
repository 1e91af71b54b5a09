package i18n

import (
	"fmt"
	"os"
	"strings"
)

// catalogs 按规范化后的 locale 索引；未列出的语言回退到英文
// catalogs is keyed by normalized locale; unlisted languages fall back to English
var catalogs = map[string]map[string]string{
	"en":    EnMessages,
	"zh-CN": ZhCNMessages,
}

// I18n translates user-facing strings for one session. It is read-only after New.
type I18n struct {
	locale  string
	catalog map[string]string
}

// New 按 locale 选择消息目录；空 locale 时从环境变量检测
// New picks the message catalog for locale, detecting it from the environment when blank
func New(locale string) *I18n {
	if strings.TrimSpace(locale) == "" {
		locale = DetectLocale()
	}
	locale = normalizeLocale(locale)
	return &I18n{locale: locale, catalog: catalogs[locale]}
}

// T formats key with args. Keys missing from the locale's catalog use the
// English text, and unknown keys are returned as-is.
func (i *I18n) T(key string, args ...any) string {
	tmpl, ok := i.catalog[key]
	if !ok {
		if tmpl, ok = EnMessages[key]; !ok {
			return key
		}
	}
	if len(args) == 0 {
		return tmpl
	}
	return fmt.Sprintf(tmpl, args...)
}

// Locale returns the normalized locale tag, e.g. "zh-CN" or "pt-BR".
func (i *I18n) Locale() string {
	return i.locale
}

// DetectLocale reads TASKVOICE_LANG, then the usual POSIX locale variables.
func DetectLocale() string {
	for _, env := range []string{"TASKVOICE_LANG", "LANG", "LC_ALL", "LC_MESSAGES"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return normalizeLocale(v)
		}
	}
	return "en"
}

// normalizeLocale turns "zh_CN.UTF-8" into "zh-CN"; any zh or en variant
// collapses to the catalog we ship, other tags keep their region.
func normalizeLocale(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexAny(s, ".@"); idx >= 0 {
		s = s[:idx]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return "en"
	}
	s = strings.ReplaceAll(s, "_", "-")
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "zh"):
		return "zh-CN"
	case strings.HasPrefix(lower, "en"):
		return "en"
	}
	return s
}
