package i18n

import (
	"strings"
	"testing"
)

func TestNew_English(t *testing.T) {
	i := New("en")
	if i.Locale() != "en" {
		t.Fatalf("Locale()=%q, want en", i.Locale())
	}
	got := i.T("ack.cancelled")
	if got != "Okay, I cancelled that." {
		t.Fatalf("T(ack.cancelled)=%q", got)
	}
}

func TestNew_Chinese(t *testing.T) {
	i := New("zh-CN")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
	got := i.T("ack.cancelled")
	if got != "好的，已取消。" {
		t.Fatalf("T(ack.cancelled)=%q", got)
	}
}

func TestNew_ChineseFromLang(t *testing.T) {
	i := New("zh_CN.UTF-8")
	if i.Locale() != "zh-CN" {
		t.Fatalf("Locale()=%q, want zh-CN", i.Locale())
	}
}

func TestNew_UnknownLocaleFallsBackToEnglishText(t *testing.T) {
	i := New("pt-BR")
	if i.Locale() != "pt-BR" {
		t.Fatalf("Locale()=%q, want pt-BR", i.Locale())
	}
	if got := i.T("repl.bye"); got != "Bye!" {
		t.Fatalf("T(repl.bye)=%q, want English fallback", got)
	}
}

func TestT_WithArgs(t *testing.T) {
	i := New("en")
	got := i.T("ack.create_task", "Gym")
	if got != `Done! Task "Gym" was created.` {
		t.Fatalf("T with args=%q", got)
	}
}

func TestT_MissingKey(t *testing.T) {
	i := New("en")
	got := i.T("nonexistent.key")
	if got != "nonexistent.key" {
		t.Fatalf("T missing key=%q, want key itself", got)
	}
}

func TestDetectLocale(t *testing.T) {
	t.Setenv("TASKVOICE_LANG", "")
	t.Setenv("LANG", "zh_CN.UTF-8")
	if got := DetectLocale(); got != "zh-CN" {
		t.Fatalf("DetectLocale()=%q, want zh-CN", got)
	}
	t.Setenv("TASKVOICE_LANG", "en_US")
	if got := DetectLocale(); got != "en" {
		t.Fatalf("DetectLocale()=%q, want en", got)
	}
}

func TestCatalogsCoverSameKeys(t *testing.T) {
	for key := range ZhCNMessages {
		if _, ok := EnMessages[key]; !ok {
			t.Errorf("zh-CN key %q missing from English catalog", key)
		}
	}
	for key := range EnMessages {
		if _, ok := ZhCNMessages[key]; !ok {
			t.Errorf("English key %q missing from zh-CN catalog", key)
		}
	}
}

func TestFormatVerbsMatch(t *testing.T) {
	for key, en := range EnMessages {
		zh, ok := ZhCNMessages[key]
		if !ok {
			continue
		}
		if strings.Count(en, "%") != strings.Count(zh, "%") {
			t.Errorf("key %q: verb count differs (en=%q zh=%q)", key, en, zh)
		}
	}
}

func TestNormalizeLocale(t *testing.T) {
	tests := map[string]string{
		"":            "en",
		"C.UTF-8":     "en",
		"POSIX":       "en",
		"en_GB.UTF-8": "en",
		"zh_TW":       "zh-CN",
		"pt_BR@euro":  "pt-BR",
	}
	for in, want := range tests {
		if got := normalizeLocale(in); got != want {
			t.Errorf("normalizeLocale(%q)=%q, want %q", in, got, want)
		}
	}
}
