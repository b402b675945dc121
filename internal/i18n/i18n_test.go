// Copyright (c) 2026 ToeiRei
// douban-comment - Douban book comment crawler
// This source code is licensed under the MIT license found in the LICENSE file.

package i18n

import (
	"io/fs"
	"sort"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestTranslateDefaultChinese(t *testing.T) {
	Init("")
	if GetLang() != DefaultLanguage {
		t.Fatalf("expected default language %q, got %q", DefaultLanguage, GetLang())
	}
	if got := T("crawl.book_title", "三体"); got != "书名: 三体" {
		t.Fatalf("unexpected zh translation: %q", got)
	}
}

func TestTranslateEnglish(t *testing.T) {
	SetLang("en")
	defer Init(DefaultLanguage)
	if got := T("crawl.saved", 3, "out.csv"); got != "Saved 3 comments to out.csv" {
		t.Fatalf("unexpected en translation: %q", got)
	}
}

func TestUnknownIDReturnsID(t *testing.T) {
	Init("en")
	defer Init(DefaultLanguage)
	if got := T("no.such.message"); got != "no.such.message" {
		t.Fatalf("expected id back, got %q", got)
	}
}

func TestAvailableLocales(t *testing.T) {
	Init(DefaultLanguage)
	locales := GetAvailableLocales()
	for _, tag := range []string{"zh", "en"} {
		if _, ok := locales[tag]; !ok {
			t.Fatalf("locale %q missing from %v", tag, locales)
		}
	}
}

// Every locale must define the same message IDs.
func TestLocalesHaveSameKeys(t *testing.T) {
	files, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		t.Fatalf("read locales: %v", err)
	}
	keys := make(map[string][]string)
	for _, f := range files {
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			t.Fatalf("read %s: %v", f.Name(), err)
		}
		var m map[string]string
		if err := yaml.Unmarshal(data, &m); err != nil {
			t.Fatalf("parse %s: %v", f.Name(), err)
		}
		var ks []string
		for k := range m {
			ks = append(ks, k)
		}
		sort.Strings(ks)
		keys[f.Name()] = ks
	}
	zh, en := keys["zh.yaml"], keys["en.yaml"]
	if len(zh) == 0 || len(zh) != len(en) {
		t.Fatalf("locale key counts differ: zh=%d en=%d", len(zh), len(en))
	}
	for i := range zh {
		if zh[i] != en[i] {
			t.Fatalf("locale keys differ at %d: %q vs %q", i, zh[i], en[i])
		}
	}
}
