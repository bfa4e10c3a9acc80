package ui

import (
	"strings"
	"testing"

	"bilifollow/pkg/bilibili"
)

func TestRenderFollowingsIncludesEveryRecord(t *testing.T) {
	records := []bilibili.FollowRecord{
		{MID: 100, Uname: "alpha", MTime: 1700000000},
		{MID: 200, Uname: "beta", Sign: strings.Repeat("x", 100)},
	}

	var b strings.Builder
	RenderFollowings(&b, records)
	out := b.String()

	for _, want := range []string{"alpha", "beta", "100", "200", "2 accounts"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 100)) {
		t.Error("long bio should be truncated")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("日本語のテキストです", 5); got != "日本語の…" {
		t.Errorf("truncate counts runes, got %q", got)
	}
}
