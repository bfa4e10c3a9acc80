package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"bilifollow/pkg/bilibili"
)

const signPreviewLen = 40

// RenderFollowings renders following records as an ASCII table
func RenderFollowings(w io.Writer, records []bilibili.FollowRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"#", "MID", "Name", "Followed", "Bio"})

	for i, r := range records {
		t.AppendRow(table.Row{
			i + 1,
			r.MID,
			r.Uname,
			formatFollowedAt(r.FollowedAt()),
			truncate(r.Sign, signPreviewLen),
		})
	}

	t.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d accounts", len(records))})
	t.Render()
}

// RenderSessions renders stored session profiles as an ASCII table
func RenderSessions(w io.Writer, profiles []string, active string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Profile", "Active"})

	for _, profile := range profiles {
		mark := ""
		if profile == active {
			mark = "*"
		}
		t.AppendRow(table.Row{profile, mark})
	}

	t.Render()
}

func formatFollowedAt(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format("2006-01-02")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
