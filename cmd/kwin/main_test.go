package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KDE/kwin-sub007/internal/config"
	"github.com/KDE/kwin-sub007/internal/geom"
	"github.com/KDE/kwin-sub007/internal/workspace"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"42", 42, false},
		{"0x1e00007", 0x1e00007, false},
		{" 7 ", 7, false},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseWindowID(%q): expected error=%v, got %v", tt.in, tt.wantErr, err)
		}
		if got != tt.want {
			t.Fatalf("parseWindowID(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestWindowFlags(t *testing.T) {
	tests := []struct {
		name string
		info workspace.WindowInfo
		want string
	}{
		{"plain", workspace.WindowInfo{Maximize: "restore", QuickTile: "none"}, "-"},
		{"active maximized", workspace.WindowInfo{Active: true, Maximize: "full", QuickTile: "none"}, "*M"},
		{"tiled in a group", workspace.WindowInfo{Maximize: "restore", QuickTile: "left", TabGroup: 2}, "T#2"},
		{"hidden", workspace.WindowInfo{Minimized: true, DemandsAttention: true}, "_!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := windowFlags(tt.info); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestWriteWindowTable(t *testing.T) {
	var buf bytes.Buffer
	windows := []workspace.WindowInfo{
		{ID: 0x400001, Desktop: -1, Frame: geom.Rect{Width: 1920, Height: 30}, Class: "plasmashell", Title: "Panel"},
		{ID: 0x400002, Desktop: 1, Frame: geom.Rect{X: 10, Y: 40, Width: 800, Height: 600}, Class: "kate",
			Title: "a very long document title that will not fit", Active: true},
	}
	if err := writeWindowTable(&buf, windows, 80); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %q", out)
	}
	if !strings.Contains(lines[1], "0x400001") || !strings.Contains(lines[1], "all") {
		t.Fatalf("expected the sticky panel row, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "800x600+10+40") || !strings.Contains(lines[2], "...") {
		t.Fatalf("expected geometry and a cut title, got %q", lines[2])
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 0); got != "hello" {
		t.Fatalf("expected no limit, got %q", got)
	}
	if got := truncate("hello world", 8); got != "hello..." {
		t.Fatalf("expected %q, got %q", "hello...", got)
	}
	if got := truncate("hello", 2); got != "he" {
		t.Fatalf("expected %q, got %q", "he", got)
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{config.Source{Kind: config.SourceDefault, Name: "desktops"}, "default:desktops"},
		{config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("expected %q, got %q", tt.want, got)
		}
	}
}

func TestFilterByClass(t *testing.T) {
	windows := []workspace.WindowInfo{
		{ID: 1, Class: "org.kde.Konsole"},
		{ID: 2, Class: "firefox"},
		{ID: 3, Class: "konsole"},
	}
	got := filterByClass(windows, " KONSOLE ")
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Fatalf("expected windows 1 and 3, got %+v", got)
	}
	if got := filterByClass(windows, ""); len(got) != 3 {
		t.Fatalf("expected no filtering, got %d windows", len(got))
	}
}
