package platform

import (
	"testing"

	"github.com/KDE/kwin-sub007/internal/timestamp"
)

func TestStartupTime(t *testing.T) {
	tests := []struct {
		id   string
		want timestamp.Time
	}{
		{"konsole-1234-host-0_TIME42", 42},
		{"foo_TIME4294967294", 4294967294},
		{"a_TIME1_TIME7", 7},
		{"", timestamp.Zero},
		{"konsole-1234-host-0", timestamp.Zero},
		{"foo_TIMEx", timestamp.Zero},
		{"foo_TIME", timestamp.Zero},
		{"foo_TIME4294967296", timestamp.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := StartupTime(tt.id); got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
