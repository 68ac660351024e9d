package output

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestStatusRowVerdict(t *testing.T) {
	tests := []struct {
		name string
		row  StatusRow
		want string
	}{
		{
			name: "no threshold means no policy",
			row:  StatusRow{App: "vim"},
			want: "no policy",
		},
		{
			name: "never launched",
			row:  StatusRow{App: "editor", Threshold: intPtr(30)},
			want: "never launched",
		},
		{
			name: "idle past threshold",
			row:  StatusRow{App: "editor", Threshold: intPtr(30), LastUsed: time.Now().Add(-40 * 24 * time.Hour), IdleDays: 40},
			want: "idle",
		},
		{
			name: "idle equal to threshold is ok",
			row:  StatusRow{App: "editor", Threshold: intPtr(30), LastUsed: time.Now().Add(-30 * 24 * time.Hour), IdleDays: 30},
			want: "ok",
		},
		{
			name: "recently used",
			row:  StatusRow{App: "editor", Threshold: intPtr(30), LastUsed: time.Now().Add(-time.Hour), IdleDays: 0},
			want: "ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.row.Verdict(); got != tt.want {
				t.Errorf("Verdict() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderStatusTableEmpty(t *testing.T) {
	got := RenderStatusTable(nil)
	if !strings.Contains(got, "No applications configured") {
		t.Errorf("empty table output = %q, want mention of no applications", got)
	}
}

func TestRenderStatusTable(t *testing.T) {
	rows := []StatusRow{
		{App: "editor", LastUsed: time.Now().Add(-3 * 24 * time.Hour), IdleDays: 3, Threshold: intPtr(30), Activity7d: 12, Targets: 2},
		{App: "old-tool", LastUsed: time.Now().Add(-60 * 24 * time.Hour), IdleDays: 60, Threshold: intPtr(30), Targets: 1},
		{App: "never-run", Threshold: intPtr(7)},
		{App: "untracked"},
	}

	got := RenderStatusTable(rows)

	for _, want := range []string{
		"App", "Last Used", "Idle", "Threshold", "Activity", "Verdict",
		"editor", "old-tool", "never-run", "untracked",
		"3 days ago", "never",
		"idle", "ok", "never launched", "no policy",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table output missing %q:\n%s", want, got)
		}
	}

	if lines := strings.Count(got, "\n"); lines != 6 {
		t.Errorf("table has %d lines, want 6 (header, rule, 4 rows)", lines)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"zero time", time.Time{}, "never"},
		{"seconds ago", time.Now().Add(-30 * time.Second), "just now"},
		{"minutes ago", time.Now().Add(-5 * time.Minute), "5 minutes ago"},
		{"one hour ago", time.Now().Add(-90 * time.Minute), "1 hour ago"},
		{"days ago", time.Now().Add(-3 * 24 * time.Hour), "3 days ago"},
		{"weeks ago", time.Now().Add(-14 * 24 * time.Hour), "2 weeks ago"},
		{"months ago", time.Now().Add(-70 * 24 * time.Hour), "2 months ago"},
		{"years ago", time.Now().Add(-800 * 24 * time.Hour), "2 years ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(tt.t); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 20, "short"},
		{"exactly-twenty-chars", 20, "exactly-twenty-chars"},
		{"this-name-is-definitely-too-long", 20, "this-name-is-defi..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestProgressBarNonTTY(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(3, "Cleaning applications")
	p.SetWriter(&buf)

	p.Increment()
	p.Increment()
	if buf.Len() != 0 {
		t.Errorf("non-TTY writer got intermediate output: %q", buf.String())
	}

	p.Increment()
	out := buf.String()
	if !strings.Contains(out, "100%") {
		t.Errorf("final render missing 100%%: %q", out)
	}
	if !strings.Contains(out, "Cleaning applications") {
		t.Errorf("final render missing description: %q", out)
	}

	p.Finish()
	if got := strings.Count(buf.String(), "100%"); got != 1 {
		t.Errorf("Finish after completed bar printed %d final lines, want 1", got)
	}
}

func TestProgressBarFinishWithoutFullIncrements(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(5, "Cleaning")
	p.SetWriter(&buf)

	p.Increment()
	p.Finish()

	out := buf.String()
	if !strings.Contains(out, "100%") {
		t.Errorf("Finish did not complete bar: %q", out)
	}
}

func TestProgressBarIncrementPastTotal(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(1, "done")
	p.SetWriter(&buf)

	p.Increment()
	p.Increment() // clamped

	if got := strings.Count(buf.String(), "100%"); got == 0 {
		t.Errorf("expected at least one completed render, got %q", buf.String())
	}
}

func TestIsColorEnabledRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if IsColorEnabled() {
		t.Error("IsColorEnabled() = true with NO_COLOR set")
	}
}
