package recorder

import (
	"testing"
	"time"
)

func TestNewSessionID(t *testing.T) {
	start := time.Date(2025, 6, 1, 14, 30, 5, 0, time.Local)
	if got := NewSessionID(start); got != "20250601_143005" {
		t.Errorf("NewSessionID() = %q, want %q", got, "20250601_143005")
	}
}

func TestDerivedFields(t *testing.T) {
	tests := []struct {
		name       string
		attempt    Attempt
		wantLen    int
		wantPrefix string
	}{
		{
			name:       "typical camelCase name",
			attempt:    Attempt{GeneratedName: "audTransNewsRecPod"},
			wantLen:    18,
			wantPrefix: "audT",
		},
		{
			name:       "name shorter than prefix",
			attempt:    Attempt{GeneratedName: "aud"},
			wantLen:    3,
			wantPrefix: "aud",
		},
		{
			name:       "empty name",
			attempt:    Attempt{GeneratedName: ""},
			wantLen:    0,
			wantPrefix: "",
		},
		{
			name:       "exactly prefix length",
			attempt:    Attempt{GeneratedName: "docs"},
			wantLen:    4,
			wantPrefix: "docs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attempt.GeneratedNameLength(); got != tt.wantLen {
				t.Errorf("GeneratedNameLength() = %d, want %d", got, tt.wantLen)
			}
			if got := tt.attempt.ContentTypePrefix(); got != tt.wantPrefix {
				t.Errorf("ContentTypePrefix() = %q, want %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestFeedbackLength(t *testing.T) {
	a := Attempt{UserFeedback: "too generic"}
	if got := a.FeedbackLength(); got != 11 {
		t.Errorf("FeedbackLength() = %d, want 11", got)
	}
	a.UserFeedback = ""
	if got := a.FeedbackLength(); got != 0 {
		t.Errorf("FeedbackLength() = %d, want 0", got)
	}
}
