package naming

import (
	"path/filepath"
	"testing"
	"time"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"audPodClimatePolicy", true},
		{"doc", true},
		{"a", true},
		{"transNewsIndiaPakistan2025", true},
		{"AudPod", false},       // must start lowercase
		{"aud pod", false},      // no spaces
		{"aud-pod", false},      // no punctuation
		{"9lives", false},       // must start with a letter
		{"", false},
		{"a" + repeatX(75), false}, // 76 chars
		{"a" + repeatX(74), true},  // exactly 75
	}
	for _, tt := range tests {
		if got := ValidateName(tt.name); got != tt.want {
			t.Errorf("ValidateName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func repeatX(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = 'x'
	}
	return string(b)
}

func TestFallbackName(t *testing.T) {
	now := time.Date(2025, 7, 14, 10, 30, 0, 0, time.UTC)
	if got, want := FallbackName(now), "processedAudio20250714"; got != want {
		t.Errorf("FallbackName = %q, want %q", got, want)
	}
	if !ValidateName(FallbackName(now)) {
		t.Error("fallback name must itself be valid")
	}
}

func TestOptimalParent(t *testing.T) {
	home := filepath.Join("/", "data")
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"audPodClimatePolicy", "/downloads/x", "filetree/roots/audio/podcasts"},
		{"audMusJazzCollection", "/downloads/x", "filetree/roots/audio/music"},
		{"audRecTeamStandup", "/downloads/x", "filetree/roots/audio/recordings"},
		{"audFieldSamples", "/downloads/x", "filetree/roots/audio"},
		{"transMtgBudgetReview", "/downloads/x", "filetree/roots/documents/professional"},
		{"transFinTaxPrep", "/downloads/x", "filetree/roots/documents/personal/financial"},
		{"transDailyJournal", "/downloads/x", "filetree/roots/documents/Text Documents"},
		{"docContrVendorAgreement", "/downloads/x", "filetree/roots/documents/professional/contracts"},
		{"docMisc", "/downloads/x", "filetree/roots/documents"},
		{"codeToolScraper", "/downloads/x", "filetree/roots/software/development/tools"},
		{"archBkupPhotos2024", "/downloads/x", "filetree/roots/archives/backups"},
		{"zzzUnknownPrefix", "/downloads/x", "filetree/roots/documents"},
	}
	for _, tt := range tests {
		want := filepath.Join(home, filepath.FromSlash(tt.want))
		if got := OptimalParent(tt.name, home, tt.source); got != want {
			t.Errorf("OptimalParent(%q) = %q, want %q", tt.name, got, want)
		}
	}
}

func TestOptimalParentNewsTranscriptOverride(t *testing.T) {
	home := "/data"
	// Source location wins over whatever the name says.
	got := OptimalParent("audPodShow", home, "/media/News/transcripts/2025")
	want := filepath.Join(home, "filetree", "roots", "documents", "Text Documents")
	if got != want {
		t.Errorf("OptimalParent news override = %q, want %q", got, want)
	}
}

func TestOptimalParentEmptyDataHome(t *testing.T) {
	if got := OptimalParent("docX", "", "/src"); got != "" {
		t.Errorf("expected empty parent without a data home, got %q", got)
	}
}
