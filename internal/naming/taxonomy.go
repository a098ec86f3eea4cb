// Package naming generates descriptive camelCase directory names and
// derives where they belong under the data home tree.
package naming

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxNameLength caps generated directory names.
const MaxNameLength = 75

// newsTranscriptMarker identifies sources that always route to the
// text-documents tree regardless of content type.
const newsTranscriptMarker = "News/transcripts"

// Taxonomy is the abbreviation vocabulary included in naming prompts.
type Taxonomy struct {
	ContentTypes      map[string]string `json:"content_types"`
	ContextIndicators map[string]string `json:"context_indicators"`
	TemporalMarkers   map[string]string `json:"temporal_markers"`
	QualityIndicators map[string]string `json:"quality_indicators"`
}

// DefaultTaxonomy returns the built-in naming vocabulary.
func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		ContentTypes: map[string]string{
			"audio": "aud", "transcription": "trans", "documentation": "doc",
			"code": "code", "data": "data", "media": "media", "archive": "arch",
			"image": "img", "video": "vid", "literature": "lit", "game": "game",
			"software": "soft",
		},
		ContextIndicators: map[string]string{
			"meeting": "mtg", "interview": "intv", "presentation": "pres",
			"lecture": "lect", "conference": "conf", "research": "res",
			"project": "proj", "client": "cli", "contract": "contr",
			"certification": "cert", "correspondence": "corr", "strategy": "strat",
			"politics": "pol", "personal": "pers", "financial": "fin",
			"medical": "med", "identity": "id", "family": "fam",
			"podcast": "pod", "recording": "rec", "music": "mus", "book": "book",
			"movie": "mov", "show": "show", "news": "news", "scientific": "sci",
			"educational": "edu", "entertainment": "ent", "backup": "bkup",
			"dump": "dump", "template": "tmpl", "experiment": "exp",
			"library": "lib", "tool": "tool", "configuration": "cfg",
			"development": "dev", "system": "sys",
		},
		TemporalMarkers: map[string]string{
			"daily": "day", "weekly": "wk", "monthly": "mon", "quarterly": "qtr",
			"yearly": "yr", "historical": "hist", "current": "curr",
			"ongoing": "ong",
		},
		QualityIndicators: map[string]string{
			"draft": "drft", "final": "fin", "review": "rev",
			"approved": "appr", "archived": "arch", "working": "wip",
		},
	}
}

// contextPath refines a placement when its abbreviation appears
// anywhere in the generated name. Entries are checked in order; the
// first match wins.
type contextPath struct {
	abbrev string
	path   string
}

// placementRule maps a content-type prefix to data-home locations.
type placementRule struct {
	primaryPath  string
	contextPaths []contextPath
}

// filetreeRoot is where organized directories live inside the data home.
const filetreeRoot = "filetree/roots"

var placementRules = map[string]placementRule{
	"aud": {
		primaryPath: "audio",
		contextPaths: []contextPath{
			{"book", "audio/books"},
			{"mus", "audio/music"},
			{"pod", "audio/podcasts"},
			{"rec", "audio/recordings"},
			{"game", "audio/soundtracks/games"},
			{"mov", "audio/soundtracks/movies"},
			{"show", "audio/soundtracks/television"},
		},
	},
	"trans": {
		primaryPath: "documents/Text Documents",
		contextPaths: []contextPath{
			{"mtg", "documents/professional"},
			{"intv", "documents/professional"},
			{"res", "documents/professional"},
			{"pers", "documents/personal"},
			{"fin", "documents/personal/financial"},
			{"med", "documents/personal/medical"},
			{"news", "documents/Text Documents"},
		},
	},
	"doc": {
		primaryPath: "documents",
		contextPaths: []contextPath{
			{"tmpl", "documents/_templates"},
			{"contr", "documents/professional/contracts"},
			{"cert", "documents/professional/certifications"},
			{"corr", "documents/professional/correspondence"},
			{"fin", "documents/personal/financial"},
			{"med", "documents/personal/medical"},
			{"id", "documents/personal/identity"},
		},
	},
	"code": {
		primaryPath: "software",
		contextPaths: []contextPath{
			{"exp", "software/development/experiments"},
			{"lib", "software/development/libraries"},
			{"tool", "software/development/tools"},
			{"cfg", "software/configurations"},
		},
	},
	"media": {
		primaryPath: "images",
		contextPaths: []contextPath{
			{"vid", "video"},
			{"img", "images"},
		},
	},
	"arch": {
		primaryPath: "archives",
		contextPaths: []contextPath{
			{"bkup", "archives/backups"},
			{"dump", "archives/dumps"},
			{"news", "archives/news"},
			{"sci", "archives/scientific"},
			{"data", "archives/datasets"},
		},
	},
}

var (
	contentTypeRe = regexp.MustCompile(`^([a-z]+)`)
	validNameRe   = regexp.MustCompile(`^[a-z][a-zA-Z0-9]*$`)
)

// ValidateName reports whether a generated name is acceptable:
// camelCase starting lowercase, alphanumeric only, bounded length.
func ValidateName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	return validNameRe.MatchString(name)
}

// FallbackName is the deterministic name used when generation fails
// validation or no generator is available.
func FallbackName(now time.Time) string {
	return "processedAudio" + now.Format("20060102")
}

// IsNewsTranscriptSource reports whether the source path falls under a
// news-transcript tree.
func IsNewsTranscriptSource(sourcePath string) bool {
	return strings.Contains(filepath.ToSlash(sourcePath), newsTranscriptMarker)
}

// OptimalParent derives the best parent directory for a generated name
// under dataHome. News-transcript sources always route to the
// text-documents tree; otherwise the name's leading content-type
// abbreviation selects a placement rule, refined by any context
// abbreviation present in the name. Unknown prefixes default to the
// documents tree.
func OptimalParent(name, dataHome, sourcePath string) string {
	if dataHome == "" {
		return ""
	}
	if IsNewsTranscriptSource(sourcePath) {
		return filepath.Join(dataHome, filetreeRoot, "documents", "Text Documents")
	}

	m := contentTypeRe.FindStringSubmatch(name)
	if m == nil {
		return filepath.Join(dataHome, filetreeRoot, "documents")
	}

	rule, ok := placementRules[m[1]]
	if !ok {
		return filepath.Join(dataHome, filetreeRoot, "documents")
	}

	lower := strings.ToLower(name)
	for _, cp := range rule.contextPaths {
		if strings.Contains(lower, cp.abbrev) {
			return filepath.Join(dataHome, filetreeRoot, filepath.FromSlash(cp.path))
		}
	}
	return filepath.Join(dataHome, filetreeRoot, filepath.FromSlash(rule.primaryPath))
}
