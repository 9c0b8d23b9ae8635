package service

import (
	"fmt"
	"strings"

	"github.com/shelfwise/shelfwise/internal/models"
)

// GenericThemeLabel is the last-resort row heading when no genre signal exists.
const GenericThemeLabel = "Recommended for You"

// genreLabels maps raw genre/subject strings (Google Books categories, Open
// Library subjects) to human-friendly thematic labels for row headings. Source
// genre vocabularies are inconsistent free text, so lookup is tiered: exact
// match, then substring containment in declaration order, then title-casing.
// Declaration order matters for the substring pass; a map would iterate randomly.
var genreLabels = []struct {
	key   string
	label string
}{
	// Broad fiction
	{"fiction", "Fiction"},
	{"literary fiction", "Literary Fiction"},
	{"literary collections", "Literary Fiction"},

	// Genre fiction
	{"science fiction", "Sci-Fi"},
	{"fantasy", "Fantasy"},
	{"fantasy fiction", "Fantasy"},
	{"mystery", "Mystery"},
	{"mystery and detective stories", "Mystery"},
	{"detective and mystery stories", "Mystery"},
	{"thriller", "Thrillers"},
	{"thrillers", "Thrillers"},
	{"suspense", "Suspense"},
	{"romance", "Romance"},
	{"love stories", "Romance"},
	{"horror", "Horror"},
	{"horror fiction", "Horror"},
	{"historical fiction", "Historical Fiction"},

	// Subgenres
	{"dystopian", "Dystopian Fiction"},
	{"adventure", "Adventure"},
	{"adventure stories", "Adventure"},
	{"gothic fiction", "Gothic"},
	{"magical realism", "Magical Realism"},
	{"urban fantasy", "Urban Fantasy"},
	{"epic fantasy", "Epic Fantasy"},
	{"space opera", "Space Opera"},
	{"cyberpunk", "Cyberpunk"},
	{"coming of age", "Coming of Age"},
	{"war fiction", "War Stories"},

	// Non-fiction
	{"biography", "Biography"},
	{"biography & autobiography", "Biography"},
	{"autobiography", "Memoir"},
	{"memoir", "Memoir"},
	{"history", "History"},
	{"science", "Science"},
	{"popular science", "Science"},
	{"psychology", "Psychology"},
	{"self-help", "Self-Help"},
	{"philosophy", "Philosophy"},
	{"business", "Business"},
	{"business & economics", "Business"},
	{"true crime", "True Crime"},
	{"travel", "Travel"},
	{"cooking", "Food & Cooking"},
	{"art", "Art"},
	{"music", "Music"},
	{"politics", "Politics"},
	{"political science", "Politics"},
	{"religion", "Religion"},
	{"spirituality", "Spirituality"},
	{"health", "Health & Wellness"},
	{"health & fitness", "Health & Wellness"},
	{"nature", "Nature"},
	{"education", "Education"},
	{"technology", "Technology"},
	{"computers", "Technology"},
	{"mathematics", "Mathematics"},
	{"sociology", "Sociology"},
	{"social science", "Social Science"},

	// Themes
	{"families", "Family Stories"},
	{"family", "Family Stories"},
	{"identity", "Identity & Self"},
	{"race relations", "Race & Identity"},
	{"immigration", "Immigration Stories"},
	{"grief", "Grief & Loss"},
	{"war", "War Stories"},

	// Format
	{"graphic novels", "Graphic Novels"},
	{"comics", "Comics & Graphic Novels"},
	{"poetry", "Poetry"},
	{"essays", "Essays"},
	{"short stories", "Short Stories"},

	// Young adult
	{"young adult fiction", "Young Adult"},
	{"juvenile fiction", "Young Adult"},
}

var genreLabelsByKey = func() map[string]string {
	m := make(map[string]string, len(genreLabels))
	for _, entry := range genreLabels {
		m[entry.key] = entry.label
	}
	return m
}()

// ThematicLabel returns a human-friendly thematic label for a set of genre
// strings. Tries exact match first, then substring containment, then falls back
// to title-casing the first non-empty genre, then GenericThemeLabel.
func ThematicLabel(genres []*string) string {
	for _, genre := range genres {
		if genre == nil {
			continue
		}

		lower := strings.ToLower(strings.TrimSpace(*genre))
		if lower == "" {
			continue
		}

		if label, ok := genreLabelsByKey[lower]; ok {
			return label
		}

		for _, entry := range genreLabels {
			if strings.Contains(lower, entry.key) {
				return entry.label
			}
		}
	}

	for _, genre := range genres {
		if genre != nil && strings.TrimSpace(*genre) != "" {
			return titleCase(*genre)
		}
	}

	return GenericThemeLabel
}

// GenerateReason produces the human-readable heading for a cluster's row.
func GenerateReason(cluster models.Cluster) string {
	if cluster.Theme != GenericThemeLabel {
		return fmt.Sprintf("%s — inspired by %q", cluster.Theme, cluster.Anchor.Title)
	}

	return fmt.Sprintf("Because you liked %q", cluster.Anchor.Title)
}

// titleCase capitalizes each word, splitting on whitespace and slashes.
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '/'
	})

	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		if len(runes) > 0 {
			runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		}

		words[i] = string(runes)
	}

	return strings.Join(words, " ")
}
