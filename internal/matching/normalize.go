package matching

import (
	"regexp"
	"strings"

	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

var (
	stripPattern   = regexp.MustCompile(`[^a-z0-9\s+#.,]`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Reference vocabulary for exact-term keyword detection. Scan order is the
// definition order below, so extracted keywords come back in a stable order
// regardless of where they appear in the input.
var (
	programmingLanguages = []string{
		"python", "java", "javascript", "c++", "c#", "ruby", "php",
		"swift", "kotlin", "go", "rust", "typescript", "sql", "r",
	}

	frameworksAndTools = []string{
		"react", "angular", "vue", "django", "flask", "spring",
		"node.js", "express", "fastapi", "tensorflow", "pytorch",
	}

	softSkills = []string{
		"leadership", "communication", "teamwork", "problem solving",
		"analytical", "creative", "organized", "detail-oriented",
	}
)

var referenceVocabulary = buildReferenceVocabulary()

func buildReferenceVocabulary() []string {
	vocab := make([]string, 0, len(programmingLanguages)+len(frameworksAndTools)+len(softSkills))
	vocab = append(vocab, programmingLanguages...)
	vocab = append(vocab, frameworksAndTools...)
	vocab = append(vocab, softSkills...)
	return vocab
}

// Normalize canonicalizes free-form text for vectorization: lowercase, strip
// anything outside [a-z0-9\s+#.,], collapse whitespace, trim. Placeholder
// input yields an empty string. The result is stable under re-normalization.
func Normalize(text string) string {
	if isPlaceholder(text) {
		return ""
	}
	text = strings.ToLower(text)
	text = stripPattern.ReplaceAllString(text, " ")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	// Stripping can uncover a placeholder ("nan!" cleans to "nan"); checking
	// again keeps the function a fixpoint.
	if isPlaceholder(text) {
		return ""
	}
	return text
}

// isPlaceholder reports whether the value is one of the sentinel strings
// spreadsheet exports leave in empty cells.
func isPlaceholder(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "not specified":
		return true
	}
	return false
}

// ExtractKeywords scans text for known skill and technology terms. Matching
// is case-insensitive exact substring containment, no fuzzy matching. The
// returned terms follow the reference vocabulary order.
func ExtractKeywords(text string) []string {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	var found []string
	for _, term := range referenceVocabulary {
		if strings.Contains(lower, term) {
			found = append(found, term)
		}
	}
	return found
}

// ProfileText builds the volunteer's matchable document: the populated
// textual fields joined in a fixed order, then normalized. Placeholder
// fields are skipped entirely rather than contributing empty tokens.
func ProfileText(v *volunteer.Volunteer) string {
	if v == nil {
		return ""
	}

	fields := []string{
		v.Skills,
		v.Experience,
		v.Education,
		v.Certifications,
		v.Interests,
		v.Languages,
	}

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		if isPlaceholder(field) {
			continue
		}
		parts = append(parts, field)
	}

	return Normalize(strings.Join(parts, " "))
}
