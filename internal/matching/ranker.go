package matching

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

const (
	// DefaultMinScore is the similarity threshold applied by Shortlist when
	// the caller does not override it (0-1 scale).
	DefaultMinScore = 0.1
	// DefaultMaxResults bounds the shortlist size.
	DefaultMaxResults = 10

	maxMatchingSkills = 10
	maxPartialMatches = 5
	minPartialWordLen = 3
)

// Match is one ranked candidate on the internal 0-1 similarity scale.
type Match struct {
	Volunteer      *volunteer.Volunteer
	Similarity     float64
	MatchingSkills []string
}

// MatchResult is the externally consumed shortlist entry. Score is a
// percentage with two-decimal precision; Rank starts at 1.
type MatchResult struct {
	Volunteer      *volunteer.Volunteer `json:"volunteer"`
	Score          float64              `json:"match_score"`
	MatchingSkills []string             `json:"matching_skills"`
	Rank           int                  `json:"rank"`
}

// Ranker scores volunteers against a job description using a TF-IDF vector
// space rebuilt per call. It holds no mutable state, so a single Ranker is
// safe for concurrent use.
type Ranker struct {
	logger *zap.Logger
}

func NewRanker(logger *zap.Logger) *Ranker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ranker{logger: logger}
}

// Rank returns up to topN volunteers ordered by similarity to the job
// description, best first. Ties keep the original input order. Rank never
// fails: when the corpus yields no usable vocabulary it degrades to plain
// keyword-overlap scoring.
func (r *Ranker) Rank(volunteers *volunteer.Volunteers, jobDescription string, topN int) []Match {
	if volunteers == nil || volunteers.Len() == 0 {
		return nil
	}

	query := Normalize(jobDescription)

	profiles := make([]string, volunteers.Len())
	for i, v := range volunteers.Items {
		profiles[i] = ProfileText(v)
	}

	// The query is document zero; the space is fitted jointly so the
	// vocabulary and weights reflect exactly this request.
	corpus := make([]string, 0, volunteers.Len()+1)
	corpus = append(corpus, query)
	corpus = append(corpus, profiles...)

	rows, err := newVectorizer().fitTransform(corpus)
	if err != nil {
		r.logger.Warn("vectorization failed, falling back to keyword overlap",
			zap.Error(err),
			zap.Int("volunteers", volunteers.Len()),
		)
		return r.rankByKeywordOverlap(volunteers, jobDescription, profiles, topN)
	}

	queryRow := rows[0]
	matches := make([]Match, 0, volunteers.Len())
	for i, v := range volunteers.Items {
		matches = append(matches, Match{
			Volunteer:      v,
			Similarity:     cosineSimilarity(queryRow, rows[i+1]),
			MatchingSkills: matchingSkills(query, profiles[i], v),
		})
	}

	return truncate(sortBySimilarity(matches), topN)
}

// Shortlist ranks volunteers and converts the result to the caller-facing
// shape: percentage scores rounded to two decimals, entries below minScore
// (0-1 scale) discarded, at most maxResults entries.
func (r *Ranker) Shortlist(volunteers *volunteer.Volunteers, jobDescription string, minScore float64, maxResults int) []MatchResult {
	matches := r.Rank(volunteers, jobDescription, maxResults)

	shortlisted := make([]MatchResult, 0, len(matches))
	for _, m := range matches {
		if m.Similarity < minScore {
			continue
		}
		shortlisted = append(shortlisted, MatchResult{
			Volunteer:      m.Volunteer,
			Score:          math.Round(m.Similarity*10000) / 100,
			MatchingSkills: m.MatchingSkills,
			Rank:           len(shortlisted) + 1,
		})
	}
	return shortlisted
}

// rankByKeywordOverlap is the last-resort scorer: the share of query
// vocabulary keywords found in the candidate's profile. It is used when the
// vector space cannot be fitted at all.
func (r *Ranker) rankByKeywordOverlap(volunteers *volunteer.Volunteers, jobDescription string, profiles []string, topN int) []Match {
	queryKeywords := ExtractKeywords(jobDescription)
	querySet := make(map[string]struct{}, len(queryKeywords))
	for _, kw := range queryKeywords {
		querySet[kw] = struct{}{}
	}

	matches := make([]Match, 0, volunteers.Len())
	for i, v := range volunteers.Items {
		var overlap []string
		for _, kw := range ExtractKeywords(profiles[i]) {
			if containsTerm(querySet, kw) {
				overlap = append(overlap, kw)
			}
		}
		// Score on the full intersection; only the reported list is capped.
		score := float64(len(overlap)) / math.Max(float64(len(queryKeywords)), 1)
		if len(overlap) > maxMatchingSkills {
			overlap = overlap[:maxMatchingSkills]
		}
		matches = append(matches, Match{
			Volunteer:      v,
			Similarity:     score,
			MatchingSkills: overlap,
		})
	}

	return truncate(sortBySimilarity(matches), topN)
}

// matchingSkills explains a match. Primary source: vocabulary keywords
// present in both the query and the volunteer's skills field. When that
// intersection is empty it falls back to raw word overlap between query and
// profile, keeping words longer than three characters in first-occurrence
// order within the profile, capped at five. The final list never exceeds
// ten entries.
func matchingSkills(query, profile string, v *volunteer.Volunteer) []string {
	queryKeywords := ExtractKeywords(query)
	querySet := make(map[string]struct{}, len(queryKeywords))
	for _, kw := range queryKeywords {
		querySet[kw] = struct{}{}
	}

	var matched []string
	for _, kw := range ExtractKeywords(v.Skills) {
		if containsTerm(querySet, kw) {
			matched = append(matched, kw)
		}
	}

	if len(matched) == 0 {
		matched = partialWordOverlap(query, profile)
	}

	if len(matched) > maxMatchingSkills {
		matched = matched[:maxMatchingSkills]
	}
	return matched
}

func partialWordOverlap(query, profile string) []string {
	queryWords := tokenSet(query)

	var common []string
	seen := make(map[string]struct{})
	for _, word := range strings.Fields(profile) {
		if len(word) <= minPartialWordLen {
			continue
		}
		if !containsTerm(queryWords, word) {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		common = append(common, word)
		if len(common) == maxPartialMatches {
			break
		}
	}
	return common
}

func sortBySimilarity(matches []Match) []Match {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// truncate keeps the first topN matches. Zero and negative limits mean an
// empty result, not "unlimited".
func truncate(matches []Match, topN int) []Match {
	if topN < 0 {
		topN = 0
	}
	if len(matches) > topN {
		return matches[:topN]
	}
	return matches
}
