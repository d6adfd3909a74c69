package matching

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// maxFeatures caps the vocabulary at the most frequent terms across the
// corpus, which bounds memory per request.
const maxFeatures = 1000

var tokenPattern = regexp.MustCompile(`[a-z0-9+#.]{2,}`)

// stopWords lists common English function words excluded from the feature
// vocabulary. Removal happens before bigram formation, so "developer with
// experience" yields the bigram "developer experience".
var stopWords = map[string]struct{}{}

func init() {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "than", "so",
		"as", "at", "by", "for", "from", "in", "into", "of", "on", "to",
		"with", "about", "against", "between", "through", "during", "before",
		"after", "above", "below", "up", "down", "out", "off", "over",
		"under", "again", "further", "once", "here", "there", "all", "any",
		"both", "each", "few", "more", "most", "other", "some", "such",
		"only", "own", "same", "very", "just", "also", "is", "are", "was",
		"were", "be", "been", "being", "am", "do", "does", "did", "doing",
		"have", "has", "had", "having", "will", "would", "shall", "should",
		"can", "could", "may", "might", "must", "not", "no", "nor", "it",
		"its", "itself", "this", "that", "these", "those", "what", "which",
		"who", "whom", "whose", "when", "where", "why", "how", "i", "me",
		"my", "myself", "we", "our", "ours", "you", "your", "yours", "he",
		"him", "his", "she", "her", "hers", "they", "them", "their",
		"theirs", "us", "because", "while", "until", "although", "though",
		"among", "within", "without", "per", "via",
	}
	for _, w := range words {
		stopWords[w] = struct{}{}
	}
}

var errEmptyVocabulary = errors.New("no usable terms in corpus")

// vectorizer builds a TF-IDF vector space over a single request's corpus.
// It must not be shared between requests: the vocabulary depends on exactly
// the documents it was fitted on.
type vectorizer struct {
	maxFeatures int
	vocabulary  map[string]int
	idf         []float64
}

func newVectorizer() *vectorizer {
	return &vectorizer{maxFeatures: maxFeatures}
}

// tokenize splits normalized text into word tokens. The pattern keeps
// + # . inside tokens so terms like "c++", "c#" and "node.js" survive.
func tokenize(text string) []string {
	return tokenPattern.FindAllString(text, -1)
}

// features produces the unigram and adjacent-bigram features of a document,
// with stop words removed first.
func features(text string) []string {
	tokens := tokenize(text)

	kept := tokens[:0]
	for _, tok := range tokens {
		if _, ok := stopWords[tok]; ok {
			continue
		}
		kept = append(kept, tok)
	}

	feats := make([]string, 0, len(kept)*2)
	feats = append(feats, kept...)
	for i := 0; i+1 < len(kept); i++ {
		feats = append(feats, kept[i]+" "+kept[i+1])
	}
	return feats
}

// fitTransform fits the vocabulary and IDF weights on the corpus and returns
// one L2-normalized TF-IDF row per document. It fails when no document
// contributes a single eligible term; callers treat that as the signal to
// fall back to plain keyword-overlap scoring.
func (v *vectorizer) fitTransform(corpus []string) ([][]float64, error) {
	if len(corpus) == 0 {
		return nil, errEmptyVocabulary
	}

	counts := make([]map[string]int, len(corpus))
	totals := make(map[string]int)
	for i, doc := range corpus {
		docCounts := make(map[string]int)
		for _, feat := range features(doc) {
			docCounts[feat]++
			totals[feat]++
		}
		counts[i] = docCounts
	}

	if len(totals) == 0 {
		return nil, errEmptyVocabulary
	}

	// Keep the most frequent terms. Ties break alphabetically so the fit is
	// deterministic for identical corpora.
	terms := make([]string, 0, len(totals))
	for term := range totals {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if totals[terms[i]] != totals[terms[j]] {
			return totals[terms[i]] > totals[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}

	v.vocabulary = make(map[string]int, len(terms))
	for col, term := range terms {
		v.vocabulary[term] = col
	}

	df := make([]int, len(terms))
	for _, docCounts := range counts {
		for term := range docCounts {
			if col, ok := v.vocabulary[term]; ok {
				df[col]++
			}
		}
	}

	// Smoothed IDF: ln((1+n)/(1+df)) + 1. The smoothing keeps terms that
	// appear in every document from zeroing out entirely.
	n := float64(len(corpus))
	v.idf = make([]float64, len(terms))
	for col, d := range df {
		v.idf[col] = math.Log((1+n)/(1+float64(d))) + 1
	}

	rows := make([][]float64, len(corpus))
	for i, docCounts := range counts {
		row := make([]float64, len(terms))
		for term, count := range docCounts {
			if col, ok := v.vocabulary[term]; ok {
				row[col] = float64(count) * v.idf[col]
			}
		}
		normalizeL2(row)
		rows[i] = row
	}

	return rows, nil
}

func normalizeL2(row []float64) {
	var sum float64
	for _, w := range row {
		sum += w * w
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for i := range row {
		row[i] /= norm
	}
}

// cosineSimilarity of two L2-normalized non-negative vectors is their dot
// product, clamped into [0,1] against float drift.
func cosineSimilarity(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	if dot < 0 {
		return 0
	}
	if dot > 1 {
		return 1
	}
	return dot
}

func containsTerm(set map[string]struct{}, term string) bool {
	_, ok := set[term]
	return ok
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(text) {
		set[tok] = struct{}{}
	}
	return set
}
