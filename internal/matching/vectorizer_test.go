package matching

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"
)

func TestTokenizeKeepsTechPunctuation(t *testing.T) {
	t.Parallel()

	got := tokenize("c++ c# node.js r python3")
	expect := []string{"c++", "c#", "node.js", "python3"}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestFeaturesIncludeBigrams(t *testing.T) {
	t.Parallel()

	got := features("python developer with django")
	expect := []string{
		"python", "developer", "django",
		"python developer", "developer django",
	}
	if !reflect.DeepEqual(got, expect) {
		t.Fatalf("expected %v, got %v", expect, got)
	}
}

func TestFitTransformRowsAreUnitLength(t *testing.T) {
	t.Parallel()

	corpus := []string{
		"python django web development",
		"python data analysis",
		"gardening and cooking",
	}

	rows, err := newVectorizer().fitTransform(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rows) != len(corpus) {
		t.Fatalf("expected %d rows, got %d", len(corpus), len(rows))
	}

	for i, row := range rows {
		var sum float64
		for _, w := range row {
			sum += w * w
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("row %d is not L2-normalized: squared norm %v", i, sum)
		}
	}
}

func TestFitTransformEmptyVocabulary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		corpus []string
	}{
		{name: "no documents", corpus: nil},
		{name: "all documents empty", corpus: []string{"", "", ""}},
		{name: "only stop words", corpus: []string{"the and of", "a an it"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := newVectorizer().fitTransform(tt.corpus); !errors.Is(err, errEmptyVocabulary) {
				t.Fatalf("expected empty vocabulary error, got %v", err)
			}
		})
	}
}

func TestFitTransformCapsVocabulary(t *testing.T) {
	t.Parallel()

	// Two long distinct documents blow well past the cap once bigrams are
	// counted; the fitted vocabulary must stay bounded.
	var docA, docB string
	for i := 0; i < 800; i++ {
		docA += fmt.Sprintf("alpha%d ", i)
		docB += fmt.Sprintf("beta%d ", i)
	}

	v := newVectorizer()
	rows, err := v.fitTransform([]string{docA, docB})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(v.vocabulary) != maxFeatures {
		t.Fatalf("expected vocabulary capped at %d, got %d", maxFeatures, len(v.vocabulary))
	}
	if len(rows[0]) != maxFeatures {
		t.Fatalf("expected row width %d, got %d", maxFeatures, len(rows[0]))
	}
}

func TestCosineSimilarityBounds(t *testing.T) {
	t.Parallel()

	rows, err := newVectorizer().fitTransform([]string{
		"python django sql",
		"python django sql",
		"completely unrelated gardening text",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sim := cosineSimilarity(rows[0], rows[1]); math.Abs(sim-1) > 1e-9 {
		t.Fatalf("identical documents should score 1, got %v", sim)
	}

	if sim := cosineSimilarity(rows[0], rows[2]); sim != 0 {
		t.Fatalf("disjoint documents should score 0, got %v", sim)
	}
}

func TestFitTransformDeterministic(t *testing.T) {
	t.Parallel()

	corpus := []string{
		"python developer with django experience",
		"python, django, sql",
		"java spring backend",
	}

	first, err := newVectorizer().fitTransform(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := newVectorizer().fitTransform(corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fitTransform is not deterministic for identical corpora")
	}
}
