package gemini

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestExtractorExtract(t *testing.T) {
	stub := &stubGenerator{response: `{
		"skills": ["python", "django"],
		"experience_keywords": ["2+ years"],
		"education_keywords": [],
		"location_keywords": ["remote"],
		"availability_keywords": ["part-time"],
		"all_keywords": ["python", "django", "web development", "remote"]
	}`}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	keywords, err := extractor.Extract(context.Background(), "Need a Python developer with Django experience")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(keywords.Skills, []string{"python", "django"}) {
		t.Fatalf("unexpected skills: %v", keywords.Skills)
	}

	if len(keywords.All) != 4 {
		t.Fatalf("expected 4 keywords, got %v", keywords.All)
	}

	if keywords.Raw == "" {
		t.Fatalf("expected raw response to be kept")
	}

	if !strings.Contains(stub.lastPrompt, "Need a Python developer with Django experience") {
		t.Fatalf("expected job description in prompt, got: %s", stub.lastPrompt)
	}
}

func TestExtractorHandlesCodeFences(t *testing.T) {
	stub := &stubGenerator{response: "```json\n{\"all_keywords\": [\"python\", \"sql\"]}\n```"}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	keywords, err := extractor.Extract(context.Background(), "Python and SQL role")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(keywords.All, []string{"python", "sql"}) {
		t.Fatalf("unexpected keywords: %v", keywords.All)
	}
}

func TestExtractorFallsBackOnGeneratorError(t *testing.T) {
	stub := &stubGenerator{err: errors.New("quota exceeded")}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	keywords, err := extractor.Extract(context.Background(), "Looking for Python Python developer")
	if err != nil {
		t.Fatalf("fallback must not surface an error, got: %v", err)
	}

	// Unique lowercase words, no duplicates.
	expect := []string{"developer", "for", "looking", "python"}
	if !reflect.DeepEqual(keywords.All, expect) {
		t.Fatalf("expected %v, got %v", expect, keywords.All)
	}
}

func TestExtractorFallsBackOnMalformedResponse(t *testing.T) {
	stub := &stubGenerator{response: "I cannot answer that."}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	keywords, err := extractor.Extract(context.Background(), "Python role")
	if err != nil {
		t.Fatalf("fallback must not surface an error, got: %v", err)
	}
	if len(keywords.All) == 0 {
		t.Fatalf("expected fallback keywords, got none")
	}
}

func TestExtractorEmptyJobDescription(t *testing.T) {
	stub := &stubGenerator{response: `{"all_keywords": ["unused"]}`}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	keywords, err := extractor.Extract(context.Background(), "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keywords.All) != 0 {
		t.Fatalf("expected no keywords for empty description, got %v", keywords.All)
	}
	if stub.lastPrompt != "" {
		t.Fatalf("expected no request for empty description")
	}
}

func TestParseResponseCoercesLooseValues(t *testing.T) {
	keywords, err := parseResponse(`{"skills": "python", "all_keywords": ["go", 42, ""]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(keywords.Skills, []string{"python"}) {
		t.Fatalf("expected singular skill coerced into list, got %v", keywords.Skills)
	}
	if !reflect.DeepEqual(keywords.All, []string{"go", "42"}) {
		t.Fatalf("unexpected all keywords: %v", keywords.All)
	}
}
