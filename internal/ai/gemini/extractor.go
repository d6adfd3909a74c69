package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/sevahub/volunteer-shortlister/internal/ai"
	"github.com/sevahub/volunteer-shortlister/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Extractor asks Gemini for categorized keywords of a job description. A
// failed call or an unparseable response degrades to a plain unique-words
// split of the description, so extraction never blocks the matching flow.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (e *Extractor) Extract(ctx context.Context, jobDescription string) (*ai.Keywords, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return &ai.Keywords{}, nil
	}

	prompt := buildPrompt(jobDescription)

	e.logger.Debug("gemini keyword extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		e.logger.Warn("keyword extraction failed, using word-split fallback", zap.Error(err))
		return FallbackKeywords(jobDescription), nil
	}

	e.logger.Debug("gemini keyword extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	keywords, err := parseResponse(raw)
	if err != nil {
		e.logger.Warn("unparseable keyword response, using word-split fallback", zap.Error(err))
		return FallbackKeywords(jobDescription), nil
	}

	keywords.Raw = raw
	return keywords, nil
}

// FallbackKeywords splits the job description into unique lowercase words.
// It is the degraded result used when the LLM call cannot be completed.
func FallbackKeywords(jobDescription string) *ai.Keywords {
	seen := make(map[string]struct{})
	var words []string
	for _, word := range strings.Fields(strings.ToLower(jobDescription)) {
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		words = append(words, word)
	}
	sort.Strings(words)

	return &ai.Keywords{All: words}
}

func buildPrompt(jobDescription string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job description:\n{{JOB_DESCRIPTION}}\n\nJSON response:"
	}
	return strings.ReplaceAll(template, "{{JOB_DESCRIPTION}}", jobDescription)
}

func parseResponse(raw string) (*ai.Keywords, error) {
	cleaned := extractJSON(strings.TrimSpace(raw))

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &ai.Keywords{
		Skills:       coerceStrings(data["skills"]),
		Experience:   coerceStrings(data["experience_keywords"]),
		Education:    coerceStrings(data["education_keywords"]),
		Location:     coerceStrings(data["location_keywords"]),
		Availability: coerceStrings(data["availability_keywords"]),
		All:          coerceStrings(data["all_keywords"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceStrings(v any) []string {
	switch val := v.(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s := coerceString(item)
			if s == "" {
				continue
			}
			result = append(result, s)
		}
		return result
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	default:
		return nil
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
}
