package ai

import "context"

// Keywords is the categorized result of an LLM keyword-extraction pass over
// a job description. All is the flattened list used for query expansion.
type Keywords struct {
	Skills       []string
	Experience   []string
	Education    []string
	Location     []string
	Availability []string
	All          []string
	Raw          string
}

type Extractor interface {
	Extract(ctx context.Context, jobDescription string) (*Keywords, error)
}
