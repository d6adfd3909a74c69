package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sevahub/volunteer-shortlister/internal/matching"
	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

func jobCommand(t *testing.T, jobFlag string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.Flags().String("job", "", "")
	if jobFlag != "" {
		if err := cmd.Flags().Set("job", jobFlag); err != nil {
			t.Fatalf("setting job flag: %v", err)
		}
	}
	return cmd
}

func TestResolveJobDescriptionFromFlag(t *testing.T) {
	cmd := jobCommand(t, "Need a Python tutor")

	got, err := resolveJobDescription(cmd, &Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Need a Python tutor" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestResolveJobDescriptionFromConfig(t *testing.T) {
	config := &Config{}
	config.Job = &struct {
		Description     string `mapstructure:"description"`
		DescriptionFile string `mapstructure:"description-file"`
	}{Description: "  from config  "}

	got, err := resolveJobDescription(jobCommand(t, ""), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from config" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestResolveJobDescriptionFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.txt")
	if err := os.WriteFile(path, []byte("from file\n"), 0o600); err != nil {
		t.Fatalf("writing description file: %v", err)
	}

	config := &Config{}
	config.Job = &struct {
		Description     string `mapstructure:"description"`
		DescriptionFile string `mapstructure:"description-file"`
	}{DescriptionFile: path}

	got, err := resolveJobDescription(jobCommand(t, ""), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "from file" {
		t.Fatalf("unexpected description: %q", got)
	}
}

func TestResolveJobDescriptionMissing(t *testing.T) {
	if _, err := resolveJobDescription(jobCommand(t, ""), &Config{}); err == nil {
		t.Fatal("expected an error without a description")
	}
}

func TestMatchingLimitsDefaults(t *testing.T) {
	minScore, maxResults := matchingLimits(&Config{})
	if minScore != matching.DefaultMinScore {
		t.Fatalf("unexpected default min score: %v", minScore)
	}
	if maxResults != matching.DefaultMaxResults {
		t.Fatalf("unexpected default max results: %v", maxResults)
	}
}

func TestMatchingLimitsFromConfig(t *testing.T) {
	minScore, maxResults := matchingLimits(&Config{
		Matching: &MatchingConfig{MinScore: 0.25, MaxResults: 3},
	})
	if minScore != 0.25 || maxResults != 3 {
		t.Fatalf("unexpected limits: %v, %v", minScore, maxResults)
	}
}

func TestHandleActionDumpsVolunteers(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	volunteers := &volunteer.Volunteers{Items: []*volunteer.Volunteer{
		{ID: "1", Name: "Asha", Email: "asha@example.org"},
		{ID: "2", Name: "Ravi", Email: "ravi@example.org"},
	}}

	err := handleAction(context.Background(), jobCommand(t, ""), PromptVolunteersToFile, &Config{}, logger, "", volunteers, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := logs.FilterMessage("dumping volunteers to file").All()
	if len(entries) != 1 {
		t.Fatalf("expected one log entry, got %d", len(entries))
	}
	filename, ok := entries[0].ContextMap()["filename"].(string)
	if !ok || filename == "" {
		t.Fatalf("missing filename in log entry: %v", entries[0].ContextMap())
	}
	defer os.Remove(filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		t.Fatalf("reading dump file: %v", err)
	}
	dumped := &volunteer.Volunteers{}
	if err := json.Unmarshal(data, dumped); err != nil {
		t.Fatalf("parsing dump file: %v", err)
	}
	if dumped.Len() != 2 {
		t.Fatalf("expected 2 dumped volunteers, got %d", dumped.Len())
	}
}

func TestPrepareFilterConfig(t *testing.T) {
	config := &Config{ExcludeFile: "excluded.json"}
	config.Exclude = &struct{ Emails []string }{Emails: []string{"drop@example.org"}}

	cfg := prepareFilterConfig(config)
	if cfg.ExcludeFile != "excluded.json" {
		t.Fatalf("unexpected exclude file: %q", cfg.ExcludeFile)
	}
	if len(cfg.ExcludeEmails) != 1 || cfg.ExcludeEmails[0] != "drop@example.org" {
		t.Fatalf("unexpected exclude emails: %v", cfg.ExcludeEmails)
	}
}
