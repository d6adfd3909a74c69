package volunteer

import (
	"path/filepath"
	"testing"
	"time"
)

func TestHasBasicInfo(t *testing.T) {
	tests := []struct {
		name string
		v    *Volunteer
		want bool
	}{
		{"complete", &Volunteer{Name: "Asha", Email: "a@example.org", Skills: "python"}, true},
		{"experience only", &Volunteer{Name: "Asha", Email: "a@example.org", Experience: "3 years"}, true},
		{"interests only", &Volunteer{Name: "Asha", Email: "a@example.org", Interests: "teaching"}, true},
		{"no email", &Volunteer{Name: "Asha", Skills: "python"}, false},
		{"no name", &Volunteer{Email: "a@example.org", Skills: "python"}, false},
		{"no matchable fields", &Volunteer{Name: "Asha", Email: "a@example.org", Phone: "123"}, false},
		{"whitespace fields", &Volunteer{Name: "Asha", Email: "a@example.org", Skills: "  "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.HasBasicInfo(); got != tt.want {
				t.Fatalf("HasBasicInfo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExcludeByEmail(t *testing.T) {
	volunteers := &Volunteers{Items: []*Volunteer{
		{ID: "1", Email: "keep@example.org"},
		{ID: "2", Email: "drop@example.org"},
		{ID: "3", Email: "another@example.org"},
	}}

	excluded := volunteers.Exclude(EmailField, []string{"drop@example.org", "missing@example.org"})

	if len(excluded) != 1 || excluded[0] != "drop@example.org" {
		t.Fatalf("unexpected excluded emails: %v", excluded)
	}
	if volunteers.Len() != 2 {
		t.Fatalf("expected 2 volunteers left, got %d", volunteers.Len())
	}
	if volunteers.FindByID("2") != nil {
		t.Fatal("volunteer 2 should have been removed")
	}
}

func TestEmails(t *testing.T) {
	volunteers := &Volunteers{Items: []*Volunteer{
		{ID: "1", Email: "first@example.org"},
		{ID: "2", Email: "second@example.org"},
	}}

	emails := volunteers.Emails()
	if len(emails) != 2 || emails[0] != "first@example.org" || emails[1] != "second@example.org" {
		t.Fatalf("unexpected emails: %v", emails)
	}
}

func TestExcludedVolunteersRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "excluded.json")

	excluded := &ExcludedVolunteers{Items: []*ExcludedVolunteer{
		{Email: "one@example.org", Name: "One", Actor: ExcludeActorUser, Reason: "opted out", ExcludedAt: time.Now().UTC()},
	}}
	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	loaded, err := GetExcludedVolunteersFromFile(path)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}
	if len(loaded.Items) != 1 {
		t.Fatalf("expected 1 excluded volunteer, got %d", len(loaded.Items))
	}
	if loaded.Items[0].Email != "one@example.org" || loaded.Items[0].Actor != ExcludeActorUser {
		t.Fatalf("unexpected excluded volunteer: %+v", loaded.Items[0])
	}

	more := (&Volunteers{Items: []*Volunteer{{Email: "two@example.org", Name: "Two"}}}).ToExcluded(ExcludeActorUser, "duplicate")
	loaded.Append(more)

	emails := loaded.VolunteersEmails()
	if len(emails) != 2 || emails[1] != "two@example.org" {
		t.Fatalf("unexpected emails after append: %v", emails)
	}
}

func TestGetExcludedVolunteersFromEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := (&ExcludedVolunteers{}).ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	loaded, err := GetExcludedVolunteersFromFile(path)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}
	if len(loaded.Items) != 0 {
		t.Fatalf("expected no excluded volunteers, got %d", len(loaded.Items))
	}
}
