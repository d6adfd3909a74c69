package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sevahub/volunteer-shortlister/internal/volunteer"
)

type eligibilityFilter struct {
	disabled bool
	reason   string
}

// NewEligibility creates a filter that removes volunteers lacking basic profile data.
func NewEligibility() Filter {
	return &eligibilityFilter{}
}

func (f *eligibilityFilter) Name() string { return "eligibility" }

func (f *eligibilityFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *eligibilityFilter) IsEnabled() bool { return !f.disabled }

func (f *eligibilityFilter) Validate(*Config) error { return nil }

func (f *eligibilityFilter) Apply(_ context.Context, deps Deps, v *volunteer.Volunteers) (*volunteer.Volunteers, Step, error) {
	initial := v.Len()
	kept := make([]*volunteer.Volunteer, 0, initial)
	dropped := make([]string, 0)

	for _, vol := range v.Items {
		if vol.HasBasicInfo() {
			kept = append(kept, vol)
			continue
		}
		dropped = append(dropped, vol.ID)
	}
	v.Items = kept

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding volunteers without usable profile data",
			zap.Strings("excluded_volunteers", dropped),
			zap.Int("volunteers_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

func (f *eligibilityFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}

type dedupeFilter struct{}

// NewDedupe creates a filter that removes duplicate volunteers sharing the same email.
func NewDedupe() Filter {
	return &dedupeFilter{}
}

func (f *dedupeFilter) Name() string { return "dedupe" }

func (f *dedupeFilter) Disable(string) {}

func (f *dedupeFilter) IsEnabled() bool { return true }

func (f *dedupeFilter) Validate(*Config) error { return nil }

func (f *dedupeFilter) Apply(_ context.Context, deps Deps, v *volunteer.Volunteers) (*volunteer.Volunteers, Step, error) {
	initial := v.Len()
	seen := make(map[string]bool, initial)
	kept := make([]*volunteer.Volunteer, 0, initial)
	dropped := make([]string, 0)

	for _, vol := range v.Items {
		email := strings.ToLower(strings.TrimSpace(vol.Email))
		if email == "" || !seen[email] {
			seen[email] = true
			kept = append(kept, vol)
			continue
		}
		dropped = append(dropped, vol.ID)
	}
	v.Items = kept

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding duplicated volunteers by email",
			zap.Strings("excluded_volunteers", dropped),
			zap.Int("volunteers_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(dropped), Left: v.Len()}, nil
}

type excludeEmailsFilter struct {
	emails []string
}

// NewExcludeEmails creates a filter that removes volunteers by emails configured in the config.
func NewExcludeEmails() Filter {
	return &excludeEmailsFilter{}
}

func (f *excludeEmailsFilter) Name() string { return "exclude_emails" }

func (f *excludeEmailsFilter) Disable(string) {}

func (f *excludeEmailsFilter) IsEnabled() bool { return true }

func (f *excludeEmailsFilter) Validate(cfg *Config) error {
	f.emails = nil
	if cfg != nil {
		f.emails = append(f.emails, cfg.ExcludeEmails...)
	}
	return nil
}

func (f *excludeEmailsFilter) Apply(_ context.Context, deps Deps, v *volunteer.Volunteers) (*volunteer.Volunteers, Step, error) {
	initial := v.Len()
	if len(f.emails) == 0 {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded := v.Exclude(volunteer.EmailField, f.emails)
	if deps.Logger != nil && len(excluded) > 0 {
		deps.Logger.Info("excluding volunteers by configured emails",
			zap.Strings("excluded_emails", f.emails),
			zap.Strings("excluded_volunteers", excluded),
			zap.Int("volunteers_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *excludeEmailsFilter) Status() Status {
	details := map[string]string{}
	if len(f.emails) > 0 {
		details["emails"] = strings.Join(f.emails, ",")
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes volunteers contained in exclude files.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, v *volunteer.Volunteers) (*volunteer.Volunteers, Step, error) {
	initial := v.Len()
	if f.path == "" {
		return v, Step{Initial: initial, Dropped: 0, Left: v.Len()}, nil
	}

	excluded, err := volunteer.GetExcludedVolunteersFromFile(f.path)
	if err != nil {
		return v, Step{}, fmt.Errorf("getting excluded volunteers from file: %w", err)
	}

	removed := v.Exclude(volunteer.EmailField, excluded.VolunteersEmails())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding volunteers based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_volunteers", removed),
			zap.Int("volunteers_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
