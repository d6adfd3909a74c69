package volunteer

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	IDField    = "ID"
	EmailField = "Email"

	// ExcludeActorUser marks records excluded manually from the prompt flow.
	ExcludeActorUser = "user"
)

type Volunteers struct {
	Items []*Volunteer
}

// Volunteer is one roster record. Every field is optional free text: the
// matching engine skips absent fields instead of treating them as errors.
type Volunteer struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Skills         string `json:"skills,omitempty"`
	Experience     string `json:"experience,omitempty"`
	Education      string `json:"education,omitempty"`
	Certifications string `json:"certifications,omitempty"`
	Interests      string `json:"interests,omitempty"`
	Languages      string `json:"languages,omitempty"`
	Availability   string `json:"availability,omitempty"`
}

type ExcludedVolunteers struct {
	Items []*ExcludedVolunteer
}

type ExcludedVolunteer struct {
	Email      string
	Name       string
	Actor      string
	Reason     string
	ExcludedAt time.Time
}

func (v *Volunteer) GetStringField(name string) string {
	switch name {
	case IDField:
		return v.ID
	case EmailField:
		return v.Email
	default:
		return ""
	}
}

// HasBasicInfo reports whether the record carries enough data to be matched:
// a name, an email and at least one matchable text field.
func (v *Volunteer) HasBasicInfo() bool {
	if strings.TrimSpace(v.Name) == "" || strings.TrimSpace(v.Email) == "" {
		return false
	}
	for _, field := range []string{v.Skills, v.Experience, v.Interests} {
		if strings.TrimSpace(field) != "" {
			return true
		}
	}
	return false
}

func (v *Volunteers) Len() int {
	return len(v.Items)
}

func (v *Volunteers) FindByID(id string) *Volunteer {
	for _, item := range v.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

func (v *Volunteers) Emails() []string {
	emails := make([]string, 0, len(v.Items))
	for _, item := range v.Items {
		emails = append(emails, item.Email)
	}
	return emails
}

func (v *Volunteers) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "volunteers_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Exclude removes volunteers whose field value matches one of the targets.
// It returns the emails of the removed records.
func (v *Volunteers) Exclude(name string, targets []string) []string {
	var excluded []string
	for _, target := range targets {
		for idx, item := range v.Items {
			if item.GetStringField(name) == target {
				v.RemoveByIndex(idx)
				excluded = append(excluded, item.Email)
				break
			}
		}
	}
	return excluded
}

// RemoveByIndex removes a volunteer from the list by index. Do not preserve order.
func (v *Volunteers) RemoveByIndex(idx int) {
	v.Items[idx] = v.Items[len(v.Items)-1]
	v.Items = v.Items[:len(v.Items)-1]
}

func (v *Volunteers) ToExcluded(actor, reason string) *ExcludedVolunteers {
	excluded := &ExcludedVolunteers{}
	for _, item := range v.Items {
		excluded.Items = append(excluded.Items, &ExcludedVolunteer{
			Email:      item.Email,
			Name:       item.Name,
			Actor:      actor,
			Reason:     reason,
			ExcludedAt: time.Now().UTC(),
		})
	}
	return excluded
}

func GetExcludedVolunteersFromFile(path string) (*ExcludedVolunteers, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &ExcludedVolunteers{}, nil
	}

	var excluded ExcludedVolunteers
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, fmt.Errorf("decode exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

func (e *ExcludedVolunteers) Append(s *ExcludedVolunteers) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedVolunteers) VolunteersEmails() []string {
	emails := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		emails = append(emails, item.Email)
	}
	return emails
}

func (e *ExcludedVolunteers) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
