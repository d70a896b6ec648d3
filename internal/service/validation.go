package service

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"github.com/octobees/lead-tracker/internal/dto"
	"github.com/octobees/lead-tracker/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	maxTextLength     = 200
	minEmailLength    = 5
	maxEmailLength    = 200
	maxLinkedInLength = 500
	maxNotesLength    = 2000
)

// ValidationError indicates that a lead payload failed field validation.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return e.Message
}

// ValidateLeadInput checks field constraints and returns the normalized
// payload: email lower-cased, linkedin URL carrying an explicit scheme,
// tags trimmed and de-duplicated (first occurrence wins).
func ValidateLeadInput(in dto.LeadInput) (dto.LeadInput, error) {
	if err := requireBoundedText("company_name", in.CompanyName); err != nil {
		return dto.LeadInput{}, err
	}
	if err := requireBoundedText("contact_name", in.ContactName); err != nil {
		return dto.LeadInput{}, err
	}
	if err := requireBoundedText("title", in.Title); err != nil {
		return dto.LeadInput{}, err
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return dto.LeadInput{}, err
	}
	in.Email = email

	linkedin, err := normalizeLinkedInURL(in.LinkedInURL)
	if err != nil {
		return dto.LeadInput{}, err
	}
	in.LinkedInURL = linkedin

	if in.Status == "" {
		in.Status = entity.StatusNotContacted
	}
	if !in.Status.IsValid() {
		return dto.LeadInput{}, ValidationError{Message: fmt.Sprintf("invalid status %q", in.Status)}
	}

	if len(in.Notes) > maxNotesLength {
		return dto.LeadInput{}, ValidationError{Message: fmt.Sprintf("notes must be at most %d characters", maxNotesLength)}
	}

	in.Tags = normalizeTags(in.Tags)

	return in, nil
}

func requireBoundedText(field, value string) error {
	if value == "" {
		return ValidationError{Message: fmt.Sprintf("%s is required", field)}
	}
	if len(value) > maxTextLength {
		return ValidationError{Message: fmt.Sprintf("%s must be at most %d characters", field, maxTextLength)}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	if len(raw) < minEmailLength || len(raw) > maxEmailLength {
		return "", ValidationError{Message: fmt.Sprintf("email must be between %d and %d characters", minEmailLength, maxEmailLength)}
	}
	if !emailPattern.MatchString(raw) {
		return "", ValidationError{Message: "email must be in format name@company.com"}
	}

	email := strings.ToLower(raw)
	domain := email[strings.LastIndex(email, "@")+1:]
	if ascii, err := idnaProfile.ToASCII(domain); err != nil || ascii == "" {
		return "", ValidationError{Message: "email domain is not valid"}
	}
	return email, nil
}

func normalizeLinkedInURL(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", nil
	}
	if len(value) > maxLinkedInLength {
		return "", ValidationError{Message: fmt.Sprintf("linkedin_url must be at most %d characters", maxLinkedInLength)}
	}
	if !strings.HasPrefix(value, "http://") && !strings.HasPrefix(value, "https://") {
		value = "https://" + value
	}
	return value, nil
}

func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
