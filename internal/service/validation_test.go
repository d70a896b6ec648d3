package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/octobees/lead-tracker/internal/dto"
	"github.com/octobees/lead-tracker/internal/entity"
)

func validInput() dto.LeadInput {
	return dto.LeadInput{
		CompanyName: "Acme",
		ContactName: "Jane Doe",
		Title:       "CTO",
		Email:       "Jane@Acme.com",
	}
}

func TestValidateLeadInput_Normalization(t *testing.T) {
	in := validInput()
	in.LinkedInURL = "linkedin.com/in/janedoe"
	in.Tags = []string{" vip ", "vip", "", "warm"}

	got, err := ValidateLeadInput(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Email != "jane@acme.com" {
		t.Fatalf("expected email lower-cased, got %q", got.Email)
	}
	if got.LinkedInURL != "https://linkedin.com/in/janedoe" {
		t.Fatalf("expected https scheme prefixed, got %q", got.LinkedInURL)
	}
	if got.Status != entity.StatusNotContacted {
		t.Fatalf("expected status default, got %q", got.Status)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "vip" || got.Tags[1] != "warm" {
		t.Fatalf("expected tags trimmed and de-duplicated, got %v", got.Tags)
	}
}

func TestValidateLeadInput_Errors(t *testing.T) {
	tests := map[string]func(in *dto.LeadInput){
		"missing company":   func(in *dto.LeadInput) { in.CompanyName = "" },
		"missing contact":   func(in *dto.LeadInput) { in.ContactName = "" },
		"missing title":     func(in *dto.LeadInput) { in.Title = "" },
		"company too long":  func(in *dto.LeadInput) { in.CompanyName = strings.Repeat("a", 201) },
		"email no at":       func(in *dto.LeadInput) { in.Email = "janeacme.com" },
		"email no tld":      func(in *dto.LeadInput) { in.Email = "jane@acme" },
		"email with spaces": func(in *dto.LeadInput) { in.Email = "ja ne@acme.com" },
		"email too short":   func(in *dto.LeadInput) { in.Email = "a@b" },
		"linkedin too long": func(in *dto.LeadInput) { in.LinkedInURL = "https://" + strings.Repeat("a", 500) },
		"invalid status":    func(in *dto.LeadInput) { in.Status = "archived" },
		"notes too long":    func(in *dto.LeadInput) { in.Notes = strings.Repeat("n", 2001) },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)

			_, err := ValidateLeadInput(in)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			var vErr ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestValidateLeadInput_KeepsExplicitStatus(t *testing.T) {
	in := validInput()
	in.Status = entity.StatusResponded

	got, err := ValidateLeadInput(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != entity.StatusResponded {
		t.Fatalf("expected explicit status kept, got %q", got.Status)
	}
}

func TestNormalizeTags_Empty(t *testing.T) {
	if got := normalizeTags([]string{"  ", ""}); got != nil {
		t.Fatalf("expected nil for blank tags, got %v", got)
	}
	if got := normalizeTags(nil); got != nil {
		t.Fatalf("expected nil for nil tags, got %v", got)
	}
}
