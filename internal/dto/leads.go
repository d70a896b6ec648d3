package dto

import "github.com/octobees/lead-tracker/internal/entity"

// LeadInput carries the mutable fields accepted when creating or updating a lead.
type LeadInput struct {
	CompanyName string            `json:"company_name"`
	ContactName string            `json:"contact_name"`
	Title       string            `json:"title"`
	Email       string            `json:"email"`
	LinkedInURL string            `json:"linkedin_url"`
	Status      entity.LeadStatus `json:"status"`
	Notes       string            `json:"notes"`
	Tags        []string          `json:"tags"`
}

// LeadResult wraps a lead together with an optional non-fatal warning,
// e.g. when another lead already uses the same email address.
type LeadResult struct {
	Lead    entity.Lead `json:"lead"`
	Warning *string     `json:"warning,omitempty"`
}

// ImportSummary reports how many rows a CSV import created or skipped.
type ImportSummary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}
