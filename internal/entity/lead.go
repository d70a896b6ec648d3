package entity

import (
	"strings"
	"time"
)

// LeadStatus tracks how far outreach to a lead has progressed.
type LeadStatus string

const (
	StatusNotContacted LeadStatus = "not_contacted"
	StatusContacted    LeadStatus = "contacted"
	StatusResponded    LeadStatus = "responded"
)

// IsValid reports whether the status is one of the known values.
func (s LeadStatus) IsValid() bool {
	switch s {
	case StatusNotContacted, StatusContacted, StatusResponded:
		return true
	}
	return false
}

// Display renders the status in its human-friendly form, e.g. "Not Contacted".
func (s LeadStatus) Display() string {
	parts := strings.Split(string(s), "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// ActivityType identifies the kind of event recorded in a lead's history.
type ActivityType string

const (
	ActivityCreated       ActivityType = "created"
	ActivityUpdated       ActivityType = "updated"
	ActivityStatusChanged ActivityType = "status_changed"
	ActivityNoteAdded     ActivityType = "note_added"
	ActivityTagAdded      ActivityType = "tag_added"
	ActivityTagRemoved    ActivityType = "tag_removed"
)

// Activity is a single immutable entry in a lead's audit history.
type Activity struct {
	Timestamp   time.Time    `json:"timestamp"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description"`
	Details     *string      `json:"details,omitempty"`
}

// Lead represents a prospective business contact.
//
// ID and DateAdded are assigned at creation and never change afterwards.
// ActivityHistory is append-only; existing entries are never rewritten.
type Lead struct {
	ID              string     `json:"id"`
	CompanyName     string     `json:"company_name"`
	ContactName     string     `json:"contact_name"`
	Title           string     `json:"title"`
	Email           string     `json:"email"`
	LinkedInURL     string     `json:"linkedin_url"`
	Status          LeadStatus `json:"status"`
	Notes           string     `json:"notes"`
	Tags            []string   `json:"tags"`
	DateAdded       time.Time  `json:"date_added"`
	LastContacted   *time.Time `json:"last_contacted"`
	ActivityHistory []Activity `json:"activity_history"`
}
