// Package history derives activity-log entries from lead mutations. It is
// pure: given the old lead, the proposed field set and a timestamp it returns
// the resulting lead, performing no I/O and raising no errors of its own.
package history

import (
	"fmt"
	"time"

	"github.com/octobees/lead-tracker/internal/dto"
	"github.com/octobees/lead-tracker/internal/entity"
)

// noteDetailsLimit caps how much of a new note is copied into the activity entry.
const noteDetailsLimit = 100

// NewLead builds a freshly created lead: the id and creation time are
// assigned once here and never change afterwards, and the history is seeded
// with a single created entry.
func NewLead(in dto.LeadInput, id string, now time.Time) entity.Lead {
	created := entity.Activity{
		Timestamp:   now,
		Type:        entity.ActivityCreated,
		Description: fmt.Sprintf("Lead created for %s", in.ContactName),
	}

	return entity.Lead{
		ID:              id,
		CompanyName:     in.CompanyName,
		ContactName:     in.ContactName,
		Title:           in.Title,
		Email:           in.Email,
		LinkedInURL:     in.LinkedInURL,
		Status:          in.Status,
		Notes:           in.Notes,
		Tags:            in.Tags,
		DateAdded:       now,
		LastContacted:   nil,
		ActivityHistory: []entity.Activity{created},
	}
}

// ApplyUpdate diffs the old lead against the proposed field set and returns
// the updated lead with the derived activities appended.
//
// Every diff is evaluated against the same old snapshot and the same now
// timestamp. Entries are appended in a fixed order: status change, note,
// added tags, removed tags, then a generic updated entry only when none of
// the specific diffs produced anything. A tag or note change therefore
// suppresses the generic entry even when an untracked field (say, email)
// changed too.
func ApplyUpdate(old entity.Lead, in dto.LeadInput, now time.Time) entity.Lead {
	var appended []entity.Activity
	lastContacted := old.LastContacted

	if in.Status != old.Status {
		appended = append(appended, entity.Activity{
			Timestamp:   now,
			Type:        entity.ActivityStatusChanged,
			Description: fmt.Sprintf("Status changed from %s to %s", old.Status, in.Status),
		})
		if in.Status == entity.StatusContacted || in.Status == entity.StatusResponded {
			ts := now
			lastContacted = &ts
		}
	}

	if in.Notes != "" && in.Notes != old.Notes {
		details := truncateRunes(in.Notes, noteDetailsLimit)
		appended = append(appended, entity.Activity{
			Timestamp:   now,
			Type:        entity.ActivityNoteAdded,
			Description: "Note updated",
			Details:     &details,
		})
	}

	for _, tag := range addedTags(old.Tags, in.Tags) {
		appended = append(appended, entity.Activity{
			Timestamp:   now,
			Type:        entity.ActivityTagAdded,
			Description: fmt.Sprintf("Tag added: %s", tag),
		})
	}
	for _, tag := range removedTags(old.Tags, in.Tags) {
		appended = append(appended, entity.Activity{
			Timestamp:   now,
			Type:        entity.ActivityTagRemoved,
			Description: fmt.Sprintf("Tag removed: %s", tag),
		})
	}

	if len(appended) == 0 {
		appended = append(appended, entity.Activity{
			Timestamp:   now,
			Type:        entity.ActivityUpdated,
			Description: "Lead information updated",
		})
	}

	updated := entity.Lead{
		ID:            old.ID,
		CompanyName:   in.CompanyName,
		ContactName:   in.ContactName,
		Title:         in.Title,
		Email:         in.Email,
		LinkedInURL:   in.LinkedInURL,
		Status:        in.Status,
		Notes:         in.Notes,
		Tags:          in.Tags,
		DateAdded:     old.DateAdded,
		LastContacted: lastContacted,
	}
	updated.ActivityHistory = make([]entity.Activity, 0, len(old.ActivityHistory)+len(appended))
	updated.ActivityHistory = append(updated.ActivityHistory, old.ActivityHistory...)
	updated.ActivityHistory = append(updated.ActivityHistory, appended...)

	return updated
}

// addedTags returns tags present in new but not old, in new's order.
func addedTags(old, new []string) []string {
	oldSet := toSet(old)
	var added []string
	seen := make(map[string]struct{}, len(new))
	for _, tag := range new {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := oldSet[tag]; !ok {
			added = append(added, tag)
		}
	}
	return added
}

// removedTags returns tags present in old but not new, in old's order.
func removedTags(old, new []string) []string {
	newSet := toSet(new)
	var removed []string
	seen := make(map[string]struct{}, len(old))
	for _, tag := range old {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		if _, ok := newSet[tag]; !ok {
			removed = append(removed, tag)
		}
	}
	return removed
}

func toSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		set[tag] = struct{}{}
	}
	return set
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
