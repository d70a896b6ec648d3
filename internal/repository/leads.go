package repository

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/octobees/lead-tracker/internal/entity"
)

var (
	// ErrLeadNotFound is returned when no lead matches the given id.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrStoreCorrupt indicates the backing store holds unreadable data.
	ErrStoreCorrupt = errors.New("lead store is corrupt")
	// ErrStoreWrite indicates a save failed; the previously committed state is intact.
	ErrStoreWrite = errors.New("lead store write failed")
)

// LeadsRepository describes persistence and query operations over the full
// lead collection. Mutations go through SaveAll: callers load the collection,
// transform it in memory and persist the whole thing back.
type LeadsRepository interface {
	Load(ctx context.Context) ([]entity.Lead, error)
	SaveAll(ctx context.Context, leads []entity.Lead) error
	FindByID(ctx context.Context, id string) (*entity.Lead, error)
	Search(ctx context.Context, query string) ([]entity.Lead, error)
	EmailExists(ctx context.Context, email, excludeID string) (bool, error)
	Stats(ctx context.Context) (entity.Stats, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// filterLeads returns the leads whose company name, contact name or email
// contains the query, case-insensitively. An empty query matches everything.
func filterLeads(leads []entity.Lead, query string) []entity.Lead {
	if query == "" {
		return leads
	}
	q := strings.ToLower(query)

	matched := make([]entity.Lead, 0, len(leads))
	for _, lead := range leads {
		if strings.Contains(strings.ToLower(lead.CompanyName), q) ||
			strings.Contains(strings.ToLower(lead.ContactName), q) ||
			strings.Contains(strings.ToLower(lead.Email), q) {
			matched = append(matched, lead)
		}
	}
	return matched
}

func emailTaken(leads []entity.Lead, email, excludeID string) bool {
	target := strings.ToLower(email)
	for _, lead := range leads {
		if strings.ToLower(lead.Email) == target && lead.ID != excludeID {
			return true
		}
	}
	return false
}

// statsFromLeads aggregates totals, status counts and the top five companies.
// Company ties are broken by first appearance in the collection.
func statsFromLeads(leads []entity.Lead) entity.Stats {
	stats := entity.Stats{
		Total:        len(leads),
		TopCompanies: []entity.CompanyCount{},
	}

	counts := make(map[string]int)
	order := make([]string, 0)

	for _, lead := range leads {
		switch lead.Status {
		case entity.StatusNotContacted:
			stats.ByStatus.NotContacted++
		case entity.StatusContacted:
			stats.ByStatus.Contacted++
		case entity.StatusResponded:
			stats.ByStatus.Responded++
		}

		if _, seen := counts[lead.CompanyName]; !seen {
			order = append(order, lead.CompanyName)
		}
		counts[lead.CompanyName]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	for _, company := range order {
		if len(stats.TopCompanies) == 5 {
			break
		}
		stats.TopCompanies = append(stats.TopCompanies, entity.CompanyCount{
			Company: company,
			Count:   counts[company],
		})
	}

	return stats
}
