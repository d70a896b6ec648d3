package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/lead-tracker/internal/dto"
	"github.com/octobees/lead-tracker/internal/entity"
	"github.com/octobees/lead-tracker/internal/repository"
	"github.com/octobees/lead-tracker/internal/service/history"
)

// LeadsService exposes the lead-tracking operations on top of an injected
// store. Every mutation is a full load, compute, save-all round trip; the
// last writer wins at whole-collection granularity.
type LeadsService struct {
	repo repository.LeadsRepository
}

// NewLeadsService creates a new instance of LeadsService.
func NewLeadsService(repo repository.LeadsRepository) *LeadsService {
	return &LeadsService{repo: repo}
}

// List returns all leads, optionally filtered by a search query matched
// case-insensitively against company name, contact name and email.
func (s *LeadsService) List(ctx context.Context, query string) ([]entity.Lead, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}

// Get fetches one lead by id.
func (s *LeadsService) Get(ctx context.Context, id string) (*entity.Lead, error) {
	return s.repo.FindByID(ctx, id)
}

// Create validates the payload and appends a new lead to the collection. A
// duplicate email never blocks the write; it only produces a warning.
func (s *LeadsService) Create(ctx context.Context, in dto.LeadInput) (dto.LeadResult, error) {
	in, err := ValidateLeadInput(in)
	if err != nil {
		return dto.LeadResult{}, err
	}

	var warning *string
	exists, err := s.repo.EmailExists(ctx, in.Email, "")
	if err != nil {
		return dto.LeadResult{}, err
	}
	if exists {
		msg := fmt.Sprintf("Warning: A lead with email %s already exists", in.Email)
		warning = &msg
	}

	leads, err := s.repo.Load(ctx)
	if err != nil {
		return dto.LeadResult{}, err
	}

	lead := history.NewLead(in, uuid.NewString(), time.Now())
	leads = append(leads, lead)
	if err := s.repo.SaveAll(ctx, leads); err != nil {
		return dto.LeadResult{}, err
	}

	return dto.LeadResult{Lead: lead, Warning: warning}, nil
}

// Update replaces the mutable fields of an existing lead, deriving activity
// entries from the diff. Returns repository.ErrLeadNotFound for unknown ids.
func (s *LeadsService) Update(ctx context.Context, id string, in dto.LeadInput) (dto.LeadResult, error) {
	in, err := ValidateLeadInput(in)
	if err != nil {
		return dto.LeadResult{}, err
	}

	leads, err := s.repo.Load(ctx)
	if err != nil {
		return dto.LeadResult{}, err
	}

	idx := -1
	for i := range leads {
		if leads[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return dto.LeadResult{}, repository.ErrLeadNotFound
	}

	var warning *string
	if emailUsedByOther(leads, in.Email, id) {
		msg := fmt.Sprintf("Warning: Another lead with email %s already exists", in.Email)
		warning = &msg
	}

	updated := history.ApplyUpdate(leads[idx], in, time.Now())
	leads[idx] = updated
	if err := s.repo.SaveAll(ctx, leads); err != nil {
		return dto.LeadResult{}, err
	}

	return dto.LeadResult{Lead: updated, Warning: warning}, nil
}

// Delete removes a lead by id. Returns repository.ErrLeadNotFound when no
// lead matched.
func (s *LeadsService) Delete(ctx context.Context, id string) error {
	removed, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return repository.ErrLeadNotFound
	}
	return nil
}

// Stats returns collection statistics.
func (s *LeadsService) Stats(ctx context.Context) (entity.Stats, error) {
	return s.repo.Stats(ctx)
}

// Tags lists every distinct tag with its usage count, most used first. Ties
// keep the order tags were first seen in.
func (s *LeadsService) Tags(ctx context.Context) ([]entity.TagCount, error) {
	leads, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, lead := range leads {
		for _, tag := range lead.Tags {
			if _, seen := counts[tag]; !seen {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	tags := make([]entity.TagCount, 0, len(order))
	for _, tag := range order {
		tags = append(tags, entity.TagCount{Name: tag, Count: counts[tag]})
	}
	return tags, nil
}

// csvHeader is the fixed export column order.
var csvHeader = []string{"ID", "Company Name", "Contact Name", "Title", "Email", "LinkedIn URL", "Date Added", "Status", "Notes"}

const csvDateLayout = "2006-01-02 15:04:05"

// ExportCSV writes the full collection as CSV.
func (s *LeadsService) ExportCSV(ctx context.Context, w io.Writer) error {
	leads, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		row := []string{
			lead.ID,
			lead.CompanyName,
			lead.ContactName,
			lead.Title,
			lead.Email,
			lead.LinkedInURL,
			lead.DateAdded.Format(csvDateLayout),
			string(lead.Status),
			lead.Notes,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

var requiredImportHeaders = []string{"company_name", "contact_name", "title", "email"}

// ImportCSV ingests leads from a CSV payload. Required columns are
// company_name, contact_name, title and email; linkedin_url, status, notes
// and tags (separated by ";") are optional. Rows failing validation are
// skipped and counted rather than aborting the import.
func (s *LeadsService) ImportCSV(ctx context.Context, r io.Reader) (dto.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return dto.ImportSummary{}, ValidationError{Message: "csv file is empty"}
		}
		return dto.ImportSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	index, err := buildImportHeaderIndex(header)
	if err != nil {
		return dto.ImportSummary{}, err
	}

	leads, err := s.repo.Load(ctx)
	if err != nil {
		return dto.ImportSummary{}, err
	}

	var summary dto.ImportSummary
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return dto.ImportSummary{}, fmt.Errorf("read csv row: %w", err)
		}

		summary.Total++
		in, err := ValidateLeadInput(importRowToInput(row, index))
		if err != nil {
			summary.Skipped++
			continue
		}

		leads = append(leads, history.NewLead(in, uuid.NewString(), time.Now()))
		summary.Created++
	}

	if summary.Created > 0 {
		if err := s.repo.SaveAll(ctx, leads); err != nil {
			return dto.ImportSummary{}, err
		}
	}

	return summary, nil
}

func buildImportHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredImportHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, ValidationError{Message: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}
	return index, nil
}

func importRowToInput(row []string, index map[string]int) dto.LeadInput {
	cell := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	in := dto.LeadInput{
		CompanyName: cell("company_name"),
		ContactName: cell("contact_name"),
		Title:       cell("title"),
		Email:       cell("email"),
		LinkedInURL: cell("linkedin_url"),
		Status:      entity.LeadStatus(cell("status")),
		Notes:       cell("notes"),
	}
	if tags := cell("tags"); tags != "" {
		in.Tags = strings.Split(tags, ";")
	}
	return in
}

func emailUsedByOther(leads []entity.Lead, email, excludeID string) bool {
	target := strings.ToLower(email)
	for _, lead := range leads {
		if strings.ToLower(lead.Email) == target && lead.ID != excludeID {
			return true
		}
	}
	return false
}
