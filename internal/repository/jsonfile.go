package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/octobees/lead-tracker/internal/entity"
)

// leadsDocument is the on-disk layout: a single object holding every lead.
type leadsDocument struct {
	Leads []entity.Lead `json:"leads"`
}

// JSONLeadsRepository persists the lead collection as one JSON document.
// Saves are atomic: the document is written to a temporary file which is then
// renamed over the canonical path, so readers never observe a partial write.
type JSONLeadsRepository struct {
	path string
}

// NewJSONLeadsRepository creates a repository backed by the given file path.
func NewJSONLeadsRepository(path string) *JSONLeadsRepository {
	return &JSONLeadsRepository{path: path}
}

var _ LeadsRepository = (*JSONLeadsRepository)(nil)

// Load reads every lead from the backing document. A missing document is
// initialised to an empty collection rather than treated as an error.
func (r *JSONLeadsRepository) Load(ctx context.Context) ([]entity.Lead, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if initErr := r.initEmpty(); initErr != nil {
				return nil, initErr
			}
			return []entity.Lead{}, nil
		}
		return nil, fmt.Errorf("read leads file: %w", err)
	}

	var doc leadsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStoreCorrupt, r.path, err)
	}
	if doc.Leads == nil {
		doc.Leads = []entity.Lead{}
	}
	return doc.Leads, nil
}

// SaveAll replaces the stored collection with the given one.
func (r *JSONLeadsRepository) SaveAll(ctx context.Context, leads []entity.Lead) error {
	if leads == nil {
		leads = []entity.Lead{}
	}

	raw, err := json.MarshalIndent(leadsDocument{Leads: leads}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode leads: %v", ErrStoreWrite, err)
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %v", ErrStoreWrite, err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: write temp file: %v", ErrStoreWrite, err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", ErrStoreWrite, r.path, err)
	}
	return nil
}

// FindByID returns the lead with the given id, or ErrLeadNotFound.
func (r *JSONLeadsRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	leads, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range leads {
		if leads[i].ID == id {
			return &leads[i], nil
		}
	}
	return nil, ErrLeadNotFound
}

// Search returns leads matching the query by company, contact or email.
func (r *JSONLeadsRepository) Search(ctx context.Context, query string) ([]entity.Lead, error) {
	leads, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}
	return filterLeads(leads, query), nil
}

// EmailExists reports whether another lead already uses the given email.
func (r *JSONLeadsRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	leads, err := r.Load(ctx)
	if err != nil {
		return false, err
	}
	return emailTaken(leads, email, excludeID), nil
}

// Stats aggregates collection statistics.
func (r *JSONLeadsRepository) Stats(ctx context.Context) (entity.Stats, error) {
	leads, err := r.Load(ctx)
	if err != nil {
		return entity.Stats{}, err
	}
	return statsFromLeads(leads), nil
}

// Delete removes the lead with the given id and reports whether it existed.
// The collection is only rewritten when something was actually removed.
func (r *JSONLeadsRepository) Delete(ctx context.Context, id string) (bool, error) {
	leads, err := r.Load(ctx)
	if err != nil {
		return false, err
	}

	kept := leads[:0:0]
	for _, lead := range leads {
		if lead.ID != id {
			kept = append(kept, lead)
		}
	}
	if len(kept) == len(leads) {
		return false, nil
	}
	if err := r.SaveAll(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (r *JSONLeadsRepository) initEmpty() error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("%w: create data directory: %v", ErrStoreWrite, err)
	}
	raw, err := json.MarshalIndent(leadsDocument{Leads: []entity.Lead{}}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode empty document: %v", ErrStoreWrite, err)
	}
	if err := os.WriteFile(r.path, raw, 0o644); err != nil {
		return fmt.Errorf("%w: initialise %s: %v", ErrStoreWrite, r.path, err)
	}
	return nil
}
