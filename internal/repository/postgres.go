package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-tracker/internal/entity"
)

// pgxPool is the subset of pgxpool.Pool the repository needs, kept small so
// tests can substitute a stub.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXLeadsRepository implements LeadsRepository on PostgreSQL. One row per
// lead; tags and activity history are stored as JSONB. The position column
// preserves collection order so listing and the first-seen tie-breaks behave
// exactly like the file-backed store.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

var _ LeadsRepository = (*PGXLeadsRepository)(nil)

const leadColumns = `id, company_name, contact_name, title, email, linkedin_url, status, notes, tags, date_added, last_contacted, activity_history`

// EnsureSchema creates the leads table if it does not exist yet.
func (r *PGXLeadsRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS leads (
            id TEXT PRIMARY KEY,
            company_name TEXT NOT NULL,
            contact_name TEXT NOT NULL,
            title TEXT NOT NULL,
            email TEXT NOT NULL,
            linkedin_url TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            notes TEXT NOT NULL DEFAULT '',
            tags JSONB NOT NULL DEFAULT '[]',
            date_added TIMESTAMPTZ NOT NULL,
            last_contacted TIMESTAMPTZ,
            activity_history JSONB NOT NULL DEFAULT '[]',
            position INTEGER NOT NULL
        );
    `)
	if err != nil {
		return classifyWriteErr("ensure leads schema", err)
	}
	return nil
}

// Load returns every lead in collection order.
func (r *PGXLeadsRepository) Load(ctx context.Context) ([]entity.Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// SaveAll replaces the stored collection inside a single transaction.
func (r *PGXLeadsRepository) SaveAll(ctx context.Context, leads []entity.Lead) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classifyWriteErr("begin save tx", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM leads`); err != nil {
		return classifyWriteErr("clear leads", err)
	}

	for i, lead := range leads {
		tags, err := json.Marshal(lead.Tags)
		if err != nil {
			return classifyWriteErr("encode tags", err)
		}
		history, err := json.Marshal(lead.ActivityHistory)
		if err != nil {
			return classifyWriteErr("encode activity history", err)
		}

		_, err = tx.Exec(ctx, `
            INSERT INTO leads (`+leadColumns+`, position)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12::jsonb, $13)
        `,
			lead.ID,
			lead.CompanyName,
			lead.ContactName,
			lead.Title,
			lead.Email,
			lead.LinkedInURL,
			string(lead.Status),
			lead.Notes,
			string(tags),
			lead.DateAdded,
			lead.LastContacted,
			string(history),
			i,
		)
		if err != nil {
			return classifyWriteErr(fmt.Sprintf("insert lead %s", lead.ID), err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return classifyWriteErr("commit save tx", err)
	}
	return nil
}

// FindByID returns the lead with the given id, or ErrLeadNotFound.
func (r *PGXLeadsRepository) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("query lead by id: %w", err)
	}
	defer rows.Close()

	leads, err := scanLeads(rows)
	if err != nil {
		return nil, err
	}
	if len(leads) == 0 {
		return nil, ErrLeadNotFound
	}
	return &leads[0], nil
}

// Search matches the query against company name, contact name and email.
func (r *PGXLeadsRepository) Search(ctx context.Context, query string) ([]entity.Lead, error) {
	if query == "" {
		return r.Load(ctx)
	}

	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.pool.Query(ctx, `
        SELECT `+leadColumns+`
        FROM leads
        WHERE company_name ILIKE $1 OR contact_name ILIKE $1 OR email ILIKE $1
        ORDER BY position
    `, pattern)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}
	defer rows.Close()

	return scanLeads(rows)
}

// EmailExists reports whether another lead already uses the given email.
func (r *PGXLeadsRepository) EmailExists(ctx context.Context, email, excludeID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM leads WHERE LOWER(email) = LOWER($1) AND id <> $2
        )
    `, email, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

// Stats aggregates in memory so the top-company tie-break by first appearance
// matches the file-backed store.
func (r *PGXLeadsRepository) Stats(ctx context.Context) (entity.Stats, error) {
	leads, err := r.Load(ctx)
	if err != nil {
		return entity.Stats{}, err
	}
	return statsFromLeads(leads), nil
}

// Delete removes the lead with the given id and reports whether it existed.
func (r *PGXLeadsRepository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return false, classifyWriteErr("delete lead", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanLeads(rows pgx.Rows) ([]entity.Lead, error) {
	leads := []entity.Lead{}
	for rows.Next() {
		var (
			lead          entity.Lead
			status        string
			tags          []byte
			history       []byte
			lastContacted sql.NullTime
		)
		err := rows.Scan(
			&lead.ID,
			&lead.CompanyName,
			&lead.ContactName,
			&lead.Title,
			&lead.Email,
			&lead.LinkedInURL,
			&status,
			&lead.Notes,
			&tags,
			&lead.DateAdded,
			&lastContacted,
			&history,
		)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}

		lead.Status = entity.LeadStatus(status)
		if lastContacted.Valid {
			ts := lastContacted.Time
			lead.LastContacted = &ts
		}
		if len(tags) > 0 {
			if err := json.Unmarshal(tags, &lead.Tags); err != nil {
				return nil, fmt.Errorf("%w: decode tags for %s: %v", ErrStoreCorrupt, lead.ID, err)
			}
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &lead.ActivityHistory); err != nil {
				return nil, fmt.Errorf("%w: decode activity history for %s: %v", ErrStoreCorrupt, lead.ID, err)
			}
		}

		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

func classifyWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s: %s (%s)", ErrStoreWrite, op, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %s: %v", ErrStoreWrite, op, err)
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
