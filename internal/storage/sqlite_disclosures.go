package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viken-labs/ressurstorg/internal/models"
)

type sqliteDisclosureRepo struct {
	db *sql.DB
}

func (r *sqliteDisclosureRepo) Create(ctx context.Context, d *models.ContactDisclosure, announcement *models.Message) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin disclosure tx: %w", err)
	}
	defer tx.Rollback()

	// INSERT OR IGNORE makes the PRIMARY KEY on thread_id decide the
	// race: the loser inserts nothing and the announcement is skipped,
	// so disclosure and announcement exist together or not at all.
	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO disclosures (thread_id, from_company_id, to_company_id, created_at)
		VALUES (?, ?, ?, ?)
	`, d.ThreadID, d.FromCompanyID, d.ToCompanyID, d.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert disclosure: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert disclosure rows: %w", err)
	}
	if rows == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, thread_id, from_company_id, to_company_id,
			resource_id, subject, content, system, read_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, announcement.ID, announcement.ThreadID, announcement.FromCompanyID,
		announcement.ToCompanyID, announcement.ResourceID, announcement.Subject,
		announcement.Content, announcement.System, announcement.ReadAt,
		announcement.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert disclosure announcement: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit disclosure tx: %w", err)
	}
	return true, nil
}

func (r *sqliteDisclosureRepo) GetByThread(ctx context.Context, threadID string) (*models.ContactDisclosure, error) {
	query := `
		SELECT thread_id, from_company_id, to_company_id, created_at
		FROM disclosures WHERE thread_id = ?
	`
	d := &models.ContactDisclosure{}
	err := r.db.QueryRowContext(ctx, query, threadID).Scan(
		&d.ThreadID, &d.FromCompanyID, &d.ToCompanyID, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get disclosure by thread: %w", err)
	}
	return d, nil
}

func (r *sqliteDisclosureRepo) DisclosedThreads(ctx context.Context, companyID string) (map[string]bool, error) {
	query := `
		SELECT thread_id FROM disclosures
		WHERE from_company_id = ? OR to_company_id = ?
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, companyID)
	if err != nil {
		return nil, fmt.Errorf("disclosed threads: %w", err)
	}
	defer rows.Close()

	threads := make(map[string]bool)
	for rows.Next() {
		var threadID string
		if err := rows.Scan(&threadID); err != nil {
			return nil, fmt.Errorf("scan disclosed thread: %w", err)
		}
		threads[threadID] = true
	}
	return threads, rows.Err()
}

func (r *sqliteDisclosureRepo) ExistsForResource(ctx context.Context, resourceID, companyID string) (bool, error) {
	// A thread's first message carries the resource reference, and its
	// id is the thread id.
	query := `
		SELECT EXISTS(
			SELECT 1
			FROM disclosures d
			INNER JOIN messages m ON m.id = d.thread_id
			WHERE m.resource_id = ?
			  AND (d.from_company_id = ? OR d.to_company_id = ?)
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, resourceID, companyID, companyID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("disclosure exists for resource: %w", err)
	}
	return exists, nil
}
