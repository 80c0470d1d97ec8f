package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

type sqliteMessageRepo struct {
	db *sql.DB
}

const messageColumns = `m.id, m.thread_id, m.from_company_id, m.to_company_id,
	m.resource_id, m.subject, m.content, m.system, m.read_at, m.created_at`

func (r *sqliteMessageRepo) Create(ctx context.Context, msg *models.Message) error {
	query := `
		INSERT INTO messages (id, thread_id, from_company_id, to_company_id,
			resource_id, subject, content, system, read_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		msg.ID, msg.ThreadID, msg.FromCompanyID, msg.ToCompanyID,
		msg.ResourceID, msg.Subject, msg.Content, msg.System, msg.ReadAt,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *sqliteMessageRepo) GetFirst(ctx context.Context, threadID string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m WHERE m.id = ?`
	msg, err := scanMessage(r.db.QueryRowContext(ctx, query, threadID))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get first message: %w", err)
	}
	return msg, nil
}

func (r *sqliteMessageRepo) ListThread(ctx context.Context, threadID string) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		WHERE m.thread_id = ?
		ORDER BY m.created_at ASC, m.id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, threadID)
	if err != nil {
		return nil, fmt.Errorf("list thread: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteMessageRepo) MarkThreadRead(ctx context.Context, threadID, companyID string, at time.Time) (int64, error) {
	// read_at IS NULL makes this idempotent: a second call stamps
	// nothing.
	query := `
		UPDATE messages
		SET read_at = ?
		WHERE thread_id = ? AND to_company_id = ? AND read_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, threadID, companyID)
	if err != nil {
		return 0, fmt.Errorf("mark thread read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark thread read rows: %w", err)
	}
	return rows, nil
}

func (r *sqliteMessageRepo) LatestPerThread(ctx context.Context, companyID string) ([]*models.Message, error) {
	// The INNER JOINs on both companies and the resource drop threads
	// with dangling references instead of failing the whole list.
	query := `
		SELECT ` + messageColumns + `
		FROM messages m
		INNER JOIN companies cf ON cf.id = m.from_company_id
		INNER JOIN companies ct ON ct.id = m.to_company_id
		INNER JOIN resources res ON res.id = m.resource_id
		WHERE (m.from_company_id = ? OR m.to_company_id = ?)
		  AND m.id = (
			SELECT id FROM messages
			WHERE thread_id = m.thread_id
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		  )
		ORDER BY m.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, companyID)
	if err != nil {
		return nil, fmt.Errorf("latest per thread: %w", err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func (r *sqliteMessageRepo) UnreadCounts(ctx context.Context, companyID string) (map[string]int, error) {
	query := `
		SELECT thread_id, COUNT(*)
		FROM messages
		WHERE to_company_id = ? AND read_at IS NULL
		GROUP BY thread_id
	`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("unread counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var threadID string
		var n int
		if err := rows.Scan(&threadID, &n); err != nil {
			return nil, fmt.Errorf("scan unread count: %w", err)
		}
		counts[threadID] = n
	}
	return counts, rows.Err()
}

func (r *sqliteMessageRepo) PendingRequestCounts(ctx context.Context, ownerID string) (map[string]int, error) {
	query := `
		SELECT resource_id, COUNT(DISTINCT thread_id)
		FROM messages
		WHERE to_company_id = ? AND read_at IS NULL AND system = 0
		GROUP BY resource_id
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pending request counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var resourceID string
		var n int
		if err := rows.Scan(&resourceID, &n); err != nil {
			return nil, fmt.Errorf("scan pending count: %w", err)
		}
		counts[resourceID] = n
	}
	return counts, rows.Err()
}

func scanMessage(row rowScanner) (*models.Message, error) {
	msg := &models.Message{}
	var readAt sql.NullTime
	err := row.Scan(
		&msg.ID, &msg.ThreadID, &msg.FromCompanyID, &msg.ToCompanyID,
		&msg.ResourceID, &msg.Subject, &msg.Content, &msg.System, &readAt,
		&msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if readAt.Valid {
		t := readAt.Time
		msg.ReadAt = &t
	}
	return msg, nil
}
