package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

type sqliteResourceRepo struct {
	db *sql.DB
}

const resourceColumns = `r.id, r.company_id, r.competence, r.price, r.price_type,
	r.period_from, r.period_to, r.comments, r.is_taken, r.taken_by, r.taken_at,
	r.created_at, r.updated_at`

func (r *sqliteResourceRepo) Create(ctx context.Context, resource *models.Resource) error {
	query := `
		INSERT INTO resources (id, company_id, competence, price, price_type,
			period_from, period_to, comments, is_taken, taken_by, taken_at,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var takenBy any
	if resource.TakenBy != "" {
		takenBy = resource.TakenBy
	}
	_, err := r.db.ExecContext(ctx, query,
		resource.ID, resource.CompanyID, resource.Competence, resource.Price,
		string(resource.PriceType), resource.PeriodFrom, resource.PeriodTo,
		resource.Comments, resource.IsTaken, takenBy, resource.TakenAt,
		resource.CreatedAt, resource.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert resource: %w", err)
	}
	return nil
}

func (r *sqliteResourceRepo) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resources r WHERE r.id = ?`
	resource, err := scanResource(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resource by id: %w", err)
	}
	return resource, nil
}

func (r *sqliteResourceRepo) List(ctx context.Context) ([]*models.Resource, error) {
	// INNER JOIN drops resources whose owner was deleted.
	query := `
		SELECT ` + resourceColumns + `
		FROM resources r
		INNER JOIN companies c ON c.id = r.company_id
		ORDER BY r.created_at DESC
	`
	return r.queryResources(ctx, query)
}

func (r *sqliteResourceRepo) ListByCompany(ctx context.Context, companyID string) ([]*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resources r
		WHERE r.company_id = ?
		ORDER BY r.created_at DESC
	`
	return r.queryResources(ctx, query, companyID)
}

func (r *sqliteResourceRepo) Take(ctx context.Context, id, takenBy string, at time.Time) (int64, error) {
	// Conditional update serializes concurrent acceptors: only one
	// caller sees a row transition, everyone else gets 0 rows.
	query := `
		UPDATE resources
		SET is_taken = 1, taken_by = ?, taken_at = ?, updated_at = ?
		WHERE id = ? AND is_taken = 0
	`
	result, err := r.db.ExecContext(ctx, query, takenBy, at, at, id)
	if err != nil {
		return 0, fmt.Errorf("take resource: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("take resource rows: %w", err)
	}
	return rows, nil
}

func (r *sqliteResourceRepo) Delete(ctx context.Context, id, companyID string) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM resources WHERE id = ? AND company_id = ? AND is_taken = 0",
		id, companyID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete resource: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete resource rows: %w", err)
	}
	return rows, nil
}

func (r *sqliteResourceRepo) queryResources(ctx context.Context, query string, args ...any) ([]*models.Resource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		resource, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, resource)
	}
	return resources, rows.Err()
}

func scanResource(row rowScanner) (*models.Resource, error) {
	resource := &models.Resource{}
	var comments, takenBy sql.NullString
	var takenAt sql.NullTime
	var priceType string
	err := row.Scan(
		&resource.ID, &resource.CompanyID, &resource.Competence,
		&resource.Price, &priceType, &resource.PeriodFrom, &resource.PeriodTo,
		&comments, &resource.IsTaken, &takenBy, &takenAt,
		&resource.CreatedAt, &resource.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	resource.PriceType = models.PriceType(priceType)
	resource.Comments = comments.String
	resource.TakenBy = takenBy.String
	if takenAt.Valid {
		t := takenAt.Time
		resource.TakenAt = &t
	}
	return resource, nil
}
