package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/viken-labs/ressurstorg/internal/models"
)

type sqliteCompanyRepo struct {
	db *sql.DB
}

const companyColumns = `id, username, email, password_hash, anonymous_id,
	company_name, contact_email, phone, address, created_at, updated_at`

func (r *sqliteCompanyRepo) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		company.ID, company.Username, company.Email, company.PasswordHash,
		company.AnonymousID, company.CompanyName, company.ContactEmail,
		company.Phone, company.Address, company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (r *sqliteCompanyRepo) GetByID(ctx context.Context, id string) (*models.Company, error) {
	return r.getBy(ctx, "id", id)
}

func (r *sqliteCompanyRepo) GetByUsername(ctx context.Context, username string) (*models.Company, error) {
	return r.getBy(ctx, "username", username)
}

func (r *sqliteCompanyRepo) GetByEmail(ctx context.Context, email string) (*models.Company, error) {
	return r.getBy(ctx, "email", email)
}

func (r *sqliteCompanyRepo) getBy(ctx context.Context, column, value string) (*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE ` + column + ` = ?`
	company, err := scanCompany(r.db.QueryRowContext(ctx, query, value))
	if err == sql.ErrNoRows {
		//nolint:nilnil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get company by %s: %w", column, err)
	}
	return company, nil
}

func (r *sqliteCompanyRepo) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET username = ?, email = ?, password_hash = ?, company_name = ?,
		    contact_email = ?, phone = ?, address = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		company.Username, company.Email, company.PasswordHash,
		company.CompanyName, company.ContactEmail, company.Phone,
		company.Address, company.UpdatedAt, company.ID,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("company not found: %s", company.ID)
	}
	return nil
}

func (r *sqliteCompanyRepo) List(ctx context.Context) ([]*models.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies ORDER BY username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, company)
	}
	return companies, rows.Err()
}

func (r *sqliteCompanyRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM companies").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count companies: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*models.Company, error) {
	company := &models.Company{}
	var companyName, contactEmail, phone, address sql.NullString
	err := row.Scan(
		&company.ID, &company.Username, &company.Email, &company.PasswordHash,
		&company.AnonymousID, &companyName, &contactEmail, &phone, &address,
		&company.CreatedAt, &company.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	company.CompanyName = companyName.String
	company.ContactEmail = contactEmail.String
	company.Phone = phone.String
	company.Address = address.String
	return company, nil
}
