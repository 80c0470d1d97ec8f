// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Companies() CompanyRepository
	Resources() ResourceRepository
	Messages() MessageRepository
	Disclosures() DisclosureRepository
	Tokens() TokenRepository
}

// CompanyRepository defines operations for company accounts.
// Get methods return (nil, nil) when no row matches.
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id string) (*models.Company, error)
	GetByUsername(ctx context.Context, username string) (*models.Company, error)
	GetByEmail(ctx context.Context, email string) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	List(ctx context.Context) ([]*models.Company, error)
	Count(ctx context.Context) (int64, error)
}

// ResourceRepository defines operations for capacity offers.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id string) (*models.Resource, error)
	// List returns all resources whose owning company still resolves,
	// newest first. Rows with dangling owners are dropped.
	List(ctx context.Context) ([]*models.Resource, error)
	ListByCompany(ctx context.Context, companyID string) ([]*models.Resource, error)
	// Take performs the guarded false->true transition of is_taken.
	// Returns the number of rows updated: 0 means the resource was
	// already taken (or does not exist), 1 means this caller won.
	Take(ctx context.Context, id, takenBy string, at time.Time) (int64, error)
	// Delete removes an untaken resource owned by companyID.
	// Returns the number of rows deleted.
	Delete(ctx context.Context, id, companyID string) (int64, error)
}

// MessageRepository defines operations for thread messages.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	// GetFirst returns the thread's first message (id == threadID),
	// or (nil, nil) when the thread does not exist.
	GetFirst(ctx context.Context, threadID string) (*models.Message, error)
	// ListThread returns all messages of a thread, ascending by
	// created_at.
	ListThread(ctx context.Context, threadID string) ([]*models.Message, error)
	// MarkThreadRead stamps read_at on every unread message of the
	// thread addressed to companyID. Already-read messages are
	// untouched. Returns the number of rows stamped.
	MarkThreadRead(ctx context.Context, threadID, companyID string, at time.Time) (int64, error)
	// LatestPerThread returns the most recent message of every thread
	// involving companyID, descending by created_at. Threads whose
	// companies or resource no longer resolve are dropped.
	LatestPerThread(ctx context.Context, companyID string) ([]*models.Message, error)
	// UnreadCounts returns, per thread, how many messages addressed to
	// companyID are still unread.
	UnreadCounts(ctx context.Context, companyID string) (map[string]int, error)
	// PendingRequestCounts returns, per resource owned by ownerID, the
	// number of distinct threads with unread non-system messages
	// addressed to the owner.
	PendingRequestCounts(ctx context.Context, ownerID string) (map[string]int, error)
}

// DisclosureRepository defines operations for contact disclosures.
type DisclosureRepository interface {
	// Create atomically inserts the disclosure and its announcement
	// message in one transaction. Returns false (and inserts nothing)
	// when a disclosure already exists for the thread.
	Create(ctx context.Context, d *models.ContactDisclosure, announcement *models.Message) (bool, error)
	GetByThread(ctx context.Context, threadID string) (*models.ContactDisclosure, error)
	// DisclosedThreads returns the set of thread ids with a disclosure
	// involving companyID.
	DisclosedThreads(ctx context.Context, companyID string) (map[string]bool, error)
	// ExistsForResource reports whether any thread about resourceID
	// involving companyID has a disclosure.
	ExistsForResource(ctx context.Context, resourceID, companyID string) (bool, error)
}

// TokenRepository defines operations for refresh token management.
type TokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllForCompany(ctx context.Context, companyID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}
