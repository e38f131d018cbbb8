package repository

import (
	"context"
	"time"

	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/mediadeck/crm/backend/internal/search"
	"gorm.io/gorm"
)

// LocationValue is one distinct city/state pair from the company table.
type LocationValue struct {
	City  string
	State string
}

// ContactRepository exposes the filterable contact queries the search
// pipeline needs.
type ContactRepository interface {
	Search(ctx context.Context, req search.SearchRequest) ([]models.Contact, int64, error)
	Count(ctx context.Context, req search.SearchRequest) (int64, error)
	DistinctDepartments(ctx context.Context) ([]string, error)
	DistinctSeniorities(ctx context.Context) ([]string, error)
	CountActive(ctx context.Context) (int64, error)
	CountBySeniority(ctx context.Context, seniority string) (int64, error)
	CountDecisionMakers(ctx context.Context) (int64, error)
	CountByCompanyTypes(ctx context.Context, companyTypes []string) (int64, error)
	Create(ctx context.Context, contact *models.Contact) error
}

// CompanyRepository exposes the filterable company queries.
type CompanyRepository interface {
	Search(ctx context.Context, req search.SearchRequest) ([]models.Company, int64, error)
	DistinctCompanyTypes(ctx context.Context) ([]string, error)
	DistinctIndustries(ctx context.Context) ([]string, error)
	DistinctLocations(ctx context.Context, limit int) ([]LocationValue, error)
	CountAll(ctx context.Context) (int64, error)
	Create(ctx context.Context, company *models.Company) error
}

// SearchInteractionRepository records search analytics and serves the
// recent-history reads personalization is built on.
type SearchInteractionRepository interface {
	Create(ctx context.Context, interaction *models.SearchInteraction) error
	RecentByUser(ctx context.Context, userID string, since time.Time, limit int) ([]models.SearchInteraction, error)
}

// RepositoryManager bundles all repositories.
type RepositoryManager struct {
	Contacts     ContactRepository
	Companies    CompanyRepository
	Interactions SearchInteractionRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		Contacts:     NewContactRepository(db),
		Companies:    NewCompanyRepository(db),
		Interactions: NewSearchInteractionRepository(db),
	}
}
