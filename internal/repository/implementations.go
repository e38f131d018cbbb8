package repository

import (
	"context"
	"strings"
	"time"

	"github.com/mediadeck/crm/backend/internal/models"
	"github.com/mediadeck/crm/backend/internal/search"
	"gorm.io/gorm"
)

// ContactRepositoryImpl implements ContactRepository
type ContactRepositoryImpl struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &ContactRepositoryImpl{db: db}
}

// filtered builds the WHERE clause shared by Search and Count. Unknown
// filter values end up in IN lists that match no rows; they are never an
// error.
func (r *ContactRepositoryImpl) filtered(req search.SearchRequest) *gorm.DB {
	q := r.db.Model(&models.Contact{}).
		Joins("LEFT JOIN companies ON companies.id = contacts.company_id").
		Where("contacts.is_active = ?", true)

	if req.HasQuery() {
		term := "%" + strings.ToLower(req.Query) + "%"
		q = q.Where(
			"LOWER(contacts.full_name) LIKE ? OR LOWER(contacts.title) LIKE ? OR LOWER(contacts.email) LIKE ?",
			term, term, term,
		)
	}

	if len(req.Roles) > 0 {
		conds := make([]string, 0, len(req.Roles))
		args := make([]interface{}, 0, len(req.Roles))
		for _, role := range req.Roles {
			conds = append(conds, "LOWER(contacts.title) LIKE ?")
			args = append(args, "%"+strings.ToLower(role)+"%")
		}
		q = q.Where(strings.Join(conds, " OR "), args...)
	}

	if len(req.Seniority) > 0 {
		q = q.Where("contacts.seniority IN ?", req.Seniority)
	}
	if len(req.Department) > 0 {
		q = q.Where("contacts.department IN ?", req.Department)
	}
	if req.IsDecisionMaker {
		q = q.Where("contacts.is_decision_maker = ?", true)
	}

	if len(req.CompanyType) > 0 {
		q = q.Where("companies.company_type IN ?", req.CompanyType)
	}
	if len(req.Industry) > 0 {
		q = q.Where("companies.industry IN ?", req.Industry)
	}
	if len(req.AgencyType) > 0 {
		q = q.Where("companies.agency_type IN ?", req.AgencyType)
	}
	if len(req.EmployeeSize) > 0 {
		q = q.Where("companies.employee_count IN ?", req.EmployeeSize)
	}
	if len(req.City) > 0 {
		q = q.Where("companies.city IN ?", req.City)
	}
	if len(req.State) > 0 {
		q = q.Where("companies.state IN ?", req.State)
	}
	if len(req.Region) > 0 {
		q = q.Where("companies.region IN ?", req.Region)
	}

	return q
}

func (r *ContactRepositoryImpl) Search(ctx context.Context, req search.SearchRequest) ([]models.Contact, int64, error) {
	var total int64
	if err := r.filtered(req).WithContext(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var contacts []models.Contact
	err := r.filtered(req).WithContext(ctx).
		Preload("Company").
		Order("contacts.verified DESC, contacts.is_decision_maker DESC, contacts.first_name ASC").
		Limit(req.Limit).
		Offset(req.Offset).
		Find(&contacts).Error
	if err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (r *ContactRepositoryImpl) Count(ctx context.Context, req search.SearchRequest) (int64, error) {
	var total int64
	err := r.filtered(req).WithContext(ctx).Count(&total).Error
	return total, err
}

func (r *ContactRepositoryImpl) DistinctDepartments(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("department <> ''").
		Distinct("department").
		Order("department").
		Pluck("department", &values).Error
	return values, err
}

func (r *ContactRepositoryImpl) DistinctSeniorities(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("seniority <> ''").
		Distinct("seniority").
		Order("seniority").
		Pluck("seniority", &values).Error
	return values, err
}

func (r *ContactRepositoryImpl) CountActive(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("is_active = ?", true).
		Count(&total).Error
	return total, err
}

func (r *ContactRepositoryImpl) CountBySeniority(ctx context.Context, seniority string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("is_active = ? AND seniority = ?", true, seniority).
		Count(&total).Error
	return total, err
}

func (r *ContactRepositoryImpl) CountDecisionMakers(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Where("is_active = ? AND is_decision_maker = ?", true, true).
		Count(&total).Error
	return total, err
}

func (r *ContactRepositoryImpl) CountByCompanyTypes(ctx context.Context, companyTypes []string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Contact{}).
		Joins("LEFT JOIN companies ON companies.id = contacts.company_id").
		Where("contacts.is_active = ? AND companies.company_type IN ?", true, companyTypes).
		Count(&total).Error
	return total, err
}

func (r *ContactRepositoryImpl) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// CompanyRepositoryImpl implements CompanyRepository
type CompanyRepositoryImpl struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &CompanyRepositoryImpl{db: db}
}

func (r *CompanyRepositoryImpl) filtered(req search.SearchRequest) *gorm.DB {
	q := r.db.Model(&models.Company{})

	if req.HasQuery() {
		term := "%" + strings.ToLower(req.Query) + "%"
		q = q.Where(
			"LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(city) LIKE ?",
			term, term, term,
		)
	}

	if len(req.CompanyType) > 0 {
		q = q.Where("company_type IN ?", req.CompanyType)
	}
	if len(req.Industry) > 0 {
		q = q.Where("industry IN ?", req.Industry)
	}
	if len(req.AgencyType) > 0 {
		q = q.Where("agency_type IN ?", req.AgencyType)
	}
	if len(req.EmployeeSize) > 0 {
		q = q.Where("employee_count IN ?", req.EmployeeSize)
	}
	if len(req.City) > 0 {
		q = q.Where("city IN ?", req.City)
	}
	if len(req.State) > 0 {
		q = q.Where("state IN ?", req.State)
	}
	if len(req.Region) > 0 {
		q = q.Where("region IN ?", req.Region)
	}

	return q
}

func (r *CompanyRepositoryImpl) Search(ctx context.Context, req search.SearchRequest) ([]models.Company, int64, error) {
	var total int64
	if err := r.filtered(req).WithContext(ctx).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companies []models.Company
	err := r.filtered(req).WithContext(ctx).
		Order("verified DESC, name ASC").
		Limit(req.Limit).
		Offset(req.Offset).
		Find(&companies).Error
	if err != nil {
		return nil, 0, err
	}

	return companies, total, nil
}

func (r *CompanyRepositoryImpl) DistinctCompanyTypes(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("company_type <> ''").
		Distinct("company_type").
		Order("company_type").
		Pluck("company_type", &values).Error
	return values, err
}

func (r *CompanyRepositoryImpl) DistinctIndustries(ctx context.Context) ([]string, error) {
	var values []string
	err := r.db.WithContext(ctx).Model(&models.Company{}).
		Where("industry <> ''").
		Distinct("industry").
		Order("industry").
		Pluck("industry", &values).Error
	return values, err
}

func (r *CompanyRepositoryImpl) DistinctLocations(ctx context.Context, limit int) ([]LocationValue, error) {
	var values []LocationValue
	err := r.db.WithContext(ctx).Model(&models.Company{}).
		Select("DISTINCT city, state").
		Where("city <> '' AND state <> ''").
		Order("city, state").
		Limit(limit).
		Scan(&values).Error
	return values, err
}

func (r *CompanyRepositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Company{}).Count(&total).Error
	return total, err
}

func (r *CompanyRepositoryImpl) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// SearchInteractionRepositoryImpl implements SearchInteractionRepository
type SearchInteractionRepositoryImpl struct {
	db *gorm.DB
}

func NewSearchInteractionRepository(db *gorm.DB) SearchInteractionRepository {
	return &SearchInteractionRepositoryImpl{db: db}
}

func (r *SearchInteractionRepositoryImpl) Create(ctx context.Context, interaction *models.SearchInteraction) error {
	return r.db.WithContext(ctx).Create(interaction).Error
}

func (r *SearchInteractionRepositoryImpl) RecentByUser(ctx context.Context, userID string, since time.Time, limit int) ([]models.SearchInteraction, error) {
	var interactions []models.SearchInteraction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Limit(limit).
		Find(&interactions).Error
	return interactions, err
}
