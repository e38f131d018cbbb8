package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Company represents an agency, advertiser or vendor in the directory.
type Company struct {
	BaseModel
	Name          string `json:"name" gorm:"not null;index"`
	Description   string `json:"description"`
	Website       string `json:"website"`
	LogoURL       string `json:"logo_url"`
	CompanyType   string `json:"company_type" gorm:"index"`
	AgencyType    string `json:"agency_type" gorm:"index"`
	Industry      string `json:"industry" gorm:"index"`
	City          string `json:"city" gorm:"index"`
	State         string `json:"state" gorm:"index"`
	Region        string `json:"region"`
	EmployeeCount string `json:"employee_count"`
	RevenueRange  string `json:"revenue_range"`
	FoundedYear   int    `json:"founded_year"`
	Verified      bool   `json:"verified" gorm:"default:false;index"`

	// Associations
	Contacts []Contact `json:"contacts,omitempty" gorm:"foreignKey:CompanyID"`
}

// Contact represents a person at a company.
type Contact struct {
	BaseModel
	FirstName       string `json:"first_name" gorm:"not null"`
	LastName        string `json:"last_name" gorm:"not null"`
	FullName        string `json:"full_name" gorm:"index"`
	Title           string `json:"title" gorm:"index"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	LinkedinURL     string `json:"linkedin_url"`
	Department      string `json:"department" gorm:"index"`
	Seniority       string `json:"seniority" gorm:"index"`
	IsDecisionMaker bool   `json:"is_decision_maker" gorm:"default:false;index"`
	Verified        bool   `json:"verified" gorm:"default:false;index"`
	IsActive        bool   `json:"is_active" gorm:"default:true;index"`
	CompanyID       uint   `json:"company_id" gorm:"not null;index"`

	// Associations
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// SearchInteraction records one search request for analytics. Writes are
// fire-and-forget; a failed insert never fails the search itself.
type SearchInteraction struct {
	BaseModel
	UserID      string `json:"user_id" gorm:"index"`
	SessionID   string `json:"session_id" gorm:"index"`
	Query       string `json:"query"`
	SearchType  string `json:"search_type"`
	Filters     string `json:"filters" gorm:"type:jsonb"`
	ResultCount int    `json:"result_count" gorm:"default:0"`
	QueryTimeMs int    `json:"query_time_ms"`
	ClickCount  int    `json:"click_count" gorm:"default:0"`
	TimeSpentMs int    `json:"time_spent_ms" gorm:"default:0"`
	Successful  bool   `json:"successful" gorm:"default:false"`
}

// TableName methods for custom table names
func (Company) TableName() string           { return "companies" }
func (Contact) TableName() string           { return "contacts" }
func (SearchInteraction) TableName() string { return "search_interactions" }

// Model validation methods
func (c *Contact) Validate() error {
	if c.FirstName == "" || c.LastName == "" {
		return fmt.Errorf("contact name is required")
	}
	if c.CompanyID == 0 {
		return fmt.Errorf("contact must belong to a company")
	}
	return nil
}

func (co *Company) Validate() error {
	if co.Name == "" {
		return fmt.Errorf("company name is required")
	}
	return nil
}

func (si *SearchInteraction) Validate() error {
	if si.SessionID == "" {
		return fmt.Errorf("session ID is required")
	}
	if si.QueryTimeMs < 0 {
		return fmt.Errorf("query time cannot be negative")
	}
	return nil
}

// GORM hooks
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.FullName == "" {
		c.FullName = c.FirstName + " " + c.LastName
	}
	return c.Validate()
}

func (co *Company) BeforeCreate(tx *gorm.DB) error {
	return co.Validate()
}

func (si *SearchInteraction) BeforeCreate(tx *gorm.DB) error {
	return si.Validate()
}
