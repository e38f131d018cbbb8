package models

// Enum string values mirror the directory schema. Unknown values coming in
// from clients are passed through the filter pipeline untouched and simply
// match no rows.

// Seniority levels, most senior first.
const (
	SeniorityCLevel           = "C_LEVEL"
	SeniorityFounderOwner     = "FOUNDER_OWNER"
	SeniorityEVP              = "EVP"
	SenioritySVP              = "SVP"
	SeniorityVP               = "VP"
	SenioritySeniorDirector   = "SENIOR_DIRECTOR"
	SeniorityDirector         = "DIRECTOR"
	SenioritySeniorManager    = "SENIOR_MANAGER"
	SeniorityManager          = "MANAGER"
	SenioritySeniorSpecialist = "SENIOR_SPECIALIST"
	SenioritySpecialist       = "SPECIALIST"
	SeniorityAssociate        = "ASSOCIATE"
	SeniorityCoordinator      = "COORDINATOR"
	SeniorityIntern           = "INTERN"
)

// Departments.
const (
	DepartmentMediaPlanning     = "MEDIA_PLANNING"
	DepartmentMediaBuying       = "MEDIA_BUYING"
	DepartmentProgrammatic      = "PROGRAMMATIC"
	DepartmentDigitalMarketing  = "DIGITAL_MARKETING"
	DepartmentStrategyPlanning  = "STRATEGY_PLANNING"
	DepartmentMarketing         = "MARKETING"
	DepartmentAnalyticsInsights = "ANALYTICS_INSIGHTS"
	DepartmentLeadership        = "LEADERSHIP"
)

// Company types.
const (
	CompanyTypeIndependentAgency    = "INDEPENDENT_AGENCY"
	CompanyTypeHoldingCompanyAgency = "HOLDING_COMPANY_AGENCY"
	CompanyTypeMediaHoldingCompany  = "MEDIA_HOLDING_COMPANY"
	CompanyTypeNationalAdvertiser   = "NATIONAL_ADVERTISER"
	CompanyTypeLocalAdvertiser      = "LOCAL_ADVERTISER"
	CompanyTypeVendor               = "VENDOR"
)

// Employee count ranges.
const (
	EmployeeRangeStartup    = "STARTUP_1_10"
	EmployeeRangeSmall      = "SMALL_11_50"
	EmployeeRangeMedium     = "MEDIUM_51_200"
	EmployeeRangeLarge      = "LARGE_201_1000"
	EmployeeRangeEnterprise = "ENTERPRISE_1001_5000"
	EmployeeRangeMega       = "MEGA_5000_PLUS"
)

// Revenue ranges.
const (
	RevenueUnder1M     = "UNDER_1M"
	RevenueRange1M5M   = "RANGE_1M_5M"
	RevenueRange5M25M  = "RANGE_5M_25M"
	RevenueRange25M    = "RANGE_25M_100M"
	RevenueRange100M   = "RANGE_100M_500M"
	RevenueRange500M1B = "RANGE_500M_1B"
	RevenueOver1B      = "OVER_1B"
)

// AgencyCompanyTypes groups every agency-side company type; used by the
// quick filters and directory stats.
var AgencyCompanyTypes = []string{
	CompanyTypeIndependentAgency,
	CompanyTypeHoldingCompanyAgency,
	CompanyTypeMediaHoldingCompany,
}

// BrandCompanyTypes groups the advertiser-side company types.
var BrandCompanyTypes = []string{
	CompanyTypeNationalAdvertiser,
	CompanyTypeLocalAdvertiser,
}
