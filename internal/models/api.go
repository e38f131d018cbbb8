package models

// API payload types for the enhanced search endpoint.

// RankingInfo is the per-result ranking annotation surfaced to the UI.
type RankingInfo struct {
	RelevanceScore    float64  `json:"relevanceScore"`
	PersonalizedScore *float64 `json:"personalizedScore,omitempty"`
	Explanation       string   `json:"explanation"`
	TopSignals        []string `json:"topSignals"`
}

// ContactResult wraps a contact row with its ranking annotation.
type ContactResult struct {
	Contact
	Ranking *RankingInfo `json:"_ranking,omitempty"`
}

// CompanyResult wraps a company row with its ranking annotation.
type CompanyResult struct {
	Company
	Ranking *RankingInfo `json:"_ranking,omitempty"`
}

type SearchResults struct {
	Contacts       []ContactResult `json:"contacts"`
	Companies      []CompanyResult `json:"companies"`
	TotalContacts  int64           `json:"totalContacts"`
	TotalCompanies int64           `json:"totalCompanies"`
	TotalResults   int64           `json:"totalResults"`
}

type CacheInfo struct {
	Cached bool   `json:"cached"`
	Key    string `json:"key"`
}

// AppliedFilter describes one active filter dimension value.
type AppliedFilter struct {
	Type  string `json:"type"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOption is one selectable value for a filter dimension, with the
// number of results in the active result set carrying that value.
type FilterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Count int    `json:"count"`
}

type AvailableFilters struct {
	Departments  []FilterOption `json:"departments"`
	Seniorities  []FilterOption `json:"seniorities"`
	CompanyTypes []FilterOption `json:"companyTypes"`
	Industries   []FilterOption `json:"industries"`
	Locations    []FilterOption `json:"locations"`
}

type FiltersSection struct {
	Applied   []AppliedFilter  `json:"applied"`
	Available AvailableFilters `json:"available"`
}

type SearchStats struct {
	TotalContacts  int64 `json:"totalContacts"`
	TotalCompanies int64 `json:"totalCompanies"`
	CLevelContacts int64 `json:"cLevelContacts"`
	AgencyContacts int64 `json:"agencyContacts"`
	BrandContacts  int64 `json:"brandContacts"`
	DecisionMakers int64 `json:"decisionMakers"`
}

// QuickFilterInfo is the client-facing view of a quick filter preset.
type QuickFilterInfo struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Count       int64  `json:"count"`
}

type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

type Metadata struct {
	RequestID  string `json:"requestId"`
	Duration   int64  `json:"duration"`
	SearchType string `json:"searchType,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// EnhancedSearchResponse is the full payload of GET /api/search.
type EnhancedSearchResponse struct {
	Success      bool              `json:"success"`
	Results      SearchResults     `json:"results"`
	Cache        CacheInfo         `json:"cache"`
	Filters      FiltersSection    `json:"filters"`
	Stats        SearchStats       `json:"stats"`
	QuickFilters []QuickFilterInfo `json:"quickFilters"`
	Pagination   Pagination        `json:"pagination"`
	Metadata     Metadata          `json:"metadata"`
}

// SearchErrorResponse is returned with HTTP 500 when a search fails.
type SearchErrorResponse struct {
	Success  bool     `json:"success"`
	Error    string   `json:"error"`
	Message  string   `json:"message"`
	Metadata Metadata `json:"metadata"`
}

// FilterOptionsResponse is the payload of POST /api/search with
// action "getFilterOptions".
type FilterOptionsResponse struct {
	Success      bool              `json:"success"`
	Filters      AvailableFilters  `json:"filters"`
	Stats        SearchStats       `json:"stats"`
	QuickFilters []QuickFilterInfo `json:"quickFilters"`
}
