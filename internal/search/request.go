package search

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 50
	MaxLimit     = 100

	// MinQueryLength is the minimum trimmed query length that activates
	// text matching. Shorter queries are carried but never matched.
	MinQueryLength = 2

	SearchTypeContacts  = "contacts"
	SearchTypeCompanies = "companies"
	SearchTypeBoth      = "both"
)

// SearchRequest is the normalized, immutable form of a client search.
// All filter slices are de-duplicated and sorted so that two requests with
// the same filters in different order serialize identically.
type SearchRequest struct {
	Query           string   `json:"q,omitempty"`
	Roles           []string `json:"roles,omitempty"`
	Seniority       []string `json:"seniority,omitempty"`
	Department      []string `json:"department,omitempty"`
	IsDecisionMaker bool     `json:"isDecisionMaker,omitempty"`
	CompanyType     []string `json:"companyType,omitempty"`
	Industry        []string `json:"industry,omitempty"`
	AgencyType      []string `json:"agencyType,omitempty"`
	EmployeeSize    []string `json:"employeeSize,omitempty"`
	City            []string `json:"city,omitempty"`
	State           []string `json:"state,omitempty"`
	Region          []string `json:"region,omitempty"`
	SearchType      string   `json:"searchType"`
	SortBy          string   `json:"sortBy"`
	Limit           int      `json:"limit"`
	Offset          int      `json:"offset"`
}

// ParseSearchRequest converts raw query parameters into a normalized
// SearchRequest and resolves a quickFilter id if one is present. Unknown
// filter values pass through untouched; they match nothing downstream.
func ParseSearchRequest(values url.Values) SearchRequest {
	req := SearchRequest{
		Query:           strings.TrimSpace(values.Get("q")),
		Roles:           normalizeSet(values["roles"]),
		Seniority:       normalizeSet(values["seniority"]),
		Department:      normalizeSet(values["department"]),
		IsDecisionMaker: values.Get("isDecisionMaker") == "true",
		CompanyType:     normalizeSet(values["companyType"]),
		Industry:        normalizeSet(values["industry"]),
		AgencyType:      normalizeSet(values["agencyType"]),
		EmployeeSize:    normalizeSet(values["employeeSize"]),
		City:            normalizeSet(values["city"]),
		State:           normalizeSet(values["state"]),
		Region:          normalizeSet(values["region"]),
		SearchType:      normalizeSearchType(values.Get("searchType")),
		SortBy:          values.Get("sortBy"),
		Limit:           parseLimit(values.Get("limit")),
		Offset:          parseOffset(values.Get("offset")),
	}

	if req.SortBy == "" {
		req.SortBy = "relevance"
	}

	if id := values.Get("quickFilter"); id != "" {
		if qf, ok := QuickFilterByID(id); ok {
			req = qf.Apply(req)
		}
	}

	return req
}

// HasQuery reports whether the query is long enough to activate text
// matching.
func (r SearchRequest) HasQuery() bool {
	return len(r.Query) >= MinQueryLength
}

// IncludesContacts reports whether contact results are requested.
func (r SearchRequest) IncludesContacts() bool {
	return r.SearchType == SearchTypeContacts || r.SearchType == SearchTypeBoth
}

// IncludesCompanies reports whether company results are requested.
func (r SearchRequest) IncludesCompanies() bool {
	return r.SearchType == SearchTypeCompanies || r.SearchType == SearchTypeBoth
}

// CanonicalJSON serializes the request in a stable form: struct field order
// is fixed and every filter slice is sorted at normalization time.
func (r SearchRequest) CanonicalJSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		// Marshal of a plain value struct cannot fail; keep a stable
		// fallback anyway.
		return r.Query
	}
	return string(data)
}

// CacheKey derives the deterministic cache key for this request. The key is
// a pure function of the operation name and the normalized request; request
// ids, sessions and other per-request state never participate.
func (r SearchRequest) CacheKey(operation string) string {
	sum := sha256.Sum256([]byte(operation + ":" + r.CanonicalJSON()))
	return operation + ":" + hex.EncodeToString(sum[:])
}

// FilterDimensions returns the active filter dimensions the ranking engine
// scores against, keyed by dimension name.
func (r SearchRequest) FilterDimensions() map[string][]string {
	dims := make(map[string][]string)
	if len(r.Seniority) > 0 {
		dims["seniority"] = r.Seniority
	}
	if len(r.Department) > 0 {
		dims["department"] = r.Department
	}
	if len(r.CompanyType) > 0 {
		dims["companyType"] = r.CompanyType
	}
	if len(r.Industry) > 0 {
		dims["industry"] = r.Industry
	}
	if len(r.City) > 0 {
		dims["location"] = r.City
	}
	if len(r.EmployeeSize) > 0 {
		dims["employeeSize"] = r.EmployeeSize
	}
	return dims
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func normalizeSearchType(v string) string {
	switch v {
	case SearchTypeContacts, SearchTypeCompanies, SearchTypeBoth:
		return v
	default:
		return SearchTypeBoth
	}
}

func parseLimit(v string) int {
	if v == "" {
		return DefaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return DefaultLimit
	}
	if n < 0 {
		return 0
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func parseOffset(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
